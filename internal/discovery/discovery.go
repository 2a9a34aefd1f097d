// Package discovery builds the market list for a run from the Kalshi REST
// API.
//
// Three modes are supported:
//   - events: list open events (with nested markets) per configured series
//     ticker and keep crypto events
//   - series: list series for a category, keep those with the configured
//     frequency and list each one's open markets; falls back to all markets
//     when nothing matches
//   - all: list every open market
package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rickgao/kalshi-lagbot/internal/api"
	"github.com/rickgao/kalshi-lagbot/internal/classify"
	"github.com/rickgao/kalshi-lagbot/internal/model"
)

// Discovery modes.
const (
	ModeEvents = "events"
	ModeSeries = "series"
	ModeAll    = "all"
)

// seriesConcurrency bounds concurrent per-series market listings.
const seriesConcurrency = 4

// Source yields the markets for one run.
type Source interface {
	Markets(ctx context.Context) ([]model.Market, error)
}

// Lister is the subset of the Kalshi REST client used for discovery.
type Lister interface {
	GetAllMarketsWithOptions(ctx context.Context, opts api.GetMarketsOptions) ([]api.APIMarket, error)
	GetAllEventsWithOptions(ctx context.Context, opts api.GetEventsOptions) ([]api.APIEvent, error)
	GetSeriesList(ctx context.Context, category string) ([]api.APISeries, error)
}

// Config holds discovery settings.
type Config struct {
	Mode                string
	EventSeriesTickers  []string
	EventTickerPrefixes []string
	CryptoAssets        []string
	SeriesCategory      string
	SeriesFrequency     string
	EventsLimit         int
	MinCloseTS          int64
}

// Discoverer lists markets from the API according to Config.
type Discoverer struct {
	cfg    Config
	rest   Lister
	logger *slog.Logger
}

// New creates a Discoverer.
func New(cfg Config, rest Lister, logger *slog.Logger) *Discoverer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discoverer{
		cfg:    cfg,
		rest:   rest,
		logger: logger,
	}
}

// Markets lists markets using the configured mode.
func (d *Discoverer) Markets(ctx context.Context) ([]model.Market, error) {
	start := time.Now()

	var (
		markets []api.APIMarket
		err     error
	)
	switch d.cfg.Mode {
	case ModeEvents, "":
		markets, err = d.eventMarkets(ctx)
	case ModeSeries:
		markets, err = d.seriesMarkets(ctx)
	case ModeAll:
		markets, err = d.allMarkets(ctx)
	default:
		return nil, fmt.Errorf("unknown discovery mode %q", d.cfg.Mode)
	}
	if err != nil {
		return nil, err
	}

	d.logger.Info("market discovery complete",
		"mode", d.cfg.Mode,
		"markets", len(markets),
		"duration", time.Since(start),
	)

	return api.MarketsToModel(markets), nil
}

func (d *Discoverer) allMarkets(ctx context.Context) ([]api.APIMarket, error) {
	markets, err := d.rest.GetAllMarketsWithOptions(ctx, api.GetMarketsOptions{Status: "open"})
	if err != nil {
		return nil, fmt.Errorf("list open markets: %w", err)
	}
	return markets, nil
}

func (d *Discoverer) eventMarkets(ctx context.Context) ([]api.APIMarket, error) {
	series := d.cfg.EventSeriesTickers
	if len(series) == 0 {
		// One unfiltered pass over all open events.
		series = []string{""}
	}

	var markets []api.APIMarket
	for _, seriesTicker := range series {
		events, err := d.rest.GetAllEventsWithOptions(ctx, api.GetEventsOptions{
			Limit:             d.cfg.EventsLimit,
			SeriesTicker:      seriesTicker,
			Status:            "open",
			WithNestedMarkets: true,
			MinCloseTS:        d.cfg.MinCloseTS,
		})
		if err != nil {
			return nil, fmt.Errorf("list events for series %q: %w", seriesTicker, err)
		}

		for _, ev := range events {
			if !d.isCryptoEvent(ev) {
				continue
			}
			d.logger.Debug("crypto event",
				"event_ticker", ev.EventTicker,
				"category", ev.Category,
				"title", ev.Title,
				"markets", len(ev.Markets),
			)
			markets = append(markets, ev.Markets...)
		}
	}

	return markets, nil
}

func (d *Discoverer) isCryptoEvent(ev api.APIEvent) bool {
	if IsTargetEvent(ev.EventTicker, d.cfg.EventTickerPrefixes) {
		return true
	}
	for _, field := range [...]string{ev.Title, ev.Subtitle, ev.Category, ev.EventTicker} {
		if field != "" && classify.IsCryptoText(field, d.cfg.CryptoAssets) {
			return true
		}
	}
	return false
}

func (d *Discoverer) seriesMarkets(ctx context.Context) ([]api.APIMarket, error) {
	category := strings.TrimSpace(d.cfg.SeriesCategory)
	frequency := CanonicalFrequency(d.cfg.SeriesFrequency)

	series, err := d.rest.GetSeriesList(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}
	if len(series) == 0 {
		d.logger.Warn("series list empty, falling back to full market list",
			"category", category,
		)
		return d.allMarkets(ctx)
	}

	var matched []api.APISeries
	for _, s := range series {
		if s.Frequency == "" {
			continue
		}
		if frequency != "" && CanonicalFrequency(s.Frequency) != frequency {
			continue
		}
		matched = append(matched, s)
	}

	if len(matched) == 0 {
		d.logger.Warn("no series matched, falling back to full market list",
			"category", category,
			"frequency", frequency,
			"total_series", len(series),
		)
		return d.allMarkets(ctx)
	}

	d.logger.Info("matched series",
		"count", len(matched),
		"category", category,
		"frequency", frequency,
	)

	// Listings run concurrently; results keep series order.
	perSeries := make([][]api.APIMarket, len(matched))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(seriesConcurrency)
	for i, s := range matched {
		g.Go(func() error {
			markets, err := d.rest.GetAllMarketsWithOptions(gctx, api.GetMarketsOptions{
				Status:       "open",
				SeriesTicker: s.Ticker,
			})
			if err != nil {
				return fmt.Errorf("list markets for series %s: %w", s.Ticker, err)
			}
			perSeries[i] = markets
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var markets []api.APIMarket
	for _, m := range perSeries {
		markets = append(markets, m...)
	}
	return markets, nil
}

// IsTargetEvent reports whether eventTicker starts with any prefix.
// Prefixes are expected upper-case.
func IsTargetEvent(eventTicker string, prefixes []string) bool {
	ticker := strings.ToUpper(eventTicker)
	for _, prefix := range prefixes {
		if prefix != "" && strings.HasPrefix(ticker, prefix) {
			return true
		}
	}
	return false
}

// CanonicalFrequency folds spellings of the 15-minute frequency onto
// "fifteen_min". Other values are lower-cased with '-' and ' ' mapped to '_'.
func CanonicalFrequency(value string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return ""
	}
	v = strings.NewReplacer("-", "_", " ", "_").Replace(v)
	switch v {
	case "15m", "15min", "15mins", "15_min", "15_mins", "15minutes", "15_minutes",
		"fifteenmin", "fifteen_mins":
		return "fifteen_min"
	}
	return v
}

// Static is a Source over a fixed market list.
type Static []model.Market

// Markets returns the list.
func (s Static) Markets(context.Context) ([]model.Market, error) {
	return s, nil
}
