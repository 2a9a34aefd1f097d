package reference

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rickgao/kalshi-lagbot/internal/model"
	"github.com/rickgao/kalshi-lagbot/internal/venue"
)

// Leg pairs a venue source with the symbol it quotes for one asset.
type Leg struct {
	Source venue.Source
	Symbol string
}

// Asset lists the venue legs used to price one asset.
type Asset struct {
	Name string
	Legs []Leg
}

// Scan is the outcome of one scan: references that met quorum plus every
// raw fetch result keyed by asset, for diagnostics.
type Scan struct {
	References model.References
	Results    map[string][]venue.Result
}

// Scanner fetches all venue legs for a set of assets concurrently.
type Scanner struct {
	minSources int
	timeout    time.Duration
	logger     *slog.Logger
}

// NewScanner creates a scanner. timeout bounds each individual fetch.
func NewScanner(minSources int, timeout time.Duration, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = venue.DefaultTimeout
	}
	return &Scanner{
		minSources: minSources,
		timeout:    timeout,
		logger:     logger,
	}
}

// Scan fetches every leg of every asset in parallel and waits for all of
// them before aggregating. A failing leg never cancels its siblings.
func (s *Scanner) Scan(ctx context.Context, assets []Asset) Scan {
	type slot struct {
		asset string
		index int
	}

	results := make(map[string][]venue.Result, len(assets))
	var slots []slot
	var legs []Leg
	for _, a := range assets {
		name := strings.ToLower(a.Name)
		results[name] = make([]venue.Result, len(a.Legs))
		for i, leg := range a.Legs {
			slots = append(slots, slot{asset: name, index: i})
			legs = append(legs, leg)
		}
	}

	fetched := make([]venue.Result, len(legs))
	var g errgroup.Group
	for i, leg := range legs {
		g.Go(func() error {
			fetched[i] = venue.Fetch(ctx, leg.Source, leg.Symbol, s.timeout)
			return nil
		})
	}
	_ = g.Wait()

	for i, sl := range slots {
		results[sl.asset][sl.index] = fetched[i]
	}

	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	refs := make(model.References, len(results))
	for _, name := range names {
		for _, r := range results[name] {
			if !r.OK() {
				s.logger.Debug("venue quote dropped",
					"asset", name,
					"venue", r.Venue,
					"symbol", r.Symbol,
					"kind", string(r.Err.Kind),
					"error", r.Err.Err,
				)
			}
		}

		ref, ok := Build(name, results[name], s.minSources)
		if !ok {
			s.logger.Info("reference quorum not met",
				"asset", name,
				"min_sources", s.minSources,
				"ok_sources", countOK(results[name]),
			)
			continue
		}
		refs[name] = ref
	}

	return Scan{References: refs, Results: results}
}

func countOK(results []venue.Result) int {
	n := 0
	for _, r := range results {
		if r.OK() {
			n++
		}
	}
	return n
}
