// Package runner executes one bot pass: exchange check, spot references,
// market discovery, decisions, execution, journaling and the run summary.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/kalshi-lagbot/internal/api"
	"github.com/rickgao/kalshi-lagbot/internal/discovery"
	"github.com/rickgao/kalshi-lagbot/internal/execute"
	"github.com/rickgao/kalshi-lagbot/internal/journal"
	"github.com/rickgao/kalshi-lagbot/internal/model"
	"github.com/rickgao/kalshi-lagbot/internal/reference"
	"github.com/rickgao/kalshi-lagbot/internal/strategy"
	"github.com/rickgao/kalshi-lagbot/internal/summary"
)

// StatusChecker reports whether the exchange is accepting orders.
type StatusChecker interface {
	GetExchangeStatus(ctx context.Context) (*api.ExchangeStatusResponse, error)
}

// Scanner produces spot references.
type Scanner interface {
	Scan(ctx context.Context, assets []reference.Asset) reference.Scan
}

// Recorder persists a finished run.
type Recorder interface {
	Record(ctx context.Context, r journal.Run) error
}

// Config holds runner settings.
type Config struct {
	DryRun        bool
	CheckExchange bool
	LagEnabled    bool
	LogDecisions  bool
	MaxHighlights int
}

// Deps are the collaborators of a run. Status, Scanner, Journal and Posters
// are optional.
type Deps struct {
	Status   StatusChecker
	Scanner  Scanner
	Assets   []reference.Asset
	Markets  discovery.Source
	Engine   *strategy.Engine
	Executor *execute.Executor
	Journal  Recorder
	Posters  []summary.Poster
	Now      func() time.Time
}

// Outcome summarizes a finished pass.
type Outcome struct {
	RunID     uuid.UUID
	Markets   int
	Decisions []strategy.Decision
	Fills     []execute.Fill
	Events    []strategy.Event
	Evaluated bool
	Err       error
}

// Runner executes passes.
type Runner struct {
	cfg    Config
	deps   Deps
	logger *slog.Logger
}

// New creates a Runner.
func New(cfg Config, deps Deps, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Markets == nil {
		deps.Markets = discovery.Static(nil)
	}
	return &Runner{cfg: cfg, deps: deps, logger: logger}
}

// RunOnce executes a single pass, journals it and posts its summary.
// Outcome.Err holds the pass's fatal error, if any.
func (r *Runner) RunOnce(ctx context.Context) Outcome {
	started := r.deps.Now()
	out := Outcome{RunID: uuid.New()}

	logger := r.logger.With("run_id", out.RunID.String())
	logger.Info("starting run", "dry_run", r.cfg.DryRun)

	out.Err = r.pass(ctx, logger, started, &out)
	if out.Err != nil {
		logger.Error("run failed", "err", out.Err)
	}

	if r.deps.Journal != nil {
		err := r.deps.Journal.Record(ctx, journal.Run{
			ID:         out.RunID,
			StartedAt:  started,
			FinishedAt: r.deps.Now(),
			DryRun:     r.cfg.DryRun,
			Markets:    out.Markets,
			Decisions:  out.Decisions,
			Fills:      out.Fills,
			Err:        out.Err,
		})
		if err != nil {
			logger.Warn("journal write failed", "err", err)
		}
	}

	if len(r.deps.Posters) > 0 {
		text := summary.Render(summary.Report{
			DryRun:           r.cfg.DryRun,
			Time:             started,
			Opportunities:    len(out.Decisions),
			HasOpportunities: out.Evaluated,
			Err:              out.Err,
			Events:           out.Events,
		}, r.cfg.MaxHighlights)
		_ = summary.Publish(ctx, text, r.deps.Posters, logger)
	}

	return out
}

func (r *Runner) pass(ctx context.Context, logger *slog.Logger, now time.Time, out *Outcome) error {
	if !r.cfg.DryRun && r.cfg.CheckExchange && r.deps.Status != nil {
		if err := r.checkExchange(ctx, logger); err != nil {
			return err
		}
	}

	var refs model.References
	if r.cfg.LagEnabled && r.deps.Scanner != nil && len(r.deps.Assets) > 0 {
		scan := r.deps.Scanner.Scan(ctx, r.deps.Assets)
		refs = scan.References
		logReferences(logger, refs)
	}

	logger.Info("fetching markets")
	markets, err := r.deps.Markets.Markets(ctx)
	if err != nil {
		return fmt.Errorf("discover markets: %w", err)
	}
	out.Markets = len(markets)
	if len(markets) == 0 {
		logger.Info("no markets loaded")
		return nil
	}

	res := r.deps.Engine.Evaluate(now, markets, refs)
	out.Decisions = res.Decisions
	out.Events = res.Events
	out.Evaluated = true
	if r.cfg.LogDecisions {
		logEvents(logger, res.Events)
	}
	logger.Info("opportunities found", "count", len(res.Decisions))

	if len(res.Decisions) == 0 {
		logger.Info("no qualifying opportunities")
		return nil
	}

	fills, err := r.deps.Executor.Execute(ctx, res.Decisions)
	out.Fills = fills
	if err != nil {
		return fmt.Errorf("execute orders: %w", err)
	}
	return nil
}

func (r *Runner) checkExchange(ctx context.Context, logger *slog.Logger) error {
	logger.Info("checking exchange status")
	status, err := r.deps.Status.GetExchangeStatus(ctx)
	if err != nil {
		return err
	}
	if !status.Tradable() {
		resume := status.EstimatedResumeTime
		if resume == "" {
			resume = "unknown"
		}
		return fmt.Errorf("exchange not active (exchange_active=%t, trading_active=%t). resume: %s",
			status.ExchangeActive, status.TradingActive, resume)
	}
	return nil
}

func logReferences(logger *slog.Logger, refs model.References) {
	assets := make([]string, 0, len(refs))
	for a := range refs {
		assets = append(assets, a)
	}
	sort.Strings(assets)

	for _, a := range assets {
		ref := refs[a]
		venues := make([]string, 0, len(ref.Quotes))
		for _, q := range ref.Quotes {
			venues = append(venues, fmt.Sprintf("%s:%.2f", q.Venue, q.Mid))
		}
		logger.Info("cex reference",
			"asset", ref.Asset,
			"price", ref.ReferencePrice,
			"venues", len(ref.Quotes),
			"quotes", strings.Join(venues, ", "),
		)
	}
}

func logEvents(logger *slog.Logger, events []strategy.Event) {
	for _, ev := range events {
		attrs := []any{"kind", string(ev.Kind)}
		if ev.Ticker != "" {
			attrs = append(attrs, "ticker", ev.Ticker, "ttl", ev.SecondsToClose)
		}
		if ev.Skip != "" {
			attrs = append(attrs, "skip", string(ev.Skip))
		}
		if ev.Path != "" {
			attrs = append(attrs, "path", string(ev.Path))
		}
		attrs = append(attrs, "detail", ev.Message)
		logger.Info("strategy event", attrs...)
	}
}

// Loop runs a pass immediately and then every interval until ctx is done.
func (r *Runner) Loop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.RunOnce(ctx)
		}
	}
}
