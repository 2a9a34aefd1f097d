package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rickgao/kalshi-lagbot/internal/execute"
	"github.com/rickgao/kalshi-lagbot/internal/strategy"
)

// DB is the subset of *pgxpool.Pool the journal uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

const schema = `
CREATE TABLE IF NOT EXISTS lagbot_runs (
	run_id      UUID PRIMARY KEY,
	started_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL,
	dry_run     BOOLEAN NOT NULL,
	markets     INTEGER NOT NULL,
	decisions   INTEGER NOT NULL,
	error       TEXT
);

CREATE TABLE IF NOT EXISTS lagbot_decisions (
	run_id          UUID NOT NULL REFERENCES lagbot_runs (run_id),
	seq             INTEGER NOT NULL,
	ticker          TEXT NOT NULL,
	title           TEXT NOT NULL,
	path            TEXT NOT NULL,
	reason          TEXT NOT NULL,
	close_time      TIMESTAMPTZ NOT NULL,
	signal_asset    TEXT,
	signal_strike   DOUBLE PRECISION,
	signal_lag      DOUBLE PRECISION,
	PRIMARY KEY (run_id, seq)
);

CREATE TABLE IF NOT EXISTS lagbot_orders (
	run_id    UUID NOT NULL REFERENCES lagbot_runs (run_id),
	seq       INTEGER NOT NULL,
	ticker    TEXT NOT NULL,
	side      TEXT NOT NULL,
	price     DOUBLE PRECISION NOT NULL,
	quantity  BIGINT NOT NULL,
	order_id  TEXT,
	dry_run   BOOLEAN NOT NULL,
	PRIMARY KEY (run_id, seq)
);
`

// Run is everything recorded about one run.
type Run struct {
	ID         uuid.UUID
	StartedAt  time.Time
	FinishedAt time.Time
	DryRun     bool
	Markets    int
	Decisions  []strategy.Decision
	Fills      []execute.Fill
	Err        error
}

// Journal writes runs to the database.
type Journal struct {
	db     DB
	logger *slog.Logger
}

// New creates a Journal.
func New(db DB, logger *slog.Logger) *Journal {
	if logger == nil {
		logger = slog.Default()
	}
	return &Journal{db: db, logger: logger}
}

// EnsureSchema creates the journal tables if they do not exist.
func (j *Journal) EnsureSchema(ctx context.Context) error {
	if _, err := j.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create journal schema: %w", err)
	}
	return nil
}

type runRow struct {
	RunID      uuid.UUID
	StartedAt  time.Time
	FinishedAt time.Time
	DryRun     bool
	Markets    int
	Decisions  int
	Error      *string
}

type decisionRow struct {
	RunID        uuid.UUID
	Seq          int
	Ticker       string
	Title        string
	Path         string
	Reason       string
	CloseTime    time.Time
	SignalAsset  *string
	SignalStrike *float64
	SignalLag    *float64
}

type orderRow struct {
	RunID    uuid.UUID
	Seq      int
	Ticker   string
	Side     string
	Price    float64
	Quantity int64
	OrderID  *string
	DryRun   bool
}

func transformRun(r Run) runRow {
	row := runRow{
		RunID:      r.ID,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		DryRun:     r.DryRun,
		Markets:    r.Markets,
		Decisions:  len(r.Decisions),
	}
	if r.Err != nil {
		msg := r.Err.Error()
		row.Error = &msg
	}
	return row
}

func transformDecisions(id uuid.UUID, decisions []strategy.Decision) []decisionRow {
	rows := make([]decisionRow, 0, len(decisions))
	for i, d := range decisions {
		row := decisionRow{
			RunID:     id,
			Seq:       i,
			Ticker:    d.Market.Ticker,
			Title:     d.Market.Title,
			Path:      string(d.Path),
			Reason:    d.Reason,
			CloseTime: d.Market.CloseTime,
		}
		if s := d.Signal; s != nil {
			asset, strike, lag := s.Asset, s.Strike, s.Lag
			row.SignalAsset = &asset
			row.SignalStrike = &strike
			row.SignalLag = &lag
		}
		rows = append(rows, row)
	}
	return rows
}

func transformFills(id uuid.UUID, fills []execute.Fill) []orderRow {
	rows := make([]orderRow, 0, len(fills))
	for i, f := range fills {
		row := orderRow{
			RunID:    id,
			Seq:      i,
			Ticker:   f.Order.Ticker,
			Side:     string(f.Order.Side),
			Price:    f.Order.Price,
			Quantity: f.Order.Quantity,
			DryRun:   f.DryRun,
		}
		if f.OrderID != "" {
			orderID := f.OrderID
			row.OrderID = &orderID
		}
		rows = append(rows, row)
	}
	return rows
}

// Record writes the run, its decisions and its orders in one batch.
func (j *Journal) Record(ctx context.Context, r Run) error {
	if r.ID == uuid.Nil {
		return errors.New("record run: missing run id")
	}

	start := time.Now()
	run := transformRun(r)
	decisions := transformDecisions(r.ID, r.Decisions)
	orders := transformFills(r.ID, r.Fills)

	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO lagbot_runs (run_id, started_at, finished_at, dry_run, markets, decisions, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (run_id) DO NOTHING
	`, run.RunID, run.StartedAt, run.FinishedAt, run.DryRun, run.Markets, run.Decisions, run.Error)

	for _, d := range decisions {
		batch.Queue(`
			INSERT INTO lagbot_decisions (run_id, seq, ticker, title, path, reason, close_time, signal_asset, signal_strike, signal_lag)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (run_id, seq) DO NOTHING
		`, d.RunID, d.Seq, d.Ticker, d.Title, d.Path, d.Reason, d.CloseTime, d.SignalAsset, d.SignalStrike, d.SignalLag)
	}

	for _, o := range orders {
		batch.Queue(`
			INSERT INTO lagbot_orders (run_id, seq, ticker, side, price, quantity, order_id, dry_run)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (run_id, seq) DO NOTHING
		`, o.RunID, o.Seq, o.Ticker, o.Side, o.Price, o.Quantity, o.OrderID, o.DryRun)
	}

	results := j.db.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("record run %s: %w", r.ID, err)
		}
	}

	j.logger.Debug("journaled run",
		"run_id", r.ID,
		"decisions", len(decisions),
		"orders", len(orders),
		"duration", time.Since(start),
	)

	return nil
}
