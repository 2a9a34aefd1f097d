// Package execute places the orders of qualifying decisions.
package execute

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rickgao/kalshi-lagbot/internal/model"
	"github.com/rickgao/kalshi-lagbot/internal/strategy"
)

// Sink accepts a single order.
type Sink interface {
	PlaceOrder(ctx context.Context, order model.OrderRequest) (*model.OrderResponse, error)
}

// OrderCreator is implemented by the Kalshi REST client.
type OrderCreator interface {
	CreateOrder(ctx context.Context, order model.OrderRequest, timeInForce string) (*model.OrderResponse, error)
}

// KalshiSink adapts an OrderCreator into a Sink with a fixed time in force.
func KalshiSink(client OrderCreator, timeInForce string) Sink {
	return kalshiSink{client: client, timeInForce: timeInForce}
}

type kalshiSink struct {
	client      OrderCreator
	timeInForce string
}

func (s kalshiSink) PlaceOrder(ctx context.Context, order model.OrderRequest) (*model.OrderResponse, error) {
	return s.client.CreateOrder(ctx, order, s.timeInForce)
}

// Fill records an order that was placed, or would have been in dry-run.
type Fill struct {
	Order   model.OrderRequest
	OrderID string
	DryRun  bool
}

// Executor submits decisions to a Sink. In dry-run mode the sink is never
// called.
type Executor struct {
	sink   Sink
	dryRun bool
	logger *slog.Logger
}

// New creates an Executor. sink may be nil when dryRun is set.
func New(sink Sink, dryRun bool, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		sink:   sink,
		dryRun: dryRun,
		logger: logger,
	}
}

// Execute places every order of every decision in order. It stops at the
// first failed order and returns the fills made so far.
func (e *Executor) Execute(ctx context.Context, decisions []strategy.Decision) ([]Fill, error) {
	var fills []Fill

	for _, d := range decisions {
		if e.dryRun {
			e.logger.Info("dry run decision",
				"ticker", d.Market.Ticker,
				"orders", len(d.Orders),
				"reason", d.Reason,
			)
			for _, o := range d.Orders {
				fills = append(fills, Fill{Order: o, DryRun: true})
			}
			continue
		}

		if e.sink == nil {
			return fills, errors.New("no order sink configured for live run")
		}

		for _, o := range d.Orders {
			resp, err := e.sink.PlaceOrder(ctx, o)
			if err != nil {
				return fills, fmt.Errorf("place %s order on %s: %w", o.Side, o.Ticker, err)
			}
			e.logger.Info("order placed",
				"ticker", o.Ticker,
				"side", string(o.Side),
				"price", o.Price,
				"count", o.Quantity,
				"order_id", resp.OrderID,
			)
			fills = append(fills, Fill{Order: o, OrderID: resp.OrderID})
		}
	}

	return fills, nil
}
