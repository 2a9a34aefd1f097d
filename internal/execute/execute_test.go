package execute

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rickgao/kalshi-lagbot/internal/model"
	"github.com/rickgao/kalshi-lagbot/internal/strategy"
)

type recordingSink struct {
	orders []model.OrderRequest
	failAt int // 1-based; 0 never fails
}

func (s *recordingSink) PlaceOrder(ctx context.Context, o model.OrderRequest) (*model.OrderResponse, error) {
	s.orders = append(s.orders, o)
	if s.failAt > 0 && len(s.orders) == s.failAt {
		return nil, errors.New("rejected")
	}
	return &model.OrderResponse{OrderID: fmt.Sprintf("ord-%d", len(s.orders))}, nil
}

func decisions() []strategy.Decision {
	return []strategy.Decision{
		{
			Market: model.Market{Ticker: "A"},
			Orders: []model.OrderRequest{
				{Ticker: "A", Side: model.SideYes, Price: 0.40, Quantity: 1},
				{Ticker: "A", Side: model.SideNo, Price: 0.55, Quantity: 1},
			},
		},
		{
			Market: model.Market{Ticker: "B"},
			Orders: []model.OrderRequest{{Ticker: "B", Side: model.SideYes, Price: 0.95, Quantity: 1}},
		},
	}
}

func TestDryRunNeverCallsSink(t *testing.T) {
	sink := &recordingSink{}
	fills, err := New(sink, true, nil).Execute(context.Background(), decisions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sink.orders) != 0 {
		t.Errorf("sink called %d times in dry run", len(sink.orders))
	}
	if len(fills) != 3 || !fills[0].DryRun || fills[0].OrderID != "" {
		t.Errorf("fills = %+v", fills)
	}
}

func TestLivePlacesInOrder(t *testing.T) {
	sink := &recordingSink{}
	fills, err := New(sink, false, nil).Execute(context.Background(), decisions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sink.orders) != 3 {
		t.Fatalf("expected 3 orders, got %d", len(sink.orders))
	}
	if sink.orders[0].Side != model.SideYes || sink.orders[1].Side != model.SideNo || sink.orders[2].Ticker != "B" {
		t.Errorf("orders out of order: %+v", sink.orders)
	}
	if fills[2].OrderID != "ord-3" {
		t.Errorf("fills = %+v", fills)
	}
}

func TestLiveStopsAtFirstFailure(t *testing.T) {
	sink := &recordingSink{failAt: 2}
	fills, err := New(sink, false, nil).Execute(context.Background(), decisions())
	if err == nil {
		t.Fatal("expected error")
	}
	if len(sink.orders) != 2 {
		t.Errorf("expected execution to stop after 2 attempts, got %d", len(sink.orders))
	}
	if len(fills) != 1 {
		t.Errorf("expected 1 fill before failure, got %d", len(fills))
	}
}

func TestLiveWithoutSink(t *testing.T) {
	if _, err := New(nil, false, nil).Execute(context.Background(), decisions()); err == nil {
		t.Fatal("expected error without sink")
	}
}

type fakeCreator struct {
	tif string
}

func (f *fakeCreator) CreateOrder(ctx context.Context, o model.OrderRequest, timeInForce string) (*model.OrderResponse, error) {
	f.tif = timeInForce
	return &model.OrderResponse{OrderID: "x"}, nil
}

func TestKalshiSinkPassesTimeInForce(t *testing.T) {
	creator := &fakeCreator{}
	resp, err := KalshiSink(creator, "fill_or_kill").PlaceOrder(context.Background(), model.OrderRequest{Ticker: "A"})
	if err != nil || resp.OrderID != "x" {
		t.Fatalf("got %+v, %v", resp, err)
	}
	if creator.tif != "fill_or_kill" {
		t.Errorf("time in force = %q", creator.tif)
	}
}
