package reference

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rickgao/kalshi-lagbot/internal/model"
	"github.com/rickgao/kalshi-lagbot/internal/venue"
)

func TestMedian(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
		ok     bool
	}{
		{"empty", nil, 0, false},
		{"single", []float64{5}, 5, true},
		{"two", []float64{100, 102}, 101, true},
		{"odd unsorted", []float64{3, 1, 2}, 2, true},
		{"even unsorted", []float64{4, 1, 3, 2}, 2.5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Median(tt.values)
			if ok != tt.ok || got != tt.want {
				t.Errorf("Median(%v) = %v, %v; want %v, %v", tt.values, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestMedianDoesNotMutateInput(t *testing.T) {
	values := []float64{3, 1, 2}
	Median(values)
	if values[0] != 3 || values[1] != 1 || values[2] != 2 {
		t.Errorf("input mutated: %v", values)
	}
}

func ok(v string, mid float64) venue.Result {
	return venue.Result{Venue: v, Quote: model.VenueQuote{Venue: v, Mid: mid}}
}

func failed(v string) venue.Result {
	return venue.Result{Venue: v, Err: &venue.FetchError{Venue: v, Kind: venue.KindTransport, Err: errors.New("down")}}
}

func TestBuild(t *testing.T) {
	t.Run("quorum met", func(t *testing.T) {
		ref, built := Build("BTC", []venue.Result{ok("coinbase", 100), ok("kraken", 102), failed("binance")}, 2)
		if !built {
			t.Fatal("expected reference")
		}
		if ref.Asset != "btc" || ref.ReferencePrice != 101 || len(ref.Quotes) != 2 {
			t.Errorf("got %+v", ref)
		}
	})

	t.Run("quorum not met", func(t *testing.T) {
		_, built := Build("btc", []venue.Result{ok("coinbase", 100), failed("kraken"), failed("binance")}, 2)
		if built {
			t.Error("expected no reference")
		}
	})

	t.Run("invalid mids discarded", func(t *testing.T) {
		_, built := Build("btc", []venue.Result{ok("coinbase", 100), ok("kraken", 0)}, 2)
		if built {
			t.Error("expected zero mid to be discarded")
		}
	})

	t.Run("min sources floor", func(t *testing.T) {
		ref, built := Build("eth", []venue.Result{ok("coinbase", 3000)}, 0)
		if !built || ref.ReferencePrice != 3000 {
			t.Errorf("got %+v, %v", ref, built)
		}
	})

	t.Run("all failed", func(t *testing.T) {
		_, built := Build("eth", []venue.Result{failed("coinbase")}, 1)
		if built {
			t.Error("expected no reference")
		}
	})
}

type fakeSource struct {
	name  string
	mid   float64
	err   error
	delay time.Duration
	calls *atomic.Int32
}

func (f fakeSource) Name() string { return f.name }

func (f fakeSource) Quote(ctx context.Context, symbol string) (model.VenueQuote, error) {
	if f.calls != nil {
		f.calls.Add(1)
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return model.VenueQuote{}, ctx.Err()
		}
	}
	if f.err != nil {
		return model.VenueQuote{}, f.err
	}
	return model.VenueQuote{Venue: f.name, Mid: f.mid}, nil
}

func TestScannerScan(t *testing.T) {
	var calls atomic.Int32
	assets := []Asset{
		{
			Name: "BTC",
			Legs: []Leg{
				{Source: fakeSource{name: "coinbase", mid: 100000, calls: &calls}, Symbol: "BTC-USD"},
				{Source: fakeSource{name: "kraken", mid: 100010, calls: &calls}, Symbol: "XBTUSD"},
				{Source: fakeSource{name: "binance", err: errors.New("down"), calls: &calls}, Symbol: "BTCUSDT"},
			},
		},
		{
			Name: "eth",
			Legs: []Leg{
				{Source: fakeSource{name: "coinbase", mid: 3000, calls: &calls}, Symbol: "ETH-USD"},
				{Source: fakeSource{name: "kraken", err: errors.New("down"), calls: &calls}, Symbol: "ETHUSD"},
			},
		},
	}

	scan := NewScanner(2, time.Second, nil).Scan(context.Background(), assets)

	if got := calls.Load(); got != 5 {
		t.Errorf("expected every leg fetched, got %d calls", got)
	}

	btc, found := scan.References["btc"]
	if !found {
		t.Fatal("expected btc reference")
	}
	if btc.ReferencePrice != 100005 {
		t.Errorf("btc reference = %v, want 100005", btc.ReferencePrice)
	}
	if _, found := scan.References["eth"]; found {
		t.Error("eth should not meet quorum")
	}

	if len(scan.Results["btc"]) != 3 || len(scan.Results["eth"]) != 2 {
		t.Errorf("unexpected results layout: %+v", scan.Results)
	}
	if scan.Results["btc"][2].OK() {
		t.Error("binance leg should carry its error")
	}
}

func TestScannerSlowLegDoesNotBlockOthers(t *testing.T) {
	assets := []Asset{{
		Name: "btc",
		Legs: []Leg{
			{Source: fakeSource{name: "coinbase", mid: 100}, Symbol: "a"},
			{Source: fakeSource{name: "kraken", mid: 102}, Symbol: "b"},
			{Source: fakeSource{name: "binance", mid: 500, delay: time.Minute}, Symbol: "c"},
		},
	}}

	start := time.Now()
	scan := NewScanner(2, 50*time.Millisecond, nil).Scan(context.Background(), assets)
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("scan took %v", elapsed)
	}

	ref, found := scan.References["btc"]
	if !found || ref.ReferencePrice != 101 {
		t.Errorf("got %+v, %v", ref, found)
	}
	if r := scan.Results["btc"][2]; r.OK() || r.Err.Kind != venue.KindTransport {
		t.Errorf("slow leg = %+v, want transport error", r)
	}
}
