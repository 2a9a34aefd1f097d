package strategy

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/rickgao/kalshi-lagbot/internal/model"
	"github.com/rickgao/kalshi-lagbot/internal/signal"
)

var testNow = time.Date(2025, 1, 1, 15, 0, 0, 0, time.UTC)

func defaultConfig() Config {
	return Config{
		CryptoOnly:       true,
		CryptoAssets:     []string{"btc", "eth", "sol"},
		CombinedMaxPrice: 1.0,
		OrderCount:       1,
		LagEnabled:       true,
		LagThreshold:     0.08,
	}
}

func market(ticker string, ttl time.Duration, yes, no string) model.Market {
	return model.Market{
		Ticker:        ticker,
		Title:         "BTC above $105,000 in 15 min",
		EventTicker:   "KXBTC15M-25JAN011515",
		CloseTime:     testNow.Add(ttl),
		YesAskDollars: yes,
		NoAskDollars:  no,
	}
}

func TestFastPathSingleSide(t *testing.T) {
	e := NewEngine(defaultConfig())
	res := e.Evaluate(testNow, []model.Market{market("FAST", 30*time.Second, "0.95", "0.10")}, nil)

	if len(res.Decisions) != 1 {
		t.Fatalf("expected 1 decision, got %d", len(res.Decisions))
	}
	d := res.Decisions[0]
	if d.Path != PathFast {
		t.Errorf("path = %s, want fast", d.Path)
	}
	if len(d.Orders) != 1 || d.Orders[0].Side != model.SideYes || d.Orders[0].Price != 0.95 {
		t.Errorf("orders = %+v, want single YES at 0.95", d.Orders)
	}
	if !strings.Contains(d.Reason, "TTL 30s") {
		t.Errorf("reason = %q", d.Reason)
	}
}

func TestFastPathBothSidesInBand(t *testing.T) {
	e := NewEngine(defaultConfig())
	res := e.Evaluate(testNow, []model.Market{market("BOTH", 10*time.Second, "0.90", "0.97")}, nil)

	if len(res.Decisions) != 1 {
		t.Fatalf("expected 1 decision, got %d", len(res.Decisions))
	}
	orders := res.Decisions[0].Orders
	if len(orders) != 2 || orders[0].Side != model.SideYes || orders[1].Side != model.SideNo {
		t.Errorf("orders = %+v, want YES then NO", orders)
	}
}

func TestSlowPath(t *testing.T) {
	cfg := defaultConfig()
	cfg.OrderCount = 3
	e := NewEngine(cfg)
	res := e.Evaluate(testNow, []model.Market{market("SLOW", 500*time.Second, "0.40", "0.55")}, nil)

	if len(res.Decisions) != 1 {
		t.Fatalf("expected 1 decision, got %d", len(res.Decisions))
	}
	d := res.Decisions[0]
	if d.Path != PathSlow {
		t.Errorf("path = %s, want slow", d.Path)
	}
	want := []model.OrderRequest{
		{Ticker: "SLOW", Side: model.SideYes, Price: 0.40, Quantity: 3},
		{Ticker: "SLOW", Side: model.SideNo, Price: 0.55, Quantity: 3},
	}
	if !reflect.DeepEqual(d.Orders, want) {
		t.Errorf("orders = %+v, want %+v", d.Orders, want)
	}
	if !strings.Contains(d.Reason, "= 0.9500") {
		t.Errorf("reason = %q", d.Reason)
	}
}

func TestFastBandOutsideWindowFallsToSlow(t *testing.T) {
	e := NewEngine(defaultConfig())
	res := e.Evaluate(testNow, []model.Market{market("LATE", 120*time.Second, "0.95", "0.10")}, nil)

	if len(res.Decisions) != 0 {
		t.Fatalf("combined 1.05 outside the fast window should not qualify, got %+v", res.Decisions)
	}
	last := res.Events[len(res.Events)-1]
	if last.Kind != EventSkip || last.Skip != SkipNotQualified {
		t.Errorf("last event = %+v", last)
	}
}

func TestSkips(t *testing.T) {
	tests := []struct {
		name   string
		cfg    func(*Config)
		market model.Market
		want   SkipReason
	}{
		{
			name:   "closed",
			market: market("CLOSED", -5*time.Second, "0.40", "0.55"),
			want:   SkipClosed,
		},
		{
			name:   "closed in band",
			market: market("CLOSED", -5*time.Second, "0.95", "0.95"),
			want:   SkipClosed,
		},
		{
			name:   "missing yes",
			market: market("NOYES", time.Minute*5, "", "0.55"),
			want:   SkipMissingPrice,
		},
		{
			name:   "unparsable no",
			market: market("BADNO", time.Minute*5, "0.40", "n/a"),
			want:   SkipMissingPrice,
		},
		{
			name: "interval",
			market: model.Market{
				Ticker: "HOURLY", Title: "BTC above 100,000 at 4pm", EventTicker: "KXBTCD",
				CloseTime: testNow.Add(time.Hour), YesAskDollars: "0.40", NoAskDollars: "0.50",
			},
			want: SkipInterval,
		},
		{
			name: "not crypto",
			market: model.Market{
				Ticker: "RAIN", Title: "Rain in 15 min", CloseTime: testNow.Add(time.Minute),
				YesAskDollars: "0.40", NoAskDollars: "0.50",
			},
			want: SkipNotCrypto,
		},
		{
			name: "btc only",
			cfg:  func(c *Config) { c.BTCOnly = true },
			market: model.Market{
				Ticker: "ETH", Title: "ETH above 3,000 in 15 min", CloseTime: testNow.Add(time.Minute),
				YesAskDollars: "0.40", NoAskDollars: "0.50",
			},
			want: SkipNotBTC,
		},
		{
			name:   "combined too high",
			market: market("RICH", 5*time.Minute, "0.60", "0.45"),
			want:   SkipNotQualified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			if tt.cfg != nil {
				tt.cfg(&cfg)
			}
			res := NewEngine(cfg).Evaluate(testNow, []model.Market{tt.market}, nil)
			if len(res.Decisions) != 0 {
				t.Fatalf("expected skip, got %+v", res.Decisions)
			}
			var got SkipReason
			for _, ev := range res.Events {
				if ev.Kind == EventSkip {
					got = ev.Skip
				}
			}
			if got != tt.want {
				t.Errorf("skip = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCryptoOnlyDisabled(t *testing.T) {
	cfg := defaultConfig()
	cfg.CryptoOnly = false
	m := model.Market{
		Ticker: "RAIN", Title: "Rain in 15 min", CloseTime: testNow.Add(5 * time.Minute),
		YesAskDollars: "0.40", NoAskDollars: "0.50",
	}
	res := NewEngine(cfg).Evaluate(testNow, []model.Market{m}, nil)
	if len(res.Decisions) != 1 {
		t.Errorf("expected decision with crypto-only off, got %d", len(res.Decisions))
	}
}

func TestPreservesInputOrder(t *testing.T) {
	markets := []model.Market{
		market("A", 500*time.Second, "0.40", "0.55"),
		market("SKIP", -1*time.Second, "0.40", "0.55"),
		market("B", 30*time.Second, "0.10", "0.93"),
		market("C", 600*time.Second, "0.30", "0.30"),
	}
	res := NewEngine(defaultConfig()).Evaluate(testNow, markets, nil)

	var got []string
	for _, d := range res.Decisions {
		got = append(got, d.Market.Ticker)
	}
	if want := []string{"A", "B", "C"}; !reflect.DeepEqual(got, want) {
		t.Errorf("tickers = %v, want %v", got, want)
	}
	if orders := res.Decisions[1].Orders; len(orders) != 1 || orders[0].Side != model.SideNo {
		t.Errorf("B orders = %+v, want single NO", orders)
	}
}

func TestDeterministic(t *testing.T) {
	markets := []model.Market{
		market("A", 500*time.Second, "0.40", "0.55"),
		market("B", 30*time.Second, "0.95", "0.10"),
		market("C", -5*time.Second, "0.40", "0.55"),
	}
	refs := model.References{"btc": {Asset: "btc", ReferencePrice: 105500}}
	e := NewEngine(defaultConfig())

	first := e.Evaluate(testNow, markets, refs)
	second := e.Evaluate(testNow, markets, refs)
	if !reflect.DeepEqual(first, second) {
		t.Error("repeated evaluation produced different results")
	}
}

func TestLagSignalAnnotation(t *testing.T) {
	refs := model.References{"btc": {Asset: "btc", ReferencePrice: 105500}}
	res := NewEngine(defaultConfig()).Evaluate(testNow,
		[]model.Market{market("SIG", 500*time.Second, "0.40", "0.55")}, refs)

	if len(res.Decisions) != 1 {
		t.Fatalf("expected 1 decision, got %d", len(res.Decisions))
	}
	d := res.Decisions[0]
	if d.Signal == nil || d.Signal.Direction != signal.Above || d.Signal.Strike != 105000 {
		t.Fatalf("signal = %+v", d.Signal)
	}
	if !strings.Contains(d.Reason, "cex BTC above 105000.00") {
		t.Errorf("reason = %q", d.Reason)
	}

	var sawSignal bool
	for _, ev := range res.Events {
		if ev.Kind == EventSignal {
			sawSignal = true
		}
	}
	if !sawSignal {
		t.Error("expected a signal event")
	}
}

func TestRequireSignal(t *testing.T) {
	cfg := defaultConfig()
	cfg.RequireSignal = true

	t.Run("no references", func(t *testing.T) {
		res := NewEngine(cfg).Evaluate(testNow,
			[]model.Market{market("X", 500*time.Second, "0.40", "0.55")}, nil)
		if len(res.Decisions) != 0 {
			t.Fatal("expected skip without signal")
		}
		last := res.Events[len(res.Events)-1]
		if last.Skip != SkipSignalRequired || last.Message != "no lag signal" {
			t.Errorf("last event = %+v", last)
		}
	})

	t.Run("signal below threshold", func(t *testing.T) {
		// Reference at strike gives a model probability of 0.5.
		refs := model.References{"btc": {Asset: "btc", ReferencePrice: 105000}}
		res := NewEngine(cfg).Evaluate(testNow,
			[]model.Market{market("X", 500*time.Second, "0.45", "0.50")}, refs)
		if len(res.Decisions) != 0 {
			t.Fatal("expected skip with weak signal")
		}
	})

	t.Run("signal hit", func(t *testing.T) {
		refs := model.References{"btc": {Asset: "btc", ReferencePrice: 105500}}
		res := NewEngine(cfg).Evaluate(testNow,
			[]model.Market{market("X", 500*time.Second, "0.40", "0.55")}, refs)
		if len(res.Decisions) != 1 {
			t.Fatal("expected decision with strong signal")
		}
	})

	t.Run("lag disabled ignores requirement", func(t *testing.T) {
		c := cfg
		c.LagEnabled = false
		res := NewEngine(c).Evaluate(testNow,
			[]model.Market{market("X", 500*time.Second, "0.40", "0.55")}, nil)
		if len(res.Decisions) != 1 {
			t.Fatal("expected decision when lag scanning is off")
		}
	})
}

func TestAmbiguousDirectionFlagged(t *testing.T) {
	m := market("AMB", 500*time.Second, "0.40", "0.55")
	m.Title = "BTC above 104,000 or below 106,000 in 15 min"
	refs := model.References{"btc": {Asset: "btc", ReferencePrice: 105000}}

	res := NewEngine(defaultConfig()).Evaluate(testNow, []model.Market{m}, refs)

	var flagged bool
	for _, ev := range res.Events {
		if ev.Kind == EventSignalAmbiguous {
			flagged = true
		}
	}
	if !flagged {
		t.Error("expected ambiguous signal event")
	}
}

func TestInvalidPatternFallsBack(t *testing.T) {
	cfg := defaultConfig()
	cfg.IntervalPattern = "(["
	res := NewEngine(cfg).Evaluate(testNow,
		[]model.Market{market("A", 500*time.Second, "0.40", "0.55")}, nil)

	if len(res.Events) == 0 || res.Events[0].Kind != EventPatternFallback {
		t.Fatalf("expected pattern fallback event first, got %+v", res.Events)
	}
	if len(res.Decisions) != 1 {
		t.Errorf("default pattern should still match, got %d decisions", len(res.Decisions))
	}
}
