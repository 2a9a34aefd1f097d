package strategy

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/kalshi-lagbot/internal/classify"
	"github.com/rickgao/kalshi-lagbot/internal/model"
	"github.com/rickgao/kalshi-lagbot/internal/signal"
)

// FastWindowSeconds is the time-to-close under which the fast path applies.
const FastWindowSeconds = 60

var (
	bandLow  = decimal.RequireFromString("0.90")
	bandHigh = decimal.RequireFromString("0.97")
)

// Path names the qualification rule that fired.
type Path string

const (
	PathFast Path = "fast"
	PathSlow Path = "slow"
)

// Config holds the engine settings.
type Config struct {
	BTCOnly          bool
	CryptoOnly       bool
	CryptoAssets     []string
	IntervalPattern  string
	CombinedMaxPrice float64
	OrderCount       int64
	LagEnabled       bool
	LagThreshold     float64
	RequireSignal    bool
}

// Decision is a qualifying market and the orders to place for it. Orders
// are YES before NO.
type Decision struct {
	Market model.Market
	Path   Path
	Orders []model.OrderRequest
	Reason string
	Signal *signal.LagSignal
}

// Result is the output of one Evaluate call.
type Result struct {
	Decisions []Decision
	Events    []Event
}

// Engine evaluates market snapshots. It holds no mutable state.
type Engine struct {
	cfg        Config
	interval   *classify.Interval
	patternErr bool
	maxPrice   decimal.Decimal
}

// NewEngine creates an engine. A malformed interval pattern is replaced by
// the default and reported as an event on every Evaluate.
func NewEngine(cfg Config) *Engine {
	if cfg.OrderCount < 1 {
		cfg.OrderCount = 1
	}
	interval, ok := classify.CompileInterval(cfg.IntervalPattern)
	return &Engine{
		cfg:        cfg,
		interval:   interval,
		patternErr: !ok,
		maxPrice:   decimal.NewFromFloat(cfg.CombinedMaxPrice),
	}
}

// Evaluate returns decisions for markets in input order.
func (e *Engine) Evaluate(now time.Time, markets []model.Market, refs model.References) Result {
	var res Result
	if e.patternErr {
		res.Events = append(res.Events, Event{
			Kind:    EventPatternFallback,
			Message: fmt.Sprintf("invalid interval pattern %q, using %s", e.cfg.IntervalPattern, e.interval.Pattern()),
		})
	}

	for _, m := range markets {
		if d, ok := e.evaluate(now, m, refs, &res.Events); ok {
			res.Decisions = append(res.Decisions, d)
		}
	}
	return res
}

func (e *Engine) evaluate(now time.Time, m model.Market, refs model.References, events *[]Event) (Decision, bool) {
	ttl := int64(m.CloseTime.Sub(now) / time.Second)
	base := Event{
		Ticker:         m.Ticker,
		Title:          m.Title,
		SecondsToClose: ttl,
		YesAsk:         strings.TrimSpace(m.YesAskDollars),
		NoAsk:          strings.TrimSpace(m.NoAskDollars),
	}

	emit := func(ev Event) {
		*events = append(*events, ev)
	}
	skip := func(reason SkipReason, msg string, ev Event) {
		ev.Kind = EventSkip
		ev.Skip = reason
		ev.Message = msg
		emit(ev)
	}

	evaluate := base
	evaluate.Kind = EventEvaluate
	evaluate.Message = fmt.Sprintf("subtitle=%q event=%q close=%s yes=%q no=%q",
		m.Subtitle, m.EventTicker, m.CloseTime.UTC().Format(time.RFC3339), m.YesAskDollars, m.NoAskDollars)
	emit(evaluate)

	if e.cfg.BTCOnly && !classify.IsBTCRelated(m) {
		skip(SkipNotBTC, "not BTC-related", base)
		return Decision{}, false
	}
	if e.cfg.CryptoOnly && !classify.IsCryptoRelated(m, e.cfg.CryptoAssets) {
		skip(SkipNotCrypto, "not crypto-related", base)
		return Decision{}, false
	}
	if !e.interval.Match(m) {
		skip(SkipInterval, "not 15-minute interval", base)
		return Decision{}, false
	}
	if ttl < 0 {
		skip(SkipClosed, fmt.Sprintf("market already closed (%ds)", ttl), base)
		return Decision{}, false
	}

	yes, yesOK := parseAsk(m.YesAskDollars)
	no, noOK := parseAsk(m.NoAskDollars)
	if !yesOK || !noOK {
		skip(SkipMissingPrice, "missing or invalid YES/NO ask", base)
		return Decision{}, false
	}

	combined := yes.Add(no)
	priced := base
	priced.Yes = yes.InexactFloat64()
	priced.No = no.InexactFloat64()
	priced.Combined = combined.InexactFloat64()
	priced.HasPrices = true

	var sig *signal.LagSignal
	if e.cfg.LagEnabled && len(refs) > 0 {
		if s, ok := signal.Compute(m, refs, priced.Yes); ok {
			sig = &s
			ev := priced
			ev.Kind = EventSignal
			ev.Signal = sig
			ev.Message = s.String()
			emit(ev)
			if s.Ambiguous {
				ev.Kind = EventSignalAmbiguous
				ev.Message = "text matches both above and below phrasing; using above"
				emit(ev)
			}
		}
	}

	if e.cfg.LagEnabled && e.cfg.RequireSignal && (sig == nil || !sig.Hit(e.cfg.LagThreshold)) {
		msg := "no lag signal"
		if sig != nil {
			msg = fmt.Sprintf("lag %.3f below threshold %.3f", sig.AbsLag, e.cfg.LagThreshold)
		}
		ev := priced
		ev.Signal = sig
		skip(SkipSignalRequired, msg, ev)
		return Decision{}, false
	}

	yesInBand := inBand(yes)
	noInBand := inBand(no)
	fast := ttl < FastWindowSeconds && (yesInBand || noInBand)

	var (
		path   Path
		orders []model.OrderRequest
	)
	switch {
	case fast:
		path = PathFast
		if yesInBand {
			orders = append(orders, e.order(m, model.SideYes, priced.Yes))
		}
		if noInBand {
			orders = append(orders, e.order(m, model.SideNo, priced.No))
		}
	case combined.LessThan(e.maxPrice):
		path = PathSlow
		orders = []model.OrderRequest{
			e.order(m, model.SideYes, priced.Yes),
			e.order(m, model.SideNo, priced.No),
		}
	default:
		ev := priced
		ev.Signal = sig
		skip(SkipNotQualified, fmt.Sprintf("combined %s >= threshold %s",
			combined.StringFixed(4), e.maxPrice.StringFixed(4)), ev)
		return Decision{}, false
	}

	d := Decision{
		Market: m,
		Path:   path,
		Orders: orders,
		Reason: reason(path, ttl, yes, no, combined, sig),
		Signal: sig,
	}

	ev := priced
	ev.Kind = EventQualify
	ev.Path = path
	ev.Signal = sig
	ev.Message = d.Reason
	emit(ev)

	return d, true
}

func (e *Engine) order(m model.Market, side model.Side, price float64) model.OrderRequest {
	return model.OrderRequest{
		Ticker:   m.Ticker,
		Side:     side,
		Price:    price,
		Quantity: e.cfg.OrderCount,
	}
}

// parseAsk parses a dollar ask string. Empty strings are absent.
func parseAsk(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

func inBand(price decimal.Decimal) bool {
	return price.GreaterThanOrEqual(bandLow) && price.LessThanOrEqual(bandHigh)
}

func reason(path Path, ttl int64, yes, no, combined decimal.Decimal, sig *signal.LagSignal) string {
	var b strings.Builder
	switch path {
	case PathFast:
		fmt.Fprintf(&b, "TTL %ds with YES %s / NO %s in 0.90-0.97 band",
			ttl, yes.StringFixed(4), no.StringFixed(4))
	default:
		fmt.Fprintf(&b, "YES %s + NO %s = %s within %ds of close",
			yes.StringFixed(4), no.StringFixed(4), combined.StringFixed(4), ttl)
	}
	if sig != nil {
		fmt.Fprintf(&b, "; cex %s %s %.2f model %.3f vs kalshi %.3f (lag %+.3f)",
			strings.ToUpper(sig.Asset), sig.Direction, sig.Strike, sig.ModelYesProb, sig.KalshiYesProb, sig.Lag)
	}
	return b.String()
}
