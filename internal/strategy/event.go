package strategy

import (
	"github.com/rickgao/kalshi-lagbot/internal/signal"
)

// EventKind classifies an Event.
type EventKind string

const (
	EventEvaluate        EventKind = "evaluate"
	EventSkip            EventKind = "skip"
	EventSignal          EventKind = "signal"
	EventSignalAmbiguous EventKind = "signal_ambiguous"
	EventQualify         EventKind = "qualify"
	EventPatternFallback EventKind = "pattern_fallback"
)

// SkipReason says which filter rejected a market.
type SkipReason string

const (
	SkipNotBTC         SkipReason = "not_btc"
	SkipNotCrypto      SkipReason = "not_crypto"
	SkipInterval       SkipReason = "interval_mismatch"
	SkipClosed         SkipReason = "closed"
	SkipMissingPrice   SkipReason = "missing_price"
	SkipSignalRequired SkipReason = "signal_required"
	SkipNotQualified   SkipReason = "not_qualified"
)

// Event is one structured record of what the engine did with a market.
// YesAsk and NoAsk are the raw ask strings; the parsed price fields are set
// once the market passed the price filter.
type Event struct {
	Kind           EventKind
	Ticker         string
	Title          string
	Skip           SkipReason
	Message        string
	SecondsToClose int64
	YesAsk         string
	NoAsk          string
	Yes            float64
	No             float64
	Combined       float64
	HasPrices      bool
	Path           Path
	Signal         *signal.LagSignal
}
