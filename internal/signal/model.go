package signal

import (
	"fmt"
	"math"
	"strings"

	"github.com/rickgao/kalshi-lagbot/internal/classify"
	"github.com/rickgao/kalshi-lagbot/internal/model"
)

// Per-asset logistic scale in basis points.
const (
	ScaleBTC     = 45.0
	ScaleETH     = 65.0
	ScaleDefault = 55.0
)

// Scale returns the logistic scale for asset.
func Scale(asset string) float64 {
	switch strings.ToLower(asset) {
	case classify.AssetBTC:
		return ScaleBTC
	case classify.AssetETH:
		return ScaleETH
	default:
		return ScaleDefault
	}
}

// Logistic is 1/(1+e^-x), branching on sign so exp never overflows.
func Logistic(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	z := math.Exp(x)
	return z / (1 + z)
}

// ModelYesProb is the probability that YES pays given the spot reference.
func ModelYesProb(reference, strike float64, asset string, dir Direction) float64 {
	d := (reference - strike) / strike * 10000
	above := Logistic(d / Scale(asset))
	if dir == Below {
		return 1 - above
	}
	return above
}

// LagSignal compares the model probability with the market's YES ask.
type LagSignal struct {
	Asset          string
	Direction      Direction
	Ambiguous      bool
	Strike         float64
	ReferencePrice float64
	ModelYesProb   float64
	KalshiYesProb  float64
	Lag            float64
	AbsLag         float64
}

// Hit reports whether the gap meets threshold.
func (s LagSignal) Hit(threshold float64) bool {
	return s.AbsLag >= threshold
}

func (s LagSignal) String() string {
	return fmt.Sprintf("cex %s %s strike=%.2f ref=%.2f model=%.3f kalshi=%.3f lag=%+.3f",
		s.Asset, s.Direction, s.Strike, s.ReferencePrice, s.ModelYesProb, s.KalshiYesProb, s.Lag)
}

// Compute builds a signal for m. It returns false when the market is not a
// BTC or ETH market, has no reference, or its text yields no direction or
// strike.
func Compute(m model.Market, refs model.References, yesAsk float64) (LagSignal, bool) {
	asset, ok := classify.PrimaryAsset(m)
	if !ok || (asset != classify.AssetBTC && asset != classify.AssetETH) {
		return LagSignal{}, false
	}
	ref, ok := refs[asset]
	if !ok {
		return LagSignal{}, false
	}

	text := m.Title + " " + m.Subtitle
	dir, ok := ParseDirection(text)
	if !ok {
		return LagSignal{}, false
	}
	strike, ok := ParseStrike(text)
	if !ok {
		return LagSignal{}, false
	}

	prob := ModelYesProb(ref.ReferencePrice, strike, asset, dir.Direction)
	lag := prob - yesAsk
	return LagSignal{
		Asset:          asset,
		Direction:      dir.Direction,
		Ambiguous:      dir.Ambiguous,
		Strike:         strike,
		ReferencePrice: ref.ReferencePrice,
		ModelYesProb:   prob,
		KalshiYesProb:  yesAsk,
		Lag:            lag,
		AbsLag:         math.Abs(lag),
	}, true
}
