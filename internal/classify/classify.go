// Package classify tags markets by asset, crypto relevance and interval from
// their text fields. All functions are pure.
package classify

import (
	"regexp"
	"strings"

	"github.com/rickgao/kalshi-lagbot/internal/model"
)

// Asset tags returned by PrimaryAsset.
const (
	AssetBTC = "btc"
	AssetETH = "eth"
)

// DefaultIntervalPattern matches "15m", "15 min", "15 minutes" as a word.
const DefaultIntervalPattern = `(?i)\b15\s?m(in(ute)?s?)?\b`

var defaultInterval = regexp.MustCompile(DefaultIntervalPattern)

// synonyms maps long asset names onto their ticker keys.
var synonyms = map[string]string{
	"bitcoin":  AssetBTC,
	"ethereum": AssetETH,
	"solana":   "sol",
}

// Haystack is the lowercased title, subtitle and event ticker of m.
func Haystack(m model.Market) string {
	return strings.ToLower(m.Title + " " + m.Subtitle + " " + m.EventTicker)
}

// PrimaryAsset returns the market's asset tag. BTC is checked before ETH.
func PrimaryAsset(m model.Market) (string, bool) {
	text := Haystack(m)
	switch {
	case strings.Contains(text, "btc") || strings.Contains(text, "bitcoin"):
		return AssetBTC, true
	case strings.Contains(text, "eth") || strings.Contains(text, "ethereum"):
		return AssetETH, true
	}
	return "", false
}

// IsBTCRelated reports whether the market mentions bitcoin.
func IsBTCRelated(m model.Market) bool {
	text := Haystack(m)
	return strings.Contains(text, "btc") || strings.Contains(text, "bitcoin")
}

// IsCryptoRelated reports whether the market mentions any of assets.
func IsCryptoRelated(m model.Market, assets []string) bool {
	return matchesAssets(Haystack(m), assets)
}

// IsCryptoText is IsCryptoRelated for a single free-text field.
func IsCryptoText(text string, assets []string) bool {
	return matchesAssets(strings.ToLower(text), assets)
}

func matchesAssets(text string, assets []string) bool {
	for _, asset := range assets {
		key := strings.ToLower(strings.TrimSpace(asset))
		if key == "" {
			continue
		}
		if strings.Contains(text, key) {
			return true
		}
		for word, target := range synonyms {
			if target == key && strings.Contains(text, word) {
				return true
			}
		}
	}
	return false
}

// Interval matches market text against the interval pattern.
type Interval struct {
	re *regexp.Regexp
}

// CompileInterval compiles pattern. An empty or malformed pattern falls back
// to DefaultIntervalPattern; the second result is false when pattern was
// rejected.
func CompileInterval(pattern string) (*Interval, bool) {
	if strings.TrimSpace(pattern) == "" {
		return &Interval{re: defaultInterval}, true
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return &Interval{re: defaultInterval}, false
	}
	return &Interval{re: re}, true
}

// Pattern returns the active expression.
func (iv *Interval) Pattern() string {
	return iv.re.String()
}

// Match tests title, then subtitle, then event ticker.
func (iv *Interval) Match(m model.Market) bool {
	for _, field := range [...]string{m.Title, m.Subtitle, m.EventTicker} {
		if field != "" && iv.re.MatchString(field) {
			return true
		}
	}
	return false
}
