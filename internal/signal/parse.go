// Package signal derives a spot-vs-market probability gap ("lag") for
// crypto strike markets.
package signal

import (
	"regexp"
	"strconv"
	"strings"
)

// Direction is the side of the strike a YES contract pays on.
type Direction int

const (
	Above Direction = iota + 1
	Below
)

func (d Direction) String() string {
	switch d {
	case Above:
		return "above"
	case Below:
		return "below"
	default:
		return "unknown"
	}
}

// Phrase tables are checked in order; every above phrase precedes every
// below phrase.
var (
	abovePhrases = []string{"at or above", "above", "over", "greater than", "higher than"}
	belowPhrases = []string{"at or below", "below", "under", "less than", "lower than"}
)

// MinStrike is the smallest number accepted as a strike.
const MinStrike = 100.0

var strikeToken = regexp.MustCompile(`\$?\d[\d,]*(\.\d+)?`)

// ParsedDirection is the result of ParseDirection.
type ParsedDirection struct {
	Direction Direction
	// Ambiguous is set when the text also contains below phrasing.
	Ambiguous bool
}

// ParseDirection scans text for above phrasing, then below phrasing.
func ParseDirection(text string) (ParsedDirection, bool) {
	lower := strings.ToLower(text)
	above := containsAny(lower, abovePhrases)
	below := containsAny(lower, belowPhrases)

	switch {
	case above:
		return ParsedDirection{Direction: Above, Ambiguous: below}, true
	case below:
		return ParsedDirection{Direction: Below}, true
	}
	return ParsedDirection{}, false
}

// ParseStrike returns the largest dollar figure >= MinStrike in text.
func ParseStrike(text string) (float64, bool) {
	var (
		best  float64
		found bool
	)
	for _, token := range strikeToken.FindAllString(text, -1) {
		cleaned := strings.NewReplacer("$", "", ",", "").Replace(token)
		v, err := strconv.ParseFloat(cleaned, 64)
		if err != nil || v < MinStrike {
			continue
		}
		if !found || v > best {
			best = v
			found = true
		}
	}
	return best, found
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
