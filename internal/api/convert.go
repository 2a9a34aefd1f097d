package api

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/kalshi-lagbot/internal/model"
)

// ParseTimestamp parses an ISO 8601 timestamp. Returns the zero time for
// empty or invalid input.
func ParseTimestamp(iso string) time.Time {
	if iso == "" {
		return time.Time{}
	}

	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		// Try without timezone
		t, err = time.Parse("2006-01-02T15:04:05", iso)
		if err != nil {
			return time.Time{}
		}
	}

	return t.UTC()
}

// CentsToDollars renders an integer cent price as a dollar string.
// 95 -> "0.9500". Non-positive input means "no price" and returns "".
func CentsToDollars(cents int) string {
	if cents <= 0 {
		return ""
	}
	return decimal.New(int64(cents), -2).StringFixed(4)
}

// ToModel converts an APIMarket to model.Market. Dollar ask strings are
// preferred; integer cent fields are used when the dollar field is absent.
func (m *APIMarket) ToModel() model.Market {
	yes := strings.TrimSpace(m.YesAskDollars)
	if yes == "" {
		yes = CentsToDollars(m.YesAsk)
	}
	no := strings.TrimSpace(m.NoAskDollars)
	if no == "" {
		no = CentsToDollars(m.NoAsk)
	}

	return model.Market{
		Ticker:        m.Ticker,
		Title:         m.Title,
		Subtitle:      m.Subtitle,
		EventTicker:   m.EventTicker,
		Status:        m.Status,
		CloseTime:     ParseTimestamp(m.CloseTime),
		YesAskDollars: yes,
		NoAskDollars:  no,
	}
}

// MarketsToModel converts a slice of API markets, preserving order.
func MarketsToModel(in []APIMarket) []model.Market {
	out := make([]model.Market, 0, len(in))
	for i := range in {
		out = append(out, in[i].ToModel())
	}
	return out
}
