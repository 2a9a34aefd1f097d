// Package reference aggregates venue quotes into a per-asset reference price.
package reference

import (
	"sort"
	"strings"

	"github.com/rickgao/kalshi-lagbot/internal/model"
	"github.com/rickgao/kalshi-lagbot/internal/venue"
)

// Median returns the median of values, averaging the two middle elements
// for an even count. It returns false for an empty slice.
func Median(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid], true
	}
	return (sorted[mid-1] + sorted[mid]) / 2, true
}

// Build collapses fetch results for one asset into a reference. Failed and
// invalid quotes are discarded; if fewer than minSources remain, no
// reference is produced.
func Build(asset string, results []venue.Result, minSources int) (model.AssetReference, bool) {
	if minSources < 1 {
		minSources = 1
	}

	quotes := make([]model.VenueQuote, 0, len(results))
	mids := make([]float64, 0, len(results))
	for _, r := range results {
		if !r.OK() || !venue.ValidMid(r.Quote.Mid) {
			continue
		}
		quotes = append(quotes, r.Quote)
		mids = append(mids, r.Quote.Mid)
	}

	if len(mids) < minSources {
		return model.AssetReference{}, false
	}

	price, ok := Median(mids)
	if !ok {
		return model.AssetReference{}, false
	}

	return model.AssetReference{
		Asset:          strings.ToLower(asset),
		ReferencePrice: price,
		Quotes:         quotes,
	}, true
}
