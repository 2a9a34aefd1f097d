package venue

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rickgao/kalshi-lagbot/internal/model"
)

// DefaultTimeout bounds a single venue fetch.
const DefaultTimeout = 3 * time.Second

// Source fetches a quote for a venue-specific symbol.
type Source interface {
	Name() string
	Quote(ctx context.Context, symbol string) (model.VenueQuote, error)
}

// ErrorKind classifies why a fetch produced no quote.
type ErrorKind string

const (
	KindTransport    ErrorKind = "transport"     // dial, timeout, connection reset
	KindStatus       ErrorKind = "status"        // non-2xx response or venue error payload
	KindDecode       ErrorKind = "decode"        // response shape not understood
	KindInvalidQuote ErrorKind = "invalid_quote" // bid/ask missing, non-positive or non-finite
)

// FetchError is the failure half of a Result.
type FetchError struct {
	Venue string
	Kind  ErrorKind
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Venue, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func fetchErr(venue string, kind ErrorKind, err error) *FetchError {
	return &FetchError{Venue: venue, Kind: kind, Err: err}
}

// Result is the outcome of one fetch attempt: exactly one of Quote or Err is
// meaningful.
type Result struct {
	Venue  string
	Symbol string
	Quote  model.VenueQuote
	Err    *FetchError
}

// OK reports whether the attempt produced a quote.
func (r Result) OK() bool { return r.Err == nil }

// Fetch runs src.Quote under its own timeout and folds any error into a
// Result. Errors that are not already a *FetchError are classified as
// transport failures.
func Fetch(ctx context.Context, src Source, symbol string, timeout time.Duration) Result {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res := Result{Venue: src.Name(), Symbol: symbol}
	quote, err := src.Quote(ctx, symbol)
	if err != nil {
		var fe *FetchError
		if !errors.As(err, &fe) {
			fe = fetchErr(src.Name(), KindTransport, err)
		}
		res.Err = fe
		return res
	}
	res.Quote = quote
	return res
}

// MidFromStrings validates a bid/ask pair and returns its mid. Both sides
// must be present, parse as positive numbers, and yield a finite mid.
func MidFromStrings(venue, bid, ask string) (model.VenueQuote, error) {
	b, err := parsePositive(bid)
	if err != nil {
		return model.VenueQuote{}, fetchErr(venue, KindInvalidQuote, fmt.Errorf("bid: %w", err))
	}
	a, err := parsePositive(ask)
	if err != nil {
		return model.VenueQuote{}, fetchErr(venue, KindInvalidQuote, fmt.Errorf("ask: %w", err))
	}

	mid := (b + a) / 2
	if !ValidMid(mid) {
		return model.VenueQuote{}, fetchErr(venue, KindInvalidQuote, fmt.Errorf("mid %v out of range", mid))
	}

	return model.VenueQuote{Venue: venue, Mid: mid}, nil
}

// ValidMid reports whether mid is a usable price.
func ValidMid(mid float64) bool {
	return !math.IsNaN(mid) && !math.IsInf(mid, 0) && mid > 0
}

func parsePositive(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("missing")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, fmt.Errorf("%q is not a positive price", s)
	}
	return v, nil
}
