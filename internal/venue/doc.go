// Package venue fetches spot bid/ask quotes from centralized exchanges and
// normalizes them into mid prices.
//
// Supported venues:
//   - coinbase: GET /products/{product}/ticker
//   - kraken: GET /0/public/Ticker?pair={pair}
//   - binance: GET /api/v3/ticker/bookTicker?symbol={symbol}, or one
//     bookTicker frame from the websocket stream
//
// A fetch never panics or aborts a scan; every attempt resolves to a Result
// holding either a quote or a *FetchError.
package venue
