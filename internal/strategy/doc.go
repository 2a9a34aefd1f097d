// Package strategy decides which markets to trade in a run.
//
// Engine.Evaluate walks a market snapshot in order and applies, per market:
//
//  1. btc-only filter (optional)
//  2. crypto-only filter (optional)
//  3. interval filter
//  4. freshness: seconds to close must be >= 0
//  5. price presence: both YES and NO asks must parse
//  6. lag gate (optional): a lag signal must hit the threshold
//  7. qualification: fast (under 60s to close, a side in 0.90-0.97) or slow
//     (YES + NO below the combined max price)
//
// Every step is reported as an Event so callers can log or summarize a run
// without the engine writing anywhere itself. Evaluate is deterministic for a
// given market list, reference set and clock.
package strategy
