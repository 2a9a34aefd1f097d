// Package model defines the value types shared by the lag bot components.
//
// Conventions:
//   - Prices: float64 dollars (0.00-1.00 for Kalshi contracts, USD for spot quotes)
//   - Ask fields on Market stay as the decimal strings Kalshi returns; parsing
//     happens in the strategy so a missing or malformed ask can skip the market
//   - Every value is a snapshot of a single run and is never mutated after
//     construction
package model
