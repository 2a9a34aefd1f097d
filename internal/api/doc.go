// Package api provides a signed client for the Kalshi trade REST API.
//
// REST endpoints:
//   - Production: https://api.elections.kalshi.com/trade-api/v2
//   - Demo: https://demo-api.kalshi.co/trade-api/v2
//
// Used endpoints: /exchange/status, /markets, /events, /series, /portfolio/orders
package api
