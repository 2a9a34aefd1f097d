// Package journal records each run's decisions and orders to PostgreSQL.
//
// Tables:
//   - lagbot_runs: one row per run (mode, market count, outcome)
//   - lagbot_decisions: one row per qualifying market
//   - lagbot_orders: one row per order placed or simulated
//
// The journal is write-only: nothing is read back by later runs.
package journal
