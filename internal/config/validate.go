package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *BotConfig) Validate() error {
	if !c.Run.IsDryRun() && c.API.APIKey == "" {
		return errors.New("api.api_key is required when run.dry_run is false")
	}
	if !c.Run.IsDryRun() && !c.API.HasCredentials() {
		return errors.New("api.private_key_pem or api.private_key_path is required when run.dry_run is false")
	}

	switch c.Discovery.Mode {
	case "events", "series", "all":
	default:
		return fmt.Errorf("discovery.mode must be one of events, series, all, got %q", c.Discovery.Mode)
	}
	if c.Discovery.EventsLimit < 1 {
		return errors.New("discovery.events_limit must be >= 1")
	}

	if c.Strategy.CombinedMaxPrice <= 0 {
		return fmt.Errorf("strategy.combined_max_price must be > 0, got %v", c.Strategy.CombinedMaxPrice)
	}
	if c.Strategy.OrderCount < 1 {
		return errors.New("strategy.order_count must be >= 1")
	}

	if c.Lag.Threshold < 0 || c.Lag.Threshold > 1 {
		return fmt.Errorf("lag.threshold must be between 0 and 1, got %v", c.Lag.Threshold)
	}
	if c.Lag.MinSources < 1 {
		return errors.New("lag.min_sources must be >= 1")
	}
	switch c.Lag.BinanceTransport {
	case "rest", "ws":
	default:
		return fmt.Errorf("lag.binance_transport must be rest or ws, got %q", c.Lag.BinanceTransport)
	}

	if c.Journal.Enabled {
		if err := c.Journal.Postgres.validate("journal.postgres"); err != nil {
			return err
		}
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
