package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	yaml := `
api:
  rest_url: https://demo-api.kalshi.co/trade-api/v2
  api_key: key-123
  timeout: 5s
run:
  dry_run: false
strategy:
  btc_only: true
  combined_max_price: 0.98
  order_count: 3
lag:
  threshold: 0.1
  fetch_timeout: 2s
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.API.RestURL != "https://demo-api.kalshi.co/trade-api/v2" {
		t.Errorf("API.RestURL = %q, want %q", cfg.API.RestURL, "https://demo-api.kalshi.co/trade-api/v2")
	}
	if cfg.API.Timeout != 5*time.Second {
		t.Errorf("API.Timeout = %v, want %v", cfg.API.Timeout, 5*time.Second)
	}
	if cfg.Run.IsDryRun() {
		t.Error("Run.IsDryRun() = true, want false")
	}
	if !cfg.Strategy.BTCOnly {
		t.Error("Strategy.BTCOnly = false, want true")
	}
	if cfg.Strategy.CombinedMaxPrice != 0.98 {
		t.Errorf("Strategy.CombinedMaxPrice = %v, want 0.98", cfg.Strategy.CombinedMaxPrice)
	}
	if cfg.Strategy.OrderCount != 3 {
		t.Errorf("Strategy.OrderCount = %d, want 3", cfg.Strategy.OrderCount)
	}
	if cfg.Lag.FetchTimeout != 2*time.Second {
		t.Errorf("Lag.FetchTimeout = %v, want %v", cfg.Lag.FetchTimeout, 2*time.Second)
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_KALSHI_KEY", "secret123")
	t.Setenv("TEST_SLACK_HOOK", "https://hooks.slack.com/services/T/B/X")

	yaml := `
api:
  api_key: ${TEST_KALSHI_KEY}
summary:
  slack_webhook_url: ${TEST_SLACK_HOOK}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.API.APIKey != "secret123" {
		t.Errorf("API.APIKey = %q, want %q", cfg.API.APIKey, "secret123")
	}
	if cfg.Summary.SlackWebhookURL != "https://hooks.slack.com/services/T/B/X" {
		t.Errorf("Summary.SlackWebhookURL = %q", cfg.Summary.SlackWebhookURL)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("Load() expected error for missing file")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	path := writeTempFile(t, "api:\n  api_key: k\n")

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	// Check defaults were applied
	if cfg.API.RestURL != DefaultRestURL {
		t.Errorf("API.RestURL = %q, want default %q", cfg.API.RestURL, DefaultRestURL)
	}
	if cfg.API.Timeout != DefaultAPITimeout {
		t.Errorf("API.Timeout = %v, want default %v", cfg.API.Timeout, DefaultAPITimeout)
	}
	if cfg.API.CheckExchange == nil || !*cfg.API.CheckExchange {
		t.Error("API.CheckExchange should default to true")
	}
	if !cfg.Run.IsDryRun() {
		t.Error("Run should default to dry run")
	}
	if cfg.Strategy.CryptoOnly == nil || !*cfg.Strategy.CryptoOnly {
		t.Error("Strategy.CryptoOnly should default to true")
	}
	if !reflect.DeepEqual(cfg.Strategy.CryptoAssets, []string{"btc", "eth", "sol"}) {
		t.Errorf("Strategy.CryptoAssets = %v", cfg.Strategy.CryptoAssets)
	}
	if cfg.Strategy.IntervalRegex != DefaultIntervalRegex {
		t.Errorf("Strategy.IntervalRegex = %q, want default", cfg.Strategy.IntervalRegex)
	}
	if cfg.Strategy.CombinedMaxPrice != DefaultCombinedMaxPrice {
		t.Errorf("Strategy.CombinedMaxPrice = %v, want %v", cfg.Strategy.CombinedMaxPrice, DefaultCombinedMaxPrice)
	}
	if cfg.Lag.Enabled == nil || !*cfg.Lag.Enabled {
		t.Error("Lag.Enabled should default to true")
	}
	if cfg.Lag.Threshold != DefaultLagThreshold {
		t.Errorf("Lag.Threshold = %v, want %v", cfg.Lag.Threshold, DefaultLagThreshold)
	}
	if cfg.Lag.MinSources != DefaultLagMinSources {
		t.Errorf("Lag.MinSources = %d, want %d", cfg.Lag.MinSources, DefaultLagMinSources)
	}
	if cfg.Lag.FetchTimeout != DefaultFetchTimeout {
		t.Errorf("Lag.FetchTimeout = %v, want %v", cfg.Lag.FetchTimeout, DefaultFetchTimeout)
	}
	if got := cfg.Lag.Symbols["BTC"].Kraken; got != "XBTUSD" {
		t.Errorf("Lag.Symbols[BTC].Kraken = %q, want XBTUSD", got)
	}
	if cfg.Journal.Postgres.Port != DefaultDBPort {
		t.Errorf("Journal.Postgres.Port = %d, want default %d", cfg.Journal.Postgres.Port, DefaultDBPort)
	}
	if !reflect.DeepEqual(cfg.Discovery.EventSeriesTickers, DefaultSeriesTickers) {
		t.Errorf("Discovery.EventSeriesTickers = %v", cfg.Discovery.EventSeriesTickers)
	}
}

func TestDefaultsNormalizeLists(t *testing.T) {
	cfg, err := Parse([]byte(`
discovery:
  event_ticker_prefixes: [" kxbtc15m ", ""]
strategy:
  crypto_assets: ["BTC", " Eth", ""]
`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	cfg.applyDefaults()

	if !reflect.DeepEqual(cfg.Discovery.EventTickerPrefixes, []string{"KXBTC15M"}) {
		t.Errorf("EventTickerPrefixes = %v", cfg.Discovery.EventTickerPrefixes)
	}
	if !reflect.DeepEqual(cfg.Strategy.CryptoAssets, []string{"btc", "eth"}) {
		t.Errorf("CryptoAssets = %v", cfg.Strategy.CryptoAssets)
	}
}

func TestDefaultsKeepExplicitFalse(t *testing.T) {
	cfg, err := Parse([]byte("strategy:\n  crypto_only: false\nlag:\n  enabled: false\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	cfg.applyDefaults()

	if *cfg.Strategy.CryptoOnly {
		t.Error("explicit crypto_only: false was overridden")
	}
	if *cfg.Lag.Enabled {
		t.Error("explicit lag.enabled: false was overridden")
	}
}

func TestSplitBaseURL(t *testing.T) {
	tests := []struct {
		raw        string
		wantBase   string
		wantPrefix string
	}{
		{"https://api.elections.kalshi.com/trade-api/v2", "https://api.elections.kalshi.com", "/trade-api/v2"},
		{"https://demo-api.kalshi.co/trade-api/v3", "https://demo-api.kalshi.co", "/trade-api/v3"},
		{"http://localhost:8080/", "http://localhost:8080", "/trade-api/v2"},
	}

	for _, tt := range tests {
		base, prefix := SplitBaseURL(tt.raw)
		if base != tt.wantBase || prefix != tt.wantPrefix {
			t.Errorf("SplitBaseURL(%q) = (%q, %q), want (%q, %q)", tt.raw, base, prefix, tt.wantBase, tt.wantPrefix)
		}
	}
}

func TestValidate(t *testing.T) {
	valid := func() BotConfig {
		var cfg BotConfig
		cfg.applyDefaults()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*BotConfig)
		wantErr string
	}{
		{
			name:    "valid dry run",
			mutate:  func(*BotConfig) {},
			wantErr: "",
		},
		{
			name:    "live without api key",
			mutate:  func(c *BotConfig) { c.Run.DryRun = boolPtr(false) },
			wantErr: "api.api_key is required when run.dry_run is false",
		},
		{
			name: "live without private key",
			mutate: func(c *BotConfig) {
				c.Run.DryRun = boolPtr(false)
				c.API.APIKey = "k"
			},
			wantErr: "api.private_key_pem or api.private_key_path is required when run.dry_run is false",
		},
		{
			name:    "unknown discovery mode",
			mutate:  func(c *BotConfig) { c.Discovery.Mode = "feeds" },
			wantErr: `discovery.mode must be one of events, series, all, got "feeds"`,
		},
		{
			name:    "negative combined max",
			mutate:  func(c *BotConfig) { c.Strategy.CombinedMaxPrice = -1 },
			wantErr: "strategy.combined_max_price must be > 0, got -1",
		},
		{
			name:    "lag threshold out of range",
			mutate:  func(c *BotConfig) { c.Lag.Threshold = 1.5 },
			wantErr: "lag.threshold must be between 0 and 1, got 1.5",
		},
		{
			name:    "bad binance transport",
			mutate:  func(c *BotConfig) { c.Lag.BinanceTransport = "grpc" },
			wantErr: `lag.binance_transport must be rest or ws, got "grpc"`,
		},
		{
			name:    "journal without host",
			mutate:  func(c *BotConfig) { c.Journal.Enabled = true },
			wantErr: "journal.postgres.host is required",
		},
		{
			name: "journal min_conns exceeds max_conns",
			mutate: func(c *BotConfig) {
				c.Journal.Enabled = true
				c.Journal.Postgres = DBConfig{Host: "localhost", Name: "db", User: "user", MaxConns: 2, MinConns: 5}
			},
			wantErr: "journal.postgres.min_conns (5) cannot exceed max_conns (2)",
		},
		{
			name:    "bad log format",
			mutate:  func(c *BotConfig) { c.Logging.Format = "xml" },
			wantErr: `logging.format must be text or json, got "xml"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("Validate() expected error containing %q, got nil", tt.wantErr)
				} else if err.Error() != tt.wantErr {
					t.Errorf("Validate() error = %q, want %q", err.Error(), tt.wantErr)
				}
			}
		})
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}
