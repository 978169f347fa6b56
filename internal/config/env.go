package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/term"
)

// Config contains all process-level configuration parameters. It is loaded
// once at startup and passed by reference into each component's constructor;
// there is no globally importable instance.
type Config struct {
	Port            string `envconfig:"PORT" default:"8080"`
	NetworksFile    string `envconfig:"NETWORKS_FILE" default:"networks.yml"`
	MySQLDSN        string `envconfig:"MYSQL_DSN" required:"true"`
	TickerURL       string `envconfig:"TICKER_URL" default:"https://api.coingecko.com/api/v3"`
	DisplayCurrency string `envconfig:"DISPLAY_CURRENCY" default:"usd"`
	NodeTimeoutSec  int    `envconfig:"NODE_TIMEOUT_SECONDS" default:"10"`
	// SeedSecret may be left empty; PromptForSecret is used instead so the
	// secret never has to live in the environment.
	SeedSecret string `envconfig:"SEED_SECRET"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	// A zero timeout would give the node client an unbounded http.Client.
	if cfg.NodeTimeoutSec <= 0 {
		return nil, fmt.Errorf("NODE_TIMEOUT_SECONDS must be positive, got %d", cfg.NodeTimeoutSec)
	}
	return cfg, nil
}

// SecretBytes returns the seed-encryption secret as bytes.
// Caller must zero the returned slice after use for security.
func (c *Config) SecretBytes() ([]byte, error) {
	if c.SeedSecret == "" {
		return nil, errors.New("seed secret not set: set SEED_SECRET or call PromptForSecret at startup")
	}
	out := make([]byte, len(c.SeedSecret))
	copy(out, c.SeedSecret)
	return out, nil
}

// PromptForSecret prompts for the seed-encryption secret in the terminal.
// The secret is read without echoing (hidden input) and stored in memory.
// Call this at startup, before the server begins handling requests, when
// SEED_SECRET is not set in the environment.
func (c *Config) PromptForSecret() error {
	if c.SeedSecret != "" {
		return nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("stdin is not a terminal: set SEED_SECRET or run the app interactively")
	}
	fmt.Fprint(os.Stderr, "Enter seed encryption secret: ")
	defer fmt.Fprintln(os.Stderr)

	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return fmt.Errorf("failed to read secret: %w", err)
	}
	if len(raw) == 0 {
		return errors.New("secret cannot be empty")
	}

	c.SeedSecret = string(raw)
	clear(raw)
	return nil
}
