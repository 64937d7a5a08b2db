package config

import (
	"fmt"
	"os"
	"strconv"
)

const EnvLedgerMaxAttempts = "RECLAIM_LEDGER_MAX_ATTEMPTS"

// LedgerConfig holds balance posting parameters.
type LedgerConfig struct {
	MaxAttempts int `toml:"max_attempts"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *LedgerConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *LedgerConfig) Merge(overlay *LedgerConfig) {
	if overlay.MaxAttempts != 0 {
		c.MaxAttempts = overlay.MaxAttempts
	}
}

func (c *LedgerConfig) loadDefaults() {
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 4
	}
}

func (c *LedgerConfig) loadEnv() {
	if v := os.Getenv(EnvLedgerMaxAttempts); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxAttempts = n
		}
	}
}

func (c *LedgerConfig) validate() error {
	if c.MaxAttempts < 1 {
		return fmt.Errorf("invalid max_attempts: %d", c.MaxAttempts)
	}
	return nil
}
