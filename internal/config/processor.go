package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvProcessorWorkers      = "RECLAIM_PROCESSOR_WORKERS"
	EnvProcessorQueueDepth   = "RECLAIM_PROCESSOR_QUEUE_DEPTH"
	EnvProcessorPollInterval = "RECLAIM_PROCESSOR_POLL_INTERVAL"
)

// ProcessorConfig holds the summary log worker pool parameters.
type ProcessorConfig struct {
	Workers      int    `toml:"workers"`
	QueueDepth   int    `toml:"queue_depth"`
	PollInterval string `toml:"poll_interval"`
}

// PollIntervalDuration returns PollInterval as a time.Duration.
func (c *ProcessorConfig) PollIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.PollInterval)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ProcessorConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ProcessorConfig) Merge(overlay *ProcessorConfig) {
	if overlay.Workers != 0 {
		c.Workers = overlay.Workers
	}
	if overlay.QueueDepth != 0 {
		c.QueueDepth = overlay.QueueDepth
	}
	if overlay.PollInterval != "" {
		c.PollInterval = overlay.PollInterval
	}
}

func (c *ProcessorConfig) loadDefaults() {
	if c.Workers == 0 {
		c.Workers = 4
	}
	if c.QueueDepth == 0 {
		c.QueueDepth = 32
	}
	if c.PollInterval == "" {
		c.PollInterval = "5s"
	}
}

func (c *ProcessorConfig) loadEnv() {
	if v := os.Getenv(EnvProcessorWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Workers = n
		}
	}
	if v := os.Getenv(EnvProcessorQueueDepth); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.QueueDepth = n
		}
	}
	if v := os.Getenv(EnvProcessorPollInterval); v != "" {
		c.PollInterval = v
	}
}

func (c *ProcessorConfig) validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("invalid workers: %d", c.Workers)
	}
	if c.QueueDepth < 1 {
		return fmt.Errorf("invalid queue_depth: %d", c.QueueDepth)
	}
	if _, err := time.ParseDuration(c.PollInterval); err != nil {
		return fmt.Errorf("invalid poll_interval: %w", err)
	}
	return nil
}
