package sweeper

import (
	"time"

	"github.com/shopstack/shopstack/internal/config"
)

// Config controls sweep cadence and which jobs this process runs.
type Config struct {
	TickInterval         time.Duration
	JobTimeout           time.Duration
	OrderExpiryThreshold time.Duration
	LockTTL              time.Duration
	EnabledJobs          []string
}

func DefaultConfig() Config {
	return Config{
		TickInterval:         time.Minute,
		JobTimeout:           30 * time.Second,
		OrderExpiryThreshold: 24 * time.Hour,
		LockTTL:              5 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.TickInterval <= 0 {
		c.TickInterval = defaults.TickInterval
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	if c.OrderExpiryThreshold <= 0 {
		c.OrderExpiryThreshold = defaults.OrderExpiryThreshold
	}
	if c.LockTTL <= 0 {
		c.LockTTL = defaults.LockTTL
	}
	return c
}

func ProvideConfig(cfg config.Config) Config {
	return Config{
		TickInterval:         cfg.SweepTickInterval,
		OrderExpiryThreshold: cfg.OrderExpiryThreshold,
		EnabledJobs:          cfg.SweepEnabledJobs,
	}.withDefaults()
}
