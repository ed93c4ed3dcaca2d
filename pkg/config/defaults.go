package config

import (
	"os"
	"time"
)

// Default values for configuration.
const (
	DefaultTimezone         = "local"
	DefaultMetricPrefix     = "celery"
	DefaultCollectorTimeout = Duration(10 * time.Second)
	DefaultCollectorTrigger = TriggerOnSamples
)

// Environment variable names.
const (
	EnvTimezone       = "CELERYMETRICS_TIMEZONE"
	EnvCollectorURL   = "CELERYMETRICS_COLLECTOR_URL"
	EnvCollectorToken = "CELERYMETRICS_COLLECTOR_TOKEN"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Timezone:     DefaultTimezone,
		MetricPrefix: DefaultMetricPrefix,
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() {
	if tz := os.Getenv(EnvTimezone); tz != "" {
		c.Timezone = tz
	}
	if url := os.Getenv(EnvCollectorURL); url != "" {
		if c.Collector == nil {
			c.Collector = &CollectorConfig{}
		}
		c.Collector.URL = url
	}
	if token := os.Getenv(EnvCollectorToken); token != "" && c.Collector != nil {
		c.Collector.Token = token
	}
}
