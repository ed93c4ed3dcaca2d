package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads and validates a configuration file.
func Load(_ context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvironmentOverrides()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks a configuration for errors and resolves the time zone.
func Validate(cfg *Config) error {
	if cfg.Timezone == "" {
		cfg.Timezone = DefaultTimezone
	}
	loc, err := ResolveLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	cfg.location = loc

	if cfg.MetricPrefix == "" {
		cfg.MetricPrefix = DefaultMetricPrefix
	}
	if strings.ContainsAny(cfg.MetricPrefix, " \t") {
		return fmt.Errorf("metric_prefix: %q must not contain whitespace", cfg.MetricPrefix)
	}

	if cfg.Collector != nil {
		if err := validateCollector(cfg.Collector); err != nil {
			return fmt.Errorf("collector: %w", err)
		}
	}

	return nil
}

// ResolveLocation maps a timezone name to a time.Location.
// Accepts "local" (or empty), "utc", or an IANA zone name.
func ResolveLocation(name string) (*time.Location, error) {
	switch strings.ToLower(name) {
	case "", "local":
		return time.Local, nil
	case "utc":
		return time.UTC, nil
	default:
		loc, err := time.LoadLocation(name)
		if err != nil {
			return nil, fmt.Errorf("unknown timezone %q: %w", name, err)
		}
		return loc, nil
	}
}

func validateCollector(c *CollectorConfig) error {
	if c.URL == "" {
		return fmt.Errorf("url is required")
	}

	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", c.URL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url %q must use http or https", c.URL)
	}

	switch c.Trigger {
	case "":
		c.Trigger = DefaultCollectorTrigger
	case TriggerAlways, TriggerOnSamples, TriggerNever:
	default:
		return fmt.Errorf("invalid trigger %q (use always, on_samples, or never)", c.Trigger)
	}

	if c.Timeout == 0 {
		c.Timeout = DefaultCollectorTimeout
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be positive")
	}

	return nil
}
