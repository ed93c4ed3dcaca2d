// Package config provides configuration loading and validation for celerymetrics.
package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure loaded from YAML.
// Every field is optional; commands fall back to defaults and flags.
type Config struct {
	// LogSources are file paths or glob patterns of celery log files.
	LogSources []string `yaml:"log_sources,omitempty"`

	// Timezone names the zone log timestamps are interpreted in.
	// Accepts "local" (default), "utc", or an IANA name like "America/New_York".
	Timezone string `yaml:"timezone,omitempty"`

	// MetricPrefix is the leading segment of emitted metric names.
	// Defaults to "celery".
	MetricPrefix string `yaml:"metric_prefix,omitempty"`

	// Collector configures the optional metrics intake endpoint.
	Collector *CollectorConfig `yaml:"collector,omitempty"`

	// location is the resolved time zone (populated during validation).
	location *time.Location
}

// Location returns the resolved time zone for the configured Timezone name.
func (c *Config) Location() *time.Location {
	return c.location
}

// Trigger determines when classified samples are forwarded to the collector.
type Trigger string

const (
	// TriggerAlways forwards after every run, even with zero samples.
	TriggerAlways Trigger = "always"
	// TriggerOnSamples forwards only when at least one sample was produced.
	TriggerOnSamples Trigger = "on_samples"
	// TriggerNever disables forwarding.
	TriggerNever Trigger = "never"
)

// CollectorConfig defines the metrics intake endpoint samples are posted to.
type CollectorConfig struct {
	// Name is an optional identifier used in diagnostics.
	Name string `yaml:"name,omitempty"`

	// URL is the intake endpoint (required when the section is present).
	URL string `yaml:"url"`

	// Token is an optional bearer token for authentication.
	Token string `yaml:"token,omitempty"`

	// Trigger determines when samples are forwarded.
	// Defaults to "on_samples" if not specified.
	Trigger Trigger `yaml:"trigger,omitempty"`

	// Timeout is the HTTP request timeout. Defaults to 10s if not specified.
	Timeout Duration `yaml:"timeout,omitempty"`
}

// Duration is a time.Duration that unmarshals from YAML strings like "10s".
// yaml.v3 has no native duration support.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the duration as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// String returns the duration in time.Duration notation.
func (d Duration) String() string {
	return time.Duration(d).String()
}
