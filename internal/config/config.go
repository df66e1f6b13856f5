package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds runtime configuration for the BuildMate notification service.
type Config struct {
	// Mail relay used by the email channel and the email-to-SMS gateways.
	SMTPHost    string `json:"smtp_host" yaml:"smtp_host"`
	SMTPPort    int    `json:"smtp_port" yaml:"smtp_port"`
	SMTPUser    string `json:"smtp_user" yaml:"smtp_user"`
	SMTPPass    string `json:"smtp_pass" yaml:"smtp_pass"`
	SMTPFrom    string `json:"smtp_from" yaml:"smtp_from"`
	SMTPTLSMode string `json:"smtp_tls_mode" yaml:"smtp_tls_mode"` // "starttls" or "none"

	// Delivery request queue.
	NATSURL string `json:"nats_url" yaml:"nats_url"`

	// Deadline applied per delivery request by the worker. The delivery core
	// itself carries no timeout; the worker wraps each Deliver call.
	DeliverTimeout time.Duration `json:"deliver_timeout" yaml:"deliver_timeout"`

	// Outcome persistence (optional). Empty means outcomes are only logged.
	PostgresDSN string `json:"postgres_dsn" yaml:"postgres_dsn"`

	// Metrics
	MetricsEnabled bool `json:"metrics_enabled" yaml:"metrics_enabled"`
	MetricsPort    int  `json:"metrics_port" yaml:"metrics_port"`

	// InfluxDB (push)
	InfluxURL      string        `json:"influx_url" yaml:"influx_url"`
	InfluxToken    string        `json:"influx_token" yaml:"influx_token"`
	InfluxOrg      string        `json:"influx_org" yaml:"influx_org"`
	InfluxBucket   string        `json:"influx_bucket" yaml:"influx_bucket"`
	InfluxInterval time.Duration `json:"influx_interval" yaml:"influx_interval"`
}

// DefaultConfig returns a sane default configuration
func DefaultConfig() *Config {
	return &Config{
		SMTPPort:    587,
		SMTPTLSMode: "starttls",

		NATSURL:        "nats://127.0.0.1:4222",
		DeliverTimeout: 30 * time.Second,

		// Metrics defaults (opt-in)
		MetricsEnabled: false,
		MetricsPort:    9090,

		// Influx defaults
		InfluxInterval: 1 * time.Minute,
	}
}

// Validate returns a list of non-fatal configuration warnings, such as
// incomplete mail-relay credential combinations. An unconfigured relay is
// not fatal: the email and SMS channels then report structured failures.
func (c *Config) Validate() []string {
	var warnings []string
	checks := []struct {
		cond bool
		msg  string
	}{
		{c.SMTPHost != "" && c.SMTPFrom == "", "smtp host provided but from-address is missing (SMTPFrom)"},
		{c.SMTPFrom != "" && c.SMTPHost == "", "smtp from-address provided but host is missing (SMTPHost)"},
		{c.SMTPUser != "" && c.SMTPPass == "", "smtp user provided but password is missing"},
		{c.SMTPPass != "" && c.SMTPUser == "", "smtp password provided but user is missing"},
		{c.SMTPTLSMode != "" && c.SMTPTLSMode != "starttls" && c.SMTPTLSMode != "none",
			fmt.Sprintf("unknown smtp_tls_mode %q (expected \"starttls\" or \"none\")", c.SMTPTLSMode)},
		{c.InfluxURL != "" && c.InfluxBucket == "", "influx URL provided but bucket is missing"},
		{c.DeliverTimeout <= 0, "deliver_timeout must be positive"},
	}
	for _, ch := range checks {
		if ch.cond {
			warnings = append(warnings, ch.msg)
		}
	}
	return warnings
}

// LoadConfigFromFile loads config from a YAML/JSON file
func LoadConfigFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
