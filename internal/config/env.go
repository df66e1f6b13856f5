package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ApplyEnvOverrides reads configuration values from environment variables and
// overrides fields in the provided Config. Returns an error if parsing fails.
//
// Environment variables supported:
// - BUILDMATE_SMTP_HOST / _PORT / _USER / _PASS / _FROM / _TLS_MODE
// - BUILDMATE_NATS_URL (string, e.g. nats://queue:4222)
// - BUILDMATE_DELIVER_TIMEOUT (duration, e.g. "30s")
// - BUILDMATE_POSTGRES_DSN (string)
// - BUILDMATE_METRICS_ENABLED (bool, "true"/"false")
// - BUILDMATE_METRICS_PORT (int, e.g. 9090)
// - BUILDMATE_INFLUX_URL / _TOKEN / _ORG / _BUCKET / _INTERVAL
func ApplyEnvOverrides(cfg *Config) error {
	if err := applyMailEnv(cfg); err != nil {
		return err
	}
	if err := applyQueueEnv(cfg); err != nil {
		return err
	}
	if err := applyMetricsEnv(cfg); err != nil {
		return err
	}
	if err := applyInfluxEnv(cfg); err != nil {
		return err
	}
	return nil
}

// applyMailEnv consolidates mail-relay env parsing
func applyMailEnv(cfg *Config) error {
	if v := os.Getenv("BUILDMATE_SMTP_HOST"); v != "" {
		cfg.SMTPHost = v
	}
	if v := os.Getenv("BUILDMATE_SMTP_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid BUILDMATE_SMTP_PORT: %w", err)
		}
		cfg.SMTPPort = p
	}
	if v := os.Getenv("BUILDMATE_SMTP_USER"); v != "" {
		cfg.SMTPUser = v
	}
	if v := os.Getenv("BUILDMATE_SMTP_PASS"); v != "" {
		cfg.SMTPPass = v
	}
	if v := os.Getenv("BUILDMATE_SMTP_FROM"); v != "" {
		cfg.SMTPFrom = v
	}
	if v := os.Getenv("BUILDMATE_SMTP_TLS_MODE"); v != "" {
		cfg.SMTPTLSMode = v
	}
	return nil
}

// applyQueueEnv consolidates queue and persistence env parsing
func applyQueueEnv(cfg *Config) error {
	if v := os.Getenv("BUILDMATE_NATS_URL"); v != "" {
		cfg.NATSURL = v
	}
	if v := os.Getenv("BUILDMATE_DELIVER_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid BUILDMATE_DELIVER_TIMEOUT: %w", err)
		}
		cfg.DeliverTimeout = d
	}
	if v := os.Getenv("BUILDMATE_POSTGRES_DSN"); v != "" {
		cfg.PostgresDSN = v
	}
	return nil
}

// applyMetricsEnv consolidates metrics-related env parsing
func applyMetricsEnv(cfg *Config) error {
	if err := setBoolEnv("BUILDMATE_METRICS_ENABLED", func(b bool) { cfg.MetricsEnabled = b }); err != nil {
		return err
	}
	if v := os.Getenv("BUILDMATE_METRICS_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid BUILDMATE_METRICS_PORT: %w", err)
		}
		cfg.MetricsPort = p
	}
	return nil
}

// applyInfluxEnv consolidates Influx-related env parsing
func applyInfluxEnv(cfg *Config) error {
	if v := os.Getenv("BUILDMATE_INFLUX_URL"); v != "" {
		cfg.InfluxURL = v
	}
	if v := os.Getenv("BUILDMATE_INFLUX_TOKEN"); v != "" {
		cfg.InfluxToken = v
	}
	if v := os.Getenv("BUILDMATE_INFLUX_ORG"); v != "" {
		cfg.InfluxOrg = v
	}
	if v := os.Getenv("BUILDMATE_INFLUX_BUCKET"); v != "" {
		cfg.InfluxBucket = v
	}
	if v := os.Getenv("BUILDMATE_INFLUX_INTERVAL"); v != "" {
		dur, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid BUILDMATE_INFLUX_INTERVAL: %w", err)
		}
		cfg.InfluxInterval = dur
	}
	return nil
}

// setBoolEnv is a small helper to parse boolean environment variables
func setBoolEnv(env string, setter func(bool)) error {
	if v := os.Getenv(env); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", env, err)
		}
		setter(b)
	}
	return nil
}
