package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.SMTPPort != 587 {
		t.Errorf("SMTPPort = %d", cfg.SMTPPort)
	}
	if cfg.SMTPTLSMode != "starttls" {
		t.Errorf("SMTPTLSMode = %q", cfg.SMTPTLSMode)
	}
	if cfg.NATSURL != "nats://127.0.0.1:4222" {
		t.Errorf("NATSURL = %q", cfg.NATSURL)
	}
	if cfg.DeliverTimeout != 30*time.Second {
		t.Errorf("DeliverTimeout = %v", cfg.DeliverTimeout)
	}
	if cfg.MetricsEnabled {
		t.Error("metrics should default off")
	}
	if warnings := cfg.Validate(); len(warnings) != 0 {
		t.Errorf("default config should validate cleanly, got %v", warnings)
	}
}

func TestValidateWarnings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SMTPHost = "smtp.example.com" // from missing
	cfg.SMTPUser = "user"             // pass missing
	cfg.SMTPTLSMode = "implicit"      // unknown mode
	cfg.InfluxURL = "http://influx:8086"
	cfg.DeliverTimeout = 0

	warnings := cfg.Validate()
	if len(warnings) != 5 {
		t.Fatalf("got %d warnings: %v", len(warnings), warnings)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
smtp_host: smtp.example.com
smtp_from: notify@example.com
nats_url: nats://queue:4222
deliver_timeout: 45s
metrics_enabled: true
metrics_port: 9999
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFromFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFromFile: %v", err)
	}
	if cfg.SMTPHost != "smtp.example.com" || cfg.SMTPFrom != "notify@example.com" {
		t.Errorf("smtp = %q/%q", cfg.SMTPHost, cfg.SMTPFrom)
	}
	if cfg.NATSURL != "nats://queue:4222" {
		t.Errorf("NATSURL = %q", cfg.NATSURL)
	}
	if cfg.DeliverTimeout != 45*time.Second {
		t.Errorf("DeliverTimeout = %v", cfg.DeliverTimeout)
	}
	if !cfg.MetricsEnabled || cfg.MetricsPort != 9999 {
		t.Errorf("metrics = %v/%d", cfg.MetricsEnabled, cfg.MetricsPort)
	}
	// File values merge over defaults; untouched fields keep defaults.
	if cfg.SMTPPort != 587 {
		t.Errorf("SMTPPort = %d, want default 587", cfg.SMTPPort)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("BUILDMATE_SMTP_HOST", "relay.internal")
	t.Setenv("BUILDMATE_SMTP_PORT", "2525")
	t.Setenv("BUILDMATE_SMTP_FROM", "noreply@buildmate.example")
	t.Setenv("BUILDMATE_NATS_URL", "nats://broker:4222")
	t.Setenv("BUILDMATE_DELIVER_TIMEOUT", "1m")
	t.Setenv("BUILDMATE_POSTGRES_DSN", "postgres://app@db/notify")
	t.Setenv("BUILDMATE_METRICS_ENABLED", "true")
	t.Setenv("BUILDMATE_INFLUX_URL", "http://influx:8086")
	t.Setenv("BUILDMATE_INFLUX_BUCKET", "notify")
	t.Setenv("BUILDMATE_INFLUX_INTERVAL", "30s")

	cfg := DefaultConfig()
	if err := ApplyEnvOverrides(cfg); err != nil {
		t.Fatalf("ApplyEnvOverrides: %v", err)
	}
	if cfg.SMTPHost != "relay.internal" || cfg.SMTPPort != 2525 {
		t.Errorf("smtp = %q:%d", cfg.SMTPHost, cfg.SMTPPort)
	}
	if cfg.NATSURL != "nats://broker:4222" {
		t.Errorf("NATSURL = %q", cfg.NATSURL)
	}
	if cfg.DeliverTimeout != time.Minute {
		t.Errorf("DeliverTimeout = %v", cfg.DeliverTimeout)
	}
	if cfg.PostgresDSN != "postgres://app@db/notify" {
		t.Errorf("PostgresDSN = %q", cfg.PostgresDSN)
	}
	if !cfg.MetricsEnabled {
		t.Error("MetricsEnabled not applied")
	}
	if cfg.InfluxInterval != 30*time.Second {
		t.Errorf("InfluxInterval = %v", cfg.InfluxInterval)
	}
}

func TestApplyEnvOverridesInvalidValues(t *testing.T) {
	cases := []struct {
		env string
		val string
	}{
		{"BUILDMATE_SMTP_PORT", "abc"},
		{"BUILDMATE_DELIVER_TIMEOUT", "soon"},
		{"BUILDMATE_METRICS_ENABLED", "maybe"},
		{"BUILDMATE_METRICS_PORT", "http"},
		{"BUILDMATE_INFLUX_INTERVAL", "5"},
	}
	for _, tc := range cases {
		t.Run(tc.env, func(t *testing.T) {
			t.Setenv(tc.env, tc.val)
			if err := ApplyEnvOverrides(DefaultConfig()); err == nil {
				t.Errorf("expected error for %s=%s", tc.env, tc.val)
			}
		})
	}
}
