package authcore

import (
	"testing"
	"time"
)

func TestDefaultConfigValues(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.JWT.AccessTTL != 15*time.Minute {
		t.Fatalf("unexpected access TTL %v", cfg.JWT.AccessTTL)
	}
	if cfg.Refresh.TTL != 7*24*time.Hour {
		t.Fatalf("unexpected refresh TTL %v", cfg.Refresh.TTL)
	}
	if cfg.MagicLink.TTL != 15*time.Minute {
		t.Fatalf("unexpected magic link TTL %v", cfg.MagicLink.TTL)
	}
	if cfg.PasswordReset.TTL != time.Hour {
		t.Fatalf("unexpected reset TTL %v", cfg.PasswordReset.TTL)
	}
	if cfg.Password.Cost != 12 {
		t.Fatalf("unexpected bcrypt cost %d", cfg.Password.Cost)
	}
	if !cfg.Audit.Enabled || !cfg.Audit.DropIfFull {
		t.Fatal("audit must default to enabled with drop-if-full")
	}
	if !cfg.Metrics.Enabled {
		t.Fatal("metrics must default to enabled")
	}
}

func TestConfigValidateRejections(t *testing.T) {
	base := func() Config {
		cfg := DefaultConfig()
		cfg.JWT.Secret = testSecret
		return cfg
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"short secret", func(c *Config) { c.JWT.Secret = []byte("short") }},
		{"zero access TTL", func(c *Config) { c.JWT.AccessTTL = 0 }},
		{"negative refresh TTL", func(c *Config) { c.Refresh.TTL = -time.Hour }},
		{"zero magic link TTL", func(c *Config) { c.MagicLink.TTL = 0 }},
		{"zero reset TTL", func(c *Config) { c.PasswordReset.TTL = 0 }},
		{"cost above range", func(c *Config) { c.Password.Cost = 32 }},
		{"cost below range", func(c *Config) { c.Password.Cost = 2 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(&cfg)
			if err := cfg.validate(); err == nil {
				t.Fatal("expected validate to fail")
			}
		})
	}

	cfg := base()
	if err := cfg.validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cfg = base()
	cfg.Password.Cost = 0
	if err := cfg.validate(); err != nil {
		t.Fatalf("zero cost means default and must validate: %v", err)
	}
}
