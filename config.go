package authcore

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// ---------------------------------------------------------------------------
// Token signing
// ---------------------------------------------------------------------------

// JWTConfig controls access token signing. Secret must be at least 32
// bytes; a shorter secret fails Build, never a request.
type JWTConfig struct {
	Secret    []byte
	AccessTTL time.Duration
}

// ---------------------------------------------------------------------------
// Credential hashing
// ---------------------------------------------------------------------------

// PasswordConfig controls bcrypt hashing. Zero Cost means 12.
type PasswordConfig struct {
	Cost int
}

// ---------------------------------------------------------------------------
// Session lifetime
// ---------------------------------------------------------------------------

// RefreshConfig controls refresh token sessions.
type RefreshConfig struct {
	TTL time.Duration
}

// ---------------------------------------------------------------------------
// Single-use link tokens
// ---------------------------------------------------------------------------

// MagicLinkConfig controls magic-link login tokens.
type MagicLinkConfig struct {
	TTL time.Duration
}

// PasswordResetConfig controls password-reset tokens.
type PasswordResetConfig struct {
	TTL time.Duration
}

// ---------------------------------------------------------------------------
// Consent versions
// ---------------------------------------------------------------------------

// ConsentConfig names the policy versions recorded at signup.
type ConsentConfig struct {
	TermsVersion          string
	PrivacyVersion        string
	DataProcessingVersion string
}

// ---------------------------------------------------------------------------
// Audit + metrics
// ---------------------------------------------------------------------------

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls in-process counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// Config is the full engine configuration. Start from DefaultConfig and
// set the signing secret; everything else has working defaults.
type Config struct {
	JWT           JWTConfig
	Password      PasswordConfig
	Refresh       RefreshConfig
	MagicLink     MagicLinkConfig
	PasswordReset PasswordResetConfig
	Consent       ConsentConfig
	Audit         AuditConfig
	Metrics       MetricsConfig
}

// DefaultConfig returns the production defaults: 15 minute access
// tokens, 7 day refresh sessions, 15 minute magic links, 1 hour reset
// tokens, bcrypt cost 12.
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL: 15 * time.Minute,
		},
		Password: PasswordConfig{
			Cost: 12,
		},
		Refresh: RefreshConfig{
			TTL: 7 * 24 * time.Hour,
		},
		MagicLink: MagicLinkConfig{
			TTL: 15 * time.Minute,
		},
		PasswordReset: PasswordResetConfig{
			TTL: time.Hour,
		},
		Consent: ConsentConfig{
			TermsVersion:          "1.0",
			PrivacyVersion:        "1.0",
			DataProcessingVersion: "1.0",
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func (c Config) validate() error {
	if len(c.JWT.Secret) < 32 {
		return errors.New("jwt secret must be at least 32 bytes")
	}
	if c.JWT.AccessTTL <= 0 {
		return errors.New("access TTL must be positive")
	}
	if c.Refresh.TTL <= 0 {
		return errors.New("refresh TTL must be positive")
	}
	if c.MagicLink.TTL <= 0 {
		return errors.New("magic link TTL must be positive")
	}
	if c.PasswordReset.TTL <= 0 {
		return errors.New("password reset TTL must be positive")
	}
	if c.Password.Cost != 0 && (c.Password.Cost < bcrypt.MinCost || c.Password.Cost > bcrypt.MaxCost) {
		return errors.New("password cost out of bcrypt range")
	}
	return nil
}
