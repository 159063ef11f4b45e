package authcore

import (
	"context"
	"time"

	"github.com/halcyonbank/authcore/internal/audit"
	"github.com/halcyonbank/authcore/session"
	"github.com/halcyonbank/authcore/store"
)

// AuditEvent is the record the Engine hands to the host's audit sink.
type AuditEvent = audit.Event

// AuditSink receives audit events. Hosts implement it to persist the
// security trail; delivery is asynchronous and never blocks a flow.
type AuditSink = audit.Sink

// NoOpAuditSink drops every event.
type NoOpAuditSink = audit.NoOpSink

// ChannelAuditSink buffers events in a channel for the host to drain.
type ChannelAuditSink = audit.ChannelSink

// NewChannelAuditSink returns a ChannelAuditSink with the given buffer.
func NewChannelAuditSink(buffer int) *ChannelAuditSink {
	return audit.NewChannelSink(buffer)
}

// TokenPair is one issued access + refresh credential set.
type TokenPair = session.Pair

// UserDirectory is the host's account storage. Postgres deployments use
// store/postgres.UserDirectory; tests use store.MemoryUserDirectory.
// Lookups that match nothing return store.ErrNotFound; CreateUser
// returns store.ErrEmailTaken on a case-insensitive email collision.
type UserDirectory interface {
	FindByEmail(ctx context.Context, email string) (store.User, error)
	FindByID(ctx context.Context, id string) (store.User, error)
	CreateUser(ctx context.Context, email string, passwordHash string) (store.User, error)
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	MarkEmailVerified(ctx context.Context, id string) error
}

// ConsentLedger records the consent acknowledgements collected at
// signup. The Engine never reads consents back.
type ConsentLedger interface {
	CreateConsent(ctx context.Context, userID string, kind string, version string, ip string, userAgent string) error
}

// Consent kinds recorded at signup.
const (
	ConsentTerms          = "terms"
	ConsentPrivacy        = "privacy"
	ConsentDataProcessing = "data_processing"
)

// EmailDispatcher hands outbound messages to the host's mail system.
// The raw token in each call is the only copy that will ever exist;
// the engine stores hashes.
type EmailDispatcher interface {
	SendMagicLink(ctx context.Context, email string, token string) error
	SendPasswordReset(ctx context.Context, email string, token string) error
}

// ValidationResult is the outcome of an input validator. Errors lists
// the rejected aspects in a stable order.
type ValidationResult struct {
	Valid  bool
	Errors []string
}

// EmailValidator checks a signup email address.
type EmailValidator func(email string) ValidationResult

// PasswordValidator checks a candidate password against policy.
type PasswordValidator func(password string) ValidationResult

// PublicUser is the client-safe projection of an account. It never
// carries the credential hash.
type PublicUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

// SignupRequest carries the signup inputs.
type SignupRequest struct {
	Email                string
	Password             string
	AcceptTerms          bool
	AcceptPrivacy        bool
	AcceptDataProcessing bool
}

// SignupResult is the outcome of a successful signup.
type SignupResult struct {
	User PublicUser
	// VerificationExpiresAt is when the emailed verification link dies.
	// Zero when the verification email could not be issued.
	VerificationExpiresAt time.Time
}

// AuthResult is the outcome of any flow that ends in a logged-in user.
type AuthResult struct {
	User   PublicUser
	Tokens TokenPair
}

// MessageResult is the uniform response of the enumeration-safe request
// flows: the same message whether or not the account exists.
type MessageResult struct {
	Message string
}

// LogoutResult reports a revocation operation.
type LogoutResult struct {
	RevokedSessions int64
}
