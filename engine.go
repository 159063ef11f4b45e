package authcore

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/halcyonbank/authcore/internal/audit"
	"github.com/halcyonbank/authcore/internal/flows"
	"github.com/halcyonbank/authcore/internal/linktoken"
	"github.com/halcyonbank/authcore/jwt"
	"github.com/halcyonbank/authcore/password"
	"github.com/halcyonbank/authcore/session"
	"github.com/halcyonbank/authcore/store"
)

// Engine is the credential-issuance core. Construct it with a Builder;
// the zero value is not usable. Every method is safe for concurrent
// use.
type Engine struct {
	config Config

	users    UserDirectory
	consents ConsentLedger
	email    EmailDispatcher

	hasher  *password.Hasher
	tokens  *jwt.Manager
	rotator *session.Rotator
	links   *linktoken.Issuer

	audit   *audit.Dispatcher
	metrics *Metrics
	logger  *slog.Logger

	validateEmail    EmailValidator
	validatePassword PasswordValidator
}

// Close drains the audit buffer and stops the dispatcher goroutine.
// Call it on shutdown; the Engine is unusable afterwards only in the
// sense that new audit events are dropped.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.audit.Close()
}

// MetricsSnapshot returns a point-in-time copy of the engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	return e.metrics.Snapshot()
}

// AuditDropped reports how many audit events were discarded because the
// buffer was full.
func (e *Engine) AuditDropped() uint64 {
	return e.audit.Dropped()
}

func (e *Engine) metricInc(id int) {
	e.metrics.Inc(MetricID(id))
}

func (e *Engine) metricObserve(id int, d time.Duration) {
	e.metrics.Observe(MetricID(id), d)
}

func (e *Engine) warn(msg string, args ...any) {
	e.logger.Warn(msg, args...)
}

// accountStatusError gates flows on account lifecycle state. Anything
// but active fails closed, and it fails with the same sentinel as a
// wrong password so the status itself does not leak.
func accountStatusError(status string) error {
	if store.UserStatus(status) == store.StatusActive {
		return nil
	}
	return ErrInvalidCredentials
}

func flowUser(u store.User) flows.UserRecord {
	return flows.UserRecord{
		ID:            u.ID,
		Email:         u.Email,
		PasswordHash:  u.PasswordHash,
		EmailVerified: u.EmailVerified,
		Status:        string(u.Status),
	}
}

func flowPair(p session.Pair) flows.TokenPair {
	return flows.TokenPair{
		AccessToken:      p.AccessToken,
		AccessExpiresAt:  p.AccessExpiresAt,
		RefreshToken:     p.RefreshToken,
		RefreshExpiresAt: p.RefreshExpiresAt,
	}
}

func enginePair(p flows.TokenPair) TokenPair {
	return TokenPair{
		AccessToken:      p.AccessToken,
		AccessExpiresAt:  p.AccessExpiresAt,
		RefreshToken:     p.RefreshToken,
		RefreshExpiresAt: p.RefreshExpiresAt,
	}
}

func flowPublicUser(u flows.UserRecord) PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email, EmailVerified: u.EmailVerified}
}

// lookupByEmail adapts the directory to the flow shape: absence is a
// boolean, not an error, because most flows treat it as a branch rather
// than a failure.
func (e *Engine) lookupByEmail(ctx context.Context, email string) (flows.UserRecord, bool, error) {
	user, err := e.users.FindByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return flows.UserRecord{}, false, nil
		}
		return flows.UserRecord{}, false, err
	}
	return flowUser(user), true, nil
}

func (e *Engine) lookupByID(ctx context.Context, id string) (flows.UserRecord, bool, error) {
	user, err := e.users.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return flows.UserRecord{}, false, nil
		}
		return flows.UserRecord{}, false, err
	}
	return flowUser(user), true, nil
}

func (e *Engine) issueTokens(ctx context.Context, userID, fingerprint string) (flows.TokenPair, error) {
	pair, err := e.rotator.Issue(ctx, userID, fingerprint)
	if err != nil {
		return flows.TokenPair{}, err
	}
	return flowPair(pair), nil
}

func (e *Engine) stampLastLogin(ctx context.Context, userID string) error {
	return e.users.UpdateLastLogin(ctx, userID, time.Now().UTC())
}

// validateLink adapts the link token issuer for one kind, collapsing
// every rejection to the client-facing sentinel.
func (e *Engine) validateLink(kind store.LinkKind) func(ctx context.Context, raw string) (flows.LinkRecord, error) {
	return func(ctx context.Context, raw string) (flows.LinkRecord, error) {
		record, err := e.links.Validate(ctx, raw, kind)
		if err != nil {
			if isLinkInvalid(err) {
				return flows.LinkRecord{}, ErrTokenInvalid
			}
			return flows.LinkRecord{}, err
		}
		return flows.LinkRecord{ID: record.ID, UserID: record.UserID}, nil
	}
}

func (e *Engine) consumeLink(ctx context.Context, link flows.LinkRecord) error {
	if err := e.links.Consume(ctx, store.LinkToken{ID: link.ID}); err != nil {
		if isLinkInvalid(err) {
			return ErrTokenInvalid
		}
		return err
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}

func isLinkInvalid(err error) bool {
	return errors.Is(err, linktoken.ErrInvalid)
}

func validationError(fields []string) error {
	return ErrValidation.WithFields(fields...)
}

func validatorFields(v func(string) ValidationResult) func(string) []string {
	return func(input string) []string {
		result := v(input)
		if result.Valid {
			return nil
		}
		if len(result.Errors) == 0 {
			return []string{"input"}
		}
		return result.Errors
	}
}
