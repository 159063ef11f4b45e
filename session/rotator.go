package session

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/halcyonbank/authcore/internal"
	"github.com/halcyonbank/authcore/jwt"
	"github.com/halcyonbank/authcore/store"
)

var (
	// ErrTokenInvalid covers unknown, revoked, and already-consumed
	// refresh tokens. The three cases are deliberately indistinguishable.
	ErrTokenInvalid = errors.New("session: refresh token invalid")
	// ErrTokenExpired reports a known, unrevoked token past its expiry.
	ErrTokenExpired = errors.New("session: refresh token expired")
	// ErrDeviceMismatch reports a fingerprint mismatch. By the time the
	// caller sees it, every session of the user has been revoked.
	ErrDeviceMismatch = errors.New("session: device fingerprint mismatch")
)

// Revocation reasons recorded on refresh tokens.
const (
	ReasonRotation       = "rotation"
	ReasonLogout         = "logout"
	ReasonLogoutAll      = "logout_all"
	ReasonDeviceMismatch = "device_mismatch"
)

// DeviceMismatchError carries the blast radius of a fingerprint
// mismatch. errors.Is(err, ErrDeviceMismatch) matches it.
type DeviceMismatchError struct {
	UserID  string
	Revoked int64
}

func (e *DeviceMismatchError) Error() string {
	return fmt.Sprintf("session: device fingerprint mismatch for user %s (%d sessions revoked)", e.UserID, e.Revoked)
}

// Is makes the typed error match the package sentinel.
func (e *DeviceMismatchError) Is(target error) bool {
	return target == ErrDeviceMismatch
}

// Pair is one freshly issued access + refresh credential set.
type Pair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// Config carries the refresh token lifetime.
type Config struct {
	RefreshTTL time.Duration
}

// Rotator mints sessions and rotates refresh tokens over a RefreshStore.
type Rotator struct {
	sessions store.RefreshStore
	tokens   *jwt.Manager
	ttl      time.Duration
}

// NewRotator validates cfg and returns a ready Rotator.
func NewRotator(sessions store.RefreshStore, tokens *jwt.Manager, cfg Config) (*Rotator, error) {
	if sessions == nil {
		return nil, errors.New("session: refresh store is required")
	}
	if tokens == nil {
		return nil, errors.New("session: token manager is required")
	}
	if cfg.RefreshTTL <= 0 {
		return nil, errors.New("session: invalid refresh TTL")
	}

	return &Rotator{sessions: sessions, tokens: tokens, ttl: cfg.RefreshTTL}, nil
}

// Issue mints a new session for userID bound to fingerprint and returns
// the credential pair. The raw refresh token exists only in the return
// value; the store sees its hash.
func (r *Rotator) Issue(ctx context.Context, userID string, fingerprint string) (Pair, error) {
	raw, hash, err := internal.NewSecretToken()
	if err != nil {
		return Pair{}, err
	}

	now := time.Now()
	record := store.RefreshToken{
		ID:                uuid.NewString(),
		UserID:            userID,
		TokenHash:         hash,
		DeviceFingerprint: fingerprint,
		ExpiresAt:         now.Add(r.ttl),
		CreatedAt:         now,
	}
	if err := r.sessions.Create(ctx, record); err != nil {
		return Pair{}, err
	}

	access, accessExpiresAt, err := r.tokens.IssueAccess(userID)
	if err != nil {
		return Pair{}, err
	}

	return Pair{
		AccessToken:      access,
		AccessExpiresAt:  accessExpiresAt,
		RefreshToken:     raw,
		RefreshExpiresAt: record.ExpiresAt,
	}, nil
}

// Rotate consumes raw and issues a replacement pair. The checks run in
// a fixed order: existence, revocation, expiry, device binding, then
// the consuming revoke. Under concurrent presentation of the same token
// the store's conditional update lets exactly one caller through;
// losers get ErrTokenInvalid.
func (r *Rotator) Rotate(ctx context.Context, raw string, fingerprint string) (Pair, error) {
	record, err := r.sessions.FindByHash(ctx, internal.HashToken(raw))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Pair{}, ErrTokenInvalid
		}
		return Pair{}, err
	}

	if record.RevokedAt != nil {
		return Pair{}, ErrTokenInvalid
	}
	if time.Now().After(record.ExpiresAt) {
		return Pair{}, ErrTokenExpired
	}

	if subtle.ConstantTimeCompare([]byte(record.DeviceFingerprint), []byte(fingerprint)) != 1 {
		revoked, revokeErr := r.sessions.RevokeAllForUser(ctx, record.UserID, ReasonDeviceMismatch)
		if revokeErr != nil {
			return Pair{}, revokeErr
		}
		return Pair{}, &DeviceMismatchError{UserID: record.UserID, Revoked: revoked}
	}

	consumed, err := r.sessions.Revoke(ctx, record.ID, ReasonRotation)
	if err != nil {
		return Pair{}, err
	}
	if !consumed {
		// lost the race to a concurrent presenter
		return Pair{}, ErrTokenInvalid
	}

	return r.Issue(ctx, record.UserID, fingerprint)
}

// Owner returns the user a live refresh token belongs to without
// consuming it. Unknown and revoked tokens yield ErrTokenInvalid;
// expired ones ErrTokenExpired.
func (r *Rotator) Owner(ctx context.Context, raw string) (string, error) {
	record, err := r.sessions.FindByHash(ctx, internal.HashToken(raw))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrTokenInvalid
		}
		return "", err
	}
	if record.RevokedAt != nil {
		return "", ErrTokenInvalid
	}
	if time.Now().After(record.ExpiresAt) {
		return "", ErrTokenExpired
	}
	return record.UserID, nil
}

// RevokeOne revokes the session behind raw. Unknown and already-revoked
// tokens are a no-op: logout is idempotent.
func (r *Rotator) RevokeOne(ctx context.Context, raw string) error {
	record, err := r.sessions.FindByHash(ctx, internal.HashToken(raw))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}

	if _, err := r.sessions.Revoke(ctx, record.ID, ReasonLogout); err != nil {
		return err
	}
	return nil
}

// RevokeAll revokes every live session of the user with the given
// reason and returns how many were revoked.
func (r *Rotator) RevokeAll(ctx context.Context, userID string, reason string) (int64, error) {
	return r.sessions.RevokeAllForUser(ctx, userID, reason)
}
