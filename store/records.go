package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound reports that no record matches the lookup key.
	ErrNotFound = errors.New("store: not found")
	// ErrEmailTaken reports that another user already owns the email,
	// compared case-insensitively.
	ErrEmailTaken = errors.New("store: email already taken")
)

// UserStatus is the lifecycle state of an account.
type UserStatus string

const (
	// StatusActive allows every flow.
	StatusActive UserStatus = "active"
	// StatusSuspended blocks credential and token flows until lifted.
	StatusSuspended UserStatus = "suspended"
	// StatusDeleted is terminal; the row is kept for audit only.
	StatusDeleted UserStatus = "deleted"
)

// LinkKind distinguishes the two single-use link token families.
type LinkKind string

const (
	// KindMagicLink tokens log the holder in.
	KindMagicLink LinkKind = "magic_link"
	// KindPasswordReset tokens authorize one password change.
	KindPasswordReset LinkKind = "password_reset"
)

// User is the account record as the engine sees it. PasswordHash is
// empty for accounts created through magic-link signup.
type User struct {
	ID            string
	Email         string
	PasswordHash  string
	EmailVerified bool
	Status        UserStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
	LastLoginAt   *time.Time
}

// RefreshToken is one session credential. TokenHash is the SHA-256 of
// the raw token; RevokedAt/RevokedReason are set exactly once.
type RefreshToken struct {
	ID                string
	UserID            string
	TokenHash         string
	DeviceFingerprint string
	ExpiresAt         time.Time
	CreatedAt         time.Time
	RevokedAt         *time.Time
	RevokedReason     *string
}

// LinkToken is one single-use magic-link or password-reset credential.
type LinkToken struct {
	ID        string
	UserID    string
	TokenHash string
	Kind      LinkKind
	ExpiresAt time.Time
	CreatedAt time.Time
	UsedAt    *time.Time
}

// RefreshStore persists session credentials.
type RefreshStore interface {
	Create(ctx context.Context, token RefreshToken) error
	// FindByHash returns the record for a token hash whether or not it
	// is revoked or expired; callers decide what the state means.
	FindByHash(ctx context.Context, tokenHash string) (RefreshToken, error)
	// Revoke marks the token revoked with the given reason. The boolean
	// reports whether this call performed the transition; a token that
	// was already revoked yields false with no error.
	Revoke(ctx context.Context, id string, reason string) (bool, error)
	// RevokeAllForUser revokes every live token of the user and returns
	// how many were revoked.
	RevokeAllForUser(ctx context.Context, userID string, reason string) (int64, error)
}

// LinkStore persists single-use link tokens.
type LinkStore interface {
	Create(ctx context.Context, token LinkToken) error
	FindByHash(ctx context.Context, tokenHash string) (LinkToken, error)
	// MarkUsed consumes the token. At most one caller gets true.
	MarkUsed(ctx context.Context, id string) (bool, error)
}
