package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/halcyonbank/authcore/store"
)

// RefreshRepo is the Postgres store.RefreshStore.
type RefreshRepo struct {
	db DB
}

// NewRefreshRepo returns a refresh token repository over db.
func NewRefreshRepo(db DB) *RefreshRepo {
	return &RefreshRepo{db: db}
}

// Create inserts the token record.
func (r *RefreshRepo) Create(ctx context.Context, token store.RefreshToken) error {
	const q = `
		INSERT INTO refresh_tokens
			(id, user_id, token_hash, device_fingerprint, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, q,
		token.ID, token.UserID, token.TokenHash,
		token.DeviceFingerprint, token.ExpiresAt, token.CreatedAt)
	if err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

// FindByHash returns the record for a token hash in any state.
func (r *RefreshRepo) FindByHash(ctx context.Context, tokenHash string) (store.RefreshToken, error) {
	const q = `
		SELECT id, user_id, token_hash, device_fingerprint,
		       expires_at, created_at, revoked_at, revoked_reason
		FROM refresh_tokens
		WHERE token_hash = $1`

	var token store.RefreshToken
	err := r.db.QueryRow(ctx, q, tokenHash).Scan(
		&token.ID, &token.UserID, &token.TokenHash, &token.DeviceFingerprint,
		&token.ExpiresAt, &token.CreatedAt, &token.RevokedAt, &token.RevokedReason)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.RefreshToken{}, store.ErrNotFound
		}
		return store.RefreshToken{}, fmt.Errorf("find refresh token: %w", err)
	}
	return token, nil
}

// Revoke marks the token revoked if it is still live. The conditional
// WHERE clause makes the transition atomic: of any number of concurrent
// callers exactly one sees an affected row.
func (r *RefreshRepo) Revoke(ctx context.Context, id string, reason string) (bool, error) {
	const q = `
		UPDATE refresh_tokens
		SET revoked_at = now(), revoked_reason = $2
		WHERE id = $1 AND revoked_at IS NULL`

	tag, err := r.db.Exec(ctx, q, id, reason)
	if err != nil {
		return false, fmt.Errorf("revoke refresh token: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// RevokeAllForUser revokes every live token of the user in one statement.
func (r *RefreshRepo) RevokeAllForUser(ctx context.Context, userID string, reason string) (int64, error) {
	const q = `
		UPDATE refresh_tokens
		SET revoked_at = now(), revoked_reason = $2
		WHERE user_id = $1 AND revoked_at IS NULL`

	tag, err := r.db.Exec(ctx, q, userID, reason)
	if err != nil {
		return 0, fmt.Errorf("revoke refresh tokens for user: %w", err)
	}
	return tag.RowsAffected(), nil
}
