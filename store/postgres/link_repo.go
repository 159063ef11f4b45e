package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/halcyonbank/authcore/store"
)

// LinkRepo is the Postgres store.LinkStore.
type LinkRepo struct {
	db DB
}

// NewLinkRepo returns a link token repository over db.
func NewLinkRepo(db DB) *LinkRepo {
	return &LinkRepo{db: db}
}

// Create inserts the token record.
func (r *LinkRepo) Create(ctx context.Context, token store.LinkToken) error {
	const q = `
		INSERT INTO link_tokens
			(id, user_id, token_hash, kind, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, q,
		token.ID, token.UserID, token.TokenHash,
		string(token.Kind), token.ExpiresAt, token.CreatedAt)
	if err != nil {
		return fmt.Errorf("create link token: %w", err)
	}
	return nil
}

// FindByHash returns the record for a token hash in any state.
func (r *LinkRepo) FindByHash(ctx context.Context, tokenHash string) (store.LinkToken, error) {
	const q = `
		SELECT id, user_id, token_hash, kind, expires_at, created_at, used_at
		FROM link_tokens
		WHERE token_hash = $1`

	var (
		token store.LinkToken
		kind  string
	)
	err := r.db.QueryRow(ctx, q, tokenHash).Scan(
		&token.ID, &token.UserID, &token.TokenHash, &kind,
		&token.ExpiresAt, &token.CreatedAt, &token.UsedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.LinkToken{}, store.ErrNotFound
		}
		return store.LinkToken{}, fmt.Errorf("find link token: %w", err)
	}
	token.Kind = store.LinkKind(kind)
	return token, nil
}

// MarkUsed consumes the token. The used_at IS NULL guard guarantees a
// single winner across concurrent redeemers.
func (r *LinkRepo) MarkUsed(ctx context.Context, id string) (bool, error) {
	const q = `
		UPDATE link_tokens
		SET used_at = now()
		WHERE id = $1 AND used_at IS NULL`

	tag, err := r.db.Exec(ctx, q, id)
	if err != nil {
		return false, fmt.Errorf("mark link token used: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
