package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyonbank/authcore/store"
)

func TestLinkRepoCreate(t *testing.T) {
	mock := newMockPool(t)
	repo := NewLinkRepo(mock)

	now := time.Now()
	token := store.LinkToken{
		ID:        "lt-1",
		UserID:    "user-1",
		TokenHash: "hash-1",
		Kind:      store.KindMagicLink,
		ExpiresAt: now.Add(15 * time.Minute),
		CreatedAt: now,
	}

	mock.ExpectExec("INSERT INTO link_tokens").
		WithArgs("lt-1", "user-1", "hash-1", "magic_link", token.ExpiresAt, token.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), token))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLinkRepoFindByHash(t *testing.T) {
	mock := newMockPool(t)
	repo := NewLinkRepo(mock)

	now := time.Now()
	rows := pgxmock.NewRows([]string{
		"id", "user_id", "token_hash", "kind", "expires_at", "created_at", "used_at",
	}).AddRow("lt-1", "user-1", "hash-1", "password_reset", now.Add(time.Hour), now, nil)

	mock.ExpectQuery("SELECT (.+) FROM link_tokens").
		WithArgs("hash-1").
		WillReturnRows(rows)

	got, err := repo.FindByHash(context.Background(), "hash-1")
	require.NoError(t, err)
	assert.Equal(t, store.KindPasswordReset, got.Kind)
	assert.Nil(t, got.UsedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLinkRepoFindByHashNotFound(t *testing.T) {
	mock := newMockPool(t)
	repo := NewLinkRepo(mock)

	mock.ExpectQuery("SELECT (.+) FROM link_tokens").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.FindByHash(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLinkRepoMarkUsedSingleWinner(t *testing.T) {
	mock := newMockPool(t)
	repo := NewLinkRepo(mock)

	mock.ExpectExec("UPDATE link_tokens").
		WithArgs("lt-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE link_tokens").
		WithArgs("lt-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	ok, err := repo.MarkUsed(context.Background(), "lt-1")
	require.NoError(t, err)
	assert.True(t, ok, "first consumer wins")

	ok, err = repo.MarkUsed(context.Background(), "lt-1")
	require.NoError(t, err)
	assert.False(t, ok, "second consumer loses")
	require.NoError(t, mock.ExpectationsWereMet())
}
