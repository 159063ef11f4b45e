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

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestRefreshRepoCreate(t *testing.T) {
	mock := newMockPool(t)
	repo := NewRefreshRepo(mock)

	now := time.Now()
	token := store.RefreshToken{
		ID:                "rt-1",
		UserID:            "user-1",
		TokenHash:         "hash-1",
		DeviceFingerprint: "fp-1",
		ExpiresAt:         now.Add(time.Hour),
		CreatedAt:         now,
	}

	mock.ExpectExec("INSERT INTO refresh_tokens").
		WithArgs("rt-1", "user-1", "hash-1", "fp-1", token.ExpiresAt, token.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), token))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshRepoFindByHash(t *testing.T) {
	mock := newMockPool(t)
	repo := NewRefreshRepo(mock)

	now := time.Now()
	reason := "logout"
	rows := pgxmock.NewRows([]string{
		"id", "user_id", "token_hash", "device_fingerprint",
		"expires_at", "created_at", "revoked_at", "revoked_reason",
	}).AddRow("rt-1", "user-1", "hash-1", "fp-1", now.Add(time.Hour), now, &now, &reason)

	mock.ExpectQuery("SELECT (.+) FROM refresh_tokens").
		WithArgs("hash-1").
		WillReturnRows(rows)

	got, err := repo.FindByHash(context.Background(), "hash-1")
	require.NoError(t, err)
	assert.Equal(t, "rt-1", got.ID)
	assert.Equal(t, "user-1", got.UserID)
	require.NotNil(t, got.RevokedReason)
	assert.Equal(t, "logout", *got.RevokedReason)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshRepoFindByHashNotFound(t *testing.T) {
	mock := newMockPool(t)
	repo := NewRefreshRepo(mock)

	mock.ExpectQuery("SELECT (.+) FROM refresh_tokens").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.FindByHash(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshRepoRevokeWins(t *testing.T) {
	mock := newMockPool(t)
	repo := NewRefreshRepo(mock)

	mock.ExpectExec("UPDATE refresh_tokens").
		WithArgs("rt-1", "rotation").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	ok, err := repo.Revoke(context.Background(), "rt-1", "rotation")
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshRepoRevokeAlreadyRevoked(t *testing.T) {
	mock := newMockPool(t)
	repo := NewRefreshRepo(mock)

	// revoked_at IS NULL guard matched no row: loser of the race
	mock.ExpectExec("UPDATE refresh_tokens").
		WithArgs("rt-1", "rotation").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	ok, err := repo.Revoke(context.Background(), "rt-1", "rotation")
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshRepoRevokeAllForUser(t *testing.T) {
	mock := newMockPool(t)
	repo := NewRefreshRepo(mock)

	mock.ExpectExec("UPDATE refresh_tokens").
		WithArgs("user-1", "device_mismatch").
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	n, err := repo.RevokeAllForUser(context.Background(), "user-1", "device_mismatch")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	require.NoError(t, mock.ExpectationsWereMet())
}
