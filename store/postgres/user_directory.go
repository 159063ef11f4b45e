package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/halcyonbank/authcore/store"
)

// UserDirectory is the Postgres account directory. Email uniqueness is
// enforced case-insensitively by a unique index on lower(email); the
// unique-violation error maps to store.ErrEmailTaken so a lookup race
// between two concurrent signups still yields exactly one account.
type UserDirectory struct {
	db DB
}

// NewUserDirectory returns a user directory over db.
func NewUserDirectory(db DB) *UserDirectory {
	return &UserDirectory{db: db}
}

const userColumns = `id, email, password_hash, email_verified, status,
       created_at, updated_at, last_login_at`

func scanUser(row pgx.Row) (store.User, error) {
	var (
		user   store.User
		status string
	)
	err := row.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.EmailVerified,
		&status, &user.CreatedAt, &user.UpdatedAt, &user.LastLoginAt)
	if err != nil {
		return store.User{}, err
	}
	user.Status = store.UserStatus(status)
	return user, nil
}

// FindByEmail looks an account up case-insensitively.
func (d *UserDirectory) FindByEmail(ctx context.Context, email string) (store.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`

	user, err := scanUser(d.db.QueryRow(ctx, q, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.User{}, store.ErrNotFound
		}
		return store.User{}, fmt.Errorf("find user by email: %w", err)
	}
	return user, nil
}

// FindByID looks an account up by primary key.
func (d *UserDirectory) FindByID(ctx context.Context, id string) (store.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(d.db.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.User{}, store.ErrNotFound
		}
		return store.User{}, fmt.Errorf("find user by id: %w", err)
	}
	return user, nil
}

// CreateUser inserts a new active account.
func (d *UserDirectory) CreateUser(ctx context.Context, email string, passwordHash string) (store.User, error) {
	const q = `
		INSERT INTO users (id, email, password_hash, email_verified, status, created_at, updated_at)
		VALUES ($1, $2, $3, false, $4, $5, $5)`

	now := time.Now()
	user := store.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		Status:       store.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := d.db.Exec(ctx, q, user.ID, user.Email, user.PasswordHash, string(user.Status), now)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return store.User{}, store.ErrEmailTaken
		}
		return store.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// UpdatePassword replaces the stored credential hash.
func (d *UserDirectory) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	const q = `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`

	tag, err := d.db.Exec(ctx, q, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// UpdateLastLogin stamps a successful authentication.
func (d *UserDirectory) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	const q = `UPDATE users SET last_login_at = $2, updated_at = now() WHERE id = $1`

	tag, err := d.db.Exec(ctx, q, id, at)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// MarkEmailVerified flips the verification flag. Idempotent.
func (d *UserDirectory) MarkEmailVerified(ctx context.Context, id string) error {
	const q = `UPDATE users SET email_verified = true, updated_at = now() WHERE id = $1`

	tag, err := d.db.Exec(ctx, q, id)
	if err != nil {
		return fmt.Errorf("mark email verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// SetStatus moves the account to a new lifecycle state.
func (d *UserDirectory) SetStatus(ctx context.Context, id string, status store.UserStatus) error {
	const q = `UPDATE users SET status = $2, updated_at = now() WHERE id = $1`

	tag, err := d.db.Exec(ctx, q, id, string(status))
	if err != nil {
		return fmt.Errorf("set user status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
