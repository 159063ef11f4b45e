package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRefreshStore is a mutex-guarded RefreshStore for tests and
// single-process deployments.
type MemoryRefreshStore struct {
	mu     sync.Mutex
	byID   map[string]*RefreshToken
	byHash map[string]string
}

// NewMemoryRefreshStore returns an empty in-memory refresh store.
func NewMemoryRefreshStore() *MemoryRefreshStore {
	return &MemoryRefreshStore{
		byID:   make(map[string]*RefreshToken),
		byHash: make(map[string]string),
	}
}

// Create stores the token record.
func (s *MemoryRefreshStore) Create(_ context.Context, token RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := token
	s.byID[token.ID] = &copied
	s.byHash[token.TokenHash] = token.ID
	return nil
}

// FindByHash returns the record regardless of revocation or expiry.
func (s *MemoryRefreshStore) FindByHash(_ context.Context, tokenHash string) (RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byHash[tokenHash]
	if !ok {
		return RefreshToken{}, ErrNotFound
	}
	return *s.byID[id], nil
}

// Revoke performs the one-way revoked transition. The boolean is true
// only for the single caller that flipped the record.
func (s *MemoryRefreshStore) Revoke(_ context.Context, id string, reason string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.byID[id]
	if !ok {
		return false, nil
	}
	if token.RevokedAt != nil {
		return false, nil
	}

	now := time.Now()
	token.RevokedAt = &now
	token.RevokedReason = &reason
	return true, nil
}

// RevokeAllForUser revokes every live token of the user.
func (s *MemoryRefreshStore) RevokeAllForUser(_ context.Context, userID string, reason string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var revoked int64
	now := time.Now()
	for _, token := range s.byID {
		if token.UserID != userID || token.RevokedAt != nil {
			continue
		}
		at := now
		r := reason
		token.RevokedAt = &at
		token.RevokedReason = &r
		revoked++
	}
	return revoked, nil
}

// MemoryLinkStore is a mutex-guarded LinkStore.
type MemoryLinkStore struct {
	mu     sync.Mutex
	byID   map[string]*LinkToken
	byHash map[string]string
}

// NewMemoryLinkStore returns an empty in-memory link token store.
func NewMemoryLinkStore() *MemoryLinkStore {
	return &MemoryLinkStore{
		byID:   make(map[string]*LinkToken),
		byHash: make(map[string]string),
	}
}

// Create stores the token record.
func (s *MemoryLinkStore) Create(_ context.Context, token LinkToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := token
	s.byID[token.ID] = &copied
	s.byHash[token.TokenHash] = token.ID
	return nil
}

// FindByHash returns the record regardless of use or expiry.
func (s *MemoryLinkStore) FindByHash(_ context.Context, tokenHash string) (LinkToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byHash[tokenHash]
	if !ok {
		return LinkToken{}, ErrNotFound
	}
	return *s.byID[id], nil
}

// MarkUsed consumes the token; only one caller ever gets true.
func (s *MemoryLinkStore) MarkUsed(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.byID[id]
	if !ok {
		return false, nil
	}
	if token.UsedAt != nil {
		return false, nil
	}

	now := time.Now()
	token.UsedAt = &now
	return true, nil
}

// MemoryUserDirectory is a mutex-guarded user directory keyed by
// normalized email. It satisfies the engine's UserDirectory interface.
type MemoryUserDirectory struct {
	mu      sync.Mutex
	byID    map[string]*User
	byEmail map[string]string
}

// NewMemoryUserDirectory returns an empty in-memory user directory.
func NewMemoryUserDirectory() *MemoryUserDirectory {
	return &MemoryUserDirectory{
		byID:    make(map[string]*User),
		byEmail: make(map[string]string),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FindByEmail looks a user up case-insensitively.
func (d *MemoryUserDirectory) FindByEmail(_ context.Context, email string) (User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	id, ok := d.byEmail[normalizeEmail(email)]
	if !ok {
		return User{}, ErrNotFound
	}
	return *d.byID[id], nil
}

// FindByID looks a user up by primary key.
func (d *MemoryUserDirectory) FindByID(_ context.Context, id string) (User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	user, ok := d.byID[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return *user, nil
}

// CreateUser inserts a new active account. Email collisions, compared
// case-insensitively, yield ErrEmailTaken.
func (d *MemoryUserDirectory) CreateUser(_ context.Context, email string, passwordHash string) (User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := normalizeEmail(email)
	if _, exists := d.byEmail[key]; exists {
		return User{}, ErrEmailTaken
	}

	now := time.Now()
	user := User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		Status:       StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	d.byID[user.ID] = &user
	d.byEmail[key] = user.ID
	return user, nil
}

// UpdatePassword replaces the stored credential hash.
func (d *MemoryUserDirectory) UpdatePassword(_ context.Context, id string, passwordHash string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	user, ok := d.byID[id]
	if !ok {
		return ErrNotFound
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = time.Now()
	return nil
}

// UpdateLastLogin stamps a successful authentication.
func (d *MemoryUserDirectory) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	user, ok := d.byID[id]
	if !ok {
		return ErrNotFound
	}
	stamped := at
	user.LastLoginAt = &stamped
	user.UpdatedAt = time.Now()
	return nil
}

// MarkEmailVerified flips the verification flag. Idempotent.
func (d *MemoryUserDirectory) MarkEmailVerified(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	user, ok := d.byID[id]
	if !ok {
		return ErrNotFound
	}
	user.EmailVerified = true
	user.UpdatedAt = time.Now()
	return nil
}

// SetStatus moves the account to a new lifecycle state. Used by hosts
// for suspension and soft deletion.
func (d *MemoryUserDirectory) SetStatus(_ context.Context, id string, status UserStatus) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	user, ok := d.byID[id]
	if !ok {
		return ErrNotFound
	}
	user.Status = status
	user.UpdatedAt = time.Now()
	return nil
}
