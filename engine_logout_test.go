package authcore

import (
	"context"
	"errors"
	"testing"
)

func TestLogoutRevokesSession(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "alice@example.com", "correct-horse-7")

	login, err := env.engine.Login(fingerprintCtx("fp-1"), "alice@example.com", "correct-horse-7")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if _, err := env.engine.Logout(context.Background(), login.Tokens.RefreshToken); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	if _, err := env.engine.Refresh(fingerprintCtx("fp-1"), login.Tokens.RefreshToken); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("logged-out token must fail with ErrTokenInvalid, got %v", err)
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.engine.Logout(context.Background(), ""); err != nil {
		t.Fatalf("empty-token logout must succeed, got %v", err)
	}
	if _, err := env.engine.Logout(context.Background(), "never-issued"); err != nil {
		t.Fatalf("unknown-token logout must succeed, got %v", err)
	}

	env.signup(t, "bob@example.com", "correct-horse-7")
	login, err := env.engine.Login(fingerprintCtx("fp-1"), "bob@example.com", "correct-horse-7")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := env.engine.Logout(context.Background(), login.Tokens.RefreshToken); err != nil {
			t.Fatalf("repeated logout must succeed, got %v", err)
		}
	}
}

func TestLogoutAllRevokesAndCounts(t *testing.T) {
	env := newTestEnv(t)
	created := env.signup(t, "carol@example.com", "correct-horse-7")

	sessions := make([]*AuthResult, 0, 3)
	for i := 0; i < 3; i++ {
		login, err := env.engine.Login(fingerprintCtx("fp-1"), "carol@example.com", "correct-horse-7")
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		sessions = append(sessions, login)
	}

	result, err := env.engine.LogoutAll(context.Background(), created.User.ID)
	if err != nil {
		t.Fatalf("LogoutAll failed: %v", err)
	}
	if result.RevokedSessions != 3 {
		t.Fatalf("expected 3 revoked sessions, got %d", result.RevokedSessions)
	}

	for _, login := range sessions {
		if _, err := env.engine.Refresh(fingerprintCtx("fp-1"), login.Tokens.RefreshToken); !errors.Is(err, ErrTokenInvalid) {
			t.Fatalf("session must be revoked, got %v", err)
		}
	}

	// second sweep has nothing left to revoke
	again, err := env.engine.LogoutAll(context.Background(), created.User.ID)
	if err != nil {
		t.Fatalf("second LogoutAll failed: %v", err)
	}
	if again.RevokedSessions != 0 {
		t.Fatalf("expected 0 revoked sessions, got %d", again.RevokedSessions)
	}
}

func TestLogoutAllRejectsEmptyUserID(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.engine.LogoutAll(context.Background(), ""); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid, got %v", err)
	}
}
