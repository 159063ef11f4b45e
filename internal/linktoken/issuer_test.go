package linktoken

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/halcyonbank/authcore/store"
)

func TestIssueValidateConsume(t *testing.T) {
	ctx := context.Background()
	issuer := NewIssuer(store.NewMemoryLinkStore())

	raw, err := issuer.Issue(ctx, "user-1", store.KindMagicLink, 15*time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	token, err := issuer.Validate(ctx, raw, store.KindMagicLink)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if token.UserID != "user-1" {
		t.Fatalf("token user = %q", token.UserID)
	}

	if err := issuer.Consume(ctx, token); err != nil {
		t.Fatalf("Consume: %v", err)
	}

	if _, err := issuer.Validate(ctx, raw, store.KindMagicLink); !errors.Is(err, ErrInvalid) {
		t.Fatalf("used token validate error = %v, want ErrInvalid", err)
	}
}

func TestValidateRejectsUnknown(t *testing.T) {
	issuer := NewIssuer(store.NewMemoryLinkStore())

	_, err := issuer.Validate(context.Background(), "never-issued", store.KindMagicLink)
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("unknown token error = %v, want ErrInvalid", err)
	}
}

func TestValidateRejectsExpired(t *testing.T) {
	ctx := context.Background()
	issuer := NewIssuer(store.NewMemoryLinkStore())

	raw, err := issuer.Issue(ctx, "user-1", store.KindPasswordReset, time.Millisecond)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	if _, err := issuer.Validate(ctx, raw, store.KindPasswordReset); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expired token error = %v, want ErrInvalid", err)
	}
}

func TestValidateRejectsWrongKind(t *testing.T) {
	ctx := context.Background()
	issuer := NewIssuer(store.NewMemoryLinkStore())

	raw, err := issuer.Issue(ctx, "user-1", store.KindMagicLink, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := issuer.Validate(ctx, raw, store.KindPasswordReset); !errors.Is(err, ErrInvalid) {
		t.Fatalf("cross-kind token error = %v, want ErrInvalid", err)
	}
}

func TestConsumeSingleWinner(t *testing.T) {
	ctx := context.Background()
	issuer := NewIssuer(store.NewMemoryLinkStore())

	raw, err := issuer.Issue(ctx, "user-1", store.KindPasswordReset, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	token, err := issuer.Validate(ctx, raw, store.KindPasswordReset)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}

	const redeemers = 16
	var wg sync.WaitGroup
	results := make(chan error, redeemers)
	for i := 0; i < redeemers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- issuer.Consume(ctx, token)
		}()
	}
	wg.Wait()
	close(results)

	winners := 0
	for err := range results {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, ErrInvalid):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if winners != 1 {
		t.Fatalf("winners = %d, want exactly 1", winners)
	}
}
