package authcore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

func TestErrorMatchesByCode(t *testing.T) {
	if !errors.Is(ErrValidation.WithFields("email"), ErrValidation) {
		t.Fatal("field-carrying copy must match its sentinel")
	}
	if errors.Is(ErrValidation, ErrInvalidCredentials) {
		t.Fatal("distinct codes must not match")
	}

	wrapped := fmt.Errorf("handler: %w", ErrTokenExpired)
	if !errors.Is(wrapped, ErrTokenExpired) {
		t.Fatal("wrapped sentinel must still match")
	}
}

func TestWithFieldsDoesNotMutateSentinel(t *testing.T) {
	withFields := ErrValidation.WithFields("email", "password")

	if len(ErrValidation.Fields) != 0 {
		t.Fatal("sentinel was mutated")
	}
	if len(withFields.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %v", withFields.Fields)
	}
	if withFields.Error() != "validation failed: email, password" {
		t.Fatalf("unexpected message %q", withFields.Error())
	}
}

func TestFailureFromIsByteStable(t *testing.T) {
	ctx := context.Background()

	first, err := json.Marshal(FailureFrom(ctx, ErrInvalidCredentials))
	if err != nil {
		t.Fatal(err)
	}
	second, err := json.Marshal(FailureFrom(ctx, ErrInvalidCredentials))
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Fatalf("identical failures serialized differently:\n%s\n%s", first, second)
	}
}

func TestFailureFromCollapsesUnknownErrors(t *testing.T) {
	resp := FailureFrom(context.Background(), errors.New("pq: connection refused"))

	if resp.Error.Code != "INTERNAL_ERROR" {
		t.Fatalf("expected INTERNAL_ERROR, got %q", resp.Error.Code)
	}
	if resp.Error.Message != "internal error" {
		t.Fatalf("cause leaked into message: %q", resp.Error.Message)
	}
}

func TestFailureFromCarriesRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-42")

	resp := FailureFrom(ctx, ErrTokenInvalid)
	if resp.RequestID != "req-42" {
		t.Fatalf("expected request ID, got %q", resp.RequestID)
	}
	if resp.Error.Code != "TOKEN_INVALID" {
		t.Fatalf("unexpected code %q", resp.Error.Code)
	}
}
