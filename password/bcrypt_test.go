package password

import "testing"

func TestHashAndVerify(t *testing.T) {
	h, err := NewHasher(Config{Cost: 4})
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}

	digest, err := h.Hash("correct horse battery")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	if !h.Verify("correct horse battery", digest) {
		t.Fatal("expected matching password to verify")
	}
	if h.Verify("wrong password", digest) {
		t.Fatal("expected mismatched password to fail")
	}
}

func TestVerifyMalformedHashIsFalse(t *testing.T) {
	h, err := NewHasher(Config{Cost: 4})
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}

	if h.Verify("anything", "not-a-bcrypt-hash") {
		t.Fatal("malformed hash must verify false, not error")
	}
	if h.Verify("anything", "") {
		t.Fatal("empty hash must verify false")
	}
}

func TestVerifyDummyHashNeverMatches(t *testing.T) {
	h, err := NewHasher(Config{Cost: 4})
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}

	for _, guess := range []string{"", "password", "dummy", DummyHash} {
		if h.Verify(guess, DummyHash) {
			t.Fatalf("dummy hash matched %q", guess)
		}
	}
}

func TestNewHasherRejectsBadCost(t *testing.T) {
	if _, err := NewHasher(Config{Cost: 3}); err == nil {
		t.Fatal("expected error for cost below bcrypt minimum")
	}
	if _, err := NewHasher(Config{Cost: 40}); err == nil {
		t.Fatal("expected error for cost above bcrypt maximum")
	}
}

func TestHashRejectsOverlongPassword(t *testing.T) {
	h, err := NewHasher(Config{Cost: 4})
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}

	long := make([]byte, 73)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := h.Hash(string(long)); err == nil {
		t.Fatal("expected error for password longer than 72 bytes")
	}
}

func TestDefaultCost(t *testing.T) {
	h, err := NewHasher(Config{})
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}
	if h.cost != DefaultCost {
		t.Fatalf("zero config cost = %d, want %d", h.cost, DefaultCost)
	}
}
