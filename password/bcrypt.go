package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used when Config.Cost is zero.
const DefaultCost = 12

// DummyHash is a valid bcrypt digest of an unguessable throwaway value.
// Verifying an attacker-supplied password against it burns the same work
// as a real comparison, so accounts without a password hash are
// indistinguishable from accounts with one.
const DummyHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

// Config carries the bcrypt parameters. Zero value means DefaultCost.
type Config struct {
	Cost int
}

// Hasher produces and checks bcrypt digests at a fixed cost.
type Hasher struct {
	cost int
}

// NewHasher validates cfg and returns a ready Hasher.
func NewHasher(cfg Config) (*Hasher, error) {
	cost := cfg.Cost
	if cost == 0 {
		cost = DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, errors.New("password cost out of bcrypt range")
	}

	return &Hasher{cost: cost}, nil
}

// Hash returns the bcrypt digest of password. bcrypt only consumes the
// first 72 bytes; longer inputs are rejected rather than silently
// truncated.
func (h *Hasher) Hash(password string) (string, error) {
	if len(password) > 72 {
		return "", errors.New("password exceeds 72 bytes")
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}

	return string(digest), nil
}

// Verify reports whether password matches encodedHash. Any failure,
// including a malformed stored hash, is reported as false.
func (h *Hasher) Verify(password string, encodedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password)) == nil
}
