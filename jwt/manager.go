package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenInvalid is the only error ParseAccess returns for a rejected
// token, regardless of which validation step failed.
var ErrTokenInvalid = errors.New("token invalid")

const (
	minSecretBytes = 32

	// typeAccess is the value of the typ claim on every access token.
	// Tokens carrying any other type are rejected.
	typeAccess = "access"
)

// Config carries the signing secret and access-token lifetime.
type Config struct {
	Secret    []byte
	AccessTTL time.Duration
}

// Manager signs and verifies access tokens with a single shared secret.
type Manager struct {
	config Config
}

// AccessClaims is the claim set of an access token.
type AccessClaims struct {
	UID       string `json:"uid"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// NewManager validates cfg and returns a ready Manager. The secret must
// be at least 32 bytes; shorter secrets are a deployment error, not a
// runtime condition.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) < minSecretBytes {
		return nil, errors.New("jwt secret must be at least 32 bytes")
	}
	if cfg.AccessTTL <= 0 {
		return nil, errors.New("invalid access TTL configuration")
	}

	return &Manager{config: cfg}, nil
}

// IssueAccess mints an access token for userID and returns it together
// with its expiry instant.
func (m *Manager) IssueAccess(userID string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(m.config.AccessTTL)

	claims := AccessClaims{
		UID:       userID,
		TokenType: typeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.config.Secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// ParseAccess verifies tokenStr and returns the user ID it was issued
// for. Any deviation, including expiry, yields ErrTokenInvalid.
func (m *Manager) ParseAccess(tokenStr string) (string, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)

	token, err := parser.ParseWithClaims(tokenStr, &AccessClaims{}, func(t *jwt.Token) (interface{}, error) {
		return m.config.Secret, nil
	})
	if err != nil {
		return "", ErrTokenInvalid
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid {
		return "", ErrTokenInvalid
	}
	if claims.TokenType != typeAccess || claims.UID == "" {
		return "", ErrTokenInvalid
	}

	return claims.UID, nil
}
