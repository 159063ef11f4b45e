package linktoken

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/halcyonbank/authcore/internal"
	"github.com/halcyonbank/authcore/store"
)

// ErrInvalid is the only rejection Validate and Consume produce.
// Unknown, used, expired, wrong-kind, and lost-race tokens are
// indistinguishable to the caller.
var ErrInvalid = errors.New("linktoken: invalid")

// Issuer mints and redeems single-use link tokens over a LinkStore.
type Issuer struct {
	links store.LinkStore
}

// NewIssuer returns an Issuer over links.
func NewIssuer(links store.LinkStore) *Issuer {
	return &Issuer{links: links}
}

// Issue mints a raw token of the given kind for userID. The raw value
// exists only in the return value; the store sees its hash.
func (i *Issuer) Issue(ctx context.Context, userID string, kind store.LinkKind, ttl time.Duration) (string, error) {
	raw, hash, err := internal.NewSecretToken()
	if err != nil {
		return "", err
	}

	now := time.Now()
	record := store.LinkToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		TokenHash: hash,
		Kind:      kind,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	if err := i.links.Create(ctx, record); err != nil {
		return "", err
	}
	return raw, nil
}

// Validate checks raw against the store and the expected kind without
// consuming it. Every rejection is ErrInvalid.
func (i *Issuer) Validate(ctx context.Context, raw string, kind store.LinkKind) (store.LinkToken, error) {
	record, err := i.links.FindByHash(ctx, internal.HashToken(raw))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.LinkToken{}, ErrInvalid
		}
		return store.LinkToken{}, err
	}

	if record.Kind != kind {
		return store.LinkToken{}, ErrInvalid
	}
	if record.UsedAt != nil {
		return store.LinkToken{}, ErrInvalid
	}
	if time.Now().After(record.ExpiresAt) {
		return store.LinkToken{}, ErrInvalid
	}
	return record, nil
}

// Consume marks the token used. Exactly one concurrent redeemer
// succeeds; the rest get ErrInvalid. Callers consume before performing
// the side effect the token authorizes, never after.
func (i *Issuer) Consume(ctx context.Context, token store.LinkToken) error {
	used, err := i.links.MarkUsed(ctx, token.ID)
	if err != nil {
		return err
	}
	if !used {
		return ErrInvalid
	}
	return nil
}
