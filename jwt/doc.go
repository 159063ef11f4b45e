// Package jwt mints and verifies short-lived HMAC-SHA-256 access tokens.
//
// Every verification failure collapses to ErrTokenInvalid: bad signature,
// expired, wrong token type, missing subject. Callers never learn which
// check rejected the token, so the parse path cannot be used as an oracle.
package jwt
