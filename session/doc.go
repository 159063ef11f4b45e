// Package session issues and rotates refresh-token sessions.
//
// A session is one refresh token bound to one device fingerprint. Every
// use of a refresh token consumes it: Rotate revokes the presented
// token and issues a replacement in its place, so a stolen token and
// its legitimate copy cannot both stay valid. The revocation itself is
// delegated to the store's conditional-update contract; the Rotator
// never holds locks.
//
// A fingerprint mismatch is treated as credential theft: every live
// session of the user is revoked before the call fails.
package session
