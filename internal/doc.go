// Package internal holds cross-cutting helpers shared by the authcore
// packages: secret-token generation and hashing.
//
// Nothing in this package performs I/O. All randomness comes from
// crypto/rand.
package internal
