// Package store defines the persistence contract of the engine: the
// token and user records, the store interfaces the engine consumes, and
// in-memory implementations suitable for tests and single-process use.
//
// The contract is deliberately narrow. Tokens are only ever stored as
// SHA-256 hashes; the raw values never reach a store. State transitions
// (revoking a refresh token, consuming a link token) are one-way and
// must be atomic: Revoke and MarkUsed report whether this caller
// performed the transition, and at most one caller ever gets true.
// Production deployments use the Postgres implementations in
// store/postgres, where the same guarantee comes from single
// conditional UPDATE statements.
package store
