// Package authcore is a credential-issuance and session-security core:
// password and magic-link authentication, JWT access tokens, rotating
// opaque refresh tokens with device binding, single-use email link
// tokens, and enumeration-safe request flows.
//
// The package is designed for concurrent server workloads: Engine
// methods are safe to call from multiple goroutines after
// initialization through [Builder.Build].
//
// # Architecture boundaries
//
// authcore is the public surface. It exposes [Engine], [Builder],
// [Config], and value types (AuthResult, MetricsSnapshot, PublicUser,
// etc.). All internal coordination — flow orchestration, token
// generation, audit dispatch — lives under internal/ and is never
// exported. Storage contracts and their implementations live in store
// and store/postgres so hosts can supply their own.
//
// # What this package must NOT do
//
//   - Expose database pools, internal stores, or raw token hashes in
//     its public API.
//   - Hold raw refresh or link tokens beyond the return value of the
//     call that minted them; stores only ever see SHA-256 hashes.
//   - Import any sub-package that re-imports authcore (no import
//     cycles).
//
// # Performance contract
//
// ValidateAccess is the hot path. It is pure signature and claim
// verification: no storage round-trip, no audit event. Login, Refresh,
// and the link-token flows are allowed storage round-trips per call.
package authcore
