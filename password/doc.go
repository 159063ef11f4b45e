// Package password hashes and verifies user credentials with bcrypt.
//
// Verify never reports why a comparison failed: malformed stored hashes
// and plain mismatches both come back false, so callers cannot build an
// oracle out of the result. When an account has no stored hash, callers
// should verify against DummyHash to keep timing flat.
package password
