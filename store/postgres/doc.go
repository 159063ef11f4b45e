// Package postgres implements the store interfaces over pgx.
//
// Every one-way state transition is a single conditional UPDATE
// (guarded by revoked_at IS NULL or used_at IS NULL) whose affected-row
// count decides the winner. No advisory locks, no transactions: the
// database's row-level atomicity is the only concurrency arbiter, so
// two concurrent consumers of the same token cannot both succeed.
//
// The repositories accept the DB interface, satisfied by *pgxpool.Pool
// in production and by pgxmock in tests.
package postgres
