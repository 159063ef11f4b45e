// Package linktoken issues and redeems single-use magic-link and
// password-reset tokens.
//
// Validation collapses every rejection reason to one sentinel: a token
// that is unknown, already used, expired, or of the wrong kind fails
// identically. Consumption goes through the store's single-winner
// MarkUsed, and losers of that race also fail with the same sentinel.
package linktoken
