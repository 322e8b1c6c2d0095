// Package session implements the durable refresh-token store.
//
// Each principal holds at most one live refresh token. Issuing a new token
// atomically replaces any prior one for that principal (a single upsert keyed
// by a unique constraint on the principal id), so concurrent logins for the
// same account cannot leave two live tokens behind, and logout/refresh stay
// well-defined.
//
// Refresh tokens are opaque random strings; the server persists only a hash
// (HMAC-SHA256 when UNIBLOG_TOKEN_HMAC_KEY is set; otherwise SHA-256).
// The token string is NOT rotated when an access token is refreshed.
package session
