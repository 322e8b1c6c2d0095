// Package token provides opaque token generation and server-side token
// hashing primitives for the auth subsystem.
//
// Refresh tokens are random base64url strings handed to the client exactly
// once; the server persists only a SHA-256 (or HMAC-SHA256, when
// UNIBLOG_TOKEN_HMAC_KEY is set) hex digest of them.
package token
