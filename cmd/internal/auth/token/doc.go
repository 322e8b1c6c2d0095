// Package token implements the signed access-token codec.
//
// Access tokens are JWTs signed with HMAC-SHA256 over a process-wide symmetric
// secret. They are short-lived and self-contained: subject (principal id),
// role list, issued-at and expires-at. Verification checks the signature
// before trusting any claim; signature failures and expiry are reported as
// distinct error kinds because callers react differently (expired -> prompt a
// refresh; invalid -> reject outright, possible tampering).
//
// Rotating the secret invalidates all outstanding access tokens, which is
// acceptable given their lifetime.
package token
