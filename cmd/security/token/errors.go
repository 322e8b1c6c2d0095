package token

import "errors"

// Public, stable errors for callers.
var (
	ErrHMACKeyMissing  = errors.New("refresh token HMAC key missing")
	ErrHMACKeyTooShort = errors.New("refresh token HMAC key too short")
)
