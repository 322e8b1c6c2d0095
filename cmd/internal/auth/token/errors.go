package token

import "errors"

var (
	// ErrInvalidToken is returned for malformed tokens, bad signatures, and
	// unexpected signing methods.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned when the signature verifies but the token
	// is past its expiry.
	ErrTokenExpired = errors.New("token expired")

	// ErrConfig is returned for invalid codec configuration.
	ErrConfig = errors.New("invalid codec config")
)
