package auth

import "errors"

var (
	// ErrInvalidCredentials covers both unknown email and wrong password.
	// The two cases are deliberately indistinguishable to callers so the API
	// cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrPasswordMismatch is returned when registration password and
	// confirmation differ.
	ErrPasswordMismatch = errors.New("password and confirmation do not match")

	// ErrEmailTaken is returned when the registration email is already in the
	// directory (case-insensitive, after trimming).
	ErrEmailTaken = errors.New("email address is already registered")
)
