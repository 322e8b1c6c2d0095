package session

import "errors"

var (
	// ErrRefreshNotFound is returned when a refresh token string does not
	// match any stored row.
	ErrRefreshNotFound = errors.New("refresh token not found")

	// ErrRefreshExpired is returned when a refresh token is past its expiry.
	// The row is deleted as a side effect; expired tokens never resurrect.
	ErrRefreshExpired = errors.New("refresh token expired")
)
