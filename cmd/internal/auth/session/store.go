package session

import (
	"context"
	"time"
)

// RefreshToken mirrors a uniblog.refresh_tokens row. The plain token string is
// never stored; TokenHash is its server-side digest.
type RefreshToken struct {
	ID          string
	PrincipalID string
	TokenHash   string
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// Issued is the result of issuing a refresh token. Plain is handed to the
// client exactly once and must never be logged.
type Issued struct {
	Token RefreshToken
	Plain string
}

// Store abstracts refresh-token persistence.
//
// Implementations must make Issue atomic per principal: concurrent Issue calls
// for the same principal may interleave in either order, but the store never
// holds two live rows for one principal and the surviving row is always
// well-formed.
type Store interface {
	// Issue replaces any live token owned by principalID with a freshly
	// generated one expiring at now+ttl.
	Issue(ctx context.Context, principalID string, now time.Time, ttl time.Duration) (Issued, error)

	// Find loads the row matching a plain token string.
	// Missing row -> ErrRefreshNotFound.
	Find(ctx context.Context, tokenString string) (RefreshToken, error)

	// VerifyNotExpired returns the token unchanged when still live. An
	// expired token is deleted as a side effect and ErrRefreshExpired
	// returned; deleting an already-absent row is not an error.
	VerifyNotExpired(ctx context.Context, tok RefreshToken, now time.Time) (RefreshToken, error)

	// InvalidateForPrincipal deletes the principal's live token, if any.
	// Idempotent.
	InvalidateForPrincipal(ctx context.Context, principalID string) error

	// SweepExpired bulk-deletes rows past their expiry and reports how many
	// went. Maintenance only: stale rows are already rejected by
	// VerifyNotExpired.
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
}
