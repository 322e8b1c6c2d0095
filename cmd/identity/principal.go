package identity

import (
	"context"
	"time"
)

// Principal is the canonical user record.
type Principal struct {
	ID           string
	Email        string
	EmailNorm    string
	DisplayName  string
	PasswordHash string
	Roles        []string
	CreatedAt    time.Time
}

// CreateInput describes a new principal. Email is stored as given (after
// trimming) plus in normalized form; PasswordHash must already be encoded.
type CreateInput struct {
	Email        string
	DisplayName  string
	PasswordHash string
	Roles        []string
	Now          time.Time
}

// Directory is the user-directory persistence boundary consumed by the token
// authority. Lookups by email are case-insensitive.
type Directory interface {
	// FindByEmail returns the principal whose normalized email matches.
	// Missing principal -> NotFoundError.
	FindByEmail(ctx context.Context, email string) (Principal, error)

	// FindByID returns the principal by id. Missing principal -> NotFoundError.
	FindByID(ctx context.Context, id string) (Principal, error)

	// Create inserts a new principal. A normalized-email collision yields
	// ConflictError{Field: "email"}.
	Create(ctx context.Context, in CreateInput) (Principal, error)
}
