package identity

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryDirectory is an in-memory Directory for tests and DB-less dev mode.
// It mirrors the Postgres semantics, including the normalized-email unique
// constraint.
type MemoryDirectory struct {
	mu      sync.Mutex
	byID    map[string]Principal
	byEmail map[string]string // email_norm -> id
}

// NewMemoryDirectory creates an empty in-memory directory.
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		byID:    make(map[string]Principal),
		byEmail: make(map[string]string),
	}
}

// Create inserts a new principal, enforcing email uniqueness.
func (d *MemoryDirectory) Create(ctx context.Context, in CreateInput) (Principal, error) {
	const op = "identity.Create"

	if err := ctx.Err(); err != nil {
		return Principal{}, err
	}

	email := strings.TrimSpace(in.Email)
	if email == "" {
		return Principal{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "email is required"}
	}
	if strings.TrimSpace(in.PasswordHash) == "" {
		return Principal{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "password hash is required"}
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	roles := in.Roles
	if len(roles) == 0 {
		roles = DefaultRoles
	}

	id, err := NewULID(now)
	if err != nil {
		return Principal{}, err
	}

	emailNorm := NormalizeEmail(email)

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.byEmail[emailNorm]; exists {
		return Principal{}, ConflictError{Op: op, Field: "email"}
	}

	p := Principal{
		ID:           id,
		Email:        email,
		EmailNorm:    emailNorm,
		DisplayName:  strings.TrimSpace(in.DisplayName),
		PasswordHash: in.PasswordHash,
		Roles:        append([]string(nil), roles...),
		CreatedAt:    now,
	}
	d.byID[id] = p
	d.byEmail[emailNorm] = id

	return p, nil
}

// FindByEmail loads a principal by normalized email.
func (d *MemoryDirectory) FindByEmail(ctx context.Context, email string) (Principal, error) {
	const op = "identity.FindByEmail"

	if err := ctx.Err(); err != nil {
		return Principal{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	id, ok := d.byEmail[NormalizeEmail(email)]
	if !ok {
		return Principal{}, NotFoundError{Op: op, Resource: "user"}
	}
	return d.byID[id], nil
}

// FindByID loads a principal by id.
func (d *MemoryDirectory) FindByID(ctx context.Context, id string) (Principal, error) {
	const op = "identity.FindByID"

	if err := ctx.Err(); err != nil {
		return Principal{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	p, ok := d.byID[id]
	if !ok {
		return Principal{}, NotFoundError{Op: op, Resource: "user"}
	}
	return p, nil
}
