package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresDirectory implements Directory over PostgreSQL (uniblog.users).
//
// The pgx pool is owned by the caller; this store must NOT close it.
// Errors are mapped to identity sentinel kinds where appropriate.
type PostgresDirectory struct {
	pool *pgxpool.Pool
}

// NewPostgresDirectory constructs a Postgres-backed Directory.
func NewPostgresDirectory(pool *pgxpool.Pool) (*PostgresDirectory, error) {
	if pool == nil {
		return nil, fmt.Errorf("identity: nil pool")
	}
	return &PostgresDirectory{pool: pool}, nil
}

// DefaultRoles is assigned to principals created without an explicit role list.
var DefaultRoles = []string{"user"}

// Create inserts a new principal row.
func (d *PostgresDirectory) Create(ctx context.Context, in CreateInput) (Principal, error) {
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

	_, err = d.pool.Exec(ctx, `
		INSERT INTO uniblog.users (
			id, email, email_norm, display_name, password_hash, roles, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, id, email, emailNorm, strings.TrimSpace(in.DisplayName), in.PasswordHash, roles, now)
	if err != nil {
		if field, ok := classifyUniqueViolation(err); ok {
			return Principal{}, ConflictError{Op: op, Field: field}
		}
		return Principal{}, err
	}

	return Principal{
		ID:           id,
		Email:        email,
		EmailNorm:    emailNorm,
		DisplayName:  strings.TrimSpace(in.DisplayName),
		PasswordHash: in.PasswordHash,
		Roles:        roles,
		CreatedAt:    now,
	}, nil
}

// FindByEmail loads a principal by normalized email.
func (d *PostgresDirectory) FindByEmail(ctx context.Context, email string) (Principal, error) {
	const op = "identity.FindByEmail"
	return d.findOne(ctx, op, `
		SELECT id, email, email_norm, display_name, password_hash, roles, created_at
		FROM uniblog.users
		WHERE email_norm = $1
	`, NormalizeEmail(email))
}

// FindByID loads a principal by id.
func (d *PostgresDirectory) FindByID(ctx context.Context, id string) (Principal, error) {
	const op = "identity.FindByID"
	return d.findOne(ctx, op, `
		SELECT id, email, email_norm, display_name, password_hash, roles, created_at
		FROM uniblog.users
		WHERE id = $1
	`, id)
}

func (d *PostgresDirectory) findOne(ctx context.Context, op, query, arg string) (Principal, error) {
	var p Principal

	err := d.pool.QueryRow(ctx, query, arg).Scan(
		&p.ID,
		&p.Email,
		&p.EmailNorm,
		&p.DisplayName,
		&p.PasswordHash,
		&p.Roles,
		&p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Principal{}, NotFoundError{Op: op, Resource: "user"}
	}
	if err != nil {
		return Principal{}, err
	}

	return p, nil
}

func classifyUniqueViolation(err error) (field string, ok bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}
	if pgErr.Code != "23505" { // unique_violation
		return "", false
	}

	// Prefer stable schema constraint names; fall back to substring matching.
	c := strings.ToLower(strings.TrimSpace(pgErr.ConstraintName))
	switch {
	case c == "uq_users_email_norm" || strings.Contains(c, "email"):
		return "email", true
	default:
		return "unique", true
	}
}
