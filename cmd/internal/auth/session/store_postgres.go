package session

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"uniblog/cmd/identity"
	sectoken "uniblog/cmd/security/token"
)

// PostgresStore implements Store using PostgreSQL (uniblog.refresh_tokens).
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed refresh-token store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Issue atomically replaces any live token for principalID.
//
// The one-live-token invariant rides on the unique constraint over user_id:
// the upsert is a single statement, so two concurrent logins for the same
// principal serialize on the row lock and exactly one token survives.
func (s *PostgresStore) Issue(ctx context.Context, principalID string, now time.Time, ttl time.Duration) (Issued, error) {
	id, err := identity.NewULID(now)
	if err != nil {
		return Issued{}, err
	}

	plain, err := sectoken.NewOpaque(32)
	if err != nil {
		return Issued{}, err
	}
	hash := sectoken.HashRefreshTokenHex(plain)

	expiresAt := now.Add(ttl)

	_, err = s.pool.Exec(ctx, `
		INSERT INTO uniblog.refresh_tokens (
			id, user_id, token_hash, created_at, expires_at
		) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			id = EXCLUDED.id,
			token_hash = EXCLUDED.token_hash,
			created_at = EXCLUDED.created_at,
			expires_at = EXCLUDED.expires_at
	`, id, principalID, hash, now, expiresAt)
	if err != nil {
		return Issued{}, err
	}

	return Issued{
		Token: RefreshToken{
			ID:          id,
			PrincipalID: principalID,
			TokenHash:   hash,
			CreatedAt:   now,
			ExpiresAt:   expiresAt,
		},
		Plain: plain,
	}, nil
}

// Find loads the row matching a plain token string (looked up by hash).
func (s *PostgresStore) Find(ctx context.Context, tokenString string) (RefreshToken, error) {
	hash := sectoken.HashRefreshTokenHex(tokenString)

	var tok RefreshToken
	err := s.pool.QueryRow(ctx, `
		SELECT id, user_id, token_hash, created_at, expires_at
		FROM uniblog.refresh_tokens
		WHERE token_hash = $1
	`, hash).Scan(
		&tok.ID,
		&tok.PrincipalID,
		&tok.TokenHash,
		&tok.CreatedAt,
		&tok.ExpiresAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return RefreshToken{}, ErrRefreshNotFound
	}
	if err != nil {
		return RefreshToken{}, err
	}

	return tok, nil
}

// VerifyNotExpired deletes and rejects expired tokens.
func (s *PostgresStore) VerifyNotExpired(ctx context.Context, tok RefreshToken, now time.Time) (RefreshToken, error) {
	if tok.ExpiresAt.After(now) {
		return tok, nil
	}

	if _, err := s.pool.Exec(ctx, `
		DELETE FROM uniblog.refresh_tokens
		WHERE id = $1
	`, tok.ID); err != nil {
		return RefreshToken{}, err
	}

	return RefreshToken{}, ErrRefreshExpired
}

// InvalidateForPrincipal deletes the principal's live token (idempotent).
func (s *PostgresStore) InvalidateForPrincipal(ctx context.Context, principalID string) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM uniblog.refresh_tokens
		WHERE user_id = $1
	`, principalID)
	return err
}

// SweepExpired bulk-deletes rows past their expiry.
func (s *PostgresStore) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM uniblog.refresh_tokens
		WHERE expires_at < $1
	`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
