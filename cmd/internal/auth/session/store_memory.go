package session

import (
	"context"
	"sync"
	"time"

	"uniblog/cmd/identity"
	sectoken "uniblog/cmd/security/token"
)

// MemoryStore is an in-memory Store for tests and DB-less dev mode. It
// mirrors the Postgres semantics including the one-live-token invariant.
type MemoryStore struct {
	mu          sync.Mutex
	byHash      map[string]RefreshToken
	byPrincipal map[string]string // principal id -> token hash
}

// NewMemoryStore creates an empty in-memory refresh-token store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byHash:      make(map[string]RefreshToken),
		byPrincipal: make(map[string]string),
	}
}

// Issue replaces any live token for principalID under a single lock, which
// gives the same per-principal atomicity the Postgres upsert provides.
func (s *MemoryStore) Issue(ctx context.Context, principalID string, now time.Time, ttl time.Duration) (Issued, error) {
	if err := ctx.Err(); err != nil {
		return Issued{}, err
	}

	id, err := identity.NewULID(now)
	if err != nil {
		return Issued{}, err
	}

	plain, err := sectoken.NewOpaque(32)
	if err != nil {
		return Issued{}, err
	}
	hash := sectoken.HashRefreshTokenHex(plain)

	tok := RefreshToken{
		ID:          id,
		PrincipalID: principalID,
		TokenHash:   hash,
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.byPrincipal[principalID]; ok {
		delete(s.byHash, prev)
	}
	s.byHash[hash] = tok
	s.byPrincipal[principalID] = hash

	return Issued{Token: tok, Plain: plain}, nil
}

// Find loads the row matching a plain token string.
func (s *MemoryStore) Find(ctx context.Context, tokenString string) (RefreshToken, error) {
	if err := ctx.Err(); err != nil {
		return RefreshToken{}, err
	}

	hash := sectoken.HashRefreshTokenHex(tokenString)

	s.mu.Lock()
	defer s.mu.Unlock()

	tok, ok := s.byHash[hash]
	if !ok {
		return RefreshToken{}, ErrRefreshNotFound
	}
	return tok, nil
}

// VerifyNotExpired deletes and rejects expired tokens.
func (s *MemoryStore) VerifyNotExpired(ctx context.Context, tok RefreshToken, now time.Time) (RefreshToken, error) {
	if err := ctx.Err(); err != nil {
		return RefreshToken{}, err
	}

	if tok.ExpiresAt.After(now) {
		return tok, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if cur, ok := s.byHash[tok.TokenHash]; ok && cur.ID == tok.ID {
		delete(s.byHash, tok.TokenHash)
		delete(s.byPrincipal, tok.PrincipalID)
	}

	return RefreshToken{}, ErrRefreshExpired
}

// InvalidateForPrincipal deletes the principal's live token (idempotent).
func (s *MemoryStore) InvalidateForPrincipal(ctx context.Context, principalID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if hash, ok := s.byPrincipal[principalID]; ok {
		delete(s.byHash, hash)
		delete(s.byPrincipal, principalID)
	}
	return nil
}

// SweepExpired bulk-deletes rows past their expiry.
func (s *MemoryStore) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for hash, tok := range s.byHash {
		if !tok.ExpiresAt.After(now) {
			delete(s.byHash, hash)
			delete(s.byPrincipal, tok.PrincipalID)
			n++
		}
	}
	return n, nil
}
