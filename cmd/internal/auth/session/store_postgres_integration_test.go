package session

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"uniblog/cmd/identity"
)

// Integration tests are enabled when UNIBLOG_DATABASE_URL is set.
// In non-CI runs, unreachable Postgres skips these tests to keep local runs fast.

func mustPGXPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()

	dbURL := os.Getenv("UNIBLOG_DATABASE_URL")
	if dbURL == "" {
		t.Skip("UNIBLOG_DATABASE_URL is not set; skipping Postgres integration test")
	}

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("pgxpool.New: %v", err)
	}
	return pool
}

func mustCreateUser(ctx context.Context, t *testing.T, pool *pgxpool.Pool) string {
	t.Helper()

	dir, err := identity.NewPostgresDirectory(pool)
	if err != nil {
		t.Fatalf("NewPostgresDirectory: %v", err)
	}

	now := time.Now().UTC()
	p, err := dir.Create(ctx, identity.CreateInput{
		Email:        "session-it-" + now.Format("20060102150405.000000000") + "@example.com",
		DisplayName:  "Session IT",
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNoaGFzaGhhc2hoYXNoaGFzaGhhc2g",
		Now:          now,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	t.Cleanup(func() {
		_, _ = pool.Exec(ctx, `DELETE FROM uniblog.refresh_tokens WHERE user_id = $1`, p.ID)
		_, _ = pool.Exec(ctx, `DELETE FROM uniblog.users WHERE id = $1`, p.ID)
	})

	return p.ID
}

func TestPostgresStore_IssueReplacesPriorToken(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pool := mustPGXPool(ctx, t)
	defer pool.Close()

	userID := mustCreateUser(ctx, t, pool)
	store := NewPostgresStore(pool)
	now := time.Now().UTC()

	first, err := store.Issue(ctx, userID, now, 24*time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	second, err := store.Issue(ctx, userID, now.Add(time.Second), 24*time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := store.Find(ctx, first.Plain); !errors.Is(err, ErrRefreshNotFound) {
		t.Fatalf("expected old token replaced, got %v", err)
	}
	got, err := store.Find(ctx, second.Plain)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if got.PrincipalID != userID {
		t.Fatalf("unexpected owner: %+v", got)
	}

	// Exactly one row for the principal.
	var n int
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM uniblog.refresh_tokens WHERE user_id = $1`, userID).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected exactly 1 live row, got %d", n)
	}
}

func TestPostgresStore_ConcurrentIssueKeepsInvariant(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pool := mustPGXPool(ctx, t)
	defer pool.Close()

	userID := mustCreateUser(ctx, t, pool)
	store := NewPostgresStore(pool)
	now := time.Now().UTC()

	const workers = 8
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Issue(ctx, userID, now, time.Hour); err != nil {
				t.Errorf("Issue: %v", err)
			}
		}()
	}
	wg.Wait()

	var n int
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM uniblog.refresh_tokens WHERE user_id = $1`, userID).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("store must never hold two live tokens for one principal, got %d", n)
	}
}

func TestPostgresStore_ExpiryAndSweep(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pool := mustPGXPool(ctx, t)
	defer pool.Close()

	userID := mustCreateUser(ctx, t, pool)
	store := NewPostgresStore(pool)
	now := time.Now().UTC()

	issued, err := store.Issue(ctx, userID, now.Add(-2*time.Hour), time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	tok, err := store.Find(ctx, issued.Plain)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}

	if _, err := store.VerifyNotExpired(ctx, tok, now); !errors.Is(err, ErrRefreshExpired) {
		t.Fatalf("expected ErrRefreshExpired, got %v", err)
	}
	if _, err := store.Find(ctx, issued.Plain); !errors.Is(err, ErrRefreshNotFound) {
		t.Fatalf("expired token must be deleted, got %v", err)
	}

	// Sweep cleans anything left behind.
	if _, err := store.Issue(ctx, userID, now.Add(-2*time.Hour), time.Hour); err != nil {
		t.Fatalf("Issue: %v", err)
	}
	n, err := store.SweepExpired(ctx, now)
	if err != nil {
		t.Fatalf("SweepExpired: %v", err)
	}
	if n < 1 {
		t.Fatalf("expected at least one swept row, got %d", n)
	}
}
