package token

import (
	"errors"
	"testing"
	"time"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := NewCodec(testSecret, 15*time.Minute)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	return c
}

func TestNewCodec_Config(t *testing.T) {
	t.Parallel()

	if _, err := NewCodec([]byte("short"), time.Minute); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig for short secret, got %v", err)
	}
	if _, err := NewCodec(testSecret, 0); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig for zero TTL, got %v", err)
	}
	if _, err := NewCodec(testSecret, time.Minute); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
}

func TestMintAndVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t)
	now := time.Now().UTC().Truncate(time.Second)

	tok, err := c.Mint("01HZZZZZZZZZZZZZZZZZZZZZZZ", []string{"user", "admin"}, now)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	claims, err := c.Verify(tok, now.Add(time.Second))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Subject != "01HZZZZZZZZZZZZZZZZZZZZZZZ" {
		t.Fatalf("subject mismatch: %q", claims.Subject)
	}
	if len(claims.Roles) != 2 || claims.Roles[0] != "user" || claims.Roles[1] != "admin" {
		t.Fatalf("roles mismatch: %v", claims.Roles)
	}
	if !claims.IssuedAt.Equal(now) {
		t.Fatalf("iat mismatch: got %v want %v", claims.IssuedAt, now)
	}
	if !claims.ExpiresAt.Equal(now.Add(15 * time.Minute)) {
		t.Fatalf("exp mismatch: got %v", claims.ExpiresAt)
	}
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t)
	now := time.Now().UTC()

	tok, err := c.Mint("p1", []string{"user"}, now)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	_, err = c.Verify(tok, now.Add(16*time.Minute))
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerify_WrongSecretIsInvalidNotExpired(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t)
	other, err := NewCodec([]byte("fedcba9876543210fedcba9876543210"), 15*time.Minute)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	now := time.Now().UTC()
	tok, err := other.Mint("p1", []string{"user"}, now)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	// Even long after expiry, a foreign signature must read as invalid, never
	// as expired.
	_, err = c.Verify(tok, now.Add(24*time.Hour))
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if errors.Is(err, ErrTokenExpired) {
		t.Fatalf("wrong-secret token must not surface as expired")
	}
}

func TestVerify_Garbage(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t)
	now := time.Now().UTC()

	for _, in := range []string{"", "not-a-jwt", "a.b.c", "eyJhbGciOiJub25lIn0.e30."} {
		if _, err := c.Verify(in, now); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken for %q, got %v", in, err)
		}
	}
}
