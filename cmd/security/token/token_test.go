package token

import (
	"encoding/base64"
	"testing"
)

func TestNewOpaque_LengthAndUniqueness(t *testing.T) {
	a, err := NewOpaque(32)
	if err != nil {
		t.Fatalf("NewOpaque: %v", err)
	}
	b, err := NewOpaque(32)
	if err != nil {
		t.Fatalf("NewOpaque: %v", err)
	}
	if a == b {
		t.Fatalf("expected distinct tokens")
	}

	raw, err := base64.RawURLEncoding.DecodeString(a)
	if err != nil {
		t.Fatalf("token is not base64url: %v", err)
	}
	if len(raw) != 32 {
		t.Fatalf("expected 32 bytes of entropy, got %d", len(raw))
	}
}

func TestNewOpaque_DefaultsOnNonPositive(t *testing.T) {
	tok, err := NewOpaque(0)
	if err != nil {
		t.Fatalf("NewOpaque: %v", err)
	}
	raw, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil {
		t.Fatalf("token is not base64url: %v", err)
	}
	if len(raw) != 32 {
		t.Fatalf("expected default 32 bytes, got %d", len(raw))
	}
}

func TestHashRefreshTokenHex_SHA256Fallback(t *testing.T) {
	t.Setenv(HMACEnvKey, "")

	h := HashRefreshTokenHex("some-token")
	if h != HashSHA256Hex("some-token") {
		t.Fatalf("expected SHA-256 fallback when HMAC key is unset")
	}
	if len(h) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(h))
	}
}

func TestHashRefreshTokenHex_HMACWhenKeySet(t *testing.T) {
	t.Setenv(HMACEnvKey, "0123456789abcdef0123456789abcdef")

	h := HashRefreshTokenHex("some-token")
	if h == HashSHA256Hex("some-token") {
		t.Fatalf("expected HMAC hash to differ from plain SHA-256")
	}
	if h != HashHMACSHA256Hex("some-token", []byte("0123456789abcdef0123456789abcdef")) {
		t.Fatalf("HMAC digest mismatch")
	}
}

func TestHMACKeyFromEnv_Policy(t *testing.T) {
	t.Setenv(HMACEnvKey, "")
	if _, err := HMACKeyFromEnv(32); err != ErrHMACKeyMissing {
		t.Fatalf("expected ErrHMACKeyMissing, got %v", err)
	}

	t.Setenv(HMACEnvKey, "short")
	if _, err := HMACKeyFromEnv(32); err != ErrHMACKeyTooShort {
		t.Fatalf("expected ErrHMACKeyTooShort, got %v", err)
	}

	t.Setenv(HMACEnvKey, "0123456789abcdef0123456789abcdef")
	key, err := HMACKeyFromEnv(32)
	if err != nil {
		t.Fatalf("HMACKeyFromEnv: %v", err)
	}
	if len(key) != 32 {
		t.Fatalf("expected 32-byte key, got %d", len(key))
	}
}
