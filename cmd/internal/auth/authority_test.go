package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uniblog/cmd/identity"
	"uniblog/cmd/internal/auth/session"
	"uniblog/cmd/internal/auth/token"
	"uniblog/cmd/security/password"
)

// fastPasswords keeps Argon2id cheap so the suite stays quick.
func fastPasswords() password.Config {
	return password.Config{
		Params: password.Argon2idParams{
			MemoryKiB:   1024,
			Iterations:  1,
			Parallelism: 1,
			SaltLength:  16,
			KeyLength:   32,
		},
		Policy: password.Policy{MinLength: 8, MaxLength: 128},
	}
}

// newTestAuthority wires an Authority over in-memory stores with a
// controllable clock. Advance time by assigning through the returned pointer.
func newTestAuthority(t *testing.T) (*Authority, *time.Time) {
	t.Helper()

	codec, err := token.NewCodec([]byte("0123456789abcdef0123456789abcdef"), 15*time.Minute)
	require.NoError(t, err)

	pw := fastPasswords()
	a, err := NewAuthority(
		identity.NewMemoryDirectory(),
		pw,
		pw,
		codec,
		session.NewMemoryStore(),
		24*time.Hour,
	)
	require.NoError(t, err)

	cur := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return cur }

	return a, &cur
}

func TestRegisterIssuesWorkingTokens(t *testing.T) {
	t.Parallel()

	a, clk := newTestAuthority(t)
	ctx := context.Background()

	p, pair, err := a.Register(ctx, "Ada", "ada@example.com", "s3cret-pass", "s3cret-pass")
	require.NoError(t, err)

	assert.Equal(t, "ada@example.com", p.Email)
	assert.Equal(t, []string{"user"}, p.Roles)

	assert.Equal(t, "Bearer", pair.TokenType)
	assert.EqualValues(t, 900, pair.ExpiresIn)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	id, err := a.Validate(pair.AccessToken, *clk)
	require.NoError(t, err)
	assert.Equal(t, p.ID, id.PrincipalID)
	assert.Equal(t, []string{"user"}, id.Roles)
}

func TestRegisterPasswordMismatch(t *testing.T) {
	t.Parallel()

	a, _ := newTestAuthority(t)

	_, _, err := a.Register(context.Background(), "Ada", "ada@example.com", "s3cret-pass", "other-pass")
	require.ErrorIs(t, err, ErrPasswordMismatch)
}

func TestRegisterPasswordPolicy(t *testing.T) {
	t.Parallel()

	a, _ := newTestAuthority(t)

	_, _, err := a.Register(context.Background(), "Ada", "ada@example.com", "short", "short")
	require.ErrorIs(t, err, password.ErrPasswordTooShort)
}

func TestRegisterDuplicateEmailCaseInsensitive(t *testing.T) {
	t.Parallel()

	a, _ := newTestAuthority(t)
	ctx := context.Background()

	_, _, err := a.Register(ctx, "Ada", "ada@example.com", "s3cret-pass", "s3cret-pass")
	require.NoError(t, err)

	_, _, err = a.Register(ctx, "Imposter", "  ADA@Example.COM  ", "s3cret-pass", "s3cret-pass")
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthenticateDoesNotRevealAccounts(t *testing.T) {
	t.Parallel()

	a, _ := newTestAuthority(t)
	ctx := context.Background()

	_, _, err := a.Register(ctx, "Ada", "ada@example.com", "s3cret-pass", "s3cret-pass")
	require.NoError(t, err)

	_, badPass := a.Authenticate(ctx, "ada@example.com", "wrong-pass!")
	_, badUser := a.Authenticate(ctx, "nobody@example.com", "wrong-pass!")

	require.ErrorIs(t, badPass, ErrInvalidCredentials)
	require.ErrorIs(t, badUser, ErrInvalidCredentials)
	// Same sentinel either way; callers cannot tell the cases apart.
	assert.Equal(t, badPass, badUser)
}

func TestAuthenticateReplacesRefreshToken(t *testing.T) {
	t.Parallel()

	a, _ := newTestAuthority(t)
	ctx := context.Background()

	_, first, err := a.Register(ctx, "Ada", "ada@example.com", "s3cret-pass", "s3cret-pass")
	require.NoError(t, err)

	second, err := a.Authenticate(ctx, "ada@example.com", "s3cret-pass")
	require.NoError(t, err)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// Only the newest refresh token survives.
	_, err = a.Refresh(ctx, first.RefreshToken)
	require.ErrorIs(t, err, session.ErrRefreshNotFound)
	_, err = a.Refresh(ctx, second.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshKeepsSameTokenString(t *testing.T) {
	t.Parallel()

	a, clk := newTestAuthority(t)
	ctx := context.Background()

	_, pair, err := a.Register(ctx, "Ada", "ada@example.com", "s3cret-pass", "s3cret-pass")
	require.NoError(t, err)

	*clk = clk.Add(5 * time.Minute)

	refreshed, err := a.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)

	assert.Equal(t, pair.RefreshToken, refreshed.RefreshToken, "refresh must not rotate the token")
	assert.NotEqual(t, pair.AccessToken, refreshed.AccessToken)

	// A second presentation of the same string still works.
	again, err := a.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, pair.RefreshToken, again.RefreshToken)
}

func TestRefreshExpired(t *testing.T) {
	t.Parallel()

	a, clk := newTestAuthority(t)
	ctx := context.Background()

	_, pair, err := a.Register(ctx, "Ada", "ada@example.com", "s3cret-pass", "s3cret-pass")
	require.NoError(t, err)

	*clk = clk.Add(25 * time.Hour)

	_, err = a.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, session.ErrRefreshExpired)

	// Rejection deleted the row, so the next attempt is not-found.
	_, err = a.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, session.ErrRefreshNotFound)
}

func TestRefreshUnknownToken(t *testing.T) {
	t.Parallel()

	a, _ := newTestAuthority(t)

	_, err := a.Refresh(context.Background(), "never-issued")
	require.ErrorIs(t, err, session.ErrRefreshNotFound)
}

func TestLogoutIsIdempotent(t *testing.T) {
	t.Parallel()

	a, _ := newTestAuthority(t)
	ctx := context.Background()

	p, pair, err := a.Register(ctx, "Ada", "ada@example.com", "s3cret-pass", "s3cret-pass")
	require.NoError(t, err)

	require.NoError(t, a.Logout(ctx, p.ID))
	require.NoError(t, a.Logout(ctx, p.ID))
	require.NoError(t, a.Logout(ctx, "no-such-principal"))

	_, err = a.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, session.ErrRefreshNotFound)
}

func TestValidateErrorKinds(t *testing.T) {
	t.Parallel()

	a, clk := newTestAuthority(t)
	ctx := context.Background()

	_, pair, err := a.Register(ctx, "Ada", "ada@example.com", "s3cret-pass", "s3cret-pass")
	require.NoError(t, err)

	_, err = a.Validate(pair.AccessToken, clk.Add(16*time.Minute))
	require.ErrorIs(t, err, token.ErrTokenExpired)

	_, err = a.Validate("not.a.token", *clk)
	require.ErrorIs(t, err, token.ErrInvalidToken)

	_, err = a.Validate("", *clk)
	require.ErrorIs(t, err, token.ErrInvalidToken)
}

// TestSessionLifecycle walks the whole credential flow end to end.
func TestSessionLifecycle(t *testing.T) {
	t.Parallel()

	a, clk := newTestAuthority(t)
	ctx := context.Background()

	p, pair, err := a.Register(ctx, "Ada", "ada@example.com", "s3cret-pass", "s3cret-pass")
	require.NoError(t, err)

	// Wrong password leaves the session untouched.
	_, err = a.Authenticate(ctx, "ada@example.com", "wrong-pass!")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	// Refresh mid-lifetime returns the same refresh string.
	*clk = clk.Add(10 * time.Minute)
	refreshed, err := a.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, pair.RefreshToken, refreshed.RefreshToken)

	id, err := a.Validate(refreshed.AccessToken, *clk)
	require.NoError(t, err)
	require.Equal(t, p.ID, id.PrincipalID)

	// Logout kills the refresh token for good.
	require.NoError(t, a.Logout(ctx, p.ID))
	_, err = a.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, session.ErrRefreshNotFound)
}
