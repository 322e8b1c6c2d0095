package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"uniblog/cmd/identity"
	"uniblog/cmd/internal/auth/session"
	"uniblog/cmd/internal/auth/token"
)

// TokenType is the scheme clients present access tokens under.
const TokenType = "Bearer"

// dummyPassword feeds the timing-equalizing verify on unknown emails. The
// value itself never matters; only that a full Argon2id verification runs.
const dummyPassword = "correct horse battery staple"

// PasswordHasher turns a plain password into an encoded hash. Implemented by
// password.Config.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// PasswordVerifier checks a plain password against an encoded hash.
// Implemented by password.Config.
type PasswordVerifier interface {
	Verify(encodedHash, password string) (bool, error)
}

// TokenPair is the credential envelope returned by login, registration and
// refresh. ExpiresIn is the access-token lifetime in whole seconds.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int64
}

// Identity is the authenticated caller attached to a request after bearer
// validation.
type Identity struct {
	PrincipalID string
	Roles       []string
}

// Authority orchestrates credential issuance and validation. It holds no
// mutable state; all methods are safe for concurrent use.
type Authority struct {
	dir        identity.Directory
	hasher     PasswordHasher
	verifier   PasswordVerifier
	codec      *token.Codec
	sessions   session.Store
	refreshTTL time.Duration

	// dummyHash is verified against on unknown emails so login latency does
	// not reveal whether an account exists.
	dummyHash string

	now func() time.Time
}

// NewAuthority wires an Authority from its collaborators.
func NewAuthority(
	dir identity.Directory,
	hasher PasswordHasher,
	verifier PasswordVerifier,
	codec *token.Codec,
	sessions session.Store,
	refreshTTL time.Duration,
) (*Authority, error) {
	if dir == nil || hasher == nil || verifier == nil || codec == nil || sessions == nil {
		return nil, errors.New("auth: nil collaborator")
	}
	if refreshTTL <= 0 {
		return nil, errors.New("auth: refresh TTL must be positive")
	}

	dummyHash, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("auth: hash dummy password: %w", err)
	}

	return &Authority{
		dir:        dir,
		hasher:     hasher,
		verifier:   verifier,
		codec:      codec,
		sessions:   sessions,
		refreshTTL: refreshTTL,
		dummyHash:  dummyHash,
		now:        time.Now,
	}, nil
}

// Register creates a principal and logs it in. Password policy violations
// surface as the hasher's errors; a normalized-email collision, including one
// lost to a concurrent registration, is ErrEmailTaken.
func (a *Authority) Register(ctx context.Context, name, email, password, confirmPassword string) (identity.Principal, TokenPair, error) {
	if password != confirmPassword {
		return identity.Principal{}, TokenPair{}, ErrPasswordMismatch
	}

	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	if email == "" || name == "" {
		return identity.Principal{}, TokenPair{}, identity.OpError{Op: "auth.register", Kind: identity.ErrInvalidInput, Msg: "name and email are required"}
	}

	hash, err := a.hasher.Hash(password)
	if err != nil {
		return identity.Principal{}, TokenPair{}, err
	}

	p, err := a.dir.Create(ctx, identity.CreateInput{
		Email:        email,
		DisplayName:  name,
		PasswordHash: hash,
		Now:          a.now().UTC(),
	})
	if err != nil {
		if identity.IsConflict(err) {
			return identity.Principal{}, TokenPair{}, ErrEmailTaken
		}
		return identity.Principal{}, TokenPair{}, err
	}

	pair, err := a.issue(ctx, p)
	if err != nil {
		return identity.Principal{}, TokenPair{}, err
	}
	return p, pair, nil
}

// Authenticate verifies email and password and issues a fresh token pair.
// Unknown email and wrong password are indistinguishable: both return
// ErrInvalidCredentials, and the unknown-email path still runs a full
// password verification so response timing stays flat.
func (a *Authority) Authenticate(ctx context.Context, email, password string) (TokenPair, error) {
	p, err := a.dir.FindByEmail(ctx, email)
	if err != nil {
		if identity.IsNotFound(err) {
			_, _ = a.verifier.Verify(a.dummyHash, password)
			return TokenPair{}, ErrInvalidCredentials
		}
		return TokenPair{}, err
	}

	ok, err := a.verifier.Verify(p.PasswordHash, password)
	if err != nil || !ok {
		return TokenPair{}, ErrInvalidCredentials
	}

	return a.issue(ctx, p)
}

// Refresh exchanges a live refresh token for a fresh access token. The same
// refresh token string is returned; presenting it does not rotate it. An
// expired token is deleted by the store before ErrRefreshExpired comes back.
func (a *Authority) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	tok, err := a.sessions.Find(ctx, refreshToken)
	if err != nil {
		return TokenPair{}, err
	}

	now := a.now().UTC()
	if _, err := a.sessions.VerifyNotExpired(ctx, tok, now); err != nil {
		return TokenPair{}, err
	}

	p, err := a.dir.FindByID(ctx, tok.PrincipalID)
	if err != nil {
		// Owner gone (deleted account): the token is orphaned, not expired.
		if identity.IsNotFound(err) {
			_ = a.sessions.InvalidateForPrincipal(ctx, tok.PrincipalID)
			return TokenPair{}, session.ErrRefreshNotFound
		}
		return TokenPair{}, err
	}

	access, err := a.codec.Mint(p.ID, p.Roles, now)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:  access,
		RefreshToken: refreshToken,
		TokenType:    TokenType,
		ExpiresIn:    int64(a.codec.AccessTTL() / time.Second),
	}, nil
}

// Logout invalidates the principal's refresh token. Logging out twice, or
// with no live session, succeeds.
func (a *Authority) Logout(ctx context.Context, principalID string) error {
	return a.sessions.InvalidateForPrincipal(ctx, principalID)
}

// Validate checks an access token and returns the identity it carries.
// Error kinds pass through from the codec: token.ErrTokenExpired for a
// well-signed but stale token, token.ErrInvalidToken for everything else.
func (a *Authority) Validate(tokenString string, now time.Time) (Identity, error) {
	claims, err := a.codec.Verify(tokenString, now)
	if err != nil {
		return Identity{}, err
	}
	return Identity{PrincipalID: claims.Subject, Roles: claims.Roles}, nil
}

// issue mints an access token and replaces the principal's refresh token.
func (a *Authority) issue(ctx context.Context, p identity.Principal) (TokenPair, error) {
	now := a.now().UTC()

	access, err := a.codec.Mint(p.ID, p.Roles, now)
	if err != nil {
		return TokenPair{}, err
	}

	issued, err := a.sessions.Issue(ctx, p.ID, now, a.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:  access,
		RefreshToken: issued.Plain,
		TokenType:    TokenType,
		ExpiresIn:    int64(a.codec.AccessTTL() / time.Second),
	}, nil
}
