// Package auth implements the token authority: the orchestration of login,
// registration, refresh, logout and access-token validation.
//
// The authority holds no state of its own beyond configuration; durable state
// lives in the injected identity.Directory and session.Store, and token
// signing in token.Codec. All operations are reentrant.
package auth
