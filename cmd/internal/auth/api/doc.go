// Package authapi exposes the credential endpoints over HTTP and the bearer
// middleware that guards protected routes.
//
// Routes:
//
//	POST /auth/register       create an account and log in
//	POST /auth/login          exchange email+password for tokens
//	POST /auth/refresh-token  exchange a refresh token for a new access token
//	POST /auth/logout         invalidate the caller's refresh token (bearer)
//
// Token responses carry Cache-Control: no-store. Validation failures use a
// {"error":{"code","message"}} body; authentication failures use the flat
// 401 body produced by writeUnauthorized.
package authapi
