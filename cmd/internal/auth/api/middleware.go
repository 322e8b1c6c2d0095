package authapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"uniblog/cmd/internal/auth/token"
)

// RequireAuth validates the bearer token and attaches the caller's identity
// to the request context. Anything short of a valid, unexpired token is a 401
// with the flat unauthorized body; the next handler never runs.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			h.metrics.AuthResult("validate", "missing")
			writeUnauthorized(w, r, "missing bearer token")
			return
		}

		id, err := h.authority.Validate(raw, time.Now().UTC())
		if err != nil {
			if errors.Is(err, token.ErrTokenExpired) {
				h.metrics.AuthResult("validate", "expired")
				writeUnauthorized(w, r, "access token expired")
			} else {
				h.metrics.AuthResult("validate", "invalid")
				writeUnauthorized(w, r, "invalid access token")
			}
			return
		}

		h.metrics.AuthResult("validate", "ok")
		next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), id)))
	})
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	parts := strings.SplitN(raw, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
