package authapi

import (
	"errors"
	"log/slog"
	"net/http"

	"uniblog/cmd/identity"
	"uniblog/cmd/internal/auth"
	"uniblog/cmd/internal/auth/session"
	"uniblog/cmd/security/password"
)

// Handler wires the credential endpoints to the token authority.
type Handler struct {
	log       *slog.Logger
	cfg       Config
	authority *auth.Authority
	metrics   Metrics
}

// HandlerOption configures optional handler dependencies.
type HandlerOption func(*Handler)

// WithMetrics overrides the default no-op metrics sink.
func WithMetrics(m Metrics) HandlerOption {
	return func(h *Handler) {
		if h == nil || m == nil {
			return
		}
		h.metrics = m
	}
}

// NewHandler constructs an auth Handler.
func NewHandler(log *slog.Logger, authority *auth.Authority, cfg Config, opts ...HandlerOption) (*Handler, error) {
	if authority == nil {
		return nil, errors.New("authapi: nil authority")
	}
	if log == nil {
		log = slog.Default()
	}

	h := &Handler{
		log:       log,
		cfg:       cfg.withDefaults(),
		authority: authority,
		metrics:   NoopMetrics{},
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(h)
	}
	return h, nil
}

// Register wires auth routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("/auth/register", h.handleRegister)
	mux.HandleFunc("/auth/login", h.handleLogin)
	mux.HandleFunc("/auth/refresh-token", h.handleRefresh)
	mux.Handle("/auth/logout", h.RequireAuth(http.HandlerFunc(h.handleLogout)))
}

// ---- handlers ----

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req registerRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	p, pair, err := h.authority.Register(r.Context(), req.Name, req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrPasswordMismatch):
			h.metrics.AuthResult("register", "password_mismatch")
			writeError(w, http.StatusBadRequest, "password_mismatch", "password and confirmation do not match")
		case errors.Is(err, auth.ErrEmailTaken):
			h.metrics.AuthResult("register", "email_taken")
			writeError(w, http.StatusBadRequest, "email_taken", "email address is already registered")
		case errors.Is(err, password.ErrPasswordTooShort), errors.Is(err, password.ErrPasswordTooLong):
			h.metrics.AuthResult("register", "weak_password")
			writeError(w, http.StatusBadRequest, "invalid_password", "password does not meet the length policy")
		case identity.IsInvalidInput(err):
			h.metrics.AuthResult("register", "invalid_request")
			writeError(w, http.StatusBadRequest, "invalid_request", "name and email are required")
		default:
			h.metrics.AuthResult("register", "error")
			h.log.Error("auth.register.fail", "err", err)
			writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		}
		return
	}

	h.metrics.AuthResult("register", "ok")
	h.log.Info("auth.register.ok", "user_id", p.ID)
	writeJSON(w, http.StatusCreated, toTokenResponse(pair))
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	pair, err := h.authority.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.metrics.AuthResult("login", "invalid_credentials")
			writeUnauthorized(w, r, "invalid credentials")
			return
		}
		h.metrics.AuthResult("login", "error")
		h.log.Error("auth.login.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	h.metrics.AuthResult("login", "ok")
	writeJSON(w, http.StatusOK, toTokenResponse(pair))
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req refreshRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	if req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "refreshToken is required")
		return
	}

	pair, err := h.authority.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrRefreshExpired):
			h.metrics.AuthResult("refresh", "expired")
			writeError(w, http.StatusBadRequest, "refresh_expired", "refresh token expired")
		case errors.Is(err, session.ErrRefreshNotFound):
			h.metrics.AuthResult("refresh", "not_found")
			writeError(w, http.StatusBadRequest, "invalid_refresh_token", "invalid refresh token")
		default:
			h.metrics.AuthResult("refresh", "error")
			h.log.Error("auth.refresh.fail", "err", err)
			writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		}
		return
	}

	h.metrics.AuthResult("refresh", "ok")
	writeJSON(w, http.StatusOK, toTokenResponse(pair))
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	id, ok := IdentityFromContext(r.Context())
	if !ok {
		// RequireAuth always runs first; reaching here is a wiring bug.
		writeUnauthorized(w, r, "missing bearer token")
		return
	}

	if err := h.authority.Logout(r.Context(), id.PrincipalID); err != nil {
		h.metrics.AuthResult("logout", "error")
		h.log.Error("auth.logout.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	h.metrics.AuthResult("logout", "ok")
	h.log.Info("auth.logout.ok", "user_id", id.PrincipalID)
	w.WriteHeader(http.StatusOK)
}
