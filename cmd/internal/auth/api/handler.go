// Package authapi wires HTTP auth endpoints (register, login, me) to the
// identity store and the token service.
package authapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"taskd/cmd/identity"
	"taskd/cmd/internal/auth/token"
)

// Config controls auth API behavior.
type Config struct {
	MaxBodyBytes int64
}

// Handler serves /register, /login and /me.
type Handler struct {
	log    *slog.Logger
	cfg    Config
	users  identity.Store
	tokens *token.Manager
}

// NewHandler constructs an auth Handler.
func NewHandler(log *slog.Logger, users identity.Store, tokens *token.Manager, cfg Config) (*Handler, error) {
	if log == nil {
		log = slog.Default()
	}
	if users == nil {
		return nil, errors.New("authapi: nil identity store")
	}
	if tokens == nil {
		return nil, errors.New("authapi: nil token manager")
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}
	return &Handler{log: log, cfg: cfg, users: users, tokens: tokens}, nil
}

// Register wires auth routes onto the provided mux. protect wraps handlers
// that require an authenticated identity.
func (h *Handler) Register(mux *http.ServeMux, protect func(http.Handler) http.Handler) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("POST /register", h.handleRegister)
	mux.HandleFunc("POST /login", h.handleLogin)
	if protect != nil {
		mux.Handle("GET /me", protect(http.HandlerFunc(h.handleMe)))
	}
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Password) == "" {
		writeMessage(w, http.StatusBadRequest, "Name, email and password are required")
		return
	}

	res, err := h.users.CreateUser(r.Context(), identity.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Now:      time.Now().UTC(),
	})
	if err != nil {
		switch {
		case identity.IsConflict(err):
			writeMessage(w, http.StatusBadRequest, "Email already in use")
		case identity.IsInvalidInput(err):
			writeMessage(w, http.StatusBadRequest, "Name, email and password are required")
		default:
			h.log.Error("auth.register.fail", "err", err)
			writeServerError(w, "Failed to register user", err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, registerResponse{
		Message: "User registered",
		User:    toUserResponse(res.User),
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Missing email, unknown email, and wrong password are indistinguishable
	// to the caller.
	user, err := h.users.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if identity.IsNotFound(err) || identity.IsInvalidInput(err) {
			writeMessage(w, http.StatusBadRequest, "Invalid email or password")
			return
		}
		h.log.Error("auth.login.fail", "err", err)
		writeServerError(w, "Failed to log in", err)
		return
	}

	if !identity.VerifyPassword(req.Password, user.PasswordHash) {
		writeMessage(w, http.StatusBadRequest, "Invalid email or password")
		return
	}

	tok, err := h.tokens.Issue(user.ID, user.Email)
	if err != nil {
		h.log.Error("auth.login.issue_token.fail", "err", err)
		writeServerError(w, "Failed to log in", err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Message: "Login successful",
		Token:   tok,
		User:    toUserResponse(user),
	})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := IdentityFrom(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "User not found or unauthorized")
		return
	}

	user, err := h.users.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		if identity.IsNotFound(err) {
			writeMessage(w, http.StatusUnauthorized, "User not found or unauthorized")
			return
		}
		h.log.Error("auth.me.fail", "err", err)
		writeServerError(w, "Failed to fetch user", err)
		return
	}

	writeJSON(w, http.StatusOK, meResponse{User: toUserResponse(user)})
}
