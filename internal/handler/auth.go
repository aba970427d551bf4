package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"github.com/maktabat-alamal/storefront/internal/domain/auth"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token     string    `json:"token"`
	AccountID string    `json:"accountId"`
	Email     string    `json:"email"`
	Admin     bool      `json:"admin"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func toSessionResponse(s *auth.Session) sessionResponse {
	return sessionResponse{
		Token:     s.Token,
		AccountID: s.AccountID,
		Email:     s.Email,
		Admin:     s.Admin,
		ExpiresAt: s.ExpiresAt,
	}
}

func (h *Handler) signUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" {
		respondError(w, r, http.StatusUnprocessableEntity, "email is required")
		return
	}

	session, err := h.deps.Auth.CreateAccount(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrWeakPassword):
			respondError(w, r, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, auth.ErrEmailTaken):
			respondError(w, r, http.StatusConflict, err.Error())
		default:
			internalError(w, r, err)
		}
		return
	}
	respond(w, r, http.StatusCreated, toSessionResponse(session))
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	session, err := h.deps.Auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondError(w, r, http.StatusUnauthorized, "invalid credentials")
			return
		}
		internalError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, toSessionResponse(session))
}

func (h *Handler) signOut(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		respondError(w, r, http.StatusUnauthorized, "missing session token")
		return
	}
	if err := h.deps.Auth.SignOut(r.Context(), token); err != nil {
		internalError(w, r, err)
		return
	}
	respond(w, r, http.StatusNoContent, nil)
}

// requireAdmin verifies the bearer token and rejects non-admin sessions.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			respondError(w, r, http.StatusUnauthorized, "missing session token")
			return
		}
		session, err := h.deps.Auth.Verify(r.Context(), token)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidSession) {
				respondError(w, r, http.StatusUnauthorized, "invalid session")
				return
			}
			internalError(w, r, err)
			return
		}
		if !session.Admin {
			respondError(w, r, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Admin     bool      `json:"admin"`
	CreatedAt time.Time `json:"createdAt"`
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.deps.Auth.ListAccounts(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}

	out := make([]userResponse, len(accounts))
	for i, acc := range accounts {
		out[i] = userResponse{
			ID:        acc.ID,
			Email:     acc.Email,
			Admin:     acc.Admin,
			CreatedAt: acc.CreatedAt,
		}
	}
	respond(w, r, http.StatusOK, out)
}

type setAdminRequest struct {
	Admin bool `json:"admin"`
}

func (h *Handler) setUserAdmin(w http.ResponseWriter, r *http.Request) {
	var req setAdminRequest
	if !decodeBody(w, r, &req) {
		return
	}

	err := h.deps.Auth.SetAdmin(r.Context(), chi.URLParam(r, "id"), req.Admin)
	if err != nil {
		if errors.Is(err, auth.ErrAccountNotFound) {
			respondError(w, r, http.StatusNotFound, "account not found")
			return
		}
		internalError(w, r, err)
		return
	}
	respond(w, r, http.StatusNoContent, nil)
}
