package handlers

import (
	"context"
	"net/http"

	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/go-chi/chi/v5"
	"github.com/tasklane/apiserver/internal/result"
	"github.com/tasklane/apiserver/internal/schema"
)

// SessionOperations are the session use-cases. *services.SessionService
// satisfies it.
type SessionOperations interface {
	Login(ctx context.Context, in schema.Input) (result.Result[*cip.AdminInitiateAuthOutput], error)
	Logout(ctx context.Context, in schema.Input) (result.Result[struct{}], error)
	RefreshToken(ctx context.Context, in schema.Input) (result.Result[*cip.AdminInitiateAuthOutput], error)
}

// SessionHandler provides HTTP handlers for sessions.
type SessionHandler struct {
	sessions SessionOperations
}

func NewSessionHandler(sessions SessionOperations) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// SessionRouter registers session routes on the given router.
func SessionRouter(r chi.Router, sessions SessionOperations, authMiddleware func(http.Handler) http.Handler) {
	handler := NewSessionHandler(sessions)

	r.Post("/", handler.CreateSession)
	r.With(authMiddleware).Get("/", handler.VerifySession)
	r.Delete("/", handler.DeleteSession)
	r.Post("/refresh", handler.RefreshSession)
}

// CreateSession signs a user in.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	in, ok := readInput(w, r)
	if !ok {
		return
	}
	res, err := h.sessions.Login(r.Context(), in)
	render(w, r, "login", res, err, createSessionTemplate)
}

// VerifySession answers 200 for a caller that passed the auth middleware.
func (h *SessionHandler) VerifySession(w http.ResponseWriter, r *http.Request) {
	writeView(w, okTemplate())
}

// DeleteSession signs a user out everywhere.
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	in, ok := readInput(w, r)
	if !ok {
		return
	}
	res, err := h.sessions.Logout(r.Context(), in)
	render(w, r, "logout", res, err, deleteSessionTemplate)
}

// RefreshSession issues a new ID token from a refresh token.
func (h *SessionHandler) RefreshSession(w http.ResponseWriter, r *http.Request) {
	in, ok := readInput(w, r)
	if !ok {
		return
	}
	res, err := h.sessions.RefreshToken(r.Context(), in)
	render(w, r, "refresh token", res, err, refreshSessionTemplate)
}
