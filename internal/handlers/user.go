package handlers

import (
	"context"
	"net/http"

	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/go-chi/chi/v5"
	"github.com/tasklane/apiserver/internal/result"
	"github.com/tasklane/apiserver/internal/schema"
)

// UserOperations are the user use-cases. *services.UserService satisfies it.
type UserOperations interface {
	Create(ctx context.Context, in schema.Input) (result.Result[*cip.AdminCreateUserOutput], error)
}

// UserHandler provides HTTP handlers for users.
type UserHandler struct {
	users UserOperations
}

func NewUserHandler(users UserOperations) *UserHandler {
	return &UserHandler{users: users}
}

// UserRouter registers user routes on the given router.
func UserRouter(r chi.Router, users UserOperations) {
	handler := NewUserHandler(users)

	r.Post("/", handler.CreateUser)
}

// CreateUser registers a new user.
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	in, ok := readInput(w, r)
	if !ok {
		return
	}
	res, err := h.users.Create(r.Context(), in)
	render(w, r, "create user", res, err, createUserTemplate)
}
