package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tasklane/apiserver/internal/result"
	"github.com/tasklane/apiserver/internal/schema"
	"github.com/tasklane/apiserver/types"
)

// TodoOperations are the todo use-cases. *services.TodoService satisfies it.
type TodoOperations interface {
	Create(ctx context.Context, in schema.Input) (result.Result[*types.Todo], error)
	List(ctx context.Context, in schema.Input) (result.Result[[]types.Todo], error)
	Update(ctx context.Context, in schema.Input) (result.Result[*types.Todo], error)
	Delete(ctx context.Context, in schema.Input) (result.Result[*types.Todo], error)
}

// TodoHandler provides HTTP handlers for todos. Admins act on every todo;
// general users only on their own.
type TodoHandler struct {
	todos TodoOperations
}

func NewTodoHandler(todos TodoOperations) *TodoHandler {
	return &TodoHandler{todos: todos}
}

// TodoRouter registers todo routes on the given router. Every route requires
// authentication.
func TodoRouter(r chi.Router, todos TodoOperations, authMiddleware func(http.Handler) http.Handler) {
	handler := NewTodoHandler(todos)

	r.Use(authMiddleware)
	r.Post("/", handler.CreateTodo)
	r.Get("/", handler.ListTodos)
	r.Route("/{todoID}", func(r chi.Router) {
		r.Patch("/", handler.UpdateTodo)
		r.Delete("/", handler.DeleteTodo)
	})
}

// caller returns the authenticated identity and its username scope, writing
// the unauthorized response when either is unavailable.
func caller(w http.ResponseWriter, r *http.Request) (types.Identity, *string, bool) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		writeView(w, unauthorizedTemplate())
		return types.Identity{}, nil, false
	}
	scope, ok := ownerScope(id)
	if !ok {
		writeView(w, unauthorizedTemplate())
		return types.Identity{}, nil, false
	}
	return id, scope, true
}

// CreateTodo stores a todo owned by the caller, whatever username the body
// carries.
func (h *TodoHandler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	id, _, ok := caller(w, r)
	if !ok {
		return
	}
	in, ok := readInput(w, r)
	if !ok {
		return
	}
	res, err := h.todos.Create(r.Context(), in.With("username", id.Name))
	render(w, r, "create todo", res, err, todoTemplate)
}

// ListTodos returns every todo visible to the caller.
func (h *TodoHandler) ListTodos(w http.ResponseWriter, r *http.Request) {
	_, scope, ok := caller(w, r)
	if !ok {
		return
	}
	res, err := h.todos.List(r.Context(), withOwner(schema.Input{}, scope))
	render(w, r, "list todos", res, err, listTodosTemplate)
}

// UpdateTodo patches one todo visible to the caller.
func (h *TodoHandler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	_, scope, ok := caller(w, r)
	if !ok {
		return
	}
	in, ok := readInput(w, r)
	if !ok {
		return
	}
	in = withOwner(in.With("id", chi.URLParam(r, "todoID")), scope)
	res, err := h.todos.Update(r.Context(), in)
	render(w, r, "update todo", res, err, todoTemplate)
}

// DeleteTodo removes one todo visible to the caller.
func (h *TodoHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	_, scope, ok := caller(w, r)
	if !ok {
		return
	}
	in := withOwner(schema.Input{}.With("id", chi.URLParam(r, "todoID")), scope)
	res, err := h.todos.Delete(r.Context(), in)
	render(w, r, "delete todo", res, err, deleteTodoTemplate)
}
