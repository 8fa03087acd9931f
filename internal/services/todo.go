package services

import (
	"context"

	"github.com/tasklane/apiserver/internal/result"
	"github.com/tasklane/apiserver/internal/schema"
	"github.com/tasklane/apiserver/types"
)

// TodoRepository defines persistence operations for todos.
type TodoRepository interface {
	Create(ctx context.Context, todo types.Todo) (types.Todo, error)
	List(ctx context.Context, username *string) ([]types.Todo, error)
	Update(ctx context.Context, scope types.TodoScope, patch types.TodoPatch) (types.Todo, error)
	Delete(ctx context.Context, scope types.TodoScope) (types.Todo, error)
}

// EventPublisher announces committed todo mutations. *mq.MQ satisfies it.
type EventPublisher interface {
	PublishTodo(ctx context.Context, kind types.TodoEventKind, todo types.Todo)
}

// TodoService encapsulates todo use-cases. Ownership scoping is decided by
// the caller through the username field of the input.
type TodoService struct {
	repo   TodoRepository
	events EventPublisher
}

func NewTodoService(repo TodoRepository, events EventPublisher) *TodoService {
	return &TodoService{repo: repo, events: events}
}

type createTodoParams struct {
	Title       string       `json:"title" validate:"min=1,max=255"`
	Description string       `json:"description" validate:"min=1,max=2047"`
	IsClosed    schema.Bool  `json:"isClosed,omitempty"`
	ClosedAt    *schema.Time `json:"closedAt"`
	FinishedAt  *schema.Time `json:"finishedAt"`
	Priority    *string      `json:"priority" validate:"omitempty,oneof=HIGH MIDDLE LOW"`
	Username    string       `json:"username"`
}

type listTodosParams struct {
	Username *string `json:"username"`
}

type updateTodoParams struct {
	ID          schema.Int   `json:"id" validate:"min=1"`
	Username    *string      `json:"username"`
	Title       *string      `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string      `json:"description" validate:"omitempty,min=1,max=2047"`
	IsClosed    *schema.Bool `json:"isClosed"`
	ClosedAt    *schema.Time `json:"closedAt"`
	FinishedAt  *schema.Time `json:"finishedAt"`
	Priority    *string      `json:"priority" validate:"omitempty,oneof=HIGH MIDDLE LOW"`
}

type deleteTodoParams struct {
	ID       schema.Int `json:"id" validate:"min=1"`
	Username *string    `json:"username"`
}

// Create stores a new todo owned by the input's username.
func (s *TodoService) Create(ctx context.Context, in schema.Input) (result.Result[*types.Todo], error) {
	const op = "create todo"
	var p createTodoParams
	if res, ok, err := decode[*types.Todo](ctx, op, in, &p); !ok {
		return res, err
	}

	todo, err := s.repo.Create(ctx, types.Todo{
		Title:       p.Title,
		Description: p.Description,
		IsClosed:    bool(p.IsClosed),
		ClosedAt:    p.ClosedAt.Ptr(),
		FinishedAt:  p.FinishedAt.Ptr(),
		Priority:    priority(p.Priority),
		Username:    p.Username,
	})
	if err != nil {
		return storeFailure[*types.Todo](ctx, op, err)
	}
	s.publish(ctx, types.TodoCreated, todo)
	return result.Success(&todo), nil
}

// List returns the todos of the input's username, or every todo when the
// username is absent.
func (s *TodoService) List(ctx context.Context, in schema.Input) (result.Result[[]types.Todo], error) {
	const op = "list todos"
	var p listTodosParams
	if res, ok, err := decode[[]types.Todo](ctx, op, in, &p); !ok {
		return res, err
	}

	todos, err := s.repo.List(ctx, p.Username)
	if err != nil {
		return storeFailure[[]types.Todo](ctx, op, err)
	}
	return result.Success(todos), nil
}

// Update patches the todo selected by id and, when present, username. Absent
// or null fields are left unchanged.
func (s *TodoService) Update(ctx context.Context, in schema.Input) (result.Result[*types.Todo], error) {
	const op = "update todo"
	var p updateTodoParams
	if res, ok, err := decode[*types.Todo](ctx, op, in, &p); !ok {
		return res, err
	}

	patch := types.TodoPatch{
		Title:       p.Title,
		Description: p.Description,
		ClosedAt:    p.ClosedAt.Ptr(),
		FinishedAt:  p.FinishedAt.Ptr(),
		Priority:    priority(p.Priority),
	}
	if p.IsClosed != nil {
		closed := bool(*p.IsClosed)
		patch.IsClosed = &closed
	}

	todo, err := s.repo.Update(ctx, types.TodoScope{ID: int(p.ID), Username: p.Username}, patch)
	if err != nil {
		return storeFailure[*types.Todo](ctx, op, err)
	}
	s.publish(ctx, types.TodoUpdated, todo)
	return result.Success(&todo), nil
}

// Delete removes the todo selected by id and, when present, username, and
// returns it.
func (s *TodoService) Delete(ctx context.Context, in schema.Input) (result.Result[*types.Todo], error) {
	const op = "delete todo"
	var p deleteTodoParams
	if res, ok, err := decode[*types.Todo](ctx, op, in, &p); !ok {
		return res, err
	}

	todo, err := s.repo.Delete(ctx, types.TodoScope{ID: int(p.ID), Username: p.Username})
	if err != nil {
		return storeFailure[*types.Todo](ctx, op, err)
	}
	s.publish(ctx, types.TodoDeleted, todo)
	return result.Success(&todo), nil
}

func (s *TodoService) publish(ctx context.Context, kind types.TodoEventKind, todo types.Todo) {
	if s.events == nil {
		return
	}
	s.events.PublishTodo(ctx, kind, todo)
}

func priority(p *string) *types.Priority {
	if p == nil {
		return nil
	}
	v := types.Priority(*p)
	return &v
}
