package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tasklane/apiserver/types"
)

const todoColumns = `id, title, description, is_closed, closed_at, finished_at, priority, username, created_at, updated_at`

// TodoRepository handles persistence for todos.
type TodoRepository struct {
	db *sql.DB
}

func NewTodoRepository(db *sql.DB) *TodoRepository {
	return &TodoRepository{db: db}
}

func (r *TodoRepository) Create(ctx context.Context, todo types.Todo) (types.Todo, error) {
	now := time.Now().UTC()
	todo.CreatedAt = now
	todo.UpdatedAt = now

	const query = `
		INSERT INTO todos (title, description, is_closed, closed_at, finished_at, priority, username, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		todo.Title,
		todo.Description,
		todo.IsClosed,
		todo.ClosedAt,
		todo.FinishedAt,
		priorityArg(todo.Priority),
		todo.Username,
		todo.CreatedAt,
		todo.UpdatedAt,
	).Scan(&todo.ID); err != nil {
		return types.Todo{}, err
	}
	return todo, nil
}

// List returns todos ordered by id. A nil username returns every todo.
func (r *TodoRepository) List(ctx context.Context, username *string) ([]types.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos`
	var args []any
	if username != nil {
		query += ` WHERE username = $1`
		args = append(args, *username)
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	todos := make([]types.Todo, 0)
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return todos, nil
}

// Update applies patch to the todo matched by scope and returns the updated
// row. updated_at is always refreshed, so an empty patch still succeeds.
func (r *TodoRepository) Update(ctx context.Context, scope types.TodoScope, patch types.TodoPatch) (types.Todo, error) {
	var (
		sets []string
		args []any
	)
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.IsClosed != nil {
		set("is_closed", *patch.IsClosed)
	}
	if patch.ClosedAt != nil {
		set("closed_at", *patch.ClosedAt)
	}
	if patch.FinishedAt != nil {
		set("finished_at", *patch.FinishedAt)
	}
	if patch.Priority != nil {
		set("priority", string(*patch.Priority))
	}
	set("updated_at", time.Now().UTC())

	where, args := scopeClause(scope, args)
	query := `UPDATE todos SET ` + strings.Join(sets, ", ") + where + ` RETURNING ` + todoColumns

	todo, err := scanTodo(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Todo{}, ErrNotFound
		}
		return types.Todo{}, err
	}
	return todo, nil
}

// Delete removes the todo matched by scope and returns it.
func (r *TodoRepository) Delete(ctx context.Context, scope types.TodoScope) (types.Todo, error) {
	where, args := scopeClause(scope, nil)
	query := `DELETE FROM todos` + where + ` RETURNING ` + todoColumns

	todo, err := scanTodo(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Todo{}, ErrNotFound
		}
		return types.Todo{}, err
	}
	return todo, nil
}

func scopeClause(scope types.TodoScope, args []any) (string, []any) {
	args = append(args, scope.ID)
	where := fmt.Sprintf(" WHERE id = $%d", len(args))
	if scope.Username != nil {
		args = append(args, *scope.Username)
		where += fmt.Sprintf(" AND username = $%d", len(args))
	}
	return where, args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTodo(row rowScanner) (types.Todo, error) {
	var (
		todo       types.Todo
		closedAt   sql.NullTime
		finishedAt sql.NullTime
		priority   sql.NullString
	)
	err := row.Scan(
		&todo.ID,
		&todo.Title,
		&todo.Description,
		&todo.IsClosed,
		&closedAt,
		&finishedAt,
		&priority,
		&todo.Username,
		&todo.CreatedAt,
		&todo.UpdatedAt,
	)
	if err != nil {
		return types.Todo{}, err
	}
	if closedAt.Valid {
		todo.ClosedAt = &closedAt.Time
	}
	if finishedAt.Valid {
		todo.FinishedAt = &finishedAt.Time
	}
	if priority.Valid {
		p := types.Priority(priority.String)
		todo.Priority = &p
	}
	return todo, nil
}

func priorityArg(p *types.Priority) any {
	if p == nil {
		return nil
	}
	return string(*p)
}
