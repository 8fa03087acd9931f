package types

import "time"

// Priority ranks a todo. A todo without a priority has a nil Priority.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMiddle Priority = "MIDDLE"
	PriorityLow    Priority = "LOW"
)

// Todo represents a task owned by a single user.
type Todo struct {
	// ID is the unique identifier assigned by the store.
	ID int `json:"id" db:"id"`

	// Title is the short name of the task (1 to 255 characters).
	Title string `json:"title" db:"title"`

	// Description is the body of the task (1 to 2047 characters).
	Description string `json:"description" db:"description"`

	// IsClosed reports whether the task has been closed.
	IsClosed bool `json:"isClosed" db:"is_closed"`

	// ClosedAt is when the task was closed, if it was.
	ClosedAt *time.Time `json:"closedAt" db:"closed_at"`

	// FinishedAt is the planned or actual completion time.
	FinishedAt *time.Time `json:"finishedAt" db:"finished_at"`

	// Priority is optional.
	Priority *Priority `json:"priority" db:"priority"`

	// Username is the name of the owner. It is stamped from the caller's
	// verified identity at creation and never changes afterwards.
	Username string `json:"username" db:"username"`

	// CreatedAt is the timestamp at which the todo was created.
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update.
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// TodoScope selects the todo a mutation applies to. A nil Username matches
// any owner.
type TodoScope struct {
	ID       int
	Username *string
}

// TodoPatch holds the fields of a partial update. Nil fields are left
// unchanged.
type TodoPatch struct {
	Title       *string
	Description *string
	IsClosed    *bool
	ClosedAt    *time.Time
	FinishedAt  *time.Time
	Priority    *Priority
}

// Empty reports whether the patch changes no field.
func (p TodoPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.IsClosed == nil &&
		p.ClosedAt == nil && p.FinishedAt == nil && p.Priority == nil
}

// TodoEventKind names what happened to a todo.
type TodoEventKind string

const (
	TodoCreated TodoEventKind = "todo.created"
	TodoUpdated TodoEventKind = "todo.updated"
	TodoDeleted TodoEventKind = "todo.deleted"
)

// TodoEvent is published after a todo mutation is committed.
type TodoEvent struct {
	Kind       TodoEventKind `json:"kind"`
	Todo       Todo          `json:"todo"`
	OccurredAt time.Time     `json:"occurredAt"`
}
