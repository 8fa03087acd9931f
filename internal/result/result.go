// Package result defines the return convention shared by every domain operation:
// a value on success, or exactly one classified failure.
package result

// ErrorType tags the failure branch of a Result.
type ErrorType string

const (
	// TypeValidation marks input that failed schema validation.
	TypeValidation ErrorType = "validation"
	// TypeIdentity marks a recognized identity provider error.
	TypeIdentity ErrorType = "identity"
	// TypeStore marks a recognized relational store error.
	TypeStore ErrorType = "store"
	// TypeInvalidToken marks a bearer token that failed verification.
	TypeInvalidToken ErrorType = "invalid_token"
)

// FieldError is a single violated constraint on one input field.
type FieldError struct {
	Message string   `json:"message"`
	Path    []string `json:"path"`
}

// IdentityError is the classified shape of an identity provider failure.
type IdentityError struct {
	Message    string `json:"message"`
	Code       string `json:"code"`
	StatusCode int    `json:"statusCode"`
}

// StoreError is the classified shape of a relational store failure.
type StoreError struct {
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Meta    *StoreErrorMeta `json:"meta,omitempty"`
}

// StoreErrorMeta points at the columns or constraint involved in a store error.
type StoreErrorMeta struct {
	Target []string `json:"target,omitempty"`
}

// Result is either a success carrying a value of type T or a failure of
// exactly one ErrorType. The zero value is not a valid Result; use the
// constructors.
type Result[T any] struct {
	ok       bool
	value    T
	errType  ErrorType
	fields   []FieldError
	identity IdentityError
	store    StoreError
	message  string
}

// Success wraps a successful operation value.
func Success[T any](value T) Result[T] {
	return Result[T]{ok: true, value: value}
}

// Validation reports input validation failures.
func Validation[T any](errs []FieldError) Result[T] {
	if errs == nil {
		errs = []FieldError{}
	}
	return Result[T]{errType: TypeValidation, fields: errs}
}

// Identity reports a classified identity provider failure.
func Identity[T any](err IdentityError) Result[T] {
	return Result[T]{errType: TypeIdentity, identity: err, message: err.Message}
}

// Store reports a classified relational store failure.
func Store[T any](err StoreError) Result[T] {
	return Result[T]{errType: TypeStore, store: err, message: err.Message}
}

// InvalidToken reports a token verification failure with a client-safe message.
func InvalidToken[T any](message string) Result[T] {
	return Result[T]{errType: TypeInvalidToken, message: message}
}

// OK reports whether the operation succeeded.
func (r Result[T]) OK() bool { return r.ok }

// Value returns the success value, or the zero value of T on failure.
func (r Result[T]) Value() T { return r.value }

// Type returns the failure tag. It is empty for a success.
func (r Result[T]) Type() ErrorType { return r.errType }

// FieldErrors returns the validation failures for TypeValidation.
func (r Result[T]) FieldErrors() []FieldError { return r.fields }

// IdentityError returns the classified error for TypeIdentity.
func (r Result[T]) IdentityError() IdentityError { return r.identity }

// StoreError returns the classified error for TypeStore.
func (r Result[T]) StoreError() StoreError { return r.store }

// Message returns the human readable failure message, if the branch has one.
func (r Result[T]) Message() string { return r.message }
