package handlers

import (
	"net/http"

	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/tasklane/apiserver/internal/result"
	"github.com/tasklane/apiserver/internal/services"
	"github.com/tasklane/apiserver/types"
)

// storeErrorPointer replaces the store's own message in error responses.
const storeErrorPointer = `Please check PostgreSQL error code list "https://www.postgresql.org/docs/current/errcodes-appendix.html"`

const (
	internalErrorMessage = "Internal server error."
	unauthorizedMessage  = "Unauthorized Error."
)

// view is a rendered response: the HTTP status and the JSON body.
type view struct {
	status int
	body   any
}

type statusBody struct {
	Status int `json:"status"`
}

type messageBody struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

type validationErrorBody struct {
	Status int                 `json:"status"`
	Errors []result.FieldError `json:"errors"`
}

type identityErrorItem struct {
	Message string `json:"message"`
}

type identityErrorBody struct {
	Status int                 `json:"status"`
	Errors []identityErrorItem `json:"errors"`
}

type storeErrorDetail struct {
	Code    string                 `json:"code"`
	Meta    *result.StoreErrorMeta `json:"meta,omitempty"`
	Message string                 `json:"message"`
}

type storeErrorItem struct {
	Error storeErrorDetail `json:"error"`
}

type storeErrorBody struct {
	Status int              `json:"status"`
	Errors []storeErrorItem `json:"errors"`
}

// User is the public shape of a registered user.
type User struct {
	Username string `json:"username,omitempty"`
	ID       string `json:"id,omitempty"`
	Role     string `json:"role,omitempty"`
}

type userBody struct {
	Status int  `json:"status"`
	User   User `json:"user"`
}

// Session carries the tokens issued at sign in.
type Session struct {
	Token        *string `json:"token,omitempty"`
	RefreshToken *string `json:"refreshToken,omitempty"`
}

type sessionBody struct {
	Status  int     `json:"status"`
	Session Session `json:"session"`
}

type todoBody struct {
	Status int        `json:"status"`
	Todo   types.Todo `json:"todo"`
}

type todosBody struct {
	Status int          `json:"status"`
	Todos  []types.Todo `json:"todos"`
}

func validationErrorTemplate(errs []result.FieldError) view {
	if errs == nil {
		errs = []result.FieldError{}
	}
	return view{http.StatusBadRequest, validationErrorBody{Status: http.StatusBadRequest, Errors: errs}}
}

func identityErrorTemplate(err result.IdentityError) view {
	return view{err.StatusCode, identityErrorBody{
		Status: err.StatusCode,
		Errors: []identityErrorItem{{Message: err.Message}},
	}}
}

func storeErrorTemplate(err result.StoreError) view {
	return view{http.StatusBadRequest, storeErrorBody{
		Status: http.StatusBadRequest,
		Errors: []storeErrorItem{{Error: storeErrorDetail{
			Code:    err.Code,
			Meta:    err.Meta,
			Message: storeErrorPointer,
		}}},
	}}
}

func internalErrorTemplate() view {
	return view{http.StatusInternalServerError, messageBody{Status: http.StatusInternalServerError, Message: internalErrorMessage}}
}

func unauthorizedTemplate() view {
	return view{http.StatusUnauthorized, messageBody{Status: http.StatusUnauthorized, Message: unauthorizedMessage}}
}

func okTemplate() view {
	return view{http.StatusOK, statusBody{Status: http.StatusOK}}
}

// failureTemplate renders the failure branch of res.
func failureTemplate[T any](res result.Result[T]) view {
	switch res.Type() {
	case result.TypeValidation:
		return validationErrorTemplate(res.FieldErrors())
	case result.TypeIdentity:
		return identityErrorTemplate(res.IdentityError())
	case result.TypeStore:
		return storeErrorTemplate(res.StoreError())
	case result.TypeInvalidToken:
		return unauthorizedTemplate()
	default:
		return internalErrorTemplate()
	}
}

// The success templates below report false when the payload they need is
// missing, which the caller renders as an internal error.

func createUserTemplate(out *cip.AdminCreateUserOutput) (view, bool) {
	if out == nil || out.User == nil || out.User.Attributes == nil {
		return view{}, false
	}
	attrs := out.User.Attributes
	return view{http.StatusOK, userBody{
		Status: http.StatusOK,
		User: User{
			Username: services.Attribute(attrs, services.AttrName),
			ID:       services.Attribute(attrs, services.AttrSub),
			Role:     services.Attribute(attrs, services.AttrRole),
		},
	}}, true
}

func createSessionTemplate(out *cip.AdminInitiateAuthOutput) (view, bool) {
	if out == nil || out.AuthenticationResult == nil {
		return view{}, false
	}
	auth := out.AuthenticationResult
	return view{http.StatusOK, sessionBody{
		Status:  http.StatusOK,
		Session: Session{Token: auth.IdToken, RefreshToken: auth.RefreshToken},
	}}, true
}

func refreshSessionTemplate(out *cip.AdminInitiateAuthOutput) (view, bool) {
	if out == nil || out.AuthenticationResult == nil {
		return view{}, false
	}
	return view{http.StatusOK, sessionBody{
		Status:  http.StatusOK,
		Session: Session{Token: out.AuthenticationResult.IdToken},
	}}, true
}

func deleteSessionTemplate(struct{}) (view, bool) {
	return okTemplate(), true
}

func todoTemplate(todo *types.Todo) (view, bool) {
	if todo == nil {
		return view{}, false
	}
	return view{http.StatusOK, todoBody{Status: http.StatusOK, Todo: *todo}}, true
}

func listTodosTemplate(todos []types.Todo) (view, bool) {
	if todos == nil {
		return view{}, false
	}
	return view{http.StatusOK, todosBody{Status: http.StatusOK, Todos: todos}}, true
}

func deleteTodoTemplate(todo *types.Todo) (view, bool) {
	if todo == nil {
		return view{}, false
	}
	return okTemplate(), true
}
