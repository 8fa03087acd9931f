package server

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	ciptypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/golang-jwt/jwt/v5"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tasklane/apiserver/config"
	"github.com/tasklane/apiserver/internal/identity"
	"github.com/tasklane/apiserver/internal/services"
	"github.com/tasklane/apiserver/internal/store"
)

var todoColumns = []string{"id", "title", "description", "is_closed", "closed_at", "finished_at", "priority", "username", "created_at", "updated_at"}

type fakeCognito struct {
	auth *cip.AdminInitiateAuthOutput
	err  error
}

func (f *fakeCognito) AdminCreateUser(context.Context, *cip.AdminCreateUserInput, ...func(*cip.Options)) (*cip.AdminCreateUserOutput, error) {
	return nil, errors.New("not used")
}

func (f *fakeCognito) AdminSetUserPassword(context.Context, *cip.AdminSetUserPasswordInput, ...func(*cip.Options)) (*cip.AdminSetUserPasswordOutput, error) {
	return nil, errors.New("not used")
}

func (f *fakeCognito) AdminInitiateAuth(context.Context, *cip.AdminInitiateAuthInput, ...func(*cip.Options)) (*cip.AdminInitiateAuthOutput, error) {
	return f.auth, f.err
}

func (f *fakeCognito) AdminUserGlobalSignOut(context.Context, *cip.AdminUserGlobalSignOutInput, ...func(*cip.Options)) (*cip.AdminUserGlobalSignOutOutput, error) {
	return &cip.AdminUserGlobalSignOutOutput{}, nil
}

// tokenTable maps bearer tokens to the claims they carry.
type tokenTable map[string]*identity.Claims

func (t tokenTable) Verify(_ context.Context, token string) (*identity.Claims, error) {
	claims, ok := t[token]
	if !ok {
		return nil, errors.New("unknown token")
	}
	return claims, nil
}

var tokens = tokenTable{
	"admin-token": {RegisteredClaims: jwt.RegisteredClaims{Subject: "sub-admin"}, Name: "root", Role: "admin"},
	"alice-token": {RegisteredClaims: jwt.RegisteredClaims{Subject: "sub-alice"}, Name: "alice", Role: "general"},
	"ghost-token": {RegisteredClaims: jwt.RegisteredClaims{Subject: "sub-ghost"}, Name: "ghost", Role: "auditor"},
}

func newTestRouter(t *testing.T, cognito *fakeCognito) (http.Handler, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = conn.Close()
	})

	cfg := config.CognitoConfig{UserPoolID: "pool", ClientID: "client", ClientSecret: "secret"}
	sessions := services.NewSessionService(cognito, tokens, cfg)
	router := NewRouter(Deps{
		Users:    services.NewUserService(cognito, cfg),
		Sessions: sessions,
		Todos:    services.NewTodoService(store.NewTodoRepository(conn), nil),
		Verifier: sessions,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return router, mock
}

func do(router http.Handler, method, target, token, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRouter_TodosRequireAuthentication(t *testing.T) {
	router, _ := newTestRouter(t, &fakeCognito{})

	for _, token := range []string{"", "forged-token", "ghost-token"} {
		rec := do(router, http.MethodPost, "/todos", token, `{"title":"a","description":"b"}`)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, token)
		assert.JSONEq(t, `{"status":401,"message":"Unauthorized Error."}`, rec.Body.String())
	}
}

func TestRouter_CreateSession(t *testing.T) {
	router, _ := newTestRouter(t, &fakeCognito{auth: &cip.AdminInitiateAuthOutput{
		AuthenticationResult: &ciptypes.AuthenticationResultType{IdToken: aws.String("abc"), RefreshToken: aws.String("def")},
	}})

	rec := do(router, http.MethodPost, "/sessions", "", `{"username":"alice","password":"Secret1"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":200,"session":{"token":"abc","refreshToken":"def"}}`, rec.Body.String())
}

func TestRouter_CreateSessionValidation(t *testing.T) {
	router, _ := newTestRouter(t, &fakeCognito{})

	rec := do(router, http.MethodPost, "/sessions", "", `{"username":"alice"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"status":400,"errors":[{"message":"Required","path":["password"]}]}`, rec.Body.String())
}

func TestRouter_CreateTodoStampsCaller(t *testing.T) {
	router, mock := newTestRouter(t, &fakeCognito{})
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO todos")).
		WithArgs("buy milk", "2 litres", false, nil, nil, nil, "alice", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	rec := do(router, http.MethodPost, "/todos", "alice-token", `{"title":"buy milk","description":"2 litres","username":"mallory"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"alice"`)
}

func TestRouter_ListTodosScopesByRole(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	t.Run("admin sees every todo", func(t *testing.T) {
		router, mock := newTestRouter(t, &fakeCognito{})
		mock.ExpectQuery(`FROM todos ORDER BY id`).
			WithoutArgs().
			WillReturnRows(sqlmock.NewRows(todoColumns).
				AddRow(1, "a", "b", false, nil, nil, nil, "alice", now, now).
				AddRow(2, "c", "d", true, now, nil, "LOW", "bob", now, now))

		rec := do(router, http.MethodGet, "/todos", "admin-token", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"username":"bob"`)
	})

	t.Run("general user sees their own", func(t *testing.T) {
		router, mock := newTestRouter(t, &fakeCognito{})
		mock.ExpectQuery(regexp.QuoteMeta(`FROM todos WHERE username = $1 ORDER BY id`)).
			WithArgs("alice").
			WillReturnRows(sqlmock.NewRows(todoColumns))

		rec := do(router, http.MethodGet, "/todos?username=bob", "alice-token", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":200,"todos":[]}`, rec.Body.String())
	})
}

func TestRouter_DeleteTodoStoreError(t *testing.T) {
	router, mock := newTestRouter(t, &fakeCognito{})
	mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM todos WHERE id = $1 AND username = $2")).
		WithArgs(1, "alice").
		WillReturnError(&pq.Error{Code: "23503", Message: "update or delete violates foreign key constraint", Constraint: "todo_tags_todo_id_fkey"})

	rec := do(router, http.MethodDelete, "/todos/1", "alice-token", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"status":400,"errors":[{"error":{
		"code":"23503",
		"meta":{"target":["todo_tags_todo_id_fkey"]},
		"message":"Please check PostgreSQL error code list \"https://www.postgresql.org/docs/current/errcodes-appendix.html\""
	}}]}`, rec.Body.String())
}

func TestRouter_UpdateMissingTodo(t *testing.T) {
	router, mock := newTestRouter(t, &fakeCognito{})
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE todos SET")).
		WillReturnError(sql.ErrNoRows)

	rec := do(router, http.MethodPatch, "/todos/9", "admin-token", `{"isClosed":"true"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"P0002"`)
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	router, _ := newTestRouter(t, &fakeCognito{})

	rec := do(router, http.MethodGet, "/healthz", "", "")
	assert.JSONEq(t, `{"status":200}`, rec.Body.String())

	rec = do(router, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `tasklane_http_requests_total{method="GET",route="/healthz",status="200"} 1`)
}
