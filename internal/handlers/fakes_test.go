package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/stretchr/testify/require"
	"github.com/tasklane/apiserver/internal/result"
	"github.com/tasklane/apiserver/internal/schema"
	"github.com/tasklane/apiserver/types"
)

type fakeTodos struct {
	calls  int
	input  schema.Input
	one    result.Result[*types.Todo]
	many   result.Result[[]types.Todo]
	err    error
	called string
}

func (f *fakeTodos) record(op string, in schema.Input) {
	f.calls++
	f.called = op
	f.input = in
}

func (f *fakeTodos) Create(_ context.Context, in schema.Input) (result.Result[*types.Todo], error) {
	f.record("create", in)
	return f.one, f.err
}

func (f *fakeTodos) List(_ context.Context, in schema.Input) (result.Result[[]types.Todo], error) {
	f.record("list", in)
	return f.many, f.err
}

func (f *fakeTodos) Update(_ context.Context, in schema.Input) (result.Result[*types.Todo], error) {
	f.record("update", in)
	return f.one, f.err
}

func (f *fakeTodos) Delete(_ context.Context, in schema.Input) (result.Result[*types.Todo], error) {
	f.record("delete", in)
	return f.one, f.err
}

type fakeSessions struct {
	input   schema.Input
	login   result.Result[*cip.AdminInitiateAuthOutput]
	logout  result.Result[struct{}]
	refresh result.Result[*cip.AdminInitiateAuthOutput]
	err     error
}

func (f *fakeSessions) Login(_ context.Context, in schema.Input) (result.Result[*cip.AdminInitiateAuthOutput], error) {
	f.input = in
	return f.login, f.err
}

func (f *fakeSessions) Logout(_ context.Context, in schema.Input) (result.Result[struct{}], error) {
	f.input = in
	return f.logout, f.err
}

func (f *fakeSessions) RefreshToken(_ context.Context, in schema.Input) (result.Result[*cip.AdminInitiateAuthOutput], error) {
	f.input = in
	return f.refresh, f.err
}

type fakeUsers struct {
	input schema.Input
	res   result.Result[*cip.AdminCreateUserOutput]
	err   error
}

func (f *fakeUsers) Create(_ context.Context, in schema.Input) (result.Result[*cip.AdminCreateUserOutput], error) {
	f.input = in
	return f.res, f.err
}

func newRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func asIdentity(req *http.Request, id types.Identity) *http.Request {
	return req.WithContext(WithIdentity(req.Context(), id))
}

func inputString(t *testing.T, in schema.Input, key string) (string, bool) {
	t.Helper()
	raw, ok := in[key]
	if !ok {
		return "", false
	}
	var s string
	require.NoError(t, json.Unmarshal(raw, &s))
	return s, true
}
