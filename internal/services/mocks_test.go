package services

import (
	"context"
	"net/http"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/stretchr/testify/mock"
	"github.com/tasklane/apiserver/config"
	"github.com/tasklane/apiserver/internal/identity"
	"github.com/tasklane/apiserver/types"
)

var testCognito = config.CognitoConfig{
	Region:       "ap-northeast-1",
	UserPoolID:   "pool-id",
	ClientID:     "client-id",
	ClientSecret: "client-secret",
}

type mockIdentityClient struct {
	mock.Mock
}

func (m *mockIdentityClient) AdminCreateUser(ctx context.Context, params *cip.AdminCreateUserInput, _ ...func(*cip.Options)) (*cip.AdminCreateUserOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*cip.AdminCreateUserOutput)
	return out, args.Error(1)
}

func (m *mockIdentityClient) AdminSetUserPassword(ctx context.Context, params *cip.AdminSetUserPasswordInput, _ ...func(*cip.Options)) (*cip.AdminSetUserPasswordOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*cip.AdminSetUserPasswordOutput)
	return out, args.Error(1)
}

func (m *mockIdentityClient) AdminInitiateAuth(ctx context.Context, params *cip.AdminInitiateAuthInput, _ ...func(*cip.Options)) (*cip.AdminInitiateAuthOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*cip.AdminInitiateAuthOutput)
	return out, args.Error(1)
}

func (m *mockIdentityClient) AdminUserGlobalSignOut(ctx context.Context, params *cip.AdminUserGlobalSignOutInput, _ ...func(*cip.Options)) (*cip.AdminUserGlobalSignOutOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*cip.AdminUserGlobalSignOutOutput)
	return out, args.Error(1)
}

type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) Verify(ctx context.Context, token string) (*identity.Claims, error) {
	args := m.Called(ctx, token)
	claims, _ := args.Get(0).(*identity.Claims)
	return claims, args.Error(1)
}

type mockTodoRepository struct {
	mock.Mock
}

func (m *mockTodoRepository) Create(ctx context.Context, todo types.Todo) (types.Todo, error) {
	args := m.Called(ctx, todo)
	return args.Get(0).(types.Todo), args.Error(1)
}

func (m *mockTodoRepository) List(ctx context.Context, username *string) ([]types.Todo, error) {
	args := m.Called(ctx, username)
	todos, _ := args.Get(0).([]types.Todo)
	return todos, args.Error(1)
}

func (m *mockTodoRepository) Update(ctx context.Context, scope types.TodoScope, patch types.TodoPatch) (types.Todo, error) {
	args := m.Called(ctx, scope, patch)
	return args.Get(0).(types.Todo), args.Error(1)
}

func (m *mockTodoRepository) Delete(ctx context.Context, scope types.TodoScope) (types.Todo, error) {
	args := m.Called(ctx, scope)
	return args.Get(0).(types.Todo), args.Error(1)
}

type recordingPublisher struct {
	kinds []types.TodoEventKind
	todos []types.Todo
}

func (r *recordingPublisher) PublishTodo(_ context.Context, kind types.TodoEventKind, todo types.Todo) {
	r.kinds = append(r.kinds, kind)
	r.todos = append(r.todos, todo)
}

// apiError builds an error shaped like the ones the AWS SDK returns for a
// rejected request.
func apiError(status int, code, message string) error {
	return &smithy.OperationError{
		ServiceID:     "Cognito Identity Provider",
		OperationName: "Operation",
		Err: &awshttp.ResponseError{
			ResponseError: &smithyhttp.ResponseError{
				Response: &smithyhttp.Response{Response: &http.Response{StatusCode: status}},
				Err:      &smithy.GenericAPIError{Code: code, Message: message},
			},
		},
	}
}

func strPtr(s string) *string { return &s }
