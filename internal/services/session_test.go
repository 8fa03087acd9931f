package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	ciptypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tasklane/apiserver/internal/identity"
	"github.com/tasklane/apiserver/internal/result"
	"github.com/tasklane/apiserver/internal/schema"
)

func newSessionService() (*SessionService, *mockIdentityClient, *mockVerifier) {
	client := &mockIdentityClient{}
	verifier := &mockVerifier{}
	return NewSessionService(client, verifier, testCognito), client, verifier
}

func TestSessionService_Login(t *testing.T) {
	svc, client, _ := newSessionService()
	out := &cip.AdminInitiateAuthOutput{AuthenticationResult: &ciptypes.AuthenticationResultType{
		IdToken:      aws.String("abc"),
		RefreshToken: aws.String("def"),
	}}
	client.On("AdminInitiateAuth", mock.Anything, mock.MatchedBy(func(in *cip.AdminInitiateAuthInput) bool {
		return aws.ToString(in.UserPoolId) == "pool-id" &&
			aws.ToString(in.ClientId) == "client-id" &&
			in.AuthFlow == ciptypes.AuthFlowTypeAdminUserPasswordAuth &&
			in.AuthParameters["USERNAME"] == "alice" &&
			in.AuthParameters["PASSWORD"] == "Secret1" &&
			in.AuthParameters["SECRET_HASH"] == identity.SecretHash("alice", "client-id", "client-secret")
	})).Return(out, nil).Once()

	res, err := svc.Login(context.Background(), schema.InputOf(map[string]any{"username": "alice", "password": "Secret1"}))

	require.NoError(t, err)
	require.True(t, res.OK())
	assert.Same(t, out, res.Value())
	client.AssertExpectations(t)
}

func TestSessionService_LoginValidation(t *testing.T) {
	svc, client, _ := newSessionService()

	res, err := svc.Login(context.Background(), schema.InputOf(map[string]any{"username": 42}))

	require.NoError(t, err)
	assert.False(t, res.OK())
	assert.Equal(t, result.TypeValidation, res.Type())
	assert.Equal(t, []result.FieldError{
		{Message: "Expected string, received number", Path: []string{"username"}},
		{Message: "Required", Path: []string{"password"}},
	}, res.FieldErrors())
	client.AssertNotCalled(t, "AdminInitiateAuth", mock.Anything, mock.Anything)
}

func TestSessionService_LoginClassifiedFailure(t *testing.T) {
	svc, client, _ := newSessionService()
	client.On("AdminInitiateAuth", mock.Anything, mock.Anything).
		Return(nil, apiError(http.StatusBadRequest, "NotAuthorizedException", "Incorrect username or password.")).Once()

	res, err := svc.Login(context.Background(), schema.InputOf(map[string]any{"username": "alice", "password": "wrong"}))

	require.NoError(t, err)
	assert.Equal(t, result.TypeIdentity, res.Type())
	assert.Equal(t, result.IdentityError{
		Message:    "Incorrect username or password.",
		Code:       "NotAuthorizedException",
		StatusCode: http.StatusBadRequest,
	}, res.IdentityError())
}

func TestSessionService_LoginUnexpectedFailure(t *testing.T) {
	svc, client, _ := newSessionService()
	cause := errors.New("dial tcp: i/o timeout")
	client.On("AdminInitiateAuth", mock.Anything, mock.Anything).Return(nil, cause).Once()

	_, err := svc.Login(context.Background(), schema.InputOf(map[string]any{"username": "alice", "password": "Secret1"}))

	assert.ErrorIs(t, err, cause)
}

func TestSessionService_Logout(t *testing.T) {
	svc, client, _ := newSessionService()
	client.On("AdminUserGlobalSignOut", mock.Anything, &cip.AdminUserGlobalSignOutInput{
		UserPoolId: aws.String("pool-id"),
		Username:   aws.String("alice"),
	}).Return(&cip.AdminUserGlobalSignOutOutput{}, nil).Once()

	res, err := svc.Logout(context.Background(), schema.InputOf(map[string]any{"username": "alice"}))

	require.NoError(t, err)
	assert.True(t, res.OK())
	client.AssertExpectations(t)
}

func TestSessionService_LogoutUnknownUser(t *testing.T) {
	svc, client, _ := newSessionService()
	client.On("AdminUserGlobalSignOut", mock.Anything, mock.Anything).
		Return(nil, apiError(http.StatusBadRequest, "UserNotFoundException", "User does not exist.")).Once()

	res, err := svc.Logout(context.Background(), schema.InputOf(map[string]any{"username": "ghost"}))

	require.NoError(t, err)
	assert.Equal(t, result.TypeIdentity, res.Type())
	assert.Equal(t, "UserNotFoundException", res.IdentityError().Code)
}

func TestSessionService_Verify(t *testing.T) {
	svc, _, verifier := newSessionService()
	claims := &identity.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "sub-1"},
		Name:             "alice",
		Role:             "general",
	}
	verifier.On("Verify", mock.Anything, "good-token").Return(claims, nil).Once()

	res, err := svc.Verify(context.Background(), schema.InputOf(map[string]any{"token": "good-token"}))

	require.NoError(t, err)
	require.True(t, res.OK())
	assert.Equal(t, "sub-1", res.Value().Subject)
}

func TestSessionService_VerifyFailuresAreIndistinguishable(t *testing.T) {
	svc, _, verifier := newSessionService()
	verifier.On("Verify", mock.Anything, "expired").Return(nil, jwt.ErrTokenExpired)
	verifier.On("Verify", mock.Anything, "forged").Return(nil, jwt.ErrTokenSignatureInvalid)
	verifier.On("Verify", mock.Anything, "garbage").Return(nil, jwt.ErrTokenMalformed)

	for _, token := range []string{"expired", "forged", "garbage", "expired"} {
		res, err := svc.Verify(context.Background(), schema.InputOf(map[string]any{"token": token}))

		require.NoError(t, err)
		assert.Equal(t, result.TypeInvalidToken, res.Type(), token)
		assert.Equal(t, "token is invalid", res.Message(), token)
	}
}

func TestSessionService_RefreshToken(t *testing.T) {
	svc, client, _ := newSessionService()
	out := &cip.AdminInitiateAuthOutput{AuthenticationResult: &ciptypes.AuthenticationResultType{IdToken: aws.String("new")}}
	client.On("AdminInitiateAuth", mock.Anything, mock.MatchedBy(func(in *cip.AdminInitiateAuthInput) bool {
		return in.AuthFlow == ciptypes.AuthFlowTypeRefreshTokenAuth &&
			in.AuthParameters["REFRESH_TOKEN"] == "refresh" &&
			in.AuthParameters["SECRET_HASH"] == identity.SecretHash("alice", "client-id", "client-secret") &&
			in.AuthParameters["PASSWORD"] == ""
	})).Return(out, nil).Once()

	res, err := svc.RefreshToken(context.Background(), schema.InputOf(map[string]any{"username": "alice", "refreshToken": "refresh"}))

	require.NoError(t, err)
	require.True(t, res.OK())
	assert.Equal(t, "new", aws.ToString(res.Value().AuthenticationResult.IdToken))
	client.AssertExpectations(t)
}

func TestSessionService_RefreshTokenValidation(t *testing.T) {
	svc, client, _ := newSessionService()

	res, err := svc.RefreshToken(context.Background(), schema.InputOf(map[string]any{"username": "alice"}))

	require.NoError(t, err)
	assert.Equal(t, []result.FieldError{{Message: "Required", Path: []string{"refreshToken"}}}, res.FieldErrors())
	client.AssertNotCalled(t, "AdminInitiateAuth", mock.Anything, mock.Anything)
}
