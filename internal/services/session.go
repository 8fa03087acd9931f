package services

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	ciptypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/tasklane/apiserver/config"
	"github.com/tasklane/apiserver/internal/identity"
	"github.com/tasklane/apiserver/internal/logging"
	"github.com/tasklane/apiserver/internal/result"
	"github.com/tasklane/apiserver/internal/schema"
)

// invalidTokenMessage is the only verification failure callers ever see.
const invalidTokenMessage = "token is invalid"

// TokenVerifier validates ID tokens. *identity.Verifier satisfies it.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*identity.Claims, error)
}

// SessionService signs users in and out of the user pool.
type SessionService struct {
	client       identity.Client
	verifier     TokenVerifier
	userPoolID   string
	clientID     string
	clientSecret string
}

func NewSessionService(client identity.Client, verifier TokenVerifier, cfg config.CognitoConfig) *SessionService {
	return &SessionService{
		client:       client,
		verifier:     verifier,
		userPoolID:   cfg.UserPoolID,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
	}
}

type loginParams struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type logoutParams struct {
	Username string `json:"username"`
}

type verifyParams struct {
	Token string `json:"token"`
}

type refreshTokenParams struct {
	Username     string `json:"username"`
	RefreshToken string `json:"refreshToken"`
}

// Login authenticates {username, password} with the admin password flow.
func (s *SessionService) Login(ctx context.Context, in schema.Input) (result.Result[*cip.AdminInitiateAuthOutput], error) {
	const op = "login"
	var p loginParams
	if res, ok, err := decode[*cip.AdminInitiateAuthOutput](ctx, op, in, &p); !ok {
		return res, err
	}

	out, err := s.client.AdminInitiateAuth(ctx, &cip.AdminInitiateAuthInput{
		UserPoolId: aws.String(s.userPoolID),
		ClientId:   aws.String(s.clientID),
		AuthFlow:   ciptypes.AuthFlowTypeAdminUserPasswordAuth,
		AuthParameters: map[string]string{
			"USERNAME":    p.Username,
			"PASSWORD":    p.Password,
			"SECRET_HASH": identity.SecretHash(p.Username, s.clientID, s.clientSecret),
		},
	})
	if err != nil {
		return identityFailure[*cip.AdminInitiateAuthOutput](ctx, op, err)
	}
	return result.Success(out), nil
}

// Logout revokes every token issued to {username}.
func (s *SessionService) Logout(ctx context.Context, in schema.Input) (result.Result[struct{}], error) {
	const op = "logout"
	var p logoutParams
	if res, ok, err := decode[struct{}](ctx, op, in, &p); !ok {
		return res, err
	}

	if _, err := s.client.AdminUserGlobalSignOut(ctx, &cip.AdminUserGlobalSignOutInput{
		UserPoolId: aws.String(s.userPoolID),
		Username:   aws.String(p.Username),
	}); err != nil {
		return identityFailure[struct{}](ctx, op, err)
	}
	return result.Success(struct{}{}), nil
}

// Verify checks {token}. Every verification failure collapses into the same
// InvalidToken result; the cause is only logged at debug level.
func (s *SessionService) Verify(ctx context.Context, in schema.Input) (result.Result[*identity.Claims], error) {
	const op = "verify token"
	var p verifyParams
	if res, ok, err := decode[*identity.Claims](ctx, op, in, &p); !ok {
		return res, err
	}

	claims, err := s.verifier.Verify(ctx, p.Token)
	if err != nil {
		logging.FromContext(ctx).DebugContext(ctx, "token verification failed", slog.Any("error", err))
		return result.InvalidToken[*identity.Claims](invalidTokenMessage), nil
	}
	return result.Success(claims), nil
}

// RefreshToken exchanges {username, refreshToken} for a new ID token. The
// SECRET_HASH is derived from the username, as for Login.
func (s *SessionService) RefreshToken(ctx context.Context, in schema.Input) (result.Result[*cip.AdminInitiateAuthOutput], error) {
	const op = "refresh token"
	var p refreshTokenParams
	if res, ok, err := decode[*cip.AdminInitiateAuthOutput](ctx, op, in, &p); !ok {
		return res, err
	}

	out, err := s.client.AdminInitiateAuth(ctx, &cip.AdminInitiateAuthInput{
		UserPoolId: aws.String(s.userPoolID),
		ClientId:   aws.String(s.clientID),
		AuthFlow:   ciptypes.AuthFlowTypeRefreshTokenAuth,
		AuthParameters: map[string]string{
			"REFRESH_TOKEN": p.RefreshToken,
			"SECRET_HASH":   identity.SecretHash(p.Username, s.clientID, s.clientSecret),
		},
	})
	if err != nil {
		return identityFailure[*cip.AdminInitiateAuthOutput](ctx, op, err)
	}
	return result.Success(out), nil
}
