package services

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	ciptypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/tasklane/apiserver/config"
	"github.com/tasklane/apiserver/internal/identity"
	"github.com/tasklane/apiserver/internal/logging"
	"github.com/tasklane/apiserver/internal/result"
	"github.com/tasklane/apiserver/internal/schema"
)

// User pool attribute names.
const (
	AttrName = "name"
	AttrSub  = "sub"
	AttrRole = "custom:role"
)

// UserService registers users in the user pool.
type UserService struct {
	client     identity.Client
	userPoolID string
}

func NewUserService(client identity.Client, cfg config.CognitoConfig) *UserService {
	return &UserService{client: client, userPoolID: cfg.UserPoolID}
}

type createUserParams struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role" validate:"oneof=admin general"`
}

func (p *createUserParams) Refine() []result.FieldError {
	var errs []result.FieldError
	if n := utf8.RuneCountInString(p.Username); n < 2 || n > 127 {
		errs = append(errs, result.FieldError{Message: "username must be 1 to 128 characters", Path: []string{"username"}})
	}
	if n := utf8.RuneCountInString(p.Password); n < 8 || n > 256 {
		errs = append(errs, result.FieldError{Message: "password must be 8 to 256 characters", Path: []string{"password"}})
	}
	if !strings.ContainsAny(p.Password, "0123456789") || !strings.ContainsAny(p.Password, "abcdefghijklmnopqrstuvwxyz") {
		errs = append(errs, result.FieldError{Message: "password must contain both lower-case letters and numbers", Path: []string{"password"}})
	}
	return errs
}

// Create registers {username, password, role}: the user is created with a
// suppressed invitation, then given a permanent password. The two calls are
// not atomic; if the second fails the user is left without a password.
func (s *UserService) Create(ctx context.Context, in schema.Input) (result.Result[*cip.AdminCreateUserOutput], error) {
	const op = "create user"
	var p createUserParams
	if res, ok, err := decode[*cip.AdminCreateUserOutput](ctx, op, in, &p); !ok {
		return res, err
	}

	out, err := s.client.AdminCreateUser(ctx, &cip.AdminCreateUserInput{
		UserPoolId:    aws.String(s.userPoolID),
		Username:      aws.String(p.Username),
		MessageAction: ciptypes.MessageActionTypeSuppress,
		UserAttributes: []ciptypes.AttributeType{
			{Name: aws.String(AttrName), Value: aws.String(p.Username)},
			{Name: aws.String(AttrRole), Value: aws.String(p.Role)},
		},
	})
	if err != nil {
		return identityFailure[*cip.AdminCreateUserOutput](ctx, op, err)
	}

	if _, err := s.client.AdminSetUserPassword(ctx, &cip.AdminSetUserPasswordInput{
		UserPoolId: aws.String(s.userPoolID),
		Username:   aws.String(p.Username),
		Password:   aws.String(p.Password),
		Permanent:  true,
	}); err != nil {
		logging.FromContext(ctx).WarnContext(ctx, "user created without a password",
			slog.String("username", p.Username),
			slog.Any("error", err),
		)
		return identityFailure[*cip.AdminCreateUserOutput](ctx, op, err)
	}
	return result.Success(out), nil
}

// Attribute returns the value of the named attribute, or "" when absent.
func Attribute(attrs []ciptypes.AttributeType, name string) string {
	for _, attr := range attrs {
		if aws.ToString(attr.Name) == name {
			return aws.ToString(attr.Value)
		}
	}
	return ""
}
