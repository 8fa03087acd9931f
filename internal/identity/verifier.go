package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

const idTokenUse = "id"

// Claims are the ID token claims this service reads.
type Claims struct {
	jwt.RegisteredClaims
	TokenUse string `json:"token_use"`
	Name     string `json:"name"`
	Role     string `json:"custom:role"`
}

// Verifier validates user pool ID tokens: RS256 signature against the pool's
// key set, issuer, audience (the app client id), expiry and token_use.
type Verifier struct {
	keyfunc jwt.Keyfunc
	parser  *jwt.Parser
}

// NewVerifier constructs a Verifier resolving signing keys through keyfunc.
func NewVerifier(keyfunc jwt.Keyfunc, issuer, clientID string) *Verifier {
	return &Verifier{
		keyfunc: keyfunc,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
			jwt.WithIssuer(issuer),
			jwt.WithAudience(clientID),
			jwt.WithExpirationRequired(),
			jwt.WithIssuedAt(),
		),
	}
}

// NewJWKSVerifier constructs a Verifier backed by the user pool's remote key
// set. Keys are fetched now and refreshed in the background until ctx ends.
func NewJWKSVerifier(ctx context.Context, region, userPoolID, clientID string) (*Verifier, error) {
	k, err := keyfunc.NewDefaultCtx(ctx, []string{JWKSURL(region, userPoolID)})
	if err != nil {
		return nil, fmt.Errorf("load user pool key set: %w", err)
	}
	return NewVerifier(k.Keyfunc, Issuer(region, userPoolID), clientID), nil
}

// Verify parses and validates token, returning its claims.
func (v *Verifier) Verify(ctx context.Context, token string) (*Claims, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	claims := &Claims{}
	parsed, err := v.parser.ParseWithClaims(token, claims, v.keyfunc)
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.TokenUse != idTokenUse {
		return nil, fmt.Errorf("unexpected token_use %q", claims.TokenUse)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, errors.New("missing subject")
	}
	return claims, nil
}
