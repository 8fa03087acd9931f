package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/tasklane/apiserver/internal/identity"
	"github.com/tasklane/apiserver/internal/logging"
	"github.com/tasklane/apiserver/internal/result"
	"github.com/tasklane/apiserver/internal/schema"
	"github.com/tasklane/apiserver/types"
)

var bearerPattern = regexp.MustCompile(`Bearer\s+(\S+)`)

type identityKey struct{}

// SessionVerifier verifies a {token} input. *services.SessionService
// satisfies it.
type SessionVerifier interface {
	Verify(ctx context.Context, in schema.Input) (result.Result[*identity.Claims], error)
}

// WithIdentity stores the caller's identity in ctx.
func WithIdentity(ctx context.Context, id types.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity attached by RequireAuth.
func IdentityFromContext(ctx context.Context) (types.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(types.Identity)
	return id, ok
}

// RequireAuth verifies the bearer token of every request and attaches the
// caller's identity to the request context. Missing, malformed or rejected
// tokens get the unauthorized response.
func RequireAuth(verifier SessionVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, ok := bearerToken(r)
			if !ok {
				writeView(w, unauthorizedTemplate())
				return
			}

			res, err := verifier.Verify(ctx, schema.InputOf(map[string]any{"token": token}))
			if err != nil {
				logging.FromContext(ctx).ErrorContext(ctx, "token verification failed unexpectedly", slog.Any("error", err))
				writeView(w, unauthorizedTemplate())
				return
			}
			if !res.OK() || res.Value() == nil {
				writeView(w, unauthorizedTemplate())
				return
			}

			claims := res.Value()
			id := types.Identity{
				ID:   claims.Subject,
				Name: claims.Name,
				Role: types.Role(claims.Role),
			}
			recordIdentity(ctx, id.ID)
			ctx = logging.WithLogger(ctx, logging.FromContext(ctx).With(slog.String("identity_id", id.ID)))
			next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, id)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	match := bearerPattern.FindStringSubmatch(r.Header.Get("Authorization"))
	if match == nil || match[1] == "" {
		return "", false
	}
	return match[1], true
}

// ownerScope returns the username filter for the caller: nil for admins, the
// caller's own name for general users. ok is false for any other role.
func ownerScope(id types.Identity) (username *string, ok bool) {
	switch id.Role {
	case types.RoleAdmin:
		return nil, true
	case types.RoleGeneral:
		name := id.Name
		return &name, true
	default:
		return nil, false
	}
}
