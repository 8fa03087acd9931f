// Package services implements the domain operations behind every route.
//
// Each operation takes raw request input, validates it, makes one call to the
// identity provider or the store and returns a result.Result. Expected
// failures (validation, classified provider or store errors) are reported
// through the Result; the error return is reserved for unexpected faults.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tasklane/apiserver/internal/identity"
	"github.com/tasklane/apiserver/internal/logging"
	"github.com/tasklane/apiserver/internal/result"
	"github.com/tasklane/apiserver/internal/schema"
	"github.com/tasklane/apiserver/internal/store"
)

var validate = schema.New()

// decode validates in into params. ok is false when the input was rejected,
// in which case res carries the validation failures.
func decode[T any](ctx context.Context, op string, in schema.Input, params any) (res result.Result[T], ok bool, err error) {
	errs, err := validate.Decode(in, params)
	if err != nil {
		return res, false, fmt.Errorf("%s: %w", op, err)
	}
	if len(errs) > 0 {
		logging.FromContext(ctx).DebugContext(ctx, "rejected input",
			slog.String("operation", op),
			slog.Int("violations", len(errs)),
		)
		return result.Validation[T](errs), false, nil
	}
	return res, true, nil
}

// identityFailure converts a provider error into a Result when it is
// classified and wraps it as an unexpected fault otherwise.
func identityFailure[T any](ctx context.Context, op string, err error) (result.Result[T], error) {
	classified, ok := identity.Classify(err)
	if !ok {
		return result.Result[T]{}, fmt.Errorf("%s: %w", op, err)
	}
	logging.FromContext(ctx).WarnContext(ctx, "identity provider rejected request",
		slog.String("operation", op),
		slog.String("code", classified.Code),
		slog.Int("status", classified.StatusCode),
		slog.String("message", classified.Message),
	)
	return result.Identity[T](classified), nil
}

// storeFailure converts a store error into a Result when it is classified
// and wraps it as an unexpected fault otherwise.
func storeFailure[T any](ctx context.Context, op string, err error) (result.Result[T], error) {
	classified, ok := store.Classify(err)
	if !ok {
		return result.Result[T]{}, fmt.Errorf("%s: %w", op, err)
	}
	logging.FromContext(ctx).WarnContext(ctx, "store rejected request",
		slog.String("operation", op),
		slog.String("code", classified.Code),
		slog.String("message", classified.Message),
	)
	return result.Store[T](classified), nil
}
