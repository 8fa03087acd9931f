package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/tasklane/apiserver/internal/logging"
	"github.com/tasklane/apiserver/internal/result"
	"github.com/tasklane/apiserver/internal/schema"
)

// readInput parses the request body into an Input, writing the response
// itself when the body is unusable.
func readInput(w http.ResponseWriter, r *http.Request) (schema.Input, bool) {
	in, err := schema.ParseInput(r.Body)
	if err == nil {
		return in, true
	}
	if errors.Is(err, schema.ErrNotObject) {
		writeView(w, validationErrorTemplate([]result.FieldError{{Message: err.Error(), Path: []string{}}}))
		return nil, false
	}
	ctx := r.Context()
	logging.FromContext(ctx).ErrorContext(ctx, "failed to read request body", slog.Any("error", err))
	writeView(w, internalErrorTemplate())
	return nil, false
}

// withOwner sets the username scope of in. A nil username removes any
// client-supplied value.
func withOwner(in schema.Input, username *string) schema.Input {
	if username == nil {
		return in.With("username", nil)
	}
	return in.With("username", *username)
}
