package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/tasklane/apiserver/internal/logging"
	"github.com/tasklane/apiserver/internal/result"
)

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeView(w http.ResponseWriter, v view) {
	writeJSON(w, v.status, v.body)
}

// render writes the response for an operation outcome: the failure template,
// the success template, or the internal error template for an unexpected
// error or a success without the expected payload.
func render[T any](w http.ResponseWriter, r *http.Request, op string, res result.Result[T], err error, success func(T) (view, bool)) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "operation failed", slog.String("operation", op), slog.Any("error", err))
		writeView(w, internalErrorTemplate())
		return
	}
	if !res.OK() {
		writeView(w, failureTemplate(res))
		return
	}
	v, ok := success(res.Value())
	if !ok {
		logger.ErrorContext(ctx, "operation succeeded without a payload", slog.String("operation", op))
		writeView(w, internalErrorTemplate())
		return
	}
	writeView(w, v)
}

// Healthz reports that the process is serving.
func Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusBody{Status: http.StatusOK})
}
