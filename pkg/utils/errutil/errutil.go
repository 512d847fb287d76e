package errutil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/taproom/pkg/utils/logging"
)

// Handle logs the error with goerr values and stack, and reports it to
// Sentry. Sentry calls are no-ops unless a client has been initialized.
func Handle(ctx context.Context, err error, msg string) {
	if err == nil {
		return
	}

	logError(ctx, msg, err)
	report(ctx, err)
}

// HandleHTTP logs the error and writes a JSON error body with statusCode.
// Only 5xx errors are reported to Sentry.
func HandleHTTP(ctx context.Context, w http.ResponseWriter, err error, statusCode int) {
	if err == nil {
		return
	}

	if statusCode >= http.StatusInternalServerError {
		logError(ctx, "HTTP error", err, slog.Int("status", statusCode))
		report(ctx, err)
	} else {
		logging.From(ctx).Info("HTTP client error",
			slog.Int("status", statusCode),
			slog.String("error", err.Error()))
	}

	WriteJSONError(w, err.Error(), statusCode)
}

// WriteJSONError writes {"error": msg} with statusCode
func WriteJSONError(w http.ResponseWriter, msg string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(struct {
		Error string `json:"error"`
	}{Error: msg})
}

func logError(ctx context.Context, msg string, err error, attrs ...any) {
	logger := logging.From(ctx)

	var ge *goerr.Error
	if errors.As(err, &ge) {
		logger.Error(msg, append(attrs,
			"error", err.Error(),
			"values", ge.Values(),
			"stack", ge.Stacks(),
		)...)
		return
	}
	logger.Error(msg, append(attrs, "error", err.Error())...)
}

func report(ctx context.Context, err error) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}

	var ge *goerr.Error
	if errors.As(err, &ge) {
		hub.WithScope(func(scope *sentry.Scope) {
			scope.SetContext("goerr", sentry.Context(ge.Values()))
			hub.CaptureException(err)
		})
		return
	}
	hub.CaptureException(err)
}
