package errutil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/zia/pkg/utils/logging"
	"github.com/secmon-lab/zia/pkg/utils/safe"
)

// Handle logs err with msg and reports it to Sentry when a client is configured.
func Handle(ctx context.Context, err error, msg string) {
	if err == nil {
		return
	}

	logger := logging.From(ctx)

	var ge *goerr.Error
	if errors.As(err, &ge) {
		logger.Error(msg,
			"error", err.Error(),
			"values", ge.Values(),
			"stack", ge.Stacks(),
		)
	} else {
		logger.Error(msg, "error", err.Error())
	}

	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.CaptureException(err)
	} else if sentry.CurrentHub().Client() != nil {
		sentry.CaptureException(err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// HandleHTTP logs the error and writes a JSON error body with statusCode.
// Client errors (4xx) expose the error message; server errors hide it.
func HandleHTTP(ctx context.Context, w http.ResponseWriter, err error, statusCode int) {
	if err == nil {
		return
	}

	msg := http.StatusText(statusCode)
	if statusCode >= http.StatusInternalServerError {
		Handle(ctx, err, "HTTP error")
	} else {
		logging.From(ctx).Warn("HTTP client error", "status", statusCode, "error", err.Error())
		msg = err.Error()
	}

	WriteJSONError(ctx, w, msg, statusCode)
}

// WriteJSONError writes {"error": msg} with statusCode.
func WriteJSONError(ctx context.Context, w http.ResponseWriter, msg string, statusCode int) {
	data, err := json.Marshal(errorResponse{Error: msg})
	if err != nil {
		http.Error(w, msg, statusCode)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	safe.Write(ctx, w, data)
}
