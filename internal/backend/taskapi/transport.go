package taskapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"tasksession/internal/logging"
)

// RequestIDHeader carries the per-request id to the server.
const RequestIDHeader = "X-Request-ID"

// loggingTransport tags every request with an id and logs it at debug level.
type loggingTransport struct {
	base   http.RoundTripper
	logger *slog.Logger
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	id := uuid.NewString()
	ctx := logging.WithRequestID(req.Context(), id)

	req = req.Clone(ctx)
	req.Header.Set(RequestIDHeader, id)

	start := time.Now()
	res, err := t.base.RoundTrip(req)
	if err != nil {
		t.logger.DebugContext(ctx, "http request failed",
			"method", req.Method,
			"path", req.URL.Path,
			"duration", time.Since(start),
			"error", err,
		)
		return nil, err
	}

	t.logger.DebugContext(ctx, "http request",
		"method", req.Method,
		"path", req.URL.Path,
		"status", res.StatusCode,
		"duration", time.Since(start),
	)
	return res, nil
}
