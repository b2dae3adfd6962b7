package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasksession/internal/logging"
)

func TestNew_DebugAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, true, "json")

	ctx := logging.WithRequestID(context.Background(), "abc123")
	logger.DebugContext(ctx, "http request", "method", "GET")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "abc123", rec["request_id"])
	assert.Equal(t, "GET", rec["method"])
}

func TestNew_WarnLevelHidesDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, false, "text")

	logger.Debug("hidden")
	assert.Empty(t, buf.String())

	logger.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestRequestID_Missing(t *testing.T) {
	_, ok := logging.RequestID(context.Background())
	assert.False(t, ok)
}
