package observability

import (
	"bytes"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTurnContext(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	tc := NewTurnContext(logger)
	require.NotEmpty(t, tc.RequestID)

	tc.Completed("create_event")
	out := buf.String()
	assert.Contains(t, out, "turn completed")
	assert.Contains(t, out, LogFieldRequestID+"="+tc.RequestID)
	assert.Contains(t, out, LogFieldAction+"=create_event")
}

func TestTurnContextFailed(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	tc := NewTurnContext(logger)
	tc.Failed("delete_event", "NOT_FOUND", fmt.Errorf("no such event"))

	out := buf.String()
	assert.Contains(t, out, "turn failed")
	assert.Contains(t, out, LogFieldErrorCode+"=NOT_FOUND")
	assert.Contains(t, out, "no such event")
}

func TestRequestIDsUnique(t *testing.T) {
	a := NewTurnContext(nil)
	b := NewTurnContext(nil)
	assert.NotEqual(t, a.RequestID, b.RequestID)
}
