package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(InfoLevel, &buf)

	log.WithFields(map[string]interface{}{"component": "users"}).
		Info("user registered", map[string]interface{}{"email": "ana@x.com"})

	entry := decodeLine(t, &buf)
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "user registered", entry["message"])
	assert.Equal(t, "users", entry["component"])
	assert.Equal(t, "ana@x.com", entry["email"])
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(WarnLevel, &buf)

	log.Info("dropped", nil)
	assert.Zero(t, buf.Len())

	log.Warn("kept", nil)
	assert.NotZero(t, buf.Len())
}

func TestWithContextAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := New(InfoLevel, &buf)

	ctx := ContextWithRequestID(context.Background(), "req-42")
	log.WithContext(ctx).Error("boom", nil)

	entry := decodeLine(t, &buf)
	assert.Equal(t, "req-42", entry["request_id"])
	assert.Equal(t, "req-42", RequestIDFromContext(ctx))
	assert.Empty(t, RequestIDFromContext(context.Background()))
}
