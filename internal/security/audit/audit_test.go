package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krishisakhi/backend/internal/infrastructure/logger"
)

func TestLogRecordCreated(t *testing.T) {
	var buf bytes.Buffer
	al := NewLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	ctx := logger.WithRequestID(context.Background(), "req-9")
	al.LogRecordCreated(ctx, 4, "farm", 12)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "audit", line["msg"])
	assert.Equal(t, "create", line["action"])
	assert.Equal(t, "farm", line["resource"])
	assert.Equal(t, "12", line["resource_id"])
	assert.Equal(t, float64(4), line["farmer_id"])
	assert.Equal(t, "req-9", line["request_id"])
}
