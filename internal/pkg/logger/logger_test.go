package logger

import (
	"context"
	"testing"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithSession(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := ctxzap.ToContext(context.Background(), zap.New(core))

	ctx = WithSession(ctx, "s-1", "SubmitAnswer")
	ctx = AddFields(ctx, zap.String("format", "pdf"))
	ctxzap.Info(ctx, "done")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "s-1", fields["session_id"])
	assert.Equal(t, "SubmitAnswer", fields["action"])
	assert.Equal(t, "pdf", fields["format"])
}

func TestWithActionOnBareContext(t *testing.T) {
	// ctxzap falls back to a no-op logger
	ctx := WithAction(context.Background(), "StartSession")
	assert.NotPanics(t, func() { ctxzap.Info(ctx, "ignored") })
}
