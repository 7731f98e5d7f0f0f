package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dropDatabas3/authcore/internal/observability/logger"
)

func TestLog_UsesRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx := logger.ToContext(context.Background(), zap.New(core).With(logger.RequestID("rid-1")))

	Log(ctx, LoginFailed, logger.ClientID("web"))

	entries := logs.All()
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "audit", e.LoggerName)
	assert.Equal(t, LoginFailed, e.Message)
	fields := e.ContextMap()
	assert.Equal(t, "rid-1", fields["request_id"])
	assert.Equal(t, "web", fields["client_id"])
	assert.Equal(t, LoginFailed, fields["event"])
}

func TestLog_FallsBackToGlobal(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	restore := logger.Replace(zap.New(core))
	defer restore()

	Log(context.Background(), TokenIssued, logger.UserID(7))
	require.Equal(t, 1, logs.FilterMessage(TokenIssued).Len())
}
