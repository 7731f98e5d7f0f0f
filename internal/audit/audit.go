// Package audit registra eventos de seguridad (logins, emisión de tokens,
// replays) bajo el logger "audit".
package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/dropDatabas3/authcore/internal/observability/logger"
)

// Eventos.
const (
	LoginSucceeded = "login.succeeded"
	LoginFailed    = "login.failed"
	TokenIssued    = "token.issued"
	TokenReplayed  = "token.replayed"
)

// Log escribe el evento con el logger del request (request_id incluido).
// Nunca recibe tokens ni contraseñas: solo ids.
func Log(ctx context.Context, event string, fields ...zap.Field) {
	logger.From(ctx).Named("audit").Info(event, append(fields, zap.String("event", event))...)
}
