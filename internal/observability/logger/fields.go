package logger

import (
	"time"

	"go.uber.org/zap"
)

// Field es un alias para no importar zap en cada llamador.
type Field = zap.Field

// =================================================================================
// HTTP
// =================================================================================

func RequestID(v string) zap.Field { return zap.String("request_id", v) }

func Method(v string) zap.Field { return zap.String("method", v) }

func Path(v string) zap.Field { return zap.String("path", v) }

func Status(v int) zap.Field { return zap.Int("status", v) }

func Bytes(v int) zap.Field { return zap.Int("bytes", v) }

func DurationMs(v time.Duration) zap.Field { return zap.Int64("duration_ms", v.Milliseconds()) }

func ClientIP(v string) zap.Field { return zap.String("client_ip", v) }

// =================================================================================
// OAUTH
// =================================================================================

// ClientID identifica el cliente OAuth del request.
func ClientID(v string) zap.Field { return zap.String("client_id", v) }

// UserID identifica al resource owner.
func UserID(v int64) zap.Field { return zap.Int64("user_id", v) }

// GrantType es el response_type / grant_type recibido.
func GrantType(v string) zap.Field { return zap.String("grant_type", v) }

// Purpose es el propósito de un token (login, access, code).
func Purpose(v string) zap.Field { return zap.String("token_purpose", v) }

// TokenID es el jti del token; nunca el token en sí.
func TokenID(v string) zap.Field { return zap.String("jti", v) }

// Scope es el scope efectivo, separado por espacios.
func Scope(v string) zap.Field { return zap.String("scope", v) }

// ErrorKind es el tipo de error OAuth devuelto al cliente.
func ErrorKind(v string) zap.Field { return zap.String("error_kind", v) }

// =================================================================================
// SISTEMA
// =================================================================================

func Component(v string) zap.Field { return zap.String("component", v) }

func Op(v string) zap.Field { return zap.String("op", v) }

func Layer(v string) zap.Field { return zap.String("layer", v) }

func Err(err error) zap.Field { return zap.Error(err) }

func String(key, v string) zap.Field { return zap.String(key, v) }

func Int(key string, v int) zap.Field { return zap.Int(key, v) }

func Int64(key string, v int64) zap.Field { return zap.Int64(key, v) }

func Bool(key string, v bool) zap.Field { return zap.Bool(key, v) }

func Any(key string, v any) zap.Field { return zap.Any(key, v) }
