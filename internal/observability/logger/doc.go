// Package logger provee el logger Zap del servicio con scoping por contexto.
//
// Init se llama una sola vez desde main; el resto del código usa From(ctx)
// para obtener el logger del request (inyectado por el middleware WithLogging)
// o L() cuando no hay contexto.
//
//	logger.Init(logger.Config{Env: cfg.Log.Env, Level: cfg.Log.Level})
//	defer logger.Sync()
//
//	log := logger.From(ctx).With(logger.Op("ImplicitGrantHandler.HandleGrant"))
//	log.Info("access token issued", logger.ClientID(c.ID), logger.Scope(scope))
//
// Nunca se loguean tokens ni contraseñas: los helpers de este paquete no
// exponen campos para ellos.
package logger
