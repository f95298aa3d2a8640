// Package logger expone un logger Zap global con scoping por contexto.
//
// Inicialización (una vez, en el comando serve):
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, ServiceName: "tandem"})
//	defer logger.Sync()
//
// En controllers/services:
//
//	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("Signup"))
//	log.Info("user created", logger.UserID(u.ID))
//
// Los middlewares HTTP inyectan un logger con request_id, method y path, así que
// From(ctx) casi nunca devuelve el singleton pelado dentro de un request.
package logger
