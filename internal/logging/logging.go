// Package logging builds the zap logger cmd/scheduler and the engine's
// callers share, grounded on the teacher pack's
// noah-isme-sma-adp-api/pkg/logger construction pattern (zap.Config
// with an ISO8601 "timestamp" key, switched between development and
// production encoders by environment).
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap.Logger for the given environment ("development" or
// anything else, which falls back to the production config).
func New(env string) (*zap.Logger, error) {
	var cfg zap.Config
	if env == "development" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
