// Package log wraps Uber's Zap logging library so the rest of the project
// gets one consistently configured logger.
package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Env selects the logger configuration.
type Env string

const (
	EnvDev  Env = "dev"
	EnvProd Env = "prod"
)

// New builds the process logger. Dev uses a human-readable console encoder;
// prod emits JSON at info level.
func New(env Env) (*zap.Logger, error) {
	var cfg zap.Config
	switch env {
	case EnvProd:
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return cfg.Build()
}
