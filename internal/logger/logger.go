package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Init monta o logger zap usado pelo serviço inteiro.
// Níveis válidos: debug, info, warn, error. Default: info.
func Init(nivel string) (*zap.Logger, error) {
	nivel = strings.ToLower(strings.TrimSpace(nivel))
	if nivel == "" {
		nivel = "info"
	}

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(nivel)); err != nil {
		level = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.MessageKey = "message"

	// debug = saída legível no console
	if level == zapcore.DebugLevel {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(level)
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	return cfg.Build()
}
