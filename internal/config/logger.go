package config

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process logger. Production uses the JSON production
// config and everything else the development config; Level and Format
// override either.
func (l LoggingConfig) NewLogger(production bool, serviceName string) (*zap.Logger, error) {
	var zc zap.Config
	if production {
		zc = zap.NewProductionConfig()
		zc.EncoderConfig.TimeKey = "timestamp"
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		zc = zap.NewDevelopmentConfig()
	}

	if l.Level != "" {
		level, err := zap.ParseAtomicLevel(l.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid logging.level %q: %w", l.Level, err)
		}
		zc.Level = level
	}

	switch l.Format {
	case "":
	case "json", "console":
		zc.Encoding = l.Format
	default:
		return nil, fmt.Errorf("invalid logging.format %q: want json or console", l.Format)
	}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	if serviceName != "" {
		logger = logger.With(zap.String("service_name", serviceName))
	}
	return logger, nil
}
