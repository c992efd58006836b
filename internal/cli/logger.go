package cli

import (
	"go.uber.org/zap"

	"quiz-progress-service/internal/config"
	"quiz-progress-service/internal/logging"
)

func newLogger(cfg config.Config) (*zap.Logger, error) {
	return logging.New(cfg.Log.Level, cfg.Log.Format)
}
