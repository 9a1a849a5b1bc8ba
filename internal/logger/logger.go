package logger

import (
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/config"
)

// New создаёт zap логгер: JSON в production, человекочитаемый в остальных окружениях
func New(cfg config.LogConfig) (*zap.Logger, error) {
	if cfg.Env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// GormLevel переводит уровень SQL логирования из конфига в уровень gorm
func GormLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
