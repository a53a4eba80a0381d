// Package logging configures the process-wide logrus logger.
package logging

import (
	"product_api/internal/config"

	"github.com/sirupsen/logrus"
)

// Setup picks JSON output in production and text with full timestamps
// elsewhere, then applies LOG_LEVEL.
func Setup(cfg *config.Config) {
	if cfg.IsProduction() {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.WithError(err).Warn("Invalid LOG_LEVEL, falling back to info")
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	logrus.WithFields(logrus.Fields{
		"app": cfg.AppName,
		"env": cfg.AppEnv,
	}).Debug("Logger configured")
}
