package helpers

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger creates a configured Logrus logger. An explicit level overrides the env default.
func NewLogger(appName, env, level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	if env == "development" {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	if level != "" {
		if lvl, err := logrus.ParseLevel(level); err == nil {
			logger.SetLevel(lvl)
		} else {
			logger.WithError(err).Warn("invalid log level, keeping default")
		}
	}
	logger.WithFields(logrus.Fields{"app": appName, "env": env, "level": logger.GetLevel().String()}).Info("logger initialized")
	return logger
}
