package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a JSON logger in production and a text logger elsewhere.
// LOG_LEVEL overrides the default info level.
func New(env string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	if env == "production" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	logger.SetLevel(logrus.InfoLevel)
	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logger.SetLevel(lvl)
	}

	return logger
}
