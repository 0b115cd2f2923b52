package logging

import (
	"github.com/sirupsen/logrus"
)

// New creates the application logger with the given level.
// Unknown levels fall back to info rather than failing startup.
func New(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	return logger
}
