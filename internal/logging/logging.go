// Package logging holds the process-wide structured logger. JSON output so
// log lines stay machine-readable behind a reverse proxy.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

var logger *logrus.Logger

func init() {
	logger = logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)
	logger.SetOutput(os.Stdout)
}

// L returns the shared logger.
func L() *logrus.Logger {
	return logger
}

// SetLevel adjusts verbosity from configuration ("debug", "info", "warn", "error").
// Unknown values keep the current level.
func SetLevel(level string) {
	if lv, err := logrus.ParseLevel(level); err == nil {
		logger.SetLevel(lv)
	}
}
