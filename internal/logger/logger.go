// internal/logger/logger.go
package logger

import (
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	base     *logrus.Logger
	baseOnce sync.Once
)

// NewLogger returns the process-wide logrus logger writing text lines to stdout.
// Its level starts from LOG_LEVEL (default info) and can be changed with SetLevel.
func NewLogger() *logrus.Logger {
	baseOnce.Do(func() {
		base = logrus.New()
		base.SetOutput(os.Stdout)
		base.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
		base.SetLevel(ParseLevel(os.Getenv("LOG_LEVEL")))
	})
	return base
}

// SetLevel applies a level name to every logger handed out by NewLogger.
func SetLevel(name string) {
	NewLogger().SetLevel(ParseLevel(name))
}

// ParseLevel maps a level name to a logrus level, falling back to info.
func ParseLevel(name string) logrus.Level {
	if name == "" {
		return logrus.InfoLevel
	}
	level, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}
