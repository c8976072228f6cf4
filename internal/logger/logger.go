package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var Logger *logrus.Logger

func init() {
	Logger = logrus.New()
	Logger.SetOutput(os.Stdout)
	SetLevel(os.Getenv("LOG_LEVEL"))

	// JSON formatter for structured logging
	Logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})
}

// SetLevel maps debug|warn|error onto the logger; anything else is info.
func SetLevel(level string) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		Logger.SetLevel(logrus.DebugLevel)
	case "warn":
		Logger.SetLevel(logrus.WarnLevel)
	case "error":
		Logger.SetLevel(logrus.ErrorLevel)
	default:
		Logger.SetLevel(logrus.InfoLevel)
	}
}

// SetOutput redirects log output, e.g. to stderr for the CLI.
func SetOutput(w io.Writer) {
	Logger.SetOutput(w)
}

// WithFields creates a new entry with the given fields
func WithFields(fields logrus.Fields) *logrus.Entry {
	return Logger.WithFields(fields)
}

// WithField creates a new entry with a single field
func WithField(key string, value interface{}) *logrus.Entry {
	return Logger.WithField(key, value)
}

// WithError creates a new entry with an error field
func WithError(err error) *logrus.Entry {
	return Logger.WithError(err)
}

// ForImage returns an entry tagged with the image name.
func ForImage(name string) *logrus.Entry {
	return Logger.WithField("image", name)
}

func Info(msg string)  { Logger.Info(msg) }
func Error(msg string) { Logger.Error(msg) }
func Debug(msg string) { Logger.Debug(msg) }
func Warn(msg string)  { Logger.Warn(msg) }
