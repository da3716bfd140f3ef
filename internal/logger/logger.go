// Package logger wraps a process-wide logrus logger
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

// Format selects the log line encoding
type Format string

// Supported formats
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Options configures the logger
type Options struct {
	// Level is a logrus level name; empty falls back to LOG_LEVEL, then info
	Level string
	// Format is text or json
	Format Format
	// Output receives log lines; nil means stderr
	Output io.Writer
}

// InitializeAndConfigure sets up the logger with the given options
func InitializeAndConfigure(opts Options) {
	switch opts.Format {
	case FormatJSON:
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	}

	if opts.Output != nil {
		log.SetOutput(opts.Output)
	} else {
		log.SetOutput(os.Stderr)
	}

	configureLogLevel(opts.Level)
}

func configureLogLevel(levelStr string) {
	log.SetLevel(logrus.InfoLevel)

	if levelStr == "" {
		levelStr = os.Getenv("LOG_LEVEL")
	}
	if levelStr == "" {
		return
	}

	level, err := logrus.ParseLevel(strings.ToLower(levelStr))
	if err != nil {
		log.Warnf("Invalid log level '%s', defaulting to 'info'", levelStr)
		return
	}

	log.SetLevel(level)
	log.Debugf("Log level set to '%s'", level)
}

// Writer returns the writer log lines are sent to
func Writer() io.Writer {
	return log.Out
}

// Debug logs a message at the debug level
func Debug(args ...interface{}) {
	log.Debug(args...)
}

// Info logs a message at the Info level
func Info(args ...interface{}) {
	log.Info(args...)
}

// Warn logs a message at the Warn level
func Warn(args ...interface{}) {
	log.Warn(args...)
}

// Formatted Logs
//

// Debugf logs a message at the Debugf level
func Debugf(format string, args ...interface{}) {
	log.Debugf(format, args...)
}

// Infof logs a message at the Infof level
func Infof(format string, args ...interface{}) {
	log.Infof(format, args...)
}

// Warnf logs a message at the Warnf level
func Warnf(format string, args ...interface{}) {
	log.Warnf(format, args...)
}

// Errorf logs a message at the Errorf level
func Errorf(format string, args ...interface{}) {
	log.Errorf(format, args...)
}

// Log levels with fields

// InfoWithFields logs a message at the info level with additional fields
func InfoWithFields(msg string, fields map[string]interface{}) {
	log.WithFields(logrus.Fields(fields)).Info(msg)
}

// DebugWithFields logs a message at the debug level with additional fields
func DebugWithFields(msg string, fields map[string]interface{}) {
	log.WithFields(logrus.Fields(fields)).Debug(msg)
}

// WarnWithFields logs a message at the warn level with additional fields
func WarnWithFields(msg string, fields map[string]interface{}) {
	log.WithFields(logrus.Fields(fields)).Warn(msg)
}

// ErrorWithFields logs a message at the error level with additional fields
func ErrorWithFields(msg string, fields map[string]interface{}) {
	log.WithFields(logrus.Fields(fields)).Error(msg)
}

// KeyValueLogger adapts the logger to libraries that log a message followed by
// alternating keys and values
type KeyValueLogger struct{}

func pairsToFields(keysAndValues []interface{}) logrus.Fields {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}
		fields[key] = keysAndValues[i+1]
	}
	if len(keysAndValues)%2 == 1 {
		fields["extra"] = keysAndValues[len(keysAndValues)-1]
	}
	return fields
}

// Error logs at the error level
func (KeyValueLogger) Error(msg string, keysAndValues ...interface{}) {
	log.WithFields(pairsToFields(keysAndValues)).Error(msg)
}

// Warn logs at the warn level
func (KeyValueLogger) Warn(msg string, keysAndValues ...interface{}) {
	log.WithFields(pairsToFields(keysAndValues)).Warn(msg)
}

// Info logs at the info level
func (KeyValueLogger) Info(msg string, keysAndValues ...interface{}) {
	log.WithFields(pairsToFields(keysAndValues)).Info(msg)
}

// Debug logs at the debug level
func (KeyValueLogger) Debug(msg string, keysAndValues ...interface{}) {
	log.WithFields(pairsToFields(keysAndValues)).Debug(msg)
}
