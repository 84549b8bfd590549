package contract

import (
	"os"

	logger "github.com/sirupsen/logrus"
)

var log = newLogger()

func newLogger() *logger.Logger {
	l := logger.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logger.TextFormatter{DisableTimestamp: true})
	l.SetLevel(logger.WarnLevel)
	return l
}

// Logger exposes the shared logger for packages that need fields.
func Logger() *logger.Logger {
	return log
}

// SetLogLevel sets the level of the shared logger ("debug", "info", "warn", ...).
func SetLogLevel(level string) error {
	lvl, err := logger.ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetLevel(lvl)
	return nil
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	log.WithError(err).Error(msg)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	log.WithError(err).Warn(msg)
}

// LogInfo logs an informational message.
func LogInfo(format string, args ...any) {
	log.Infof(format, args...)
}

// LogDebug logs a debug message.
func LogDebug(format string, args ...any) {
	log.Debugf(format, args...)
}
