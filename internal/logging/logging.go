// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Init sets level and format on the standard logger.
// Valid levels: "debug", "info", "warn", "error"; formats: "text", "json".
func Init(level, format string) (*logrus.Logger, error) {
	return Configure(logrus.StandardLogger(), os.Stderr, level, format)
}

// Configure applies level and format to logger and points it at out.
func Configure(logger *logrus.Logger, out io.Writer, level, format string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", level)
	}
	logger.SetLevel(lvl)
	logger.SetOutput(out)

	switch strings.ToLower(format) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, errors.Errorf("invalid log format %q", format)
	}
	return logger, nil
}
