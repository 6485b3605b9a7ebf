// Package log builds the process logger.
package log

import (
	"dnet/internal/config"
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// New returns a logger writing to w at the configured level and format.
func New(cfg config.Log, w io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, errors.Wrap(err, "log level")
	}

	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(level)
	switch cfg.Format {
	case config.LogJSON:
		l.SetFormatter(&logrus.JSONFormatter{})
	case config.LogText, "":
		l.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	default:
		return nil, errors.Errorf("unknown log format %q", cfg.Format)
	}
	return l, nil
}
