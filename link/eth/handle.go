package eth

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var ErrNotSupported = errors.New("raw ethernet access is not supported on this platform")

type HandleOption func(*handleConfig)

type handleConfig struct {
	log logrus.FieldLogger
}

func WithLogger(l logrus.FieldLogger) HandleOption {
	return func(c *handleConfig) { c.log = l }
}

func newHandleConfig(opts []HandleOption) handleConfig {
	c := handleConfig{log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
