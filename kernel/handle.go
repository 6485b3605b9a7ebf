package kernel

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Option func(*Options)

type Options struct {
	Log logrus.FieldLogger
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(o *Options) { o.Log = l }
}

func NewOptions(opts []Option) Options {
	o := Options{Log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// State tracks whether a table handle is open. The zero value is closed.
type State struct {
	table string
	open  bool
	log   logrus.FieldLogger
}

func Opened(table string, o Options) State {
	s := State{table: table, open: true, log: o.Log.WithField("table", table)}
	s.log.Debug("opened")
	return s
}

func (s *State) Log() logrus.FieldLogger { return s.log }

// Check returns ErrNotOpen unless the handle is open.
func (s *State) Check(op string) error {
	if !s.open {
		return errors.Wrapf(ErrNotOpen, "%s %s", s.table, op)
	}
	return nil
}

// Close marks the handle closed. It reports whether it was open, so a
// second Close can be a no-op.
func (s *State) Close() bool {
	if !s.open {
		return false
	}
	s.open = false
	s.log.Debug("closed")
	return true
}
