package objstore

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Option configures a Store at Open time.
type Option func(*store)

// WithLogger routes store diagnostics to l. Without it the store is silent.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *store) {
		if l != nil {
			s.log = l
		}
	}
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
