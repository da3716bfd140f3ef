package test

import (
	"context"
	"time"
)

// DefaultTestTimeout is the default timeout for test suites.
const DefaultTestTimeout = 30 * time.Second

// Option represents a configuration option for the test suite.
type Option func(*Suite)

// WithTimeout returns an option that sets the suite timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Suite) {
		if s.cancelFunc != nil {
			s.cancelFunc()
		}
		s.ctx, s.cancelFunc = context.WithTimeout(context.Background(), timeout)
	}
}

// WithCleanupFunc returns an option that adds a cleanup function to be
// called when the suite is cleaned up.
func WithCleanupFunc(cleanup func()) Option {
	return func(s *Suite) {
		oldCleanup := s.cleanup
		s.cleanup = func() {
			if cleanup != nil {
				cleanup()
			}
			if oldCleanup != nil {
				oldCleanup()
			}
		}
	}
}
