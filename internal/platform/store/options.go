package store

import (
	"pubreg/internal/platform/logger"
	"pubreg/internal/platform/store/pg"
)

// Option mutates Store during Open
type Option func(*Store) error

// WithLogger sets the logger used by the backends
func WithLogger(log logger.Logger) Option {
	return func(s *Store) error {
		s.Log = log
		return nil
	}
}

// WithQueryObserver adds an observer for every postgres statement
func WithQueryObserver(o pg.Observer) Option {
	return func(s *Store) error {
		s.observers = append(s.observers, o)
		return nil
	}
}
