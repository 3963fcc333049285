package evtools

import "go.uber.org/zap"

// Option configures an Event.
type Option func(*Event)

// WithLogger attaches a logger for match diagnostics and listener activity.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Event) {
		if logger != nil {
			e.logger = logger
		}
	}
}
