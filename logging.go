package bind

import "time"

// LogEvent describes an engine operation for logging.
type LogEvent struct {
	Op       string
	Path     string
	Engine   string
	Duration time.Duration
	Err      error
}

// Logger records engine events.
type Logger interface {
	Log(LogEvent)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(LogEvent)

// Log implements Logger.
func (f LoggerFunc) Log(event LogEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) Log(LogEvent) {}

// WithLogger attaches a logger to the engine.
func WithLogger(logger Logger) Option {
	return func(cfg *engineConfig) {
		if logger == nil {
			cfg.logger = noopLogger{}
			return
		}
		cfg.logger = logger
	}
}
