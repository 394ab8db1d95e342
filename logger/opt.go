package logger

import "log"

// A LoggerOptFn is a functional option configuring a ViewLogger when constructing a new one.
type LoggerOptFn func(*ViewLogger)

// WithEnv sets the environment ViewLogger is operating in.
func WithEnv(env string) func(*ViewLogger) {
	return func(l *ViewLogger) {
		l.env = env
	}
}

// WithLevel sets the log level ViewLogger uses.
func WithLevel(level LogLevel) func(*ViewLogger) {
	return func(l *ViewLogger) {
		l.ll = level
	}
}

// WithLogger sets the log.Logger ViewLogger uses.
func WithLogger(log *log.Logger) func(*ViewLogger) {
	return func(l *ViewLogger) {
		l.l = log
	}
}

// WithSkip sets the number of frames in the call stack
// to skip in order to log the desired file and line number
// of the calling code.
func WithSkip(skip int) func(*ViewLogger) {
	return func(l *ViewLogger) {
		l.skip = skip
	}
}
