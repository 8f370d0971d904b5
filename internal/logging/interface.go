package logging

import "github.com/charmbracelet/log"

// Interface abstracts logging operations for dependency injection.
type Interface interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	With(keysAndValues ...interface{}) Interface
}

// Wrapper adapts a charmbracelet logger to Interface.
type Wrapper struct {
	logger *log.Logger
}

// NewWrapper wraps the given logger. A nil logger resolves to the global one
// at call time.
func NewWrapper(logger *log.Logger) Interface {
	return &Wrapper{logger: logger}
}

func (w *Wrapper) get() *log.Logger {
	if w.logger == nil {
		return GetLogger()
	}
	return w.logger
}

func (w *Wrapper) Debug(msg string, keysAndValues ...interface{}) {
	w.get().Debug(msg, keysAndValues...)
}

func (w *Wrapper) Info(msg string, keysAndValues ...interface{}) {
	w.get().Info(msg, keysAndValues...)
}

func (w *Wrapper) Warn(msg string, keysAndValues ...interface{}) {
	w.get().Warn(msg, keysAndValues...)
}

func (w *Wrapper) Error(msg string, keysAndValues ...interface{}) {
	w.get().Error(msg, keysAndValues...)
}

func (w *Wrapper) With(keysAndValues ...interface{}) Interface {
	return &Wrapper{logger: w.get().With(keysAndValues...)}
}
