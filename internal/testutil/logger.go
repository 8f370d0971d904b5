package testutil

import (
	"sync"

	"github.com/VoidMesh/heightfield/internal/logging"
)

// LogCall is one recorded logger invocation.
type LogCall struct {
	Level  string
	Msg    string
	KeyVal []interface{}
}

// MockLogger implements logging.Interface and records every call. It is safe
// for use from the parallel row workers.
type MockLogger struct {
	mu    *sync.Mutex
	calls *[]LogCall
}

func NewMockLogger() *MockLogger {
	calls := make([]LogCall, 0)
	return &MockLogger{mu: &sync.Mutex{}, calls: &calls}
}

func (m *MockLogger) record(level, msg string, kv []interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*m.calls = append(*m.calls, LogCall{Level: level, Msg: msg, KeyVal: kv})
}

func (m *MockLogger) Debug(msg string, keysAndValues ...interface{}) {
	m.record("debug", msg, keysAndValues)
}

func (m *MockLogger) Info(msg string, keysAndValues ...interface{}) {
	m.record("info", msg, keysAndValues)
}

func (m *MockLogger) Warn(msg string, keysAndValues ...interface{}) {
	m.record("warn", msg, keysAndValues)
}

func (m *MockLogger) Error(msg string, keysAndValues ...interface{}) {
	m.record("error", msg, keysAndValues)
}

// With shares the call log with the parent so tests see child logger calls.
func (m *MockLogger) With(keysAndValues ...interface{}) logging.Interface {
	return m
}

func (m *MockLogger) GetCalls() []LogCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]LogCall, len(*m.calls))
	copy(out, *m.calls)
	return out
}

func (m *MockLogger) GetCallsOfLevel(level string) []LogCall {
	var filtered []LogCall
	for _, call := range m.GetCalls() {
		if call.Level == level {
			filtered = append(filtered, call)
		}
	}
	return filtered
}
