package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// MockEvent implements IEvent for testing
type MockEvent struct {
	errCalled  bool
	err        error
	msgCalled  bool
	msg        string
	msgfCalled bool
	format     string
	args       []interface{}
}

func (e *MockEvent) Err(err error) IEvent {
	e.errCalled = true
	e.err = err
	return e
}

func (e *MockEvent) Msg(msg string) {
	e.msgCalled = true
	e.msg = msg
}

func (e *MockEvent) Msgf(format string, v ...interface{}) {
	e.msgfCalled = true
	e.format = format
	e.args = v
}

// MockLogger implements ILogger for testing
type MockLogger struct {
	debugCalled    bool
	infoCalled     bool
	warnCalled     bool
	errorCalled    bool
	fatalCalled    bool
	level          Level
	setLevelCalled bool
	getLevelCalled bool
	mockEvent      *MockEvent
}

func (l *MockLogger) Debug() IEvent {
	l.debugCalled = true
	l.mockEvent = &MockEvent{}
	return l.mockEvent
}

func (l *MockLogger) Info() IEvent {
	l.infoCalled = true
	l.mockEvent = &MockEvent{}
	return l.mockEvent
}

func (l *MockLogger) Warn() IEvent {
	l.warnCalled = true
	l.mockEvent = &MockEvent{}
	return l.mockEvent
}

func (l *MockLogger) Error() IEvent {
	l.errorCalled = true
	l.mockEvent = &MockEvent{}
	return l.mockEvent
}

func (l *MockLogger) Fatal() IEvent {
	l.fatalCalled = true
	l.mockEvent = &MockEvent{}
	return l.mockEvent
}

func (l *MockLogger) SetLevel(level Level) {
	l.setLevelCalled = true
	l.level = level
}

func (l *MockLogger) GetLevel() Level {
	l.getLevelCalled = true
	return l.level
}

// TestGlobalLogger tests the global logger functions
func TestGlobalLogger(t *testing.T) {
	// Save the original global logger to restore it later
	originalLogger := globalLogger
	defer func() {
		globalLogger = originalLogger
	}()

	// Test GetLogger with no logger set: falls back to a no-op logger
	globalLogger = nil
	logger := GetLogger()
	assert.NotNil(t, logger, "GetLogger() returned nil when no logger was set")
	assert.Equal(t, NopLogger(), logger, "GetLogger() did not fall back to NopLogger when no logger was set")

	// Test SetLogger and GetLogger
	mockLogger := &MockLogger{}
	SetLogger(mockLogger)
	logger = GetLogger()
	assert.Equal(t, mockLogger, logger, "GetLogger() did not return the logger set with SetLogger()")
}
