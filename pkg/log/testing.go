package log

import (
	"bytes"
	"encoding/json"
	"strings"
)

// TestLogger captures zerolog JSON lines in memory so tests can assert on
// emitted messages and fields.
type TestLogger struct {
	*ZerologLogger
	buffer *bytes.Buffer
}

// NewTestLogger creates a TestLogger with the specified minimum level.
//
//	logger, buf := log.NewTestLogger(log.LevelDebug)
//	logger.Info("test message", "key", "value")
//	_ = buf.String()
func NewTestLogger(level Level) (*TestLogger, *bytes.Buffer) {
	buffer := &bytes.Buffer{}
	provider := NewZerologProvider(buffer, level)
	return &TestLogger{
		ZerologLogger: provider.GetLogger().(*ZerologLogger),
		buffer:        buffer,
	}, buffer
}

// GetLogEntries parses the captured output into one map per log line.
func (t *TestLogger) GetLogEntries() ([]map[string]interface{}, error) {
	return parseEntries(t.buffer)
}

// ContainsMessage reports whether any captured line contains message.
func (t *TestLogger) ContainsMessage(message string) bool {
	return strings.Contains(t.buffer.String(), message)
}

// ContainsField reports whether any entry has key set to value. JSON numbers
// decode as float64.
func (t *TestLogger) ContainsField(key string, value interface{}) bool {
	return containsField(t.buffer, key, value)
}

// Clear clears all captured log content.
func (t *TestLogger) Clear() {
	t.buffer.Reset()
}

// TestLoggerProvider is a LoggerProvider capturing every component logger
// into one buffer.
type TestLoggerProvider struct {
	*ZerologProvider
	buffer *bytes.Buffer
}

// NewTestLoggerProvider creates a capturing provider. Install it with
// SetProvider before constructing the components under test.
func NewTestLoggerProvider(level Level) (*TestLoggerProvider, *bytes.Buffer) {
	buffer := &bytes.Buffer{}
	return &TestLoggerProvider{
		ZerologProvider: NewZerologProvider(buffer, level),
		buffer:          buffer,
	}, buffer
}

// ContainsField reports whether any captured entry has key set to value.
func (p *TestLoggerProvider) ContainsField(key string, value interface{}) bool {
	return containsField(p.buffer, key, value)
}

func parseEntries(buf *bytes.Buffer) ([]map[string]interface{}, error) {
	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func containsField(buf *bytes.Buffer, key string, value interface{}) bool {
	entries, err := parseEntries(buf)
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if v, ok := entry[key]; ok && v == value {
			return true
		}
	}
	return false
}
