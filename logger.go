package pzem

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// LogLevel is the severity of a log message.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarning
	LevelError
	LevelNone // disables logging
)

var levelNames = map[LogLevel]string{
	LevelDebug:   "DEBUG",
	LevelInfo:    "INFO",
	LevelWarning: "WARNING",
	LevelError:   "ERROR",
	LevelNone:    "NONE",
}

// ParseLevel converts a level name ("debug", "INFO", ...) to a LogLevel.
func ParseLevel(s string) (LogLevel, error) {
	want := strings.ToUpper(s)
	for level, name := range levelNames {
		if name == want {
			return level, nil
		}
	}
	return LevelNone, fmt.Errorf("pzem: invalid log level: %q", s)
}

// SimpleLogger is a leveled io.Writer for the driver's diagnostic
// output. The level of each message is inferred from its "DEBUG:",
// "INFO:", "WARNING:" or "ERROR:" prefix; unprefixed messages count
// as info.
type SimpleLogger struct {
	mu     sync.Mutex
	level  LogLevel
	output io.Writer
	tag    string
}

// NewSimpleLogger creates a logger writing to output, or os.Stdout
// when output is nil.
func NewSimpleLogger(output io.Writer, level LogLevel, tag string) *SimpleLogger {
	if output == nil {
		output = os.Stdout
	}
	return &SimpleLogger{
		level:  level,
		output: output,
		tag:    tag,
	}
}

// SetLevel changes the minimum severity that gets written.
func (l *SimpleLogger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// Write implements io.Writer, filtering by the message's level prefix.
func (l *SimpleLogger) Write(p []byte) (int, error) {
	message := strings.TrimSpace(string(p))
	level := messageLevel(message)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.level == LevelNone || level < l.level {
		return len(p), nil
	}

	line := fmt.Sprintf("%s [%s] <%s> %s\n",
		time.Now().Format(time.RFC3339), levelNames[level], l.tag, message)
	if _, err := l.output.Write([]byte(line)); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close closes the underlying output when it is closable and not
// os.Stdout.
func (l *SimpleLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if closer, ok := l.output.(io.Closer); ok && l.output != os.Stdout {
		return closer.Close()
	}
	return nil
}

func messageLevel(message string) LogLevel {
	switch {
	case strings.HasPrefix(message, "DEBUG:"):
		return LevelDebug
	case strings.HasPrefix(message, "INFO:"):
		return LevelInfo
	case strings.HasPrefix(message, "WARNING:"):
		return LevelWarning
	case strings.HasPrefix(message, "ERROR:"):
		return LevelError
	}
	return LevelInfo
}
