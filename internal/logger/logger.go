package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Level represents the logging level
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
	QUIET
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	}
	return "QUIET"
}

var mu sync.Mutex

var (
	level  Level     = INFO
	output io.Writer = os.Stderr
)

// SetLevel sets the current logging level
func SetLevel(l Level) {
	mu.Lock()
	level = l
	mu.Unlock()
}

// SetOutput redirects log lines, mostly useful in tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	output = w
	mu.Unlock()
}

// ParseLevel maps a level name to a Level. Unknown names fall back to INFO.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DEBUG
	case "info":
		return INFO
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	case "quiet":
		return QUIET
	}
	return INFO
}

// Init reads LOG_LEVEL from the environment.
func Init() {
	if l := os.Getenv("LOG_LEVEL"); l != "" {
		SetLevel(ParseLevel(l))
	}
}

func logf(l Level, component, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if l < level {
		return
	}
	fmt.Fprintf(output, "[%s] %s: %s\n", l, component, fmt.Sprintf(format, args...))
}

func Debugf(component, format string, args ...any) {
	logf(DEBUG, component, format, args...)
}

func Infof(component, format string, args ...any) {
	logf(INFO, component, format, args...)
}

func Warnf(component, format string, args ...any) {
	logf(WARN, component, format, args...)
}

func Errorf(component, format string, args ...any) {
	logf(ERROR, component, format, args...)
}
