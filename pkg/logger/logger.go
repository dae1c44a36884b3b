package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// Minimal leveled logger shared by the server and the CLI.
// Init(level) picks the threshold; Debugf/Infof/Warnf/Errorf/Fatalf write
// "<RFC3339> [LEVEL] message" lines.

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = map[Level]string{
	LevelDebug: "debug",
	LevelInfo:  "info",
	LevelWarn:  "warn",
	LevelError: "error",
	LevelFatal: "fatal",
}

var (
	mu     sync.RWMutex
	logger = log.New(os.Stdout, "", 0)
	level  = LevelInfo
	exit   = os.Exit
)

// ParseLevel maps a case-insensitive name to a Level. Unknown names map to info.
func ParseLevel(l string) Level {
	switch strings.ToLower(strings.TrimSpace(l)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "fatal":
		return LevelFatal
	default:
		return LevelInfo
	}
}

// Init sets the global log level. Call early during startup. Default level is info.
func Init(l string) {
	mu.Lock()
	defer mu.Unlock()
	level = ParseLevel(l)
}

// SetOutput redirects log output and returns a func restoring the previous writer.
func SetOutput(w io.Writer) func() {
	mu.Lock()
	defer mu.Unlock()
	prev := logger
	logger = log.New(w, "", 0)
	return func() {
		mu.Lock()
		defer mu.Unlock()
		logger = prev
	}
}

func write(l Level, format string, v ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	if l < level {
		return
	}
	header := fmt.Sprintf("%s [%s] ", time.Now().Format(time.RFC3339), strings.ToUpper(levelNames[l]))
	logger.Printf(header+format, v...)
}

func Debugf(format string, v ...interface{}) { write(LevelDebug, format, v...) }
func Infof(format string, v ...interface{})  { write(LevelInfo, format, v...) }
func Warnf(format string, v ...interface{})  { write(LevelWarn, format, v...) }
func Errorf(format string, v ...interface{}) { write(LevelError, format, v...) }

// Fatalf always logs, then exits the process with status 1.
func Fatalf(format string, v ...interface{}) {
	write(LevelFatal, format, v...)
	exit(1)
}

func Info(v string) { Infof("%s", v) }
func Warn(v string) { Warnf("%s", v) }

// LevelString returns the current level as text.
func LevelString() string {
	mu.RLock()
	defer mu.RUnlock()
	return levelNames[level]
}
