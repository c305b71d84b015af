// Package logging sets up the daemon's slog stack: per-module loggers
// with runtime-adjustable levels, fanned out to stdout, the systemd
// journal when present, and an in-memory ring buffer that the HTTP
// façade returns as a JSON list at /api/logs.
package logging

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

const defaultBufferSize = 1000

// Config represents logging configuration.
type Config struct {
	Level   string            `toml:"level"`
	Format  string            `toml:"format"`
	Modules map[string]string `toml:"modules"`
}

var (
	mutex           sync.RWMutex
	isInitialized   bool
	globalConfig    Config
	moduleLoggers   = make(map[string]*slog.Logger)
	moduleLevelVars = make(map[string]*slog.LevelVar)
	logBuffer       *RingBuffer
)

// Initialize sets up the logging system. Loggers created before
// Initialize are rebuilt so they pick up the buffer and journal
// handlers.
func Initialize(config Config) {
	mutex.Lock()
	defer mutex.Unlock()

	globalConfig = config
	isInitialized = true
	logBuffer = NewRingBuffer(defaultBufferSize)

	globalLevel := parseLevel(config.Level, slog.LevelInfo)

	for module, levelVar := range moduleLevelVars {
		moduleLevel := globalLevel
		if levelStr, exists := config.Modules[module]; exists {
			moduleLevel = parseLevel(levelStr, moduleLevel)
		}
		levelVar.Set(moduleLevel)
		moduleLoggers[module] = slog.New(createHandler(config.Format, levelVar)).With("module", module)
	}

	rootVar := &slog.LevelVar{}
	rootVar.Set(globalLevel)
	slog.SetDefault(slog.New(createHandler(config.Format, rootVar)))
}

// GetLogger returns a logger for the module, creating it on first use.
func GetLogger(module string) *slog.Logger {
	mutex.RLock()
	if logger, exists := moduleLoggers[module]; exists {
		mutex.RUnlock()
		return logger
	}
	mutex.RUnlock()

	mutex.Lock()
	defer mutex.Unlock()

	if logger, exists := moduleLoggers[module]; exists {
		return logger
	}

	levelVar := &slog.LevelVar{}
	format := "text"
	level := slog.LevelInfo
	if isInitialized {
		format = globalConfig.Format
		level = parseLevel(globalConfig.Level, level)
		if levelStr, exists := globalConfig.Modules[module]; exists {
			level = parseLevel(levelStr, level)
		}
	}
	levelVar.Set(level)

	logger := slog.New(createHandler(format, levelVar)).With("module", module)
	moduleLoggers[module] = logger
	moduleLevelVars[module] = levelVar
	return logger
}

// SetModuleLevel adjusts one module's level at runtime.
func SetModuleLevel(module, level string) {
	mutex.Lock()
	defer mutex.Unlock()
	if levelVar, ok := moduleLevelVars[module]; ok {
		levelVar.Set(parseLevel(level, levelVar.Level()))
	}
}

// GetBuffer returns the ring buffer of recent log entries, nil before
// Initialize.
func GetBuffer() *RingBuffer {
	mutex.RLock()
	defer mutex.RUnlock()
	return logBuffer
}

// createHandler builds the fan-out chain for one logger: stdout in the
// requested format, journald when running under systemd, and the ring
// buffer. Each sink is named for the failure counter.
func createHandler(format string, level slog.Leveler) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}

	var stdoutHandler slog.Handler
	if format == "json" {
		stdoutHandler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		stdoutHandler = slog.NewTextHandler(os.Stdout, opts)
	}

	sinks := []Sink{{Name: "stdout", Handler: stdoutHandler}}
	if IsJournalAvailable() {
		sinks = append(sinks, Sink{Name: "journal", Handler: NewJournalHandler(level)})
	}
	sinks = append(sinks, Sink{Name: "buffer", Handler: NewBufferHandler(level)})

	return NewMultiHandler(sinks...)
}

func parseLevel(level string, fallback slog.Level) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return fallback
	}
}
