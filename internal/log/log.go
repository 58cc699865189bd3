package log

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelError Level = "ERROR"
)

var (
	mu         sync.RWMutex
	logger     zerolog.Logger
	loggerOnce sync.Once
	minLevel   = LevelInfo
)

// initLogger initializes the global logger to write to stderr with timestamps.
func initLogger() {
	loggerOnce.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339Nano
		logger = newLogger(os.Stderr)
	})
}

func newLogger(w io.Writer) zerolog.Logger {
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339Nano, NoColor: true}
	return zerolog.New(out).With().Timestamp().Logger().Level(zerologLevel(minLevel))
}

// SetLevel changes the minimum level; unknown levels log everything.
func SetLevel(l Level) {
	initLogger()
	mu.Lock()
	defer mu.Unlock()
	minLevel = l
	logger = logger.Level(zerologLevel(l))
}

// ParseLevel maps "debug"/"info"/"error" (any case) to a Level.
func ParseLevel(s string) Level {
	switch s {
	case "debug", "DEBUG":
		return LevelDebug
	case "error", "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

// SetOutput redirects all subsequent log lines to w. The TUI uses this to
// keep log output off the terminal it is drawing on.
func SetOutput(w io.Writer) {
	initLogger()
	mu.Lock()
	defer mu.Unlock()
	logger = newLogger(w)
}

func Debug(msg string, kv ...any) {
	logWithLevel(LevelDebug, nil, msg, kv...)
}

func Info(msg string, kv ...any) {
	logWithLevel(LevelInfo, nil, msg, kv...)
}

func Error(msg string, err error, kv ...any) {
	logWithLevel(LevelError, err, msg, kv...)
}

func logWithLevel(level Level, err error, msg string, kv ...any) {
	initLogger()
	mu.RLock()
	l := logger
	mu.RUnlock()

	var ev *zerolog.Event
	switch level {
	case LevelDebug:
		ev = l.Debug()
	case LevelError:
		ev = l.Error()
	default:
		ev = l.Info()
	}
	// Disabled levels return a nil event; every method on it is a no-op.
	if err != nil {
		ev = ev.Err(err)
	}
	if len(kv) > 0 {
		ev = ev.Fields(pairs(kv))
	}
	ev.Msg(msg)
}

// pairs keeps well-formed key/value pairs. Non-string keys are skipped and a
// trailing odd value is ignored.
func pairs(kv []any) []any {
	out := make([]any, 0, len(kv))
	for i := 0; i+1 < len(kv); i += 2 {
		if _, ok := kv[i].(string); !ok {
			continue
		}
		out = append(out, kv[i], kv[i+1])
	}
	return out
}

func zerologLevel(l Level) zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelInfo:
		return zerolog.InfoLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.TraceLevel
	}
}
