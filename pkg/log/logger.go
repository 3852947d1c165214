package log

import (
	"fmt"
	"log/slog"
	"os"
)

// SetupLogger installs a JSON slog default logger on stdout at the given
// level. Records pass through ErrFmtHandler, so error attributes carry an
// extracted stacktrace field. Applications that embed the library and log
// through slog call this once at startup; the library's own loggers go
// through GetLogger and are unaffected.
func SetupLogger(loglevel string) {
	ops := slog.HandlerOptions{
		AddSource: true,
		Level:     ToLogLevel(loglevel),
	}
	handler := slog.NewJSONHandler(os.Stdout, &ops)
	slog.SetDefault(slog.New(WrapByErrFmtHandler(handler)))
}

// ToLogLevel maps a level name to its slog level. It panics on unknown
// names; level strings come from static configuration, not user input.
func ToLogLevel(level string) slog.Level {
	switch level {
	case "info":
		return slog.LevelInfo
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		panic(fmt.Sprintf("invalid log level :%s", level))
	}
}

const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
)

// ErrAttr is a wrapper to pass err to slog.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}
