// PowerSNMPQuery - SNMP query engine for Go
// Автор: Волков Олег, ООО "Пауэр Си"
// Author: Volkov Oleg, PowerC LLC
// License: MIT (commercial version with support available)
// Лицензия: MIT (доступна коммерческая версия с поддержкой)
package PowerSNMPQuery

import (
	"io"
	"log/slog"
	"strings"

	"github.com/lmittmann/tint"
)

// ParseLogLevel maps debug, info, warn and error (any case) to slog levels.
// Anything else is info.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// NewLogger returns a terminal logger writing to w.
func NewLogger(w io.Writer, level string, noColor bool) *slog.Logger {
	lvl := ParseLogLevel(level)
	return slog.New(tint.NewHandler(w, &tint.Options{
		NoColor:    noColor,
		AddSource:  lvl == slog.LevelDebug,
		Level:      lvl,
		TimeFormat: "15:04:05.000",
	}))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
