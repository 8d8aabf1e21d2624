// Package logging holds the *slog.Logger shared by brr's packages.
package logging

import (
	"log/slog"
	"sync/atomic"
)

// logger is nil until SetLogger is called; Logger then falls back to a
// discard logger.
var logger atomic.Pointer[slog.Logger]

// SetLogger installs the package-level logger. nil restores the discard
// logger. Safe for concurrent use.
//
// Enabling debug output on stderr:
//
//	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
func SetLogger(sl *slog.Logger) {
	if sl == nil {
		sl = slog.New(slog.DiscardHandler)
	}
	logger.Store(sl)
}

// Logger returns the package-level logger. Safe for concurrent use.
func Logger() *slog.Logger {
	l := logger.Load()
	if l == nil {
		l = slog.New(slog.DiscardHandler)
		logger.Store(l)
	}
	return l
}

// ParseLevel maps a level name to a slog.Level, defaulting to Info.
func ParseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
