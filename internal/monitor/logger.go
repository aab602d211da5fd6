package monitor

import "log/slog"

// logger is the package-wide structured logger. Safe to use before SetLogger
// is called; defaults to slog.Default().
var logger = slog.Default()

// SetLogger replaces the package logger. Call it before starting any worker.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}
