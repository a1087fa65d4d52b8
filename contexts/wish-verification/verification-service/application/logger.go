package application

import "log/slog"

// ResolveLogger returns logger, or slog.Default when the wish commands were built without one.
func ResolveLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}
