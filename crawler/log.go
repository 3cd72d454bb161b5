package crawler

import "log/slog"

// loggerOrDefault returns logger, falling back to slog.Default() when nil
// so every component can be used without a caller having to wire a
// logger explicitly.
func loggerOrDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
