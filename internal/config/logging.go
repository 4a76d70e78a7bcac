package config

import (
	"io"
	"log/slog"
)

// NewLogHandler builds the slog handler described by l, writing to w.
func (l LoggingConfig) NewLogHandler(w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{Level: NormalizeLogLevel(string(l.Level)).SlogLevel()}
	if NormalizeLogFormat(string(l.Format)) == LogFormatJSON {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}
