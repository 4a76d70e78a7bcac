package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeySubmissionID = "submission_id"
	KeyRequestID    = "request_id"
	KeyAccountID    = "steam_id"
	KeyOutcome      = "outcome"
	KeyState        = "state"
	KeyDestination  = "destination"
	KeyTransport    = "transport"
	KeyEndpoint     = "endpoint"
	KeySubject      = "subject"
	KeyDurationMS   = "duration_ms"
	KeyMethod       = "method"
	KeyPath         = "path"
	KeyStatus       = "status"
	KeyUserAgent    = "user_agent"
	KeyRemoteAddr   = "remote_addr"
	KeyError        = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func SubmissionID(id string) slog.Attr { return slog.String(KeySubmissionID, id) }
func RequestID(id string) slog.Attr    { return slog.String(KeyRequestID, id) }
func AccountID(id string) slog.Attr    { return slog.String(KeyAccountID, id) }
func Outcome(o string) slog.Attr       { return slog.String(KeyOutcome, o) }
func State(s string) slog.Attr         { return slog.String(KeyState, s) }
func Destination(d string) slog.Attr   { return slog.String(KeyDestination, d) }
func Transport(t string) slog.Attr     { return slog.String(KeyTransport, t) }
func Endpoint(e string) slog.Attr      { return slog.String(KeyEndpoint, e) }
func Subject(s string) slog.Attr       { return slog.String(KeySubject, s) }
func Method(m string) slog.Attr        { return slog.String(KeyMethod, m) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func Status(code int) slog.Attr        { return slog.Int(KeyStatus, code) }
func UserAgent(ua string) slog.Attr    { return slog.String(KeyUserAgent, ua) }
func RemoteAddr(a string) slog.Attr    { return slog.String(KeyRemoteAddr, a) }

// Duration records d in fractional milliseconds.
func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d)/float64(time.Millisecond))
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
