package logfields

import "log/slog"

// Canonical log field names shared by every package.
const (
	KeyStage      = "stage"
	KeyLongname   = "longname"
	KeyTarget     = "target"
	KeyCode       = "code"
	KeyPath       = "path"
	KeyRunID      = "run_id"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Longname(l string) slog.Attr     { return slog.String(KeyLongname, l) }
func Target(l string) slog.Attr       { return slog.String(KeyTarget, l) }
func Code(c string) slog.Attr         { return slog.String(KeyCode, c) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
