package logger

import "log/slog"

// Error records a single error under the key "error". Nil returns an empty
// attr, which slog drops.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the user identifier under the key "user_id".
func UserID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("user_id", id)
}

// Path records the request path under the key "path".
func Path(p string) slog.Attr {
	return slog.String("path", p)
}

// Required records the access level a route demands under "required_level".
func Required(level string) slog.Attr {
	return slog.String("required_level", level)
}

// Level records the access level a user holds under "user_level".
func Level(level string) slog.Attr {
	return slog.String("user_level", level)
}

// Reason records a decision reason under the key "reason".
func Reason(r string) slog.Attr {
	return slog.String("reason", r)
}

// Attempt records a retry attempt number under the key "attempt".
func Attempt(n int) slog.Attr {
	return slog.Int("attempt", n)
}

// Component records the emitting component under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Duration records an operation duration under the key "duration".
func Duration(d any) slog.Attr {
	return slog.Any("duration", d)
}
