// Package logger builds configured slog.Logger instances with JSON or text
// output, static service attributes, and per-call context attribute
// extraction. Domain attribute helpers keep log keys consistent across the
// access-control packages.
package logger
