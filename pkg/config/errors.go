package config

import "errors"

var (
	// ErrParsing is returned when environment variables cannot be parsed
	// into the target struct.
	ErrParsing = errors.New("failed to parse environment into config")

	// ErrNilTarget is returned when a nil pointer is passed to Load.
	ErrNilTarget = errors.New("nil config target")

	// ErrEnvFile is returned when an explicitly named .env file cannot be
	// loaded.
	ErrEnvFile = errors.New("failed to load env file")
)
