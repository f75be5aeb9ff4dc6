package access

import "errors"

var (
	// ErrUnknownLevel indicates a string that does not name a defined tier.
	ErrUnknownLevel = errors.New("unknown access level")

	// ErrInvalidRule indicates a rule with a nil pattern or undefined tier.
	ErrInvalidRule = errors.New("invalid route rule")
)
