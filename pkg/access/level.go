package access

import "fmt"

// Level represents a subscription access tier. The zero value is LevelOpen.
type Level int

const (
	// LevelOpen is content reachable without authentication.
	LevelOpen Level = iota
	// LevelFree requires a signed-in user but no paid subscription.
	LevelFree
	// LevelPremium requires an active or trialing subscription.
	LevelPremium
)

// Levels lists all tiers in ascending order.
func Levels() []Level {
	return []Level{LevelOpen, LevelFree, LevelPremium}
}

// Rank returns the numeric position of the level in the tier hierarchy.
// Comparisons must use Rank (or Satisfies) rather than string equality so
// new tiers can be inserted without touching call sites.
func (l Level) Rank() int {
	return int(l)
}

// Satisfies reports whether a caller holding level l may access content
// that requires the given level.
func (l Level) Satisfies(required Level) bool {
	return l.Rank() >= required.Rank()
}

// IsValid reports whether the level is one of the defined tiers.
func (l Level) IsValid() bool {
	return l >= LevelOpen && l <= LevelPremium
}

func (l Level) String() string {
	switch l {
	case LevelOpen:
		return "OPEN"
	case LevelFree:
		return "FREE"
	case LevelPremium:
		return "PREMIUM"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// ParseLevel converts a wire representation back to a Level.
// Unknown values return an error rather than a guessed tier.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "OPEN":
		return LevelOpen, nil
	case "FREE":
		return LevelFree, nil
	case "PREMIUM":
		return LevelPremium, nil
	default:
		return LevelOpen, fmt.Errorf("%w: %q", ErrUnknownLevel, s)
	}
}
