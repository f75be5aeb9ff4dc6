package access

import (
	"fmt"
	"regexp"
)

// Rule maps a path pattern to the tier required to access matching routes.
type Rule struct {
	Pattern     *regexp.Regexp
	Required    Level
	Description string
}

// Classifier resolves the tier required by a request path.
// Rules are consulted top to bottom and the first match wins, so more
// specific patterns must be listed before broader ones. The rule set is
// fixed at construction; swap in a new Classifier to change routing.
type Classifier struct {
	rules []Rule
}

// NewClassifier creates a classifier over an ordered rule list.
// The slice is copied so later mutation of the caller's slice has no effect.
// Panics on a nil pattern or undefined tier to fail fast at startup,
// matching how misconfigured route tables should never reach serving.
func NewClassifier(rules []Rule) *Classifier {
	for i, r := range rules {
		if r.Pattern == nil {
			panic(fmt.Errorf("%w: rule %d has nil pattern", ErrInvalidRule, i))
		}
		if !r.Required.IsValid() {
			panic(fmt.Errorf("%w: rule %d requires undefined level %d", ErrInvalidRule, i, r.Required))
		}
	}

	copied := make([]Rule, len(rules))
	copy(copied, rules)

	return &Classifier{rules: copied}
}

// Required returns the tier needed to access the given path.
// Total over all inputs: paths matched by no rule require LevelFree, so an
// unanticipated route demands login instead of leaking open access.
func (c *Classifier) Required(path string) Level {
	for _, r := range c.rules {
		if r.Pattern.MatchString(path) {
			return r.Required
		}
	}
	return LevelFree
}

// Match returns the first rule matching the path, if any.
// Useful for diagnostics; Required is the hot-path accessor.
func (c *Classifier) Match(path string) (Rule, bool) {
	for _, r := range c.rules {
		if r.Pattern.MatchString(path) {
			return r, true
		}
	}
	return Rule{}, false
}

// Rules returns a copy of the classifier's rule list.
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}
