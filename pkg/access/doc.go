// Package access defines the subscription access tiers and the route
// classification rules that decide which tier a request path requires.
//
// Tiers form a strict total order: LevelOpen < LevelFree < LevelPremium.
// All comparisons go through the numeric rank so that inserting a new
// intermediate tier never breaks callers.
//
// A Classifier walks an ordered rule list and returns the tier required by
// the first matching rule. Unmatched paths default to LevelFree: an unknown
// route requires login rather than being silently public.
//
// Basic usage:
//
//	c := access.NewClassifier(access.DefaultRules())
//
//	required := c.Required("/cursos/avanzados/algebra")
//	if userLevel.Satisfies(required) {
//		// allow
//	}
package access
