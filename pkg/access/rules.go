package access

import "regexp"

// DefaultRules returns the platform's route protection table.
// Order matters: the classifier applies the first matching rule.
func DefaultRules() []Rule {
	return []Rule{
		// Open routes, reachable without login so they stay indexable.
		{
			Pattern:     regexp.MustCompile(`^/$`),
			Required:    LevelOpen,
			Description: "homepage",
		},
		{
			Pattern:     regexp.MustCompile(`^/cursos/introduccion`),
			Required:    LevelOpen,
			Description: "introductory courses",
		},
		{
			Pattern:     regexp.MustCompile(`^/about|^/contacto|^/privacy|^/terms`),
			Required:    LevelOpen,
			Description: "institutional pages",
		},

		// Free routes, login required but no subscription.
		{
			Pattern:     regexp.MustCompile(`^/web-dashboard$`),
			Required:    LevelFree,
			Description: "basic dashboard",
		},
		{
			Pattern:     regexp.MustCompile(`^/web-dashboard/profile`),
			Required:    LevelFree,
			Description: "user profile",
		},
		{
			Pattern:     regexp.MustCompile(`^/cursos/basicos`),
			Required:    LevelFree,
			Description: "basic courses",
		},

		// Premium routes, active subscription required.
		{
			Pattern:     regexp.MustCompile(`^/web-dashboard/billing`),
			Required:    LevelPremium,
			Description: "billing management",
		},
		{
			Pattern:     regexp.MustCompile(`^/cursos/avanzados`),
			Required:    LevelPremium,
			Description: "advanced courses",
		},
		{
			Pattern:     regexp.MustCompile(`^/recursos/premium`),
			Required:    LevelPremium,
			Description: "premium resources",
		},
		{
			Pattern:     regexp.MustCompile(`^/laboratorio`),
			Required:    LevelPremium,
			Description: "virtual laboratory",
		},
	}
}
