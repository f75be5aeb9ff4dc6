package access

import "net/url"

// RedirectPolicy builds the URLs a denied request is sent to.
// The zero value is not usable; use DefaultRedirectPolicy or fill all paths.
type RedirectPolicy struct {
	SignInPath  string // login entry point for requests missing authentication
	UpgradePath string // billing entry point for requests missing a subscription
	HomePath    string // fallback for tiers that should never be denied
}

// DefaultRedirectPolicy matches the platform's routing.
func DefaultRedirectPolicy() RedirectPolicy {
	return RedirectPolicy{
		SignInPath:  "/sign-in",
		UpgradePath: "/web-dashboard/billing",
		HomePath:    "/",
	}
}

// RedirectURL returns the destination for a request denied at the given
// required tier, carrying the original path so the user can be sent back
// after resolving the denial.
func (p RedirectPolicy) RedirectURL(required Level, returnTo string) string {
	switch required {
	case LevelFree:
		return p.SignInPath + "?redirect_url=" + url.QueryEscape(returnTo)
	case LevelPremium:
		return p.UpgradePath + "?upgrade=true&redirect_url=" + url.QueryEscape(returnTo)
	default:
		return p.HomePath
	}
}

// ErrorRedirectURL returns the fail-closed destination used when
// authorization itself fails unexpectedly. The marker is informational and
// never carries internal error text.
func (p RedirectPolicy) ErrorRedirectURL() string {
	return p.SignInPath + "?error=authorization"
}
