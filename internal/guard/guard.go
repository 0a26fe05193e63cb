// Package guard decides where a navigation to an application path should
// land, given the current session state. The decision function is pure:
// repeated evaluation with unchanged inputs yields the same action, so no
// redirect loop is possible.
package guard

import (
	"net/url"
	"strings"
)

// Action is the kind of decision produced for a navigation.
type Action int

const (
	// ActionAllow lets the navigation proceed unchanged.
	ActionAllow Action = iota
	// ActionRedirectToLogin sends the visitor to the login page,
	// preserving the original destination.
	ActionRedirectToLogin
	// ActionRedirectToHome sends an authenticated visitor away from a
	// public-only page.
	ActionRedirectToHome
)

// String returns a human-readable action name.
func (a Action) String() string {
	switch a {
	case ActionAllow:
		return "allow"
	case ActionRedirectToLogin:
		return "redirect-to-login"
	case ActionRedirectToHome:
		return "redirect-to-home"
	default:
		return "unknown"
	}
}

// Decision is the outcome of evaluating a navigation.
type Decision struct {
	Action Action

	// Target is the path to navigate to for redirect actions, including
	// the URL-encoded return destination for login redirects.
	Target string
}

const (
	loginPath = "/login"
	homePath  = "/dashboard"
)

// publicPrefixes are the path prefixes reachable without authentication.
// Everything else requires an authenticated session.
var publicPrefixes = []string{
	"/login",
	"/register",
	"/forgot-password",
	"/reset-password",
}

// isPublic reports whether path is under a public prefix. Matching is on
// path segments: "/loginx" is not public, "/login/sso" is.
func isPublic(path string) bool {
	for _, prefix := range publicPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") || strings.HasPrefix(path, prefix+"?") {
			return true
		}
	}
	return false
}

// Evaluate decides the action for navigating to path given the session's
// authenticated and hydrated flags.
//
// Until hydration completes the guard must not act at all: redirecting
// before the persisted session is restored would bounce a logged-in user
// to the login page on every start.
func Evaluate(path string, authenticated, hydrated bool) Decision {
	if !hydrated {
		return Decision{Action: ActionAllow}
	}

	if isPublic(path) {
		if authenticated {
			return Decision{Action: ActionRedirectToHome, Target: homePath}
		}
		return Decision{Action: ActionAllow}
	}

	if !authenticated {
		return Decision{
			Action: ActionRedirectToLogin,
			Target: loginPath + "?returnTo=" + url.QueryEscape(path),
		}
	}

	return Decision{Action: ActionAllow}
}
