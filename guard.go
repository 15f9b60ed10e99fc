package goConsole

import (
	"context"
	"errors"
	"net/url"
	"strings"
)

// NavigationOutcome is the decision the route guard reached.
type NavigationOutcome int

const (
	// NavigateAllow lets the navigation through to Location.
	NavigateAllow NavigationOutcome = iota
	// NavigateLogin sends the user to the login route with a return path.
	NavigateLogin
	// NavigateHome sends a signed-in user away from the login route.
	NavigateHome
	// NavigateForbidden sends the user to the forbidden route.
	NavigateForbidden
	// NavigateCancelled means the caller's context ended before a decision.
	NavigateCancelled
)

func (o NavigationOutcome) String() string {
	switch o {
	case NavigateAllow:
		return "allow"
	case NavigateLogin:
		return "login"
	case NavigateHome:
		return "home"
	case NavigateForbidden:
		return "forbidden"
	case NavigateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Navigation is the result of [Engine.Navigate].
type Navigation struct {
	Outcome NavigationOutcome
	// Location is where the user ends up: the resolved target on allow, otherwise the
	// redirect destination.
	Location string
	// Route is the resolved target route, after following route redirects.
	Route Route
	// Err explains non-allow outcomes that came from a failure.
	Err error
}

// Allowed reports whether the navigation may proceed.
func (n Navigation) Allowed() bool { return n.Outcome == NavigateAllow }

// Navigate decides whether the user may open target, a path with an optional query.
//
// Public routes are always open, except that a signed-in user is sent home from the
// login route. Without a token the user is sent to login with the full requested path
// as return target. With a token but no resolved user, the user is resolved first; a
// failure clears the session and goes to login. The route permission is checked last.
func (e *Engine) Navigate(ctx context.Context, target string) Navigation {
	path, query := splitTarget(target)
	route, _, err := e.routes.Resolve(path)
	if err != nil {
		route = e.routes.notFound
		route.Path = cleanPath(path)
	}

	requested := route.Path
	if query != "" {
		requested += "?" + query
	}

	nav := e.decide(ctx, route, requested)
	switch nav.Outcome {
	case NavigateAllow:
		e.metricInc(MetricNavigateAllow)
	case NavigateLogin:
		e.metricInc(MetricNavigateLogin)
	case NavigateHome:
		e.metricInc(MetricNavigateHome)
	case NavigateForbidden:
		e.metricInc(MetricNavigateForbidden)
		e.emitAudit(ctx, auditEventNavigationForbidden, false, e.username(), route.Path, ErrForbidden, func() map[string]string {
			return map[string]string{"permission": route.Permission}
		})
	}

	e.logger.DebugContext(ctx, "navigation", "target", requested, "outcome", nav.Outcome.String(), "location", nav.Location)
	return nav
}

func (e *Engine) decide(ctx context.Context, route Route, requested string) Navigation {
	// A session replaced mid-resolution is re-evaluated once against the new one.
	for attempt := 0; ; attempt++ {
		token := e.Token()
		var reason error
		if token != "" && e.tokenExpired(token) {
			e.handleUnauthorized(ctx, token, ErrAuthenticationExpired)
			token, reason = "", ErrAuthenticationExpired
		}

		if route.Public {
			if token != "" && route.Path == cleanPath(e.config.Routes.Login) {
				return Navigation{Outcome: NavigateHome, Location: e.config.Routes.Home, Route: route}
			}
			return Navigation{Outcome: NavigateAllow, Location: requested, Route: route}
		}

		if token == "" {
			return Navigation{Outcome: NavigateLogin, Location: e.LoginLocation(requested, reason), Route: route, Err: reason}
		}

		if _, ok := e.UserInfo(); !ok {
			if _, err := e.FetchCurrentUser(ctx); err != nil {
				if ctx.Err() != nil {
					return Navigation{Outcome: NavigateCancelled, Route: route, Err: ctx.Err()}
				}
				if errors.Is(err, ErrSessionChanged) && attempt == 0 {
					continue
				}
				return Navigation{Outcome: NavigateLogin, Location: e.LoginLocation(requested, err), Route: route, Err: err}
			}
		}

		if !e.HasPermission(route.Permission) {
			return Navigation{Outcome: NavigateForbidden, Location: e.config.Routes.Forbidden, Route: route, Err: ErrForbidden}
		}
		return Navigation{Outcome: NavigateAllow, Location: requested, Route: route}
	}
}

// LoginLocation returns the login route with requested as return path. A non-nil
// reason adds its [NoticeReason] code so the login page can say why the session ended.
func (e *Engine) LoginLocation(requested string, reason error) string {
	routes := e.config.Routes
	values := url.Values{}
	if requested != "" && cleanPath(requested) != cleanPath(routes.Login) {
		values.Set(routes.ReturnToParam, requested)
	}
	if reason != nil && routes.NoticeParam != "" {
		values.Set(routes.NoticeParam, NoticeReason(reason))
	}
	if len(values) == 0 {
		return routes.Login
	}
	return routes.Login + "?" + values.Encode()
}

// ReturnPath returns where to go after a successful login given the raw return-to
// value, falling back to the home route.
func (e *Engine) ReturnPath(raw string) string {
	p := SafeReturnPath(raw, e.config.Routes.Home)
	if path, _ := splitTarget(p); cleanPath(path) == cleanPath(e.config.Routes.Login) {
		return e.config.Routes.Home
	}
	return p
}

// SafeReturnPath returns raw if it is a same-origin absolute path, otherwise fallback.
// Scheme-relative ("//host") and backslash forms are rejected.
func SafeReturnPath(raw, fallback string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.Contains(raw, `\`) {
		return fallback
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil {
		return fallback
	}
	return raw
}

// VisibleRoutes returns the screens the signed-in user may open, for building menus.
// Public routes and pure redirects are left out.
func (e *Engine) VisibleRoutes() []Route {
	if !e.Authenticated() {
		return nil
	}
	var out []Route
	for _, r := range e.routes.Routes() {
		if r.Public || r.Redirect != "" {
			continue
		}
		if e.can(r.Permission) {
			out = append(out, r)
		}
	}
	return out
}

func splitTarget(target string) (path, query string) {
	target = strings.TrimSpace(target)
	if i := strings.IndexByte(target, '#'); i >= 0 {
		target = target[:i]
	}
	path, query, _ = strings.Cut(target, "?")
	if path == "" {
		path = "/"
	}
	return path, query
}
