package middleware

import (
	"context"
	"net/http"
	"strings"

	goConsole "github.com/MrEthical07/goConsole"
)

// Navigator is the part of *goConsole.Engine used by [Guard].
type Navigator interface {
	Navigate(ctx context.Context, target string) goConsole.Navigation
}

// PermissionChecker is the part of *goConsole.Engine used by [RequirePermission].
type PermissionChecker interface {
	HasPermission(code string) bool
}

type navigationContextKey struct{}

// NavigationFromContext returns the allowed navigation stored by [Guard].
func NavigationFromContext(ctx context.Context) (goConsole.Navigation, bool) {
	nav, ok := ctx.Value(navigationContextKey{}).(goConsole.Navigation)
	return nav, ok
}

// Guard navigates to the request path and query. Login, home and forbidden outcomes
// answer 302 to the outcome's location, as does an allowed route redirect. Allowed
// requests continue with the navigation on the context.
func Guard(engine Navigator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "console unavailable", http.StatusServiceUnavailable)
				return
			}

			target := r.URL.Path
			if r.URL.RawQuery != "" {
				target += "?" + r.URL.RawQuery
			}

			nav := engine.Navigate(r.Context(), target)
			switch nav.Outcome {
			case goConsole.NavigateAllow:
				if loc, _, _ := strings.Cut(nav.Location, "?"); loc != "" && loc != r.URL.Path && r.Method == http.MethodGet {
					http.Redirect(w, r, nav.Location, http.StatusFound)
					return
				}
				ctx := context.WithValue(r.Context(), navigationContextKey{}, nav)
				next.ServeHTTP(w, r.WithContext(ctx))
			case goConsole.NavigateCancelled:
				// The client is gone.
				w.WriteHeader(http.StatusServiceUnavailable)
			default:
				http.Redirect(w, r, nav.Location, http.StatusFound)
			}
		})
	}
}

// RequirePermission answers 403 unless the signed-in user holds code.
func RequirePermission(engine PermissionChecker, code string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil || !engine.HasPermission(code) {
				http.Error(w, goConsole.Describe(goConsole.ErrForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
