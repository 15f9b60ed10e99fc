package goConsole

import (
	"errors"
	"fmt"
	"strings"
)

// Route is one navigable screen of the console.
type Route struct {
	Name string
	Path string
	// Public routes need no authentication.
	Public bool
	// Permission is the code required to open the route; empty means none beyond sign-in.
	Permission string
	// Redirect sends navigation on to another path before the guard evaluates it.
	Redirect string
	Title    string
}

// RouteTable maps exact paths to routes. Unknown paths resolve to the not-found route,
// which still requires authentication.
type RouteTable struct {
	routes   map[string]Route
	order    []string
	notFound Route
}

const maxRedirects = 8

// DefaultNotFound is the catch-all route used for unknown paths.
var DefaultNotFound = Route{Name: "NotFound", Path: "/404", Title: "Not Found"}

// NewRouteTable builds a table from routes. Paths must be unique and absolute.
func NewRouteTable(routes []Route, notFound Route) (*RouteTable, error) {
	t := &RouteTable{
		routes:   make(map[string]Route, len(routes)),
		notFound: notFound,
	}
	for _, r := range routes {
		r.Path = cleanPath(r.Path)
		if !strings.HasPrefix(r.Path, "/") {
			return nil, fmt.Errorf("route %q: path must be absolute", r.Name)
		}
		if _, dup := t.routes[r.Path]; dup {
			return nil, fmt.Errorf("route %q: duplicate path %s", r.Name, r.Path)
		}
		if r.Redirect != "" && !strings.HasPrefix(r.Redirect, "/") {
			return nil, fmt.Errorf("route %q: redirect must be absolute", r.Name)
		}
		t.routes[r.Path] = r
		t.order = append(t.order, r.Path)
	}
	if t.notFound.Name == "" {
		t.notFound = DefaultNotFound
	}
	t.notFound.Public = false
	for _, p := range t.order {
		if _, _, err := t.Resolve(p); err != nil {
			return nil, fmt.Errorf("route %q: %w", t.routes[p].Name, err)
		}
	}
	return t, nil
}

// DefaultRoutes returns the console screens.
func DefaultRoutes() []Route {
	return []Route{
		{Name: "Login", Path: "/login", Public: true, Title: "Sign in"},
		{Name: "Root", Path: "/", Redirect: "/dashboard"},
		{Name: "Dashboard", Path: "/dashboard", Title: "Dashboard"},
		{Name: "User", Path: "/user", Permission: "USER_VIEW", Title: "Users"},
		{Name: "Role", Path: "/role", Permission: "ROLE_VIEW", Title: "Roles"},
		{Name: "Permission", Path: "/permission", Permission: "PERMISSION_VIEW", Title: "Permissions"},
		{Name: "Menu", Path: "/menu", Permission: "MENU_VIEW", Title: "Menus"},
		{Name: "Profile", Path: "/profile", Title: "Profile"},
		{Name: "Forbidden", Path: "/403", Public: true, Title: "Forbidden"},
	}
}

// DefaultRouteTable returns the table built from [DefaultRoutes].
func DefaultRouteTable() *RouteTable {
	t, err := NewRouteTable(DefaultRoutes(), DefaultNotFound)
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup returns the route registered at path without following redirects.
func (t *RouteTable) Lookup(path string) (Route, bool) {
	r, ok := t.routes[cleanPath(path)]
	return r, ok
}

// Resolve follows redirects from path and returns the final route. Unknown paths give
// the not-found route with found=false.
func (t *RouteTable) Resolve(path string) (route Route, found bool, err error) {
	path = cleanPath(path)
	for i := 0; i <= maxRedirects; i++ {
		r, ok := t.routes[path]
		if !ok {
			nf := t.notFound
			nf.Path = path
			return nf, false, nil
		}
		if r.Redirect == "" {
			return r, true, nil
		}
		path = cleanPath(r.Redirect)
	}
	return Route{}, false, errors.New("route redirect loop")
}

// Routes returns the registered routes in registration order.
func (t *RouteTable) Routes() []Route {
	out := make([]Route, 0, len(t.order))
	for _, p := range t.order {
		out = append(out, t.routes[p])
	}
	return out
}

func cleanPath(p string) string {
	p = strings.TrimRight(p, "/")
	if p == "" {
		return "/"
	}
	return p
}
