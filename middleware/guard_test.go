package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	goConsole "github.com/MrEthical07/goConsole"
)

type fakeNavigator struct {
	nav    goConsole.Navigation
	target string
}

func (f *fakeNavigator) Navigate(_ context.Context, target string) goConsole.Navigation {
	f.target = target
	return f.nav
}

type fakeChecker map[string]bool

func (f fakeChecker) HasPermission(code string) bool { return f[code] }

func okHandler(t *testing.T, called *bool) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		if _, ok := NavigationFromContext(r.Context()); !ok {
			t.Errorf("navigation missing from context")
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestGuardAllowsAndForwardsQuery(t *testing.T) {
	nav := &fakeNavigator{nav: goConsole.Navigation{Outcome: goConsole.NavigateAllow, Location: "/user?page=2"}}
	called := false
	h := Guard(nav)(okHandler(t, &called))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/user?page=2", nil))

	if !called || rr.Code != http.StatusNoContent {
		t.Fatalf("expected pass through, got %d", rr.Code)
	}
	if nav.target != "/user?page=2" {
		t.Fatalf("unexpected navigation target %q", nav.target)
	}
}

func TestGuardRedirects(t *testing.T) {
	cases := []struct {
		name string
		nav  goConsole.Navigation
		path string
		want string
	}{
		{"login", goConsole.Navigation{Outcome: goConsole.NavigateLogin, Location: "/login?redirect=%2Fuser"}, "/user", "/login?redirect=%2Fuser"},
		{"login with reason", goConsole.Navigation{Outcome: goConsole.NavigateLogin, Location: "/login?notice=network&redirect=%2Fuser", Err: goConsole.ErrNetworkOrTimeout}, "/user", "/login?notice=network&redirect=%2Fuser"},
		{"forbidden", goConsole.Navigation{Outcome: goConsole.NavigateForbidden, Location: "/403"}, "/role", "/403"},
		{"home", goConsole.Navigation{Outcome: goConsole.NavigateHome, Location: "/"}, "/login", "/"},
		{"route redirect", goConsole.Navigation{Outcome: goConsole.NavigateAllow, Location: "/dashboard"}, "/", "/dashboard"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			h := Guard(&fakeNavigator{nav: tc.nav})(okHandler(t, &called))
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tc.path, nil))
			if called {
				t.Fatal("handler must not run")
			}
			if rr.Code != http.StatusFound || rr.Header().Get("Location") != tc.want {
				t.Fatalf("expected 302 to %s, got %d %s", tc.want, rr.Code, rr.Header().Get("Location"))
			}
		})
	}
}

func TestGuardNilEngine(t *testing.T) {
	rr := httptest.NewRecorder()
	Guard(nil)(http.NotFoundHandler()).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}

func TestRequirePermission(t *testing.T) {
	checker := fakeChecker{"USER_ADD": true}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusCreated) })

	rr := httptest.NewRecorder()
	RequirePermission(checker, "USER_ADD")(next).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/user", nil))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	RequirePermission(checker, "USER_DELETE")(next).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/user/1/delete", nil))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}
