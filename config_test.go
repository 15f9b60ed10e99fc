package goConsole

import (
	"testing"
	"time"

	"github.com/MrEthical07/goConsole/session"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantValid bool
	}{
		{name: "defaults", mutate: func(*Config) {}, wantValid: true},
		{
			name:      "relative base url",
			mutate:    func(c *Config) { c.Backend.BaseURL = "/api" },
			wantValid: false,
		},
		{
			name:      "ftp base url",
			mutate:    func(c *Config) { c.Backend.BaseURL = "ftp://host/api" },
			wantValid: false,
		},
		{
			name:      "negative timeout",
			mutate:    func(c *Config) { c.Backend.Timeout = -time.Second },
			wantValid: false,
		},
		{
			name:      "no current user path",
			mutate:    func(c *Config) { c.Backend.CurrentUserPaths = nil },
			wantValid: false,
		},
		{
			name:      "relative current user path",
			mutate:    func(c *Config) { c.Backend.CurrentUserPaths = []string{"users/current"} },
			wantValid: false,
		},
		{
			name:      "empty admin role",
			mutate:    func(c *Config) { c.Permission.AdminRole = "" },
			wantValid: false,
		},
		{
			name:      "duplicate universe code",
			mutate:    func(c *Config) { c.Permission.Universe = []string{"A", "A"} },
			wantValid: false,
		},
		{
			name:      "custom universe",
			mutate:    func(c *Config) { c.Permission.Universe = []string{"REPORT_VIEW", "REPORT_EXPORT"} },
			wantValid: true,
		},
		{
			name:      "relative login route",
			mutate:    func(c *Config) { c.Routes.Login = "login" },
			wantValid: false,
		},
		{
			name:      "empty return param",
			mutate:    func(c *Config) { c.Routes.ReturnToParam = "" },
			wantValid: false,
		},
		{
			name:      "logout notify without timeout",
			mutate:    func(c *Config) { c.Session.LogoutNotifyTimeout = 0 },
			wantValid: false,
		},
		{
			name: "logout notify disabled without timeout",
			mutate: func(c *Config) {
				c.Session.NotifyBackendOnLogout = false
				c.Session.LogoutNotifyTimeout = 0
			},
			wantValid: true,
		},
		{
			name: "audit without buffer",
			mutate: func(c *Config) {
				c.Audit.Enabled = true
				c.Audit.BufferSize = 0
			},
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantValid && err != nil {
				t.Fatalf("expected valid config, got %v", err)
			}
			if !tt.wantValid && err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestBuildConfigImmutabilityAgainstExternalMutation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend.CurrentUserPaths = []string{"/users/current"}

	engine, err := New().WithConfig(cfg).WithStorage(session.NewMemoryStorage()).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer engine.Close()

	cfg.Backend.CurrentUserPaths[0] = "/mutated"
	if got := engine.Config().Backend.CurrentUserPaths[0]; got != "/users/current" {
		t.Fatalf("engine config changed through the caller's slice: %s", got)
	}

	snapshot := engine.Config()
	snapshot.Backend.CurrentUserPaths[0] = "/mutated"
	if got := engine.Config().Backend.CurrentUserPaths[0]; got != "/users/current" {
		t.Fatalf("engine config changed through a returned copy: %s", got)
	}
}

func TestBuilderRejectsNonPublicLoginRoute(t *testing.T) {
	routes, err := NewRouteTable([]Route{
		{Name: "Login", Path: "/login"},
		{Name: "Forbidden", Path: "/403", Public: true},
	}, Route{})
	if err != nil {
		t.Fatalf("route table: %v", err)
	}
	if _, err := New().WithRoutes(routes).Build(); err == nil {
		t.Fatal("expected a private login route to be rejected")
	}
}

func TestBuilderSingleUse(t *testing.T) {
	b := New()
	engine, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer engine.Close()
	if _, err := b.Build(); err == nil {
		t.Fatal("expected second build to fail")
	}
}

func TestBuilderRejectsInvalidUniverse(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Permission.Universe = []string{"A", ""}
	if _, err := New().WithConfig(cfg).Build(); err == nil {
		t.Fatal("expected invalid universe to be rejected")
	}
}
