package goConsole

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/MrEthical07/goConsole/api"
	"github.com/MrEthical07/goConsole/permission"
)

// Config defines the engine configuration.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Backend    BackendConfig
	Permission PermissionConfig
	Routes     RoutesConfig
	Session    SessionConfig
	Audit      AuditConfig
	Metrics    MetricsConfig
}

/*
====================================
BACKEND CONFIG
====================================
*/

// BackendConfig describes how the engine reaches the RBAC backend.
type BackendConfig struct {
	// BaseURL is the absolute API root, for example "http://localhost:8080/api".
	BaseURL string
	Timeout time.Duration
	// CurrentUserPaths are tried in order by FetchCurrentUser; the first success wins.
	CurrentUserPaths []string
	UserAgent        string
	// RateLimit caps outbound calls per second; zero disables throttling.
	RateLimit float64
	RateBurst int
}

/*
====================================
PERMISSION CONFIG
====================================
*/

// PermissionConfig describes permission resolution.
type PermissionConfig struct {
	// AdminRole is the reserved role code implying the whole universe.
	AdminRole string
	// Universe lists every permission code known to the client. Empty selects the
	// sixteen default console codes.
	Universe []string
	// SkipSupplementaryFetch disables the best-effort call to
	// /users/current/permissions after the user is resolved.
	SkipSupplementaryFetch bool
}

/*
====================================
ROUTES CONFIG
====================================
*/

// RoutesConfig names the routes the guard redirects to.
type RoutesConfig struct {
	Login     string
	Home      string
	Forbidden string
	// ReturnToParam is the login query parameter carrying the originally requested path.
	ReturnToParam string
	// NoticeParam is the login query parameter carrying the reason code of a session
	// that ended on a failure. Empty leaves the reason out.
	NoticeParam string
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig describes session lifecycle behavior.
type SessionConfig struct {
	// NotifyBackendOnLogout sends POST /auth/logout in the background after a local logout.
	NotifyBackendOnLogout bool
	LogoutNotifyTimeout   time.Duration
	// CheckTokenExpiry treats a stored JWT whose exp claim has passed as no token.
	// Tokens that are not JWTs are never considered expired.
	CheckTokenExpiry bool
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls in-process counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the configuration used by [New].
func DefaultConfig() Config {
	return Config{
		Backend: BackendConfig{
			BaseURL:          "http://localhost:8080/api",
			Timeout:          api.DefaultTimeout,
			CurrentUserPaths: []string{api.PathCurrentUser},
			UserAgent:        "goconsole",
		},
		Permission: PermissionConfig{
			AdminRole: permission.DefaultAdminRole,
		},
		Routes: RoutesConfig{
			Login:         "/login",
			Home:          "/",
			Forbidden:     "/403",
			ReturnToParam: "redirect",
			NoticeParam:   "notice",
		},
		Session: SessionConfig{
			NotifyBackendOnLogout: true,
			LogoutNotifyTimeout:   5 * time.Second,
			CheckTokenExpiry:      false,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Backend.CurrentUserPaths = cloneStrings(cfg.Backend.CurrentUserPaths)
	out.Permission.Universe = cloneStrings(cfg.Permission.Universe)
	return out
}

func cloneStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	// Backend
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("Backend BaseURL must be an absolute http(s) URL, got %q", c.Backend.BaseURL)
	}
	if c.Backend.Timeout < 0 {
		return errors.New("Backend Timeout must be >= 0")
	}
	if len(c.Backend.CurrentUserPaths) == 0 {
		return errors.New("Backend CurrentUserPaths must not be empty")
	}
	for _, p := range c.Backend.CurrentUserPaths {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("Backend CurrentUserPaths entry %q must start with /", p)
		}
	}
	if c.Backend.RateLimit < 0 {
		return errors.New("Backend RateLimit must be >= 0")
	}

	// Permission
	if c.Permission.AdminRole == "" {
		return errors.New("Permission AdminRole must not be empty")
	}
	seen := make(map[string]struct{}, len(c.Permission.Universe))
	for _, code := range c.Permission.Universe {
		if code == "" {
			return errors.New("Permission Universe must not contain empty codes")
		}
		if _, dup := seen[code]; dup {
			return fmt.Errorf("Permission Universe contains duplicate code %q", code)
		}
		seen[code] = struct{}{}
	}

	// Routes
	for name, p := range map[string]string{
		"Login":     c.Routes.Login,
		"Home":      c.Routes.Home,
		"Forbidden": c.Routes.Forbidden,
	} {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("Routes %s must be an absolute path, got %q", name, p)
		}
	}
	if c.Routes.ReturnToParam == "" {
		return errors.New("Routes ReturnToParam must not be empty")
	}

	// Session
	if c.Session.NotifyBackendOnLogout && c.Session.LogoutNotifyTimeout <= 0 {
		return errors.New("Session LogoutNotifyTimeout must be > 0 when NotifyBackendOnLogout is true")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	return nil
}
