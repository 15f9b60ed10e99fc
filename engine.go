package goConsole

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/goConsole/api"
	"github.com/MrEthical07/goConsole/jwt"
	"github.com/MrEthical07/goConsole/permission"
	"github.com/MrEthical07/goConsole/session"
	"golang.org/x/sync/singleflight"
)

// Engine owns the console session: the bearer token, the resolved user and the effective
// permission set. It is the only place these values change.
//
// Invariant: an empty token implies no user and an empty permission set.
type Engine struct {
	config   Config
	store    *session.Store
	client   *api.Client
	gateways api.Gateways
	resolver *permission.Resolver
	routes   *RouteTable
	audit    *auditDispatcher
	metrics  *Metrics
	logger   *slog.Logger
	notifier Notifier

	// transition serialises every session transition together with its storage writes so
	// durable state never lags behind a later transition.
	transition sync.Mutex

	mu          sync.RWMutex
	token       string
	user        *UserInfo
	permissions permission.Set
	generation  uint64

	userFlight singleflight.Group
	pending    sync.WaitGroup
	closed     atomic.Bool
}

// restore loads the durable token. A leftover in-flight marker is stale by definition at
// startup; a permission cache without a token is dropped.
func (e *Engine) restore(ctx context.Context) error {
	snap, err := e.store.Load(ctx)
	if err != nil {
		return err
	}

	if snap.Token == "" {
		if snap.HasCache || snap.Loading {
			return e.store.Clear(ctx)
		}
		return nil
	}

	if snap.Loading {
		if err := e.store.ClearLoading(ctx); err != nil {
			e.logger.WarnContext(ctx, "clear stale user-info marker", "error", err)
		}
	}

	e.mu.Lock()
	e.token = snap.Token
	e.mu.Unlock()

	e.logger.DebugContext(ctx, "session restored", "cached_permissions", len(snap.Permissions))
	return nil
}

// Close waits for background logout notifications and drains the audit dispatcher.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.mu.Lock()
	swapped := e.closed.CompareAndSwap(false, true)
	e.mu.Unlock()
	if !swapped {
		return
	}
	e.pending.Wait()
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped returns the number of audit events dropped because the buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// AuditCoalesced returns how many repeated forbidden navigations were folded into
// an event already waiting in the audit buffer. Only DropIfFull coalesces.
func (e *Engine) AuditCoalesced() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Coalesced()
}

// AuditDroppedByEvent returns the dropped audit events keyed by event type.
func (e *Engine) AuditDroppedByEvent() map[string]uint64 {
	if e == nil {
		return map[string]uint64{}
	}
	return e.audit.DroppedByEvent()
}

// MetricsSnapshot returns the current counter values.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) metricObserve(id MetricID, d time.Duration) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Observe(id, d)
}

/*
====================================
ACCESSORS
====================================
*/

// Config returns a copy of the engine configuration.
func (e *Engine) Config() Config {
	return cloneConfig(e.config)
}

// Routes returns the route table consulted by Navigate.
func (e *Engine) Routes() *RouteTable {
	return e.routes
}

// Token returns the bearer token, or "" when logged out.
func (e *Engine) Token() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.token
}

// UserInfo returns the resolved user. ok is false until FetchCurrentUser succeeds.
func (e *Engine) UserInfo() (UserInfo, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.user == nil {
		return UserInfo{}, false
	}
	return *e.user, true
}

// Authenticated reports whether a token is present and the user is resolved.
func (e *Engine) Authenticated() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.token != "" && e.user != nil
}

// Permissions returns the effective permission set in lexical order.
func (e *Engine) Permissions() []string {
	e.hydratePermissions()

	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.permissions.Sorted()
}

// Client returns the backend client.
func (e *Engine) Client() *api.Client { return e.client }

// Users returns the gateway for user records and their role links.
func (e *Engine) Users() *api.Users { return e.gateways.Users }

// Roles returns the gateway for role records and their permission links.
func (e *Engine) Roles() *api.Roles { return e.gateways.Roles }

// PermissionsAPI returns the gateway for permission records. It is not the signed-in
// user's permission set; see [Engine.Permissions] for that.
func (e *Engine) PermissionsAPI() *api.Permissions { return e.gateways.Permissions }

// Menus returns the gateway for menu records.
func (e *Engine) Menus() *api.Menus { return e.gateways.Menus }

/*
====================================
PERMISSION CHECKS
====================================
*/

// HasPermission reports whether the signed-in user may see what code guards.
//
// An empty code always passes. When the in-memory set is empty and a token is present,
// the set is first hydrated from the durable cache. The administrator role always passes;
// otherwise code must be a member of the effective set. This gates the UI only.
func (e *Engine) HasPermission(code string) bool {
	ok := e.can(code)
	if ok {
		e.metricInc(MetricPermissionGranted)
	} else {
		e.metricInc(MetricPermissionDenied)
	}
	return ok
}

func (e *Engine) can(code string) bool {
	if code == "" {
		return true
	}

	e.hydratePermissions()

	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.isAdminLocked() || e.permissions.Has(code)
}

// HasRole reports whether the resolved user holds roleCode.
func (e *Engine) HasRole(roleCode string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.user == nil {
		return false
	}
	for _, r := range e.user.Roles {
		if r.Code == roleCode {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the resolved user holds the administrator role.
func (e *Engine) IsAdmin() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.isAdminLocked()
}

func (e *Engine) isAdminLocked() bool {
	if e.user == nil {
		return false
	}
	return e.resolver.IsAdmin(roleGrants(e.user.Roles))
}

// hydratePermissions is a read-repair: it copies the durable cache into an empty
// in-memory set and never writes storage.
func (e *Engine) hydratePermissions() {
	e.mu.RLock()
	need := e.token != "" && e.permissions.Len() == 0
	gen := e.generation
	e.mu.RUnlock()
	if !need {
		return
	}

	codes, ok, err := e.store.Permissions(context.Background())
	if err != nil {
		e.logger.Debug("permission cache unreadable", "error", err)
		return
	}
	if !ok || len(codes) == 0 {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.generation != gen || e.token == "" || e.permissions.Len() != 0 {
		return
	}
	e.permissions = permission.NewSet(codes...)
	e.metricInc(MetricPermissionCacheHydrated)
}

func roleGrants(roles []Role) []permission.RoleGrant {
	out := make([]permission.RoleGrant, 0, len(roles))
	for _, r := range roles {
		out = append(out, permission.RoleGrant{Code: r.Code, Permissions: r.PermissionCodes()})
	}
	return out
}

/*
====================================
SESSION TRANSITIONS
====================================
*/

// clearSession empties memory and all durable keys. When onlyIfGen is non-nil the
// session is cleared only if it is still that generation. It returns the token that was
// cleared and whether anything happened.
func (e *Engine) clearSession(ctx context.Context, onlyIfGen *uint64) (string, bool, error) {
	e.transition.Lock()
	defer e.transition.Unlock()

	e.mu.Lock()
	if onlyIfGen != nil && e.generation != *onlyIfGen {
		e.mu.Unlock()
		return "", false, nil
	}
	token := e.token
	e.token = ""
	e.user = nil
	e.permissions = permission.Set{}
	e.generation++
	e.mu.Unlock()

	return token, true, e.store.Clear(ctx)
}

// tokenExpired reports whether the stored token is a JWT past its exp claim.
func (e *Engine) tokenExpired(token string) bool {
	if !e.config.Session.CheckTokenExpiry || token == "" {
		return false
	}
	claims, err := jwt.Inspect(token)
	if err != nil {
		return false
	}
	return claims.Expired(time.Now())
}
