package internaldefs

import (
	goConsole "github.com/MrEthical07/goConsole"
)

// CounterDef names one engine counter.
type CounterDef struct {
	ID   goConsole.MetricID
	Name string
	Help string
}

// HistogramDef names one engine histogram.
type HistogramDef struct {
	ID   goConsole.MetricID
	Name string
	Help string
}

// AuditDroppedName is the counter for audit events dropped under backpressure.
const AuditDroppedName = "goconsole_audit_dropped_total"

// CounterDefs names every engine counter for the exporters.
var CounterDefs = []CounterDef{
	{ID: goConsole.MetricLoginSuccess, Name: "goconsole_login_success_total", Help: "Logins that stored a bearer token."},
	{ID: goConsole.MetricLoginFailure, Name: "goconsole_login_failure_total", Help: "Logins rejected by the backend or the transport."},
	{ID: goConsole.MetricLoginMalformed, Name: "goconsole_login_malformed_total", Help: "Login replies without an extractable token."},
	{ID: goConsole.MetricUserFetchCalls, Name: "goconsole_user_fetch_calls_total", Help: "Current-user resolution requests, shared or not."},
	{ID: goConsole.MetricUserFetchSuccess, Name: "goconsole_user_fetch_success_total", Help: "Current-user resolutions that committed."},
	{ID: goConsole.MetricUserFetchFailure, Name: "goconsole_user_fetch_failure_total", Help: "Current-user resolutions that failed."},
	{ID: goConsole.MetricSecondaryPermissionFailure, Name: "goconsole_secondary_permission_failure_total", Help: "Failed supplementary permission calls."},
	{ID: goConsole.MetricPermissionCacheHydrated, Name: "goconsole_permission_cache_hydrated_total", Help: "Permission sets restored from the durable cache."},
	{ID: goConsole.MetricPermissionCacheWriteFailure, Name: "goconsole_permission_cache_write_failure_total", Help: "Failed writes of the durable permission cache."},
	{ID: goConsole.MetricPermissionGranted, Name: "goconsole_permission_granted_total", Help: "Permission checks that passed."},
	{ID: goConsole.MetricPermissionDenied, Name: "goconsole_permission_denied_total", Help: "Permission checks that failed."},
	{ID: goConsole.MetricLogout, Name: "goconsole_logout_total", Help: "Local logouts."},
	{ID: goConsole.MetricLogoutNotifyFailure, Name: "goconsole_logout_notify_failure_total", Help: "Backend logout notifications that failed."},
	{ID: goConsole.MetricAuthExpired, Name: "goconsole_auth_expired_total", Help: "Sessions cleared after a 401."},
	{ID: goConsole.MetricNavigateAllow, Name: "goconsole_navigate_allow_total", Help: "Navigations allowed."},
	{ID: goConsole.MetricNavigateLogin, Name: "goconsole_navigate_login_total", Help: "Navigations sent to login."},
	{ID: goConsole.MetricNavigateHome, Name: "goconsole_navigate_home_total", Help: "Navigations sent home from the login route."},
	{ID: goConsole.MetricNavigateForbidden, Name: "goconsole_navigate_forbidden_total", Help: "Navigations sent to the forbidden route."},
}

// HistogramDefs names every engine histogram for the exporters.
var HistogramDefs = []HistogramDef{
	{ID: goConsole.MetricUserFetchLatency, Name: "goconsole_user_fetch_latency_seconds", Help: "Current-user resolution latency."},
}

// HistogramBounds are the upper bounds, in seconds, of the first seven engine buckets.
// The eighth bucket is +Inf.
var HistogramBounds = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}

// HistogramBoundSuffix names each bucket, +Inf included, for exporters that cannot
// carry labels.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets copies raw into a fixed eight-bucket array, zero-filling.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
