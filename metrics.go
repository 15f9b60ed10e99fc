package goConsole

import (
	"sync/atomic"
	"time"
)

// MetricID identifies an engine counter or histogram.
type MetricID uint16

const (
	// MetricLoginSuccess counts logins that stored a bearer token.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure counts logins rejected by the backend or the transport.
	MetricLoginFailure
	// MetricLoginMalformed counts successful login replies without an extractable token.
	MetricLoginMalformed
	// MetricUserFetchCalls counts FetchCurrentUser callers, including those joining an in-flight call.
	MetricUserFetchCalls
	// MetricUserFetchSuccess counts current-user network resolutions that committed.
	MetricUserFetchSuccess
	// MetricUserFetchFailure counts current-user network resolutions that failed.
	MetricUserFetchFailure
	// MetricSecondaryPermissionFailure counts failed supplementary permission calls.
	MetricSecondaryPermissionFailure
	// MetricPermissionCacheHydrated counts read-repairs of the in-memory set from the durable cache.
	MetricPermissionCacheHydrated
	// MetricPermissionCacheWriteFailure counts failed writes of the durable permission cache.
	MetricPermissionCacheWriteFailure
	// MetricPermissionGranted and MetricPermissionDenied count HasPermission answers.
	MetricPermissionGranted
	MetricPermissionDenied
	// MetricLogout counts local logouts.
	MetricLogout
	// MetricLogoutNotifyFailure counts background logout notifications that failed.
	MetricLogoutNotifyFailure
	// MetricAuthExpired counts sessions cleared because the backend answered 401.
	MetricAuthExpired
	// Navigation outcomes.
	MetricNavigateAllow
	MetricNavigateLogin
	MetricNavigateHome
	MetricNavigateForbidden
	// MetricUserFetchLatency is the latency histogram of current-user resolutions.
	MetricUserFetchLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds lock-free engine counters. A disabled Metrics records nothing.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a copy of all counter values. Histograms holds the per-bucket
// (non-cumulative) counts of MetricUserFetchLatency when latency recording is on.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics returns counters configured by cfg. Histograms need Enabled too.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether counters are recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled reports whether latency histograms are recorded.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc adds one to id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records d in the histogram of id. Only MetricUserFetchLatency has one.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if id != MetricUserFetchLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value returns the current count of id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies every counter and histogram. A disabled set yields empty maps.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricUserFetchLatency].buckets[i])
		}
		s.Histograms[MetricUserFetchLatency] = buckets
	}

	return s
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
