package prometheus

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	goConsole "github.com/MrEthical07/goConsole"
)

type fakeSource struct {
	snapshot goConsole.MetricsSnapshot
	dropped  uint64
}

func (f fakeSource) MetricsSnapshot() goConsole.MetricsSnapshot { return f.snapshot }
func (f fakeSource) AuditDropped() uint64                       { return f.dropped }

func scrape(t *testing.T, src MetricsSource) string {
	t.Helper()
	exp, err := NewExporterFromSource(src)
	if err != nil {
		t.Fatalf("new exporter: %v", err)
	}
	srv := httptest.NewServer(exp.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("scrape status %d: %s", resp.StatusCode, body)
	}
	return string(body)
}

func TestCountersAndHistogram(t *testing.T) {
	out := scrape(t, fakeSource{
		snapshot: goConsole.MetricsSnapshot{
			Counters: map[goConsole.MetricID]uint64{
				goConsole.MetricLoginSuccess:     7,
				goConsole.MetricPermissionDenied: 3,
			},
			Histograms: map[goConsole.MetricID][]uint64{
				goConsole.MetricUserFetchLatency: {1, 2, 3, 4, 5, 6, 7, 8},
			},
		},
		dropped: 2,
	})

	for _, want := range []string{
		"goconsole_login_success_total 7",
		"goconsole_permission_denied_total 3",
		`goconsole_user_fetch_latency_seconds_bucket{le="0.005"} 1`,
		`goconsole_user_fetch_latency_seconds_bucket{le="+Inf"} 36`,
		"goconsole_user_fetch_latency_seconds_count 36",
		"goconsole_audit_dropped_total 2",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got:\n%s", want, out)
		}
	}
}

func TestHistogramOmittedWhenLatencyDisabled(t *testing.T) {
	out := scrape(t, fakeSource{snapshot: goConsole.MetricsSnapshot{
		Counters:   map[goConsole.MetricID]uint64{},
		Histograms: map[goConsole.MetricID][]uint64{},
	}})
	if strings.Contains(out, "goconsole_user_fetch_latency_seconds") {
		t.Fatalf("histogram should be absent, got:\n%s", out)
	}
	if !strings.Contains(out, "goconsole_logout_total 0") {
		t.Fatalf("expected zero counters, got:\n%s", out)
	}
}
