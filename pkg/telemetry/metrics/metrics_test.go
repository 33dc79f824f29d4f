package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector_RecordAdmission(t *testing.T) {
	c := NewCollector(Config{Enabled: true}, nil)

	c.RecordAdmission("weekly", true)
	c.RecordAdmission("weekly", false)
	c.RecordAdmission("weekly", false)

	if got := testutil.ToFloat64(c.admissionsTotal.WithLabelValues("weekly", "allowed")); got != 1 {
		t.Errorf("allowed count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.admissionsTotal.WithLabelValues("weekly", "rejected")); got != 2 {
		t.Errorf("rejected count = %v, want 2", got)
	}
}

func TestCollector_DisabledRecordsNothing(t *testing.T) {
	c := NewCollector(Config{Enabled: false}, nil)

	c.RecordRequest("/api/weekly", "200", time.Second)
	c.RecordAdmission("default", true)
	c.RecordReflection("executed", "", time.Second)

	if got := testutil.ToFloat64(c.requestsTotal.WithLabelValues("/api/weekly", "200")); got != 0 {
		t.Errorf("requests recorded while disabled: %v", got)
	}
}

func TestCollector_ReflectionDurationOnlyForExecuted(t *testing.T) {
	c := NewCollector(Config{Enabled: true}, nil)

	c.RecordReflection("cached", "", 0)
	c.RecordReflection("denied", "cooldown", 0)
	c.RecordReflection("executed", "", 2*time.Second)

	if got := testutil.CollectAndCount(c.reflectionDuration); got != 1 {
		t.Errorf("duration metric family count = %d, want 1", got)
	}
	if got := testutil.ToFloat64(c.reflectionsTotal.WithLabelValues("denied", "cooldown")); got != 1 {
		t.Errorf("denied/cooldown count = %v, want 1", got)
	}
}

func TestCollector_HandlerServesMetrics(t *testing.T) {
	c := NewCollector(Config{Enabled: true}, nil)
	c.RecordRequest("/api/entries", "200", 10*time.Millisecond)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	c.Handler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "daybook_requests_total") {
		t.Errorf("exposition missing daybook_requests_total:\n%s", rec.Body.String())
	}
}
