package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			match := true
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					match = false
				}
			}
			if match {
				return m.GetCounter().GetValue()
			}
		}
	}
	t.Fatalf("metric %s %v not found", name, labels)
	return 0
}

func TestCollector_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordReconciliation(ResultOK)
	c.RecordReconciliation(ResultOK)
	c.RecordReconciliation(ResultConflict)
	c.RecordNotificationsWritten(OpCreate, 3)
	c.RecordNotificationsWritten(OpUpdate, 0)
	c.RecordConflictRetry()
	c.RecordDiagnostics("INVALID_DOSE", 2)
	c.RecordPurged(5)

	if v := counterValue(t, reg, "immunization_reconciliations_total", map[string]string{"result": ResultOK}); v != 2 {
		t.Errorf("reconciliations ok = %v, want 2", v)
	}
	if v := counterValue(t, reg, "immunization_notifications_written_total", map[string]string{"op": OpCreate}); v != 3 {
		t.Errorf("written create = %v, want 3", v)
	}
	if v := counterValue(t, reg, "immunization_reconcile_conflict_retries_total", nil); v != 1 {
		t.Errorf("conflict retries = %v, want 1", v)
	}
	if v := counterValue(t, reg, "immunization_diagnostics_total", map[string]string{"kind": "INVALID_DOSE"}); v != 2 {
		t.Errorf("diagnostics = %v, want 2", v)
	}
	if v := counterValue(t, reg, "immunization_notifications_purged_total", nil); v != 5 {
		t.Errorf("purged = %v, want 5", v)
	}
}

func TestCollector_SweepHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordSweep(150*time.Millisecond, 4)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == "immunization_sweep_duration_seconds" {
			if got := mf.GetMetric()[0].GetHistogram().GetSampleCount(); got != 1 {
				t.Fatalf("sample count = %d, want 1", got)
			}
			return
		}
	}
	t.Fatal("sweep histogram not found")
}

func TestHandler_ServesPrometheusText(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg).RecordConflictRetry()

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "immunization_reconcile_conflict_retries_total 1") {
		t.Fatalf("expected counter in body, got:\n%s", body)
	}
}
