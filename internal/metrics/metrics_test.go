package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSpawnedIncrementsCountersAndGauge(t *testing.T) {
	r := New()
	r.Spawned()
	r.Spawned()
	r.Terminated(0)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	r.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, "oscmdmcp_processes_spawned_total 2") {
		t.Errorf("expected spawned_total 2 in output:\n%s", body)
	}
	if !strings.Contains(body, "oscmdmcp_processes_active 1") {
		t.Errorf("expected active 1 in output:\n%s", body)
	}
	if !strings.Contains(body, `oscmdmcp_process_exit_codes_total{exit_code="0"} 1`) {
		t.Errorf("expected one exit_code=0 sample in output:\n%s", body)
	}
}

func TestTerminatedWithTimeoutUsesTimeoutLabel(t *testing.T) {
	r := New()
	r.Spawned()
	r.Terminated(-1)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	if !strings.Contains(body, `oscmdmcp_process_exit_codes_total{exit_code="timeout"} 1`) {
		t.Errorf("expected exit_code=timeout sample in output:\n%s", body)
	}
}

func TestStoppedLabelsByForce(t *testing.T) {
	r := New()
	r.Stopped(false)
	r.Stopped(true)
	r.Stopped(true)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	if !strings.Contains(body, `oscmdmcp_process_stops_total{force="true"} 2`) {
		t.Errorf("expected force=true count 2 in output:\n%s", body)
	}
	if !strings.Contains(body, `oscmdmcp_process_stops_total{force="false"} 1`) {
		t.Errorf("expected force=false count 1 in output:\n%s", body)
	}
}
