package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveUploadCountsOutcomes(t *testing.T) {
	reg := NewRegistry("agentdesk")
	reg.ObserveUpload("csv", "distributed", 7)
	reg.ObserveUpload("csv", "rejected", 0)
	reg.ObserveUpload("xlsx", "distributed", 3)

	if got := testutil.ToFloat64(reg.uploads.WithLabelValues("csv", "distributed")); got != 1 {
		t.Fatalf("expected 1 distributed csv upload, got %v", got)
	}
	if got := testutil.ToFloat64(reg.recordsAssigned.WithLabelValues("csv")); got != 7 {
		t.Fatalf("expected 7 csv records, got %v", got)
	}
	if got := testutil.ToFloat64(reg.uploads.WithLabelValues("csv", "rejected")); got != 1 {
		t.Fatalf("expected 1 rejected upload, got %v", got)
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	reg := NewRegistry("agentdesk")
	reg.ObserveRequest(http.MethodGet, "/healthz", http.StatusOK, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	reg.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, name := range []string{"agentdesk_http_requests_total", "agentdesk_list_uploads_total", "go_goroutines"} {
		if !strings.Contains(body, name) {
			t.Fatalf("expected %s in metrics output", name)
		}
	}
}

func TestNilRegistryIsNoop(t *testing.T) {
	var reg *Registry
	reg.ObserveUpload("csv", "distributed", 1)
	reg.ObserveRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
}
