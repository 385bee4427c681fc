package metric

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func scrape(t *testing.T, h http.Handler) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	return string(body)
}

func TestCollector(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(NewCollector(func() Stats {
		return Stats{OutstandingNonces: 3, LimitedClients: 2, Routes: 5}
	}))

	body := scrape(t, r.Handler())

	for _, want := range []string{
		"pagegate_auth_nonces_outstanding 3",
		"pagegate_rate_limited_clients 2",
		"pagegate_routes 5",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q", want)
		}
	}
}
