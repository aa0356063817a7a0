package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestObserveSubmissionExported(t *testing.T) {
	ObserveSubmission("failed", "register")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `refonte_submissions_total{outcome="failed",stage="register"}`) {
		t.Fatalf("expected submission counter in output")
	}
}
