package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorderCountsGenerations(t *testing.T) {
	t.Parallel()

	rec := NewRecorder()
	rec.RecordGeneration(OutcomeSuccess)
	rec.RecordGeneration(OutcomeSuccess)
	rec.RecordGeneration(OutcomeRateLimited)

	if got := testutil.ToFloat64(rec.generations.WithLabelValues(OutcomeSuccess)); got != 2 {
		t.Fatalf("expected 2 successful generations, got %v", got)
	}
	if got := testutil.ToFloat64(rec.generations.WithLabelValues(OutcomeRateLimited)); got != 1 {
		t.Fatalf("expected 1 rate limited generation, got %v", got)
	}
}

func TestRecorderCountsLimiterDecisions(t *testing.T) {
	t.Parallel()

	rec := NewRecorder()
	rec.RecordLimiterDecision(DecisionAllowed)
	rec.RecordLimiterDecision(DecisionDenied)
	rec.RecordLimiterDecision(DecisionError)
	rec.RecordLimiterDecision(DecisionError)

	if got := testutil.ToFloat64(rec.limiterDecisions.WithLabelValues(DecisionError)); got != 2 {
		t.Fatalf("expected 2 limiter errors, got %v", got)
	}
}

func TestRecorderObservesCompletionsAndRequests(t *testing.T) {
	t.Parallel()

	rec := NewRecorder()
	rec.RecordCompletion(3*time.Second, nil)
	rec.RecordCompletion(time.Second, errors.New("boom"))
	rec.RecordHTTPRequest(http.MethodPost, "/api/generate-team", http.StatusOK, 3*time.Second)

	if got := testutil.CollectAndCount(rec.completionDuration); got != 2 {
		t.Fatalf("expected ok and error series, got %d", got)
	}
	if got := testutil.ToFloat64(rec.httpRequests.WithLabelValues("POST", "/api/generate-team", "200")); got != 1 {
		t.Fatalf("expected 1 request, got %v", got)
	}
}

func TestRecorderHandlerExposesMetrics(t *testing.T) {
	t.Parallel()

	rec := NewRecorder()
	rec.RecordGeneration(OutcomeSuccess)

	rr := httptest.NewRecorder()
	rec.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, _ := io.ReadAll(rr.Body)
	if !strings.Contains(string(body), `team_builder_team_generations_total{outcome="success"} 1`) {
		t.Fatalf("expected generation counter in output, got:\n%s", body)
	}
}

func TestNilRecorderIsSafe(t *testing.T) {
	t.Parallel()

	var rec *Recorder
	rec.RecordGeneration(OutcomeFailed)
	rec.RecordLimiterDecision(DecisionAllowed)
	rec.RecordCompletion(time.Second, nil)
	rec.RecordHTTPRequest("GET", "/", 200, time.Millisecond)

	rr := httptest.NewRecorder()
	rec.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 from nil recorder handler, got %d", rr.Code)
	}
}
