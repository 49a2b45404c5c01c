package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestObserveHTTP(t *testing.T) {
	m := New()
	m.ObserveHTTP("/api/journal-entries/{id}", "GET", 200, 10*time.Millisecond)
	m.ObserveHTTP("/api/journal-entries/{id}", "GET", 200, 12*time.Millisecond)
	m.ObserveHTTP("", "GET", 404, time.Millisecond)

	out := scrape(t, m)
	assert.Contains(t, out, `soloura_http_requests_total{method="GET",route="/api/journal-entries/{id}",status="200"} 2`)
	assert.Contains(t, out, `soloura_http_requests_total{method="GET",route="unmatched",status="404"} 1`)
}

func TestObserveAI(t *testing.T) {
	m := New()
	m.ObserveAI("analyzeMood", "ok", time.Second)
	m.ObserveAI("analyzeMood", "invalid_input", 0)
	m.ObserveAI("wellbeingTips", "failed", time.Second)

	out := scrape(t, m)
	assert.Contains(t, out, `soloura_ai_flow_calls_total{flow="analyzeMood",outcome="ok"} 1`)
	assert.Contains(t, out, `soloura_ai_flow_calls_total{flow="analyzeMood",outcome="invalid_input"} 1`)
	assert.Contains(t, out, `soloura_ai_flow_calls_total{flow="wellbeingTips",outcome="failed"} 1`)
	assert.Contains(t, out, `soloura_ai_flow_duration_seconds_count{flow="analyzeMood"} 1`)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveHTTP("/x", "GET", 200, time.Millisecond)
		m.ObserveAI("flow", "ok", time.Millisecond)
	})
}
