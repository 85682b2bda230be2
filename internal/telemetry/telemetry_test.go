package telemetry

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMetricsExposition(t *testing.T) {
	m := New()
	m.SetItems(3)
	m.Mutation("add", 4)
	m.Mutation("add", 5)
	m.Mutation("sell", 5)
	m.Suggestion("estimation", "rate_limited")
	m.Request(http.MethodGet, http.StatusOK, 20*time.Millisecond)

	out := scrape(t, m)
	assert.Contains(t, out, "datavault_items 5")
	assert.Contains(t, out, `datavault_mutations_total{op="add"} 2`)
	assert.Contains(t, out, `datavault_mutations_total{op="sell"} 1`)
	assert.Contains(t, out, `datavault_suggestions_total{kind="estimation",outcome="rate_limited"} 1`)
	assert.Contains(t, out, `datavault_http_request_duration_seconds_count{code="200",method="GET"} 1`)
	assert.Contains(t, out, "go_goroutines")
}

func TestRegistriesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.Mutation("remove", 0)
	assert.NotContains(t, scrape(t, b), `op="remove"`)
}
