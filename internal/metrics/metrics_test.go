package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRun(t *testing.T) {
	m := New()
	m.ObserveRun("call", OutcomeSuccess, 10_000, 20*time.Millisecond)
	m.ObserveRun("call", OutcomeSuccess, 5_000, 10*time.Millisecond)
	m.ObserveRun("put", OutcomeInvalid, 0, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SimulationsTotal.WithLabelValues("call", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SimulationsTotal.WithLabelValues("put", OutcomeInvalid)))
	assert.Equal(t, 15_000.0, testutil.ToFloat64(m.PathsTotal))
}

func TestHandler_ExposesRegistry(t *testing.T) {
	m := New()
	m.ObserveRequest("GET", "/health", 200, time.Millisecond)
	m.RecordsPruned.Add(3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `optionprisma_http_requests_total{method="GET",route="/health",status="200"} 1`)
	assert.Contains(t, string(body), "optionprisma_records_pruned_total 3")
}
