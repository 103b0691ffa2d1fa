package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlukic/planka/internal/middleware"
	"github.com/mlukic/planka/internal/telemetry/metrics"
)

func TestPanicRecovery(t *testing.T) {
	manager, registry := metrics.NewTestManagerAndRegistry()

	panickyHandler := http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		panic("and now you see me panic")
	})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/plan", nil)

	assert.NotPanics(t, func() {
		middleware.PanicRecovery(manager)(panickyHandler).ServeHTTP(rr, req)
	})

	metricFamilies, err := registry.Gather()
	require.NoError(t, err)

	var panicMetric *dto.MetricFamily
	for _, mf := range metricFamilies {
		if mf.GetName() == "backend_test_server_handle_request_panic" {
			panicMetric = mf
		}
	}
	require.NotNil(t, panicMetric)
	require.Len(t, panicMetric.GetMetric(), 1)
	assert.Equal(t, float64(1), panicMetric.GetMetric()[0].GetCounter().GetValue())
}
