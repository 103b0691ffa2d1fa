package metrics

import (
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_RegisteredAndCounted(t *testing.T) {
	m, reg := NewTestManagerAndRegistry()
	require.NotNil(t, m)

	m.CounterCompletedWorkouts.Inc()
	m.CounterCompletedWorkouts.Inc()
	m.CounterPlanUploads.Inc()
	m.GaugeLifeSignal.Set(1)

	families, err := reg.Gather()
	require.NoError(t, err)

	byName := make(map[string]*dto.MetricFamily)
	for _, mf := range families {
		byName[mf.GetName()] = mf
	}

	completed, ok := byName["backend_test_server_completed_workouts"]
	require.True(t, ok)
	require.Len(t, completed.GetMetric(), 1)
	assert.Equal(t, float64(2), completed.GetMetric()[0].GetCounter().GetValue())

	uploads, ok := byName["backend_test_server_plan_uploads"]
	require.True(t, ok)
	assert.Equal(t, float64(1), uploads.GetMetric()[0].GetCounter().GetValue())

	lifeSignal, ok := byName["backend_test_server_life_signal"]
	require.True(t, ok)
	assert.Equal(t, float64(1), lifeSignal.GetMetric()[0].GetGauge().GetValue())
}
