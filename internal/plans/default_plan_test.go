package plans

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultPlan(t *testing.T) {
	plan, err := LoadDefaultPlan("../../assets/default_plan.json")
	require.NoError(t, err)

	assert.Equal(t, "beginner full body", plan.Name)
	assert.Nil(t, plan.AccountID)
	assert.True(t, plan.Active)
	require.Contains(t, plan.Schedule, "monday")
	assert.NotEmpty(t, plan.Schedule["monday"].Exercises)
}

func TestLoadDefaultPlan_missingFile(t *testing.T) {
	_, err := LoadDefaultPlan("no-such-file.json")
	require.Error(t, err)
}

func TestLoadDefaultPlan_invalidPlan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name": "broken", "schedule": {}}`), 0o600))

	_, err := LoadDefaultPlan(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plan schedule is empty")
}
