package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRandomString(t *testing.T) {
	s1, err := GenerateRandomString(35)
	require.NoError(t, err)
	assert.NotEmpty(t, s1)

	s2, err := GenerateRandomString(35)
	require.NoError(t, err)
	assert.NotEmpty(t, s2)

	assert.NotEqual(t, s1, s2)
}

func TestBytesToString(t *testing.T) {
	assert.Equal(t, "bench press", BytesToString([]byte("bench press")))
	assert.Equal(t, "", BytesToString(nil))
}

func TestPathExists(t *testing.T) {
	exists, err := PathExists(t.TempDir(), true)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = PathExists("/surely/not/here/planka", true)
	require.NoError(t, err)
	assert.False(t, exists)
}
