package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSeed(t *testing.T) {
	a, err := NewSeed()
	require.NoError(t, err)
	b, err := NewSeed()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestFixedSourceIsDeterministic(t *testing.T) {
	r1, s1 := FixedSource(42).New()
	r2, s2 := FixedSource(42).New()
	assert.Equal(t, s1, s2)
	assert.Equal(t, r1.Int63(), r2.Int63())
}
