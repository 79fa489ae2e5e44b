package expreplay

import (
	"testing"

	"github.com/samuelfneumann/goinvaders/utils/floatutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBuffer(t *testing.T, capacity int) *Prioritized {
	t.Helper()
	p, err := NewPrioritized(capacity, DefaultAlpha, DefaultBeta,
		DefaultBetaIncrement, 42)
	require.NoError(t, err)
	return p
}

func TestPrioritizedRingOverwrite(t *testing.T) {
	p := newTestBuffer(t, 3)

	// A, B, C, D by reward; D overwrites A's slot
	for i, reward := range []float64{1, 2, 3} {
		p.Add(transitionWith(i, reward, false))
		assert.Equal(t, i+1, p.Capacity())
	}
	p.Add(transitionWith(3, 4, false))

	assert.Equal(t, 3, p.Capacity())
	assert.Equal(t, 3, p.MaxCapacity())

	slot0, err := p.At(0)
	require.NoError(t, err)
	assert.Equal(t, 4.0, slot0.Reward)

	slot1, err := p.At(1)
	require.NoError(t, err)
	assert.Equal(t, 2.0, slot1.Reward)

	slot2, err := p.At(2)
	require.NoError(t, err)
	assert.Equal(t, 3.0, slot2.Reward)
}

func TestPrioritizedAddUsesMaxPriority(t *testing.T) {
	p := newTestBuffer(t, 4)

	p.Add(transitionWith(0, 1, false))
	p.Add(transitionWith(1, 1, false))

	require.NoError(t, p.UpdatePriorities([]int{0, 1}, []float64{5.0, 0.5}))

	p.Add(transitionWith(2, 1, false))

	priorities := p.Priorities()
	newest := priorities[2]
	assert.Equal(t, floatutils.Max(priorities...), newest)
	assert.InDelta(t, 5.0, newest, 1e-3)
}

func TestPrioritizedFirstAddGetsUnitPriority(t *testing.T) {
	p := newTestBuffer(t, 2)
	p.Add(transitionWith(0, 1, false))

	assert.Equal(t, []float64{1.0}, p.Priorities())
}

func TestPrioritizedSampleDistinctIndices(t *testing.T) {
	p := newTestBuffer(t, 16)
	for i := 0; i < 10; i++ {
		p.Add(transitionWith(i, float64(i), false))
	}

	batch, indices, weights, err := p.Sample(8)
	require.NoError(t, err)
	require.Len(t, batch, 8)
	require.Len(t, indices, 8)
	require.Len(t, weights, 8)

	seen := make(map[int]bool)
	for _, index := range indices {
		assert.False(t, seen[index], "index %v sampled twice", index)
		seen[index] = true
	}

	assert.Equal(t, 1.0, floatutils.Max(weights...))
	for _, w := range weights {
		assert.Greater(t, w, 0.0)
		assert.LessOrEqual(t, w, 1.0)
	}
}

func TestPrioritizedSampleEmpty(t *testing.T) {
	p := newTestBuffer(t, 4)

	_, _, _, err := p.Sample(1)
	require.Error(t, err)
	assert.True(t, IsEmptyBuffer(err))
	assert.False(t, IsInsufficientSamples(err))
}

func TestPrioritizedSampleInsufficient(t *testing.T) {
	p := newTestBuffer(t, 8)
	p.Add(transitionWith(0, 1, false))
	p.Add(transitionWith(1, 1, false))

	_, _, _, err := p.Sample(3)
	require.Error(t, err)
	assert.True(t, IsInsufficientSamples(err))
	assert.False(t, IsEmptyBuffer(err))
}

func TestPrioritizedUpdatePriorities(t *testing.T) {
	p := newTestBuffer(t, 4)
	for i := 0; i < 3; i++ {
		p.Add(transitionWith(i, 1, false))
	}

	require.NoError(t, p.UpdatePriorities([]int{0, 1, 2},
		[]float64{2.0, -4.0, 0.0}))

	priorities := p.Priorities()
	assert.InDelta(t, 2.0, priorities[0], 1e-3)
	assert.InDelta(t, 4.0, priorities[1], 1e-3)

	// Zero TD error still leaves a strictly positive priority
	assert.Greater(t, priorities[2], 0.0)

	// A larger TD error magnitude raises the slot's priority and so
	// its future relative sampling probability
	require.NoError(t, p.UpdatePriorities([]int{2}, []float64{8.0}))
	assert.Greater(t, p.Priorities()[2], priorities[0])
	assert.Greater(t, p.Priorities()[2], priorities[1])
}

func TestPrioritizedUpdatePrioritiesValidation(t *testing.T) {
	p := newTestBuffer(t, 4)
	p.Add(transitionWith(0, 1, false))

	err := p.UpdatePriorities([]int{0, 1}, []float64{1.0})
	assert.Error(t, err)

	err = p.UpdatePriorities([]int{5}, []float64{1.0})
	assert.Error(t, err)
}

func TestPrioritizedBetaAnneals(t *testing.T) {
	p, err := NewPrioritized(4, DefaultAlpha, 0.9995, 0.001, 42)
	require.NoError(t, err)

	p.Add(transitionWith(0, 1, false))
	p.Add(transitionWith(1, 1, false))

	_, _, _, err = p.Sample(1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, p.Beta())

	// Clamped at 1 on later samples
	_, _, _, err = p.Sample(1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, p.Beta())
}

func TestNewPrioritizedValidation(t *testing.T) {
	_, err := NewPrioritized(0, DefaultAlpha, DefaultBeta,
		DefaultBetaIncrement, 1)
	assert.Error(t, err)

	_, err = NewPrioritized(8, -0.5, DefaultBeta, DefaultBetaIncrement, 1)
	assert.Error(t, err)

	_, err = NewPrioritized(8, DefaultAlpha, 0.0, DefaultBetaIncrement, 1)
	assert.Error(t, err)

	_, err = NewPrioritized(8, DefaultAlpha, 1.5, DefaultBetaIncrement, 1)
	assert.Error(t, err)

	_, err = NewPrioritized(8, DefaultAlpha, DefaultBeta, -0.1, 1)
	assert.Error(t, err)
}
