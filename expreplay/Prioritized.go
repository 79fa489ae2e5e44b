// Package expreplay implements experience replay buffers that store
// transitions and serve weighted samples to a learner.
package expreplay

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/goinvaders/timestep"
	"github.com/samuelfneumann/goinvaders/utils/floatutils"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// Default prioritization hyperparameters. Alpha sets how much
// prioritization is applied (0 is uniform, 1 is fully proportional);
// beta sets the initial importance-sampling correction and is annealed
// toward 1 by BetaIncrement after every sample.
const (
	DefaultAlpha         float64 = 0.6
	DefaultBeta          float64 = 0.4
	DefaultBetaIncrement float64 = 0.001
)

// priorityFloor is added to every updated priority so that no stored
// transition's sampling probability can reach exactly zero
const priorityFloor float64 = 1e-6

// Prioritized implements a fixed-capacity prioritized experience
// replay buffer. The backing store is a logical ring indexed by an
// insertion counter modulo the capacity, so once full, every Add
// overwrites the oldest slot.
//
// Sampling draws distinct slots with probability proportional to
// priority^alpha and returns importance-sampling weights that correct
// the learner's loss for the resulting bias.
type Prioritized struct {
	buffer     []timestep.Transition
	priorities []float64

	insertions int
	size       int

	alpha         float64
	beta          float64
	betaIncrement float64

	src rand.Source
}

// NewPrioritized returns a new Prioritized buffer holding at most
// capacity transitions, sampling with priority exponent alpha, and
// annealing the bias-correction exponent from beta toward 1 by
// betaIncrement after each sample.
func NewPrioritized(capacity int, alpha, beta, betaIncrement float64,
	seed uint64) (*Prioritized, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("newPrioritized: capacity must be >= 1, "+
			"got %v", capacity)
	}
	if alpha < 0 {
		return nil, fmt.Errorf("newPrioritized: alpha must be >= 0, got %v",
			alpha)
	}
	if beta <= 0 || beta > 1 {
		return nil, fmt.Errorf("newPrioritized: beta must be in (0, 1], "+
			"got %v", beta)
	}
	if betaIncrement < 0 {
		return nil, fmt.Errorf("newPrioritized: beta increment must be "+
			">= 0, got %v", betaIncrement)
	}

	return &Prioritized{
		buffer:        make([]timestep.Transition, capacity),
		priorities:    make([]float64, capacity),
		alpha:         alpha,
		beta:          beta,
		betaIncrement: betaIncrement,
		src:           rand.NewSource(seed),
	}, nil
}

// Add stores a transition, overwriting the oldest slot once the buffer
// is full. The new entry gets the current maximum priority among
// stored entries (1.0 when the buffer is empty) so that it is sampled
// at least once before its priority is ever empirically lowered.
func (p *Prioritized) Add(t timestep.Transition) {
	priority := 1.0
	if p.size > 0 {
		priority = floatutils.Max(p.priorities[:p.size]...)
	}

	slot := p.insertions % p.MaxCapacity()
	p.buffer[slot] = t
	p.priorities[slot] = priority

	p.insertions++
	if p.size < p.MaxCapacity() {
		p.size++
	}
}

// Sample draws batchSize distinct slots with probability proportional
// to priority^alpha and returns the sampled transitions, their slot
// indices, and their importance-sampling weights. The weights are
// normalized by the batch maximum, so every returned weight lies in
// (0, 1] and the largest is exactly 1.
//
// After each call beta is annealed toward 1 by the configured
// increment. The slot indices identify entries for UpdatePriorities;
// they are only meaningful until those slots are overwritten.
func (p *Prioritized) Sample(batchSize int) ([]timestep.Transition, []int,
	[]float64, error) {
	if p.size == 0 {
		return nil, nil, nil, &ExpReplayError{
			Op:  "sample",
			Err: errEmptyBuffer,
		}
	}
	if batchSize < 1 {
		return nil, nil, nil, fmt.Errorf("sample: batch size must be >= 1, "+
			"got %v", batchSize)
	}
	if batchSize > p.size {
		return nil, nil, nil, &ExpReplayError{
			Op: "sample",
			Err: fmt.Errorf("%w: have %v, want %v", errInsufficientSamples,
				p.size, batchSize),
		}
	}

	probs := make([]float64, p.size)
	for i := 0; i < p.size; i++ {
		probs[i] = math.Pow(p.priorities[i], p.alpha)
	}
	total := floats.Sum(probs)

	// Draw without replacement so the returned indices are distinct
	sampler := sampleuv.NewWeighted(probs, p.src)

	batch := make([]timestep.Transition, batchSize)
	indices := make([]int, batchSize)
	weights := make([]float64, batchSize)
	for i := 0; i < batchSize; i++ {
		index, ok := sampler.Take()
		if !ok {
			return nil, nil, nil, fmt.Errorf("sample: sampler exhausted " +
				"before batch was filled")
		}

		batch[i] = p.buffer[index]
		indices[i] = index
		weights[i] = math.Pow(float64(p.size)*probs[index]/total, -p.beta)
	}
	// Divide rather than multiply by the reciprocal so the batch
	// maximum is exactly 1
	maxWeight := floatutils.Max(weights...)
	for i := range weights {
		weights[i] /= maxWeight
	}

	p.beta = math.Min(1.0, p.beta+p.betaIncrement)

	return batch, indices, weights, nil
}

// UpdatePriorities sets the priority of each listed slot to the
// magnitude of its TD error plus a small fixed floor, so no entry's
// sampling probability can starve to zero
func (p *Prioritized) UpdatePriorities(indices []int,
	tdErrors []float64) error {
	if len(indices) != len(tdErrors) {
		return fmt.Errorf("updatePriorities: got %v indices but %v td "+
			"errors", len(indices), len(tdErrors))
	}

	for i, index := range indices {
		if index < 0 || index >= p.size {
			return fmt.Errorf("updatePriorities: index %v ∉ [0, %v)",
				index, p.size)
		}
		p.priorities[index] = math.Abs(tdErrors[i]) + priorityFloor
	}
	return nil
}

// Capacity returns the current number of transitions in the buffer
func (p *Prioritized) Capacity() int {
	return p.size
}

// MaxCapacity returns the maximum number of transitions the buffer
// can hold
func (p *Prioritized) MaxCapacity() int {
	return len(p.buffer)
}

// Alpha returns the priority exponent
func (p *Prioritized) Alpha() float64 {
	return p.alpha
}

// Beta returns the current bias-correction exponent
func (p *Prioritized) Beta() float64 {
	return p.beta
}

// Priorities returns a copy of the priorities of all stored
// transitions in slot order
func (p *Prioritized) Priorities() []float64 {
	priorities := make([]float64, p.size)
	copy(priorities, p.priorities[:p.size])
	return priorities
}

// At returns the transition stored at slot index
func (p *Prioritized) At(index int) (timestep.Transition, error) {
	if index < 0 || index >= p.size {
		return timestep.Transition{}, fmt.Errorf("at: index %v ∉ [0, %v)",
			index, p.size)
	}
	return p.buffer[index], nil
}

// String returns the string representation of the buffer
func (p *Prioritized) String() string {
	return fmt.Sprintf("Prioritized | Size: %v/%v | Alpha: %v | Beta: %v",
		p.size, p.MaxCapacity(), p.alpha, p.beta)
}
