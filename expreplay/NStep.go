package expreplay

import (
	"fmt"
	"math"

	"github.com/gammazero/deque"
	"github.com/samuelfneumann/goinvaders/timestep"
)

// NStep assembles multi-step return transitions from a sliding window
// of single-step transitions. Once n transitions are buffered, Get
// collapses the window into one transition whose reward is the
// discounted n-step return, truncated at the first episode-ending
// transition inside the window.
//
// An NStep must be cleared at every episode boundary so windows never
// span two episodes.
type NStep struct {
	window *deque.Deque[timestep.Transition]
	n      int
	gamma  float64
}

// NewNStep returns a new NStep accumulator with window length n and
// discount gamma
func NewNStep(n int, gamma float64) (*NStep, error) {
	if n < 1 {
		return nil, fmt.Errorf("newNStep: n must be >= 1, got %v", n)
	}
	if gamma < 0 || gamma > 1 {
		return nil, fmt.Errorf("newNStep: gamma must be in [0, 1], got %v",
			gamma)
	}

	return &NStep{
		window: deque.New[timestep.Transition](),
		n:      n,
		gamma:  gamma,
	}, nil
}

// Add pushes a transition into the window, evicting the oldest entry
// once the window is full
func (ns *NStep) Add(t timestep.Transition) {
	if ns.window.Len() == ns.n {
		ns.window.PopFront()
	}
	ns.window.PushBack(t)
}

// Get returns the n-step transition assembled from the current window,
// or false while fewer than n transitions are buffered.
//
// The returned transition starts at the window's first state and
// action. Its reward is the discounted sum of rewards up to and
// including the first done transition in the window (or the whole
// window if none); the bootstrap next state and done flag come from
// that same truncation point.
func (ns *NStep) Get() (timestep.Transition, bool) {
	if ns.window.Len() < ns.n {
		return timestep.Transition{}, false
	}

	first := ns.window.Front()
	cutoff := ns.n - 1
	nStepReturn := 0.0
	for i := 0; i < ns.n; i++ {
		t := ns.window.At(i)
		nStepReturn += math.Pow(ns.gamma, float64(i)) * t.Reward
		if t.Done {
			cutoff = i
			break
		}
	}
	last := ns.window.At(cutoff)

	return timestep.Transition{
		State:     first.State,
		Action:    first.Action,
		Reward:    nStepReturn,
		NextState: last.NextState,
		Done:      last.Done,
	}, true
}

// Clear discards the window
func (ns *NStep) Clear() {
	ns.window.Clear()
}

// Len returns the number of transitions currently buffered
func (ns *NStep) Len() int {
	return ns.window.Len()
}

// N returns the window length
func (ns *NStep) N() int {
	return ns.n
}
