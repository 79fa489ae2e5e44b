// Package timestep implements timesteps of the agent-environment interaction
package timestep

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gorgonia.org/tensor"
)

// Info records the hardware counters and per-step deltas observed at a
// single environmental step. It is the input to reward computation and
// is returned to the caller unchanged.
type Info struct {
	// Score is the score read from the hardware after this step
	Score uint32

	// TotalScore is the episode's cumulative score. Space Invaders
	// never resets the score mid-episode, so this currently equals
	// Score.
	TotalScore uint32

	// ScoreDelta is the change in score over this step
	ScoreDelta int

	// Lives is the number of lives remaining after this step
	Lives int

	// LivesLost is the number of lives lost during this step
	LivesLost int

	// Level is the current wave number
	Level int

	// FrameCount is the hardware's total frame counter
	FrameCount uint32

	// Steps is the number of environmental steps taken this episode
	Steps int

	// Terminated reports whether the hardware reached game over on
	// this step
	Terminated bool
}

// TimeStep packages together a single timestep in an environment
type TimeStep struct {
	// Observation is the composed observation tensor. It is freshly
	// allocated on every step and never aliased across steps.
	Observation *tensor.Dense

	// Reward is the reward computed for this step by the
	// environment's reward policy
	Reward float64

	// Terminated reports whether the episode ended naturally
	Terminated bool

	// Truncated reports whether the episode was cut off at the
	// configured step limit
	Truncated bool

	// Info holds the hardware counters observed at this step
	Info Info

	// Number is the index of this step within the episode. The step
	// returned by Reset has Number 0.
	Number int
}

// First returns whether a TimeStep is the first in an episode
func (t TimeStep) First() bool {
	return t.Number == 0
}

// Done returns whether a TimeStep ends its episode, either by
// termination or truncation
func (t TimeStep) Done() bool {
	return t.Terminated || t.Truncated
}

func (t TimeStep) String() string {
	str := "TimeStep | Number: %v  |  Reward: %.2f  |  Score: %v  |  " +
		"Lives: %v  |  Done: %v"

	return fmt.Sprintf(str, t.Number, t.Reward, t.Info.Score, t.Info.Lives,
		t.Done())
}

// Transition is a single (state, action, reward, next state, done)
// tuple of experience. Transitions are value types; once created they
// are never mutated.
type Transition struct {
	State     *tensor.Dense
	Action    mat.Vector
	Reward    float64
	NextState *tensor.Dense
	Done      bool
}

// NewTransition packages a transition from the two timesteps it spans
// and the action taken between them
func NewTransition(step TimeStep, action mat.Vector,
	nextStep TimeStep) Transition {
	return Transition{
		State:     step.Observation,
		Action:    action,
		Reward:    nextStep.Reward,
		NextState: nextStep.Observation,
		Done:      nextStep.Done(),
	}
}
