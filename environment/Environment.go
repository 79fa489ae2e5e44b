// Package environment implements a reinforcement learning environment
// around the Space Invaders arcade hardware.
//
// An Environment owns exactly one emulator handle, acquired on
// construction and released by Close. Every interaction is a blocking,
// synchronous call with deterministic hardware timing; Reset and Step
// must never be invoked reentrantly on one instance. Multiple
// independent environments may run in separate processes, but no
// cross-instance coordination is provided here.
package environment

import (
	"fmt"

	"github.com/samuelfneumann/goinvaders/emulator"
	ts "github.com/samuelfneumann/goinvaders/timestep"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// ResetOptions adjusts a single Reset call
type ResetOptions struct {
	// Seed, when non-nil, reseeds the environment's random generator
	// before the episode starts
	Seed *uint64

	// StateFile, when non-empty, restores the emulator from a save
	// state instead of performing a cold reset and bring-up. Useful
	// for curriculum learning: save interesting states, then start
	// episodes from them.
	StateFile string
}

// Environment implements the episode/step state machine over the
// arcade hardware: it encodes actions into hardware input, advances
// the hardware deterministically, and assembles observations, rewards,
// and termination signals.
type Environment struct {
	emu    emulator.Emulator
	config Config

	encoder  *actionEncoder
	composer *obsComposer
	reward   RewardPolicy

	rng *rand.Rand

	// Episode state, reset on every Reset and mutated only by Step
	steps      int
	prevScore  uint32
	prevLives  int
	lastAction mat.Vector

	// active is true between a Reset and the step that ends the
	// episode; done is true once that step has been taken
	active bool
	done   bool
	closed bool
}

// New returns a new Environment around emu, configured by config and
// seeding the instance's random generator (used only for sticky
// actions) with seed.
//
// The Environment takes ownership of emu: a successful New means Close
// will release it, and a failed New releases it before returning.
func New(emu emulator.Emulator, config Config,
	seed uint64) (*Environment, error) {
	if emu == nil {
		return nil, fmt.Errorf("new: emulator cannot be nil")
	}

	if err := config.Validate(); err != nil {
		emu.Close()
		return nil, fmt.Errorf("new: %v", err)
	}

	return &Environment{
		emu:      emu,
		config:   config,
		encoder:  newActionEncoder(config.ActionType),
		composer: newObsComposer(emu, config.ObsType, config.FrameStack),
		reward:   newRewardPolicy(config),
		rng:      rand.New(rand.NewSource(seed)),
	}, nil
}

// Reset starts a new episode and returns its first TimeStep. Passing
// nil options performs a cold reset.
//
// A cold reset brings the machine from attract mode to a playable
// state with a fixed deterministic input sequence: coin, start, and
// clear, each held for exactly one hardware frame. When
// options.StateFile is set, the emulator is instead restored from the
// save state, which is assumed to already be playable.
func (e *Environment) Reset(options *ResetOptions) (ts.TimeStep, error) {
	if e.closed {
		return ts.TimeStep{}, &EnvironmentError{Op: "reset", Err: errClosed}
	}

	if options != nil && options.Seed != nil {
		e.rng = rand.New(rand.NewSource(*options.Seed))
	}

	if options != nil && options.StateFile != "" {
		if err := e.emu.LoadState(options.StateFile); err != nil {
			return ts.TimeStep{}, &EnvironmentError{
				Op:  "reset",
				Err: fmt.Errorf("%w: %v", errEmulator, err),
			}
		}
	} else {
		e.emu.Reset()
		e.bringUp()
	}

	e.steps = 0
	e.prevScore = 0
	e.prevLives = e.emu.Lives()
	e.lastAction = e.encoder.noop()
	e.composer.reset()
	e.active = true
	e.done = false

	obs := e.composer.observe()
	info := ts.Info{
		Score:      0,
		Lives:      e.prevLives,
		Level:      1,
		FrameCount: e.emu.FrameCount(),
	}

	return ts.TimeStep{Observation: obs, Info: info, Number: 0}, nil
}

// bringUp runs the deterministic coin/start/clear input sequence that
// makes a cold-reset machine playable
func (e *Environment) bringUp() {
	e.emu.SetInput(emulator.BtnCoin)
	e.emu.StepFrame()
	e.emu.SetInput(emulator.BtnP1Start)
	e.emu.StepFrame()
	e.emu.SetInput(0)
	e.emu.StepFrame()
}

// Step executes one environmental step: the action is encoded into a
// button bitmask and held for the configured number of hardware
// frames, then the hardware counters are read exactly once and the
// resulting TimeStep is assembled.
//
// Stepping an episode that already terminated or was truncated is an
// error; Reset must be called first.
func (e *Environment) Step(action mat.Vector) (ts.TimeStep, error) {
	if e.closed {
		return ts.TimeStep{}, &EnvironmentError{Op: "step", Err: errClosed}
	}
	if !e.active || e.done {
		return ts.TimeStep{}, &EnvironmentError{Op: "step", Err: errStaleEpisode}
	}

	// Sticky actions: with the configured probability the previous
	// action is substituted for the requested one
	if e.config.RepeatActionProbability > 0 &&
		e.rng.Float64() < e.config.RepeatActionProbability {
		action = e.lastAction
	}
	e.lastAction = mat.VecDenseCopyOf(action)

	buttons, err := e.encoder.Encode(action)
	if err != nil {
		return ts.TimeStep{}, err
	}

	for i := 0; i < e.config.FrameSkip; i++ {
		e.emu.SetInput(buttons)
		e.emu.StepFrame()
	}

	// Counters are read once after the skip window, not per sub-frame
	score := e.emu.Score()
	lives := e.emu.Lives()
	gameOver := e.emu.GameOver()
	level := e.emu.Level()

	scoreDelta := int(score) - int(e.prevScore)
	livesLost := e.prevLives - lives
	e.prevScore = score
	e.prevLives = lives
	e.steps++

	obs := e.composer.observe()
	info := ts.Info{
		Score:      score,
		TotalScore: score,
		ScoreDelta: scoreDelta,
		Lives:      lives,
		LivesLost:  livesLost,
		Level:      level,
		FrameCount: e.emu.FrameCount(),
		Steps:      e.steps,
		Terminated: gameOver,
	}

	truncated := e.config.MaxEpisodeSteps > 0 &&
		e.steps >= e.config.MaxEpisodeSteps
	if gameOver || truncated {
		e.done = true
	}

	return ts.TimeStep{
		Observation: obs,
		Reward:      e.reward.Reward(info),
		Terminated:  gameOver,
		Truncated:   truncated,
		Info:        info,
		Number:      e.steps,
	}, nil
}

// SaveState writes the emulator's state to path. The blob is opaque;
// its layout and versioning are owned by the emulation engine. A
// failure is fatal and surfaced, never retried.
func (e *Environment) SaveState(path string) error {
	if e.closed {
		return &EnvironmentError{Op: "saveState", Err: errClosed}
	}
	if err := e.emu.SaveState(path); err != nil {
		return &EnvironmentError{
			Op:  "saveState",
			Err: fmt.Errorf("%w: %v", errEmulator, err),
		}
	}
	return nil
}

// LoadState restores the emulator's state from path. See SaveState.
func (e *Environment) LoadState(path string) error {
	if e.closed {
		return &EnvironmentError{Op: "loadState", Err: errClosed}
	}
	if err := e.emu.LoadState(path); err != nil {
		return &EnvironmentError{
			Op:  "loadState",
			Err: fmt.Errorf("%w: %v", errEmulator, err),
		}
	}
	return nil
}

// ObservationSpec returns the observation specification of the
// environment
func (e *Environment) ObservationSpec() Spec {
	return e.composer.ObservationSpec()
}

// ActionSpec returns the action specification of the environment
func (e *Environment) ActionSpec() Spec {
	return e.encoder.ActionSpec()
}

// Close releases the emulator handle. Close is idempotent; only the
// first call reaches the engine.
func (e *Environment) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	e.active = false

	if err := e.emu.Close(); err != nil {
		return &EnvironmentError{
			Op:  "close",
			Err: fmt.Errorf("%w: %v", errEmulator, err),
		}
	}
	return nil
}

// String returns a string representation of the environment
func (e *Environment) String() string {
	str := "Space Invaders  |  Steps: %v  |  Score: %v  |  Lives: %v"
	return fmt.Sprintf(str, e.steps, e.prevScore, e.prevLives)
}
