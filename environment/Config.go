package environment

import (
	"fmt"

	"github.com/samuelfneumann/goinvaders/timestep"
)

// ObsType determines the kind of observation an Environment composes
type ObsType string

// Observation types available for configuration
const (
	// Grayscale is the full-resolution single-channel frame
	Grayscale ObsType = "grayscale"

	// RGB is the full-resolution three-channel frame
	RGB ObsType = "rgb"

	// Downscaled is the grayscale frame resized to 84x84 with
	// bilinear interpolation, as conventionally fed to DQN-style
	// networks
	Downscaled ObsType = "downscaled"

	// RAM is a fixed-size memory-dump vector. The dump is currently a
	// placeholder of all zeros; see obsComposer.observe.
	RAM ObsType = "ram"
)

// ActionType determines the action space an Environment accepts
type ActionType string

// Action space types available for configuration
const (
	// Discrete6 accepts indices 0-5: NOOP, FIRE, LEFT, RIGHT,
	// LEFT+FIRE, RIGHT+FIRE
	Discrete6 ActionType = "discrete6"

	// Discrete4 accepts indices 0-3: NOOP, FIRE, LEFT, RIGHT
	Discrete4 ActionType = "discrete4"

	// MultiDiscrete accepts a (move, fire) pair with move in {0, 1, 2}
	// (none, left, right) and fire in {0, 1}
	MultiDiscrete ActionType = "multi_discrete"
)

// RewardType determines how an Environment computes rewards
type RewardType string

// Reward schemes available for configuration
const (
	// ScoreDelta rewards the raw change in game score each step
	ScoreDelta RewardType = "score_delta"

	// Shaped rewards the score change, penalizes lost lives, and adds
	// a small survival bonus
	Shaped RewardType = "shaped"

	// Terminal rewards 0 until the episode terminates, then the
	// episode's cumulative score
	Terminal RewardType = "terminal"

	// Custom delegates to the RewardFn supplied in the Config
	Custom RewardType = "custom"
)

// Config implements a specific configuration of an Environment. A
// Config is validated once when the Environment is constructed and is
// immutable thereafter. There is no process-wide registry of
// configurations; construct a Config per instance.
type Config struct {
	ObsType    ObsType
	ActionType ActionType
	RewardType RewardType

	// RewardFn is the reward function used when RewardType is Custom.
	// It must be a pure function of the step's Info record.
	RewardFn func(timestep.Info) float64

	// FrameSkip is the number of consecutive hardware frames each
	// action is held for
	FrameSkip int

	// FrameStack is the number of most-recent composed frames
	// concatenated into one observation
	FrameStack int

	// RepeatActionProbability is the probability that the previous
	// action is substituted for the requested one (sticky actions)
	RepeatActionProbability float64

	// MaxEpisodeSteps truncates episodes after this many steps. Zero
	// means episodes are never truncated.
	MaxEpisodeSteps int
}

// NewConfig returns a Config with default settings: full-resolution
// grayscale observations, the six-action space, score-delta rewards,
// and no frame skipping, stacking, sticky actions, or step limit.
func NewConfig() Config {
	return Config{
		ObsType:    Grayscale,
		ActionType: Discrete6,
		RewardType: ScoreDelta,
		FrameSkip:  1,
		FrameStack: 1,
	}
}

// DQNConfig returns the configuration conventionally used for training
// DQN-family agents: 84x84 downscaled observations, four stacked
// frames, an action held for four frames, shaped rewards, and a
// 10,000-step episode cutoff.
func DQNConfig() Config {
	return Config{
		ObsType:         Downscaled,
		ActionType:      Discrete6,
		RewardType:      Shaped,
		FrameSkip:       4,
		FrameStack:      4,
		MaxEpisodeSteps: 10000,
	}
}

// Validate returns an error if the Config describes an environment
// that cannot be constructed
func (c Config) Validate() error {
	switch c.ObsType {
	case Grayscale, RGB, Downscaled, RAM:
	default:
		return &EnvironmentError{
			Op:  "validate",
			Err: fmt.Errorf("%w: no such obs type %q", errInvalidConfig, c.ObsType),
		}
	}

	switch c.ActionType {
	case Discrete6, Discrete4, MultiDiscrete:
	default:
		return &EnvironmentError{
			Op: "validate",
			Err: fmt.Errorf("%w: no such action type %q", errInvalidConfig,
				c.ActionType),
		}
	}

	switch c.RewardType {
	case ScoreDelta, Shaped, Terminal:
	case Custom:
		if c.RewardFn == nil {
			return &EnvironmentError{
				Op: "validate",
				Err: fmt.Errorf("%w: reward type %q requires a RewardFn",
					errInvalidConfig, Custom),
			}
		}
	default:
		return &EnvironmentError{
			Op: "validate",
			Err: fmt.Errorf("%w: no such reward type %q", errInvalidConfig,
				c.RewardType),
		}
	}

	if c.FrameSkip < 1 {
		return &EnvironmentError{
			Op: "validate",
			Err: fmt.Errorf("%w: frame skip must be >= 1, got %v",
				errInvalidConfig, c.FrameSkip),
		}
	}

	if c.FrameStack < 1 {
		return &EnvironmentError{
			Op: "validate",
			Err: fmt.Errorf("%w: frame stack must be >= 1, got %v",
				errInvalidConfig, c.FrameStack),
		}
	}

	if c.RepeatActionProbability < 0 || c.RepeatActionProbability > 1 {
		return &EnvironmentError{
			Op: "validate",
			Err: fmt.Errorf("%w: repeat action probability must be in "+
				"[0, 1], got %v", errInvalidConfig, c.RepeatActionProbability),
		}
	}

	if c.MaxEpisodeSteps < 0 {
		return &EnvironmentError{
			Op: "validate",
			Err: fmt.Errorf("%w: max episode steps must be >= 0, got %v",
				errInvalidConfig, c.MaxEpisodeSteps),
		}
	}

	return nil
}
