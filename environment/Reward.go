package environment

import "github.com/samuelfneumann/goinvaders/timestep"

// Shaped reward constants
const (
	// lifeLostPenalty is subtracted from the shaped reward for each
	// life lost during a step
	lifeLostPenalty float64 = 100.0

	// survivalBonus is added to the shaped reward on every
	// non-terminal step
	survivalBonus float64 = 0.1
)

// RewardPolicy computes a scalar reward from the Info record of a
// single step. A policy is selected once when the Environment is
// constructed and is immutable thereafter.
type RewardPolicy interface {
	Reward(info timestep.Info) float64
}

// newRewardPolicy returns the RewardPolicy selected by a validated
// Config
func newRewardPolicy(c Config) RewardPolicy {
	switch c.RewardType {
	case Shaped:
		return shapedReward{}

	case Terminal:
		return terminalReward{}

	case Custom:
		return customReward{fn: c.RewardFn}

	default:
		return scoreDeltaReward{}
	}
}

// scoreDeltaReward rewards the raw change in game score
type scoreDeltaReward struct{}

func (scoreDeltaReward) Reward(info timestep.Info) float64 {
	return float64(info.ScoreDelta)
}

// shapedReward rewards the score change, penalizes lost lives, and
// adds a flat survival bonus on every non-terminal step
type shapedReward struct{}

func (shapedReward) Reward(info timestep.Info) float64 {
	reward := float64(info.ScoreDelta)

	if info.LivesLost > 0 {
		reward -= lifeLostPenalty * float64(info.LivesLost)
	}

	if !info.Terminated {
		reward += survivalBonus
	}

	return reward
}

// terminalReward rewards 0 until the episode terminates, then the
// episode's cumulative score
type terminalReward struct{}

func (terminalReward) Reward(info timestep.Info) float64 {
	if info.Terminated {
		return float64(info.TotalScore)
	}
	return 0.0
}

// customReward delegates to an externally supplied pure function of
// the Info record
type customReward struct {
	fn func(timestep.Info) float64
}

func (c customReward) Reward(info timestep.Info) float64 {
	return c.fn(info)
}
