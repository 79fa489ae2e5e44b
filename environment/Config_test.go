package environment

import (
	"testing"

	"github.com/samuelfneumann/goinvaders/timestep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidateDefaults(t *testing.T) {
	assert.NoError(t, NewConfig().Validate())
	assert.NoError(t, DQNConfig().Validate())
}

func TestConfigValidateCustomReward(t *testing.T) {
	config := NewConfig()
	config.RewardType = Custom

	err := config.Validate()
	require.Error(t, err)
	assert.True(t, IsConfigError(err))

	config.RewardFn = func(timestep.Info) float64 { return 0 }
	assert.NoError(t, config.Validate())
}

func TestConfigValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"obs type", func(c *Config) { c.ObsType = "pixels" }},
		{"action type", func(c *Config) { c.ActionType = "discrete18" }},
		{"reward type", func(c *Config) { c.RewardType = "sparse" }},
		{"frame skip", func(c *Config) { c.FrameSkip = 0 }},
		{"frame stack", func(c *Config) { c.FrameStack = 0 }},
		{"repeat probability low", func(c *Config) {
			c.RepeatActionProbability = -0.1
		}},
		{"repeat probability high", func(c *Config) {
			c.RepeatActionProbability = 1.1
		}},
		{"max episode steps", func(c *Config) { c.MaxEpisodeSteps = -1 }},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			config := NewConfig()
			test.mutate(&config)

			err := config.Validate()
			require.Error(t, err)
			assert.True(t, IsConfigError(err))
		})
	}
}
