package gameconfig

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mkallio/harvestmate/internal/model"
)

// Crop defines the economy of one crop type
type Crop struct {
	SeedCost    int `yaml:"seed_cost"`
	Yield       int `yaml:"yield"`
	GrowthTurns int `yaml:"growth_turns"`
}

// Duration wraps time.Duration with YAML string parsing ("5m", "90s")
type Duration time.Duration

// UnmarshalYAML parses a Go duration string
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Ruleset is the full tunable-parameter set consulted by the session
// core. Callers re-read it through a Provider on every action so that
// updates apply mid-session.
type Ruleset struct {
	Crops map[model.CropType]Crop `yaml:"crops"`

	// UnlockThresholds gives, per plot index, the capture count needed
	// to leave the locked state. Zero means the plot starts unlocked.
	// Values must be non-decreasing across plots.
	UnlockThresholds []int `yaml:"unlock_thresholds"`

	StartingBalance  int      `yaml:"starting_balance"`
	VictoryThreshold int      `yaml:"victory_threshold"`
	ReconnectTTL     Duration `yaml:"reconnect_ttl"`
}

// PlotCount is the number of plots each player owns
func (r Ruleset) PlotCount() int {
	return len(r.UnlockThresholds)
}

// Validate checks internal consistency of a ruleset
func (r Ruleset) Validate() error {
	if len(r.Crops) == 0 {
		return fmt.Errorf("ruleset defines no crops")
	}
	for name, crop := range r.Crops {
		if crop.GrowthTurns <= 0 {
			return fmt.Errorf("crop %q: growth_turns must be positive", name)
		}
		if crop.SeedCost < 0 || crop.Yield < 0 {
			return fmt.Errorf("crop %q: negative cost or yield", name)
		}
	}
	if len(r.UnlockThresholds) == 0 {
		return fmt.Errorf("ruleset defines no plots")
	}
	for i := 1; i < len(r.UnlockThresholds); i++ {
		if r.UnlockThresholds[i] < r.UnlockThresholds[i-1] {
			return fmt.Errorf("unlock_thresholds must be non-decreasing")
		}
	}
	if r.VictoryThreshold <= 0 {
		return fmt.Errorf("victory_threshold must be positive")
	}
	if r.ReconnectTTL <= 0 {
		return fmt.Errorf("reconnect_ttl must be positive")
	}
	return nil
}

// Default returns the built-in ruleset used when no file is configured
func Default() Ruleset {
	return Ruleset{
		Crops: map[model.CropType]Crop{
			"wheat":   {SeedCost: 2, Yield: 5, GrowthTurns: 3},
			"pumpkin": {SeedCost: 5, Yield: 14, GrowthTurns: 5},
			"truffle": {SeedCost: 12, Yield: 40, GrowthTurns: 8},
		},
		UnlockThresholds: []int{0, 0, 1, 2, 4, 6},
		StartingBalance:  10,
		VictoryThreshold: 100,
		ReconnectTTL:     Duration(5 * time.Minute),
	}
}
