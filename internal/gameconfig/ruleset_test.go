package gameconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mkallio/harvestmate/internal/model"
	"github.com/mkallio/harvestmate/internal/testutil"
)

type RulesetSuite struct {
	suite.Suite
}

func TestRulesetSuite(t *testing.T) {
	suite.Run(t, new(RulesetSuite))
}

func (s *RulesetSuite) TestDefaultIsValid() {
	s.NoError(Default().Validate())
}

func (s *RulesetSuite) TestValidateRejectsZeroGrowth() {
	rs := Default()
	rs.Crops["instant"] = Crop{SeedCost: 1, Yield: 1, GrowthTurns: 0}
	s.Error(rs.Validate())
}

func (s *RulesetSuite) TestValidateRejectsDecreasingThresholds() {
	rs := Default()
	rs.UnlockThresholds = []int{0, 2, 1}
	s.Error(rs.Validate())
}

func (s *RulesetSuite) TestValidateRejectsMissingTTL() {
	rs := Default()
	rs.ReconnectTTL = 0
	s.Error(rs.Validate())
}

const sampleYAML = `
crops:
  wheat:
    seed_cost: 2
    yield: 5
    growth_turns: 3
  pumpkin:
    seed_cost: 5
    yield: 14
    growth_turns: 5
unlock_thresholds: [0, 0, 1, 2]
starting_balance: 10
victory_threshold: 80
reconnect_ttl: 5m
`

func (s *RulesetSuite) writeRuleset(content string) string {
	path := filepath.Join(s.T().TempDir(), "ruleset.yaml")
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (s *RulesetSuite) TestFileProviderLoadsYAML() {
	path := s.writeRuleset(sampleYAML)

	p, err := NewFileProvider(path, testutil.NopLogger())
	s.Require().NoError(err)

	rs := p.Rules()
	s.Equal(3, rs.Crops[model.CropType("wheat")].GrowthTurns)
	s.Equal(4, rs.PlotCount())
	s.Equal(80, rs.VictoryThreshold)
	s.Equal(5*time.Minute, rs.ReconnectTTL.Std())
}

func (s *RulesetSuite) TestFileProviderRejectsMalformedFile() {
	path := s.writeRuleset("crops: []")

	_, err := NewFileProvider(path, testutil.NopLogger())
	s.Error(err)
}

func (s *RulesetSuite) TestReloadKeepsPreviousOnError() {
	path := s.writeRuleset(sampleYAML)

	p, err := NewFileProvider(path, testutil.NopLogger())
	s.Require().NoError(err)

	s.Require().NoError(os.WriteFile(path, []byte("not: [valid"), 0o644))
	s.Error(p.Reload())

	// Previous ruleset still served
	s.Equal(80, p.Rules().VictoryThreshold)
}
