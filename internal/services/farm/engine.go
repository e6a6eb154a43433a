package farm

import (
	"log/slog"

	"github.com/mkallio/harvestmate/internal/gameconfig"
	"github.com/mkallio/harvestmate/internal/model"
)

// Engine applies growth, harvest, unlock, and planting transitions to a
// player's plots. All methods mutate the session in place and are only
// ever called from the owning room's serialized command loop.
type Engine struct {
	logger *slog.Logger
}

// New creates a new farm engine
func New(logger *slog.Logger) *Engine {
	return &Engine{logger: logger.With(slog.String("component", "farm"))}
}

// NewPlots builds the initial plot collection for a ruleset. Plots with
// a zero unlock threshold start unlocked.
func NewPlots(rs gameconfig.Ruleset) []model.Plot {
	plots := make([]model.Plot, rs.PlotCount())
	for i := range plots {
		state := model.PlotLocked
		if rs.UnlockThresholds[i] == 0 {
			state = model.PlotEmpty
		}
		plots[i] = model.Plot{
			Index:             i,
			State:             state,
			UnlockRequirement: rs.UnlockThresholds[i],
		}
	}
	return plots
}

// Tick advances every planted plot by one turn and immediately harvests
// any plot that becomes ready. Readiness and harvest are fused: there is
// no player-invoked harvest action. The plot is cleared before the yield
// is credited, so a ready plot can never be harvested twice. Returns the
// total yield credited.
func (e *Engine) Tick(sess *model.PlayerSession, rs gameconfig.Ruleset) int {
	for i := range sess.Plots {
		plot := &sess.Plots[i]
		if plot.State != model.PlotPlanted {
			continue
		}
		plot.TurnsRemaining--
		if plot.TurnsRemaining <= 0 {
			plot.TurnsRemaining = 0
			plot.State = model.PlotReady
		}
	}

	credited := 0
	for i := range sess.Plots {
		plot := &sess.Plots[i]
		if plot.State != model.PlotReady {
			continue
		}
		crop := plot.Crop
		plot.State = model.PlotEmpty
		plot.Crop = ""
		plot.TurnsRemaining = 0

		yield := rs.Crops[crop].Yield
		sess.Balance += yield
		credited += yield

		e.logger.Debug("plot harvested",
			slog.String("color", string(sess.Color)),
			slog.Int("plot", plot.Index),
			slog.String("crop", string(crop)),
			slog.Int("yield", yield),
		)
	}
	return credited
}

// RecordCapture unlocks every locked plot whose requirement is covered
// by the new capture count. Crossing several thresholds at once unlocks
// several plots; no player confirmation is involved. Returns the number
// of plots unlocked.
func (e *Engine) RecordCapture(sess *model.PlayerSession, capturedCount int) int {
	unlocked := 0
	for i := range sess.Plots {
		plot := &sess.Plots[i]
		if plot.State == model.PlotLocked && plot.UnlockRequirement <= capturedCount {
			plot.State = model.PlotEmpty
			unlocked++
		}
	}
	if unlocked > 0 {
		e.logger.Debug("plots unlocked",
			slog.String("color", string(sess.Color)),
			slog.Int("captures", capturedCount),
			slog.Int("unlocked", unlocked),
		)
	}
	return unlocked
}

// Plant sows a crop on an empty plot, deducting its seed cost
func (e *Engine) Plant(sess *model.PlayerSession, plotIndex int, crop model.CropType, rs gameconfig.Ruleset) error {
	if plotIndex < 0 || plotIndex >= len(sess.Plots) {
		return model.ErrPlotOutOfRange
	}
	cropDef, ok := rs.Crops[crop]
	if !ok {
		return model.ErrUnknownCrop
	}
	plot := &sess.Plots[plotIndex]
	if plot.State != model.PlotEmpty {
		return model.ErrPlotUnavailable
	}
	if sess.Balance < cropDef.SeedCost {
		return model.ErrInsufficientResources
	}

	sess.Balance -= cropDef.SeedCost
	plot.State = model.PlotPlanted
	plot.Crop = crop
	plot.TurnsRemaining = cropDef.GrowthTurns
	return nil
}
