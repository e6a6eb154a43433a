package room

import (
	"context"

	"github.com/mkallio/harvestmate/internal/model"
)

// stateView assembles the full-state payload from live sessions and,
// for a disconnected color, its server-held record. Must run inside
// the room loop.
func (r *Room) stateView() model.StateUpdate {
	players := make(map[model.Color]model.PlayerState, 2)
	for color, sess := range r.sessions {
		players[color] = model.PlayerState{
			Username:  sess.Username,
			Balance:   sess.Balance,
			Plots:     clonePlots(sess.Plots),
			Connected: true,
		}
	}
	for color := range r.expiry {
		if _, ok := players[color]; ok {
			continue
		}
		rec, err := r.deps.Records.Get(context.Background(), r.id, color)
		if err != nil {
			continue
		}
		players[color] = model.PlayerState{
			Username:  rec.Username,
			Balance:   rec.Snapshot.Balance,
			Plots:     clonePlots(rec.Snapshot.Plots),
			Connected: false,
		}
	}

	view := model.StateUpdate{
		GameState: r.state.Clone(),
		Players:   players,
		Phase:     r.phase,
	}
	if r.phase == model.PhaseActive {
		view.CurrentTurn = r.currentTurn
	}
	return view
}

func clonePlots(plots []model.Plot) []model.Plot {
	out := make([]model.Plot, len(plots))
	copy(out, plots)
	return out
}
