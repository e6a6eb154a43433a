package room

import (
	"fmt"
	"log/slog"

	"github.com/mkallio/harvestmate/internal/model"
)

// Action is a player-initiated mutation submitted to a room
type Action interface {
	isAction()
}

// MoveAction submits a chess move descriptor to the rule engine
type MoveAction struct {
	Move string
}

// FarmAction plants a crop on one of the player's plots. It does not
// consume the turn.
type FarmAction struct {
	PlotIndex int
	Crop      model.CropType
}

// EndTurnAction closes the player's turn, firing the growth tick
type EndTurnAction struct{}

// ResignAction concedes the game to the opponent
type ResignAction struct{}

func (MoveAction) isAction()    {}
func (FarmAction) isAction()    {}
func (EndTurnAction) isAction() {}
func (ResignAction) isAction()  {}

// Submit validates and applies an action for the given connection. On
// rejection the state is untouched and actionRejected is sent to the
// offending connection only.
func (r *Room) Submit(connID model.ConnectionID, action Action) error {
	var err error
	if derr := r.do(func() { err = r.handleSubmit(connID, action) }); derr != nil {
		return derr
	}
	return err
}

func (r *Room) handleSubmit(connID model.ConnectionID, action Action) error {
	sess := r.sessionByConn(connID)
	if sess == nil {
		return model.ErrSessionNotFound
	}

	err := r.applyAction(sess, action)
	if err != nil {
		r.send(sess, model.EventActionRejected, Rejection(err))
	}
	return err
}

func (r *Room) applyAction(sess *session, action Action) error {
	switch r.phase {
	case model.PhaseWaitingForPlayers:
		return model.ErrRoomNotActive
	case model.PhaseGameOver:
		return model.ErrGameOver
	}

	switch a := action.(type) {
	case MoveAction:
		return r.handleMove(sess, a)
	case FarmAction:
		return r.handleFarm(sess, a)
	case EndTurnAction:
		return r.handleEndTurn(sess)
	case ResignAction:
		return r.handleResign(sess)
	default:
		return fmt.Errorf("unknown action type %T", action)
	}
}

func (r *Room) handleMove(sess *session, a MoveAction) error {
	if sess.Color != r.currentTurn {
		return model.ErrNotYourTurn
	}
	if r.moveMade {
		return model.ErrMoveAlreadyMade
	}

	result, err := r.deps.Rules.TryMove(r.state.BoardToken, a.Move)
	if err != nil {
		// The authoritative token could not be interpreted: no listed
		// recovery path covers this, so end the room instead of letting
		// the inconsistency spread.
		r.fatal(sess.Color, err)
		return nil
	}
	if !result.Legal {
		return model.ErrIllegalMove
	}

	r.state.BoardToken = result.NewToken
	r.moveMade = true

	if result.Captured {
		r.state.Captures[sess.Color]++
		r.deps.Farm.RecordCapture(&sess.PlayerSession, r.state.Captures[sess.Color])
	}

	r.logger.Debug("move applied",
		slog.String("color", string(sess.Color)),
		slog.Bool("captured", result.Captured),
		slog.Bool("checkmate", result.Checkmate),
	)

	if result.Checkmate {
		r.finish(sess.Color, model.WinCheckmate)
		return nil
	}

	r.broadcastState()
	return nil
}

func (r *Room) handleFarm(sess *session, a FarmAction) error {
	if sess.Color != r.currentTurn {
		return model.ErrNotYourTurn
	}

	rs := r.deps.Config.Rules()
	if err := r.deps.Farm.Plant(&sess.PlayerSession, a.PlotIndex, a.Crop, rs); err != nil {
		return err
	}

	r.broadcastState()
	return nil
}

// handleEndTurn is the canonical turn boundary: the growth tick fires
// here exactly once, never when a move is merely relayed to the
// opponent.
func (r *Room) handleEndTurn(sess *session) error {
	if sess.Color != r.currentTurn {
		return model.ErrNotYourTurn
	}
	if !r.moveMade {
		return model.ErrMoveRequired
	}

	rs := r.deps.Config.Rules()
	credited := r.deps.Farm.Tick(&sess.PlayerSession, rs)
	if credited > 0 {
		r.logger.Debug("harvest credited",
			slog.String("color", string(sess.Color)),
			slog.Int("yield", credited),
		)
	}

	if sess.Balance >= rs.VictoryThreshold {
		r.finish(sess.Color, model.WinResourceThreshold)
		return nil
	}

	r.currentTurn = r.currentTurn.Opponent()
	r.moveMade = false
	r.broadcast(model.EventTurnChanged, model.TurnChangedPayload{Color: r.currentTurn})
	r.broadcastState()
	return nil
}

func (r *Room) handleResign(sess *session) error {
	r.finish(sess.Color.Opponent(), model.WinResignation)
	return nil
}

// finish transitions the room to its terminal phase. There is no way
// back to an active game.
func (r *Room) finish(winner model.Color, reason model.WinReason) {
	r.state.GameOver = true
	r.state.Winner = winner
	r.state.WinReason = reason
	r.phase = model.PhaseGameOver

	// Records are useless for a finished game; drop them so teardown
	// only waits on the remaining connections.
	r.dropAllRecords()

	r.broadcast(model.EventGameOver, model.GameOverPayload{Winner: winner, Reason: reason})
	r.broadcastState()
	r.logger.Info("game over",
		slog.String("winner", string(winner)),
		slog.String("reason", string(reason)),
	)
	r.maybeTeardown()
}

// fatal handles authoritative state becoming internally inconsistent:
// the room is forced to game over instead of crashing the process that
// hosts other rooms
func (r *Room) fatal(offender model.Color, err error) {
	r.logger.Error("authoritative state inconsistent, forcing game over",
		slog.String("offending_color", string(offender)),
		slog.Any("error", err),
	)
	r.finish(offender.Opponent(), model.WinResignation)
}
