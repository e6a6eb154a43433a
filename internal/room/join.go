package room

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/mkallio/harvestmate/internal/model"
	"github.com/mkallio/harvestmate/internal/services/farm"
)

// JoinRequest carries everything a join or reconnection attempt needs
type JoinRequest struct {
	Username string
	Passcode string

	// ClaimedColor marks a reconnection attempt. A stale claim falls
	// through to a fresh join instead of hard-failing.
	ClaimedColor model.Color

	// ClientSnapshot optionally supersedes the server-held record, but
	// only when it passes validation.
	ClientSnapshot *model.Snapshot

	Sender Sender
}

// JoinResult reports the seat assigned to the caller
type JoinResult struct {
	Color       model.Color
	Reconnected bool
}

// Join admits a connection into the room, handling reconnection claims,
// slot takeover after a page refresh, and fresh seat assignment
func (r *Room) Join(req JoinRequest) (JoinResult, error) {
	var (
		res JoinResult
		err error
	)
	if derr := r.do(func() { res, err = r.handleJoin(req) }); derr != nil {
		return JoinResult{}, derr
	}
	return res, err
}

func (r *Room) handleJoin(req JoinRequest) (JoinResult, error) {
	if r.phase == model.PhaseGameOver {
		return JoinResult{}, model.ErrGameOver
	}

	if req.ClaimedColor.Valid() {
		if res, handled := r.tryReconnect(req); handled {
			// A reconnection can fill the second seat too, when the
			// first player dropped before an opponent ever arrived.
			r.maybeStartGame()
			return res, nil
		}
		// No record and no active holder: the claim is stale. Fall
		// through to a fresh join, ignoring it.
	}

	return r.freshJoin(req)
}

// maybeStartGame transitions a waiting room to Active once both seats
// hold live sessions, regardless of which join path filled the second
// one. White always opens.
func (r *Room) maybeStartGame() {
	if r.phase != model.PhaseWaitingForPlayers || len(r.sessions) != 2 {
		return
	}
	r.phase = model.PhaseActive
	r.currentTurn = model.ColorWhite
	r.moveMade = false
	r.broadcast(model.EventGameStart, model.GameStartPayload{State: r.stateView()})
	r.logger.Info("game started")
}

// tryReconnect handles a claimed color. It reports handled=false only
// when the claim matched neither a record nor an active session.
func (r *Room) tryReconnect(req JoinRequest) (JoinResult, bool) {
	color := req.ClaimedColor

	rec, err := r.deps.Records.Get(context.Background(), r.id, color)
	if err == nil {
		snap := rec.Snapshot
		if req.ClientSnapshot != nil {
			if verr := req.ClientSnapshot.Validate(); verr == nil && len(req.ClientSnapshot.Plots) == len(snap.Plots) {
				snap = *req.ClientSnapshot
			} else {
				// Never let a degenerate client payload replace the
				// authoritative record; keep going with the server copy.
				r.logger.Warn("discarding malformed client snapshot",
					slog.String("color", string(color)),
					slog.String("username", rec.Username),
				)
			}
		}

		r.cancelExpiry(color)
		if derr := r.deps.Records.Delete(context.Background(), r.id, color); derr != nil {
			r.logger.Warn("failed to delete consumed record", slog.Any("error", derr))
		}

		sess := &session{
			PlayerSession: model.PlayerSession{
				ConnectionID: req.Sender.ID(),
				Username:     rec.Username,
				Color:        color,
				Balance:      snap.Balance,
				Plots:        clonePlots(snap.Plots),
			},
			sender: req.Sender,
		}
		r.sessions[color] = sess

		view := r.stateView()
		r.send(sess, model.EventReconnectSuccess, model.ReconnectSuccessPayload{Color: color, State: view})
		if other := r.sessions[color.Opponent()]; other != nil {
			r.send(other, model.EventOpponentReconnected, model.OpponentPresencePayload{Color: color})
			r.send(other, model.EventStateUpdate, view)
		}
		r.logger.Info("player reconnected",
			slog.String("color", string(color)),
			slog.String("username", rec.Username),
		)
		return JoinResult{Color: color, Reconnected: true}, true
	}
	if !errors.Is(err, model.ErrRecordNotFound) {
		// Store failure: treat the claim as stale rather than failing
		// the join outright.
		r.logger.Error("record lookup failed", slog.Any("error", err))
		return JoinResult{}, false
	}

	if holder := r.sessions[color]; holder != nil {
		// Page refresh while the old connection is still considered
		// live: take over the slot, keep all state, reset nothing.
		holder.ConnectionID = req.Sender.ID()
		holder.sender = req.Sender
		r.send(holder, model.EventReconnectSuccess, model.ReconnectSuccessPayload{Color: color, State: r.stateView()})
		r.logger.Info("slot takeover",
			slog.String("color", string(color)),
			slog.String("username", holder.Username),
		)
		return JoinResult{Color: color, Reconnected: true}, true
	}

	return JoinResult{}, false
}

// freshJoin assigns a seat by inspecting which colors are currently
// held, counting both active sessions and unexpired records. A
// join-order counter would misassign colors after a failed
// reconnection attempt falls through.
func (r *Room) freshJoin(req JoinRequest) (JoinResult, error) {
	whiteTaken := r.colorTaken(model.ColorWhite)
	blackTaken := r.colorTaken(model.ColorBlack)

	if whiteTaken && blackTaken {
		r.sendTo(req.Sender, model.EventRoomFull, model.RoomFullPayload{RoomID: r.id})
		return JoinResult{}, model.ErrRoomFull
	}

	if len(r.passcodeHash) > 0 {
		if bcrypt.CompareHashAndPassword(r.passcodeHash, []byte(req.Passcode)) != nil {
			return JoinResult{}, model.ErrInvalidPasscode
		}
	}

	color := model.ColorWhite
	if whiteTaken {
		color = model.ColorBlack
	}

	rs := r.deps.Config.Rules()
	sess := &session{
		PlayerSession: model.PlayerSession{
			ConnectionID: req.Sender.ID(),
			Username:     req.Username,
			Color:        color,
			Balance:      rs.StartingBalance,
			Plots:        farm.NewPlots(rs),
		},
		sender: req.Sender,
	}
	r.sessions[color] = sess

	r.send(sess, model.EventPlayerAssigned, model.PlayerAssignedPayload{RoomID: r.id, Color: color})
	r.logger.Info("player joined",
		slog.String("color", string(color)),
		slog.String("username", req.Username),
	)

	if r.phase == model.PhaseActive {
		// Joining a running game on a seat whose record expired: hand
		// the newcomer the current state.
		r.send(sess, model.EventStateUpdate, r.stateView())
	} else {
		r.maybeStartGame()
	}

	return JoinResult{Color: color}, nil
}

// colorTaken reports whether a seat is held by an active session or
// reserved by an unexpired disconnected record
func (r *Room) colorTaken(color model.Color) bool {
	if r.sessions[color] != nil {
		return true
	}
	if _, ok := r.expiry[color]; !ok {
		return false
	}
	_, err := r.deps.Records.Get(context.Background(), r.id, color)
	return err == nil
}
