package room

import (
	"context"
	"log/slog"
	"time"

	"github.com/mkallio/harvestmate/internal/model"
)

// Disconnect releases the connection's seat. During an active game the
// seat is reserved for reconnection until the TTL elapses; once the
// game is over the seat is simply freed.
func (r *Room) Disconnect(connID model.ConnectionID) {
	r.do(func() { r.handleDisconnect(connID) })
}

func (r *Room) handleDisconnect(connID model.ConnectionID) {
	sess := r.sessionByConn(connID)
	if sess == nil {
		return
	}
	delete(r.sessions, sess.Color)

	if r.phase != model.PhaseGameOver {
		now := r.deps.Clock.Now()
		rs := r.deps.Config.Rules()
		ttl := rs.ReconnectTTL.Std()
		rec := model.DisconnectedRecord{
			Color:          sess.Color,
			Username:       sess.Username,
			Snapshot:       model.SnapshotSession(&sess.PlayerSession),
			DisconnectedAt: now,
			ExpiresAt:      now.Add(ttl),
		}
		if err := r.deps.Records.Save(context.Background(), r.id, &rec, ttl); err != nil {
			// Without a record the seat cannot be reserved; the slot is
			// freed for a fresh join instead.
			r.logger.Error("saving disconnect record failed, releasing seat",
				slog.String("color", string(sess.Color)),
				slog.Any("error", err),
			)
		} else {
			r.scheduleExpiry(sess.Color, ttl)
		}
		r.logger.Info("player disconnected",
			slog.String("color", string(sess.Color)),
			slog.String("username", sess.Username),
		)
		if other := r.sessions[sess.Color.Opponent()]; other != nil {
			r.send(other, model.EventOpponentDisconnected, model.OpponentPresencePayload{Color: sess.Color})
		}
	}

	r.maybeTeardown()
}

// scheduleExpiry arms the reservation timer for a color. Each
// (re)schedule bumps the generation so a sweep armed for an older
// reservation cannot clear a newer one.
func (r *Room) scheduleExpiry(color model.Color, ttl time.Duration) {
	r.cancelExpiry(color)
	r.recordGen++
	gen := r.recordGen
	timer := r.deps.Clock.AfterFunc(ttl, func() {
		r.do(func() { r.handleSweep(color, gen) })
	})
	r.expiry[color] = &expiryHandle{timer: timer, gen: gen}
}

func (r *Room) handleSweep(color model.Color, gen uint64) {
	handle, ok := r.expiry[color]
	if !ok || handle.gen != gen {
		return
	}
	delete(r.expiry, color)
	if err := r.deps.Records.Delete(context.Background(), r.id, color); err != nil {
		r.logger.Error("deleting expired record failed",
			slog.String("color", string(color)),
			slog.Any("error", err),
		)
	}
	r.logger.Info("reconnection window expired",
		slog.String("color", string(color)),
	)
	r.maybeTeardown()
}

func (r *Room) cancelExpiry(color model.Color) {
	if handle, ok := r.expiry[color]; ok {
		handle.timer.Stop()
		delete(r.expiry, color)
	}
}

func (r *Room) dropAllRecords() {
	for color, handle := range r.expiry {
		handle.timer.Stop()
		delete(r.expiry, color)
		if err := r.deps.Records.Delete(context.Background(), r.id, color); err != nil {
			r.logger.Error("deleting record failed",
				slog.String("color", string(color)),
				slog.Any("error", err),
			)
		}
	}
}
