package room

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mkallio/harvestmate/internal/dependencies/clock"
	"github.com/mkallio/harvestmate/internal/dependencies/random"
	"github.com/mkallio/harvestmate/internal/gameconfig"
	"github.com/mkallio/harvestmate/internal/model"
	"github.com/mkallio/harvestmate/internal/services/farm"
	"github.com/mkallio/harvestmate/internal/services/rules"
	"github.com/mkallio/harvestmate/internal/storage"
)

// Deps carries the collaborators shared by every room
type Deps struct {
	Clock   clock.Clock
	Random  random.Random
	Rules   rules.Engine
	Farm    *farm.Engine
	Records storage.RecordStore
	Config  gameconfig.Provider
	Logger  *slog.Logger
}

// Sender delivers one outbound event to a single connection. Delivery
// is fire-and-forget from the room's perspective; the transport owns
// retries and close semantics.
type Sender interface {
	ID() model.ConnectionID
	Send(event model.EventType, payload any) error
}

// session pairs an active seat with its transport connection
type session struct {
	model.PlayerSession
	sender Sender
}

// Room is a single two-seat game session. All mutable state is owned by
// the run loop: public methods enqueue commands and wait for them to be
// processed, so events for one room execute one at a time in arrival
// order while distinct rooms proceed concurrently.
type Room struct {
	id     model.RoomID
	deps   Deps
	logger *slog.Logger

	passcodeHash []byte
	createdAt    time.Time
	onEmpty      func(model.RoomID)

	commands  chan func()
	closed    chan struct{}
	closeOnce sync.Once

	// Everything below is touched only from the run loop
	phase       model.RoomPhase
	sessions    map[model.Color]*session
	state       model.GameState
	currentTurn model.Color
	moveMade    bool
	expiry      map[model.Color]*expiryHandle
	recordGen   uint64
}

// expiryHandle tracks one pending record-expiry timer. The generation
// lets a late sweep recognize that its record was already consumed and
// replaced by a newer disconnect.
type expiryHandle struct {
	timer clock.Timer
	gen   uint64
}

func newRoom(id model.RoomID, passcodeHash []byte, deps Deps, onEmpty func(model.RoomID)) *Room {
	r := &Room{
		id:           id,
		deps:         deps,
		logger:       deps.Logger.With(slog.String("room", string(id))),
		passcodeHash: passcodeHash,
		createdAt:    deps.Clock.Now(),
		onEmpty:      onEmpty,
		commands:     make(chan func(), 32),
		closed:       make(chan struct{}),
		phase:        model.PhaseWaitingForPlayers,
		sessions:     make(map[model.Color]*session),
		state:        model.NewGameState(deps.Rules.StartingPosition()),
		expiry:       make(map[model.Color]*expiryHandle),
	}
	go r.run()
	return r
}

// ID returns the room's identifier
func (r *Room) ID() model.RoomID {
	return r.id
}

func (r *Room) run() {
	for {
		select {
		case cmd := <-r.commands:
			cmd()
		case <-r.closed:
			return
		}
	}
}

// do runs fn inside the room's serialized loop and waits for it.
// Returns ErrRoomClosed when the loop has stopped.
func (r *Room) do(fn func()) error {
	done := make(chan struct{})
	wrapped := func() {
		defer close(done)
		fn()
	}
	select {
	case r.commands <- wrapped:
	case <-r.closed:
		return model.ErrRoomClosed
	}
	select {
	case <-done:
		return nil
	case <-r.closed:
		return model.ErrRoomClosed
	}
}

// Close stops the room's loop. Pending commands are dropped.
func (r *Room) Close() {
	r.closeOnce.Do(func() {
		close(r.closed)
	})
}

// Phase returns the room's lifecycle phase
func (r *Room) Phase() model.RoomPhase {
	var phase model.RoomPhase
	r.do(func() { phase = r.phase })
	return phase
}

// View returns the full current state as broadcast to clients
func (r *Room) View() model.StateUpdate {
	var view model.StateUpdate
	r.do(func() { view = r.stateView() })
	return view
}

// sessionByConn finds the active session bound to a connection
func (r *Room) sessionByConn(connID model.ConnectionID) *session {
	for _, sess := range r.sessions {
		if sess.ConnectionID == connID {
			return sess
		}
	}
	return nil
}

// send delivers an event to one session, logging delivery failures
func (r *Room) send(sess *session, event model.EventType, payload any) {
	if err := sess.sender.Send(event, payload); err != nil {
		r.logger.Warn("outbound send failed",
			slog.String("event", string(event)),
			slog.String("color", string(sess.Color)),
			slog.Any("error", err),
		)
	}
}

// sendTo delivers an event to a connection that holds no seat yet
func (r *Room) sendTo(sender Sender, event model.EventType, payload any) {
	if err := sender.Send(event, payload); err != nil {
		r.logger.Warn("outbound send failed",
			slog.String("event", string(event)),
			slog.Any("error", err),
		)
	}
}

// broadcast delivers an event to every active connection in the room
func (r *Room) broadcast(event model.EventType, payload any) {
	for _, sess := range r.sessions {
		r.send(sess, event, payload)
	}
}

// broadcastState sends the full current state to both connections.
// Every mutation path ends here; partial payloads are never sent.
func (r *Room) broadcastState() {
	r.broadcast(model.EventStateUpdate, r.stateView())
}

// maybeTeardown removes the room once both seats are free of active
// sessions and no disconnected record remains for either color
func (r *Room) maybeTeardown() {
	if len(r.sessions) != 0 || len(r.expiry) != 0 {
		return
	}
	r.logger.Info("room empty, tearing down")
	if r.onEmpty != nil {
		r.onEmpty(r.id)
	}
}
