package room

import (
	"log/slog"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/mkallio/harvestmate/internal/model"
)

const (
	RoomCodeLength = 6
	// Ambiguous characters (0/O, 1/I) are excluded so codes survive
	// being read out loud.
	RoomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// Registry owns the live rooms. Rooms remove themselves once both
// seats are free and no reconnection window remains open.
type Registry struct {
	mu     sync.RWMutex
	rooms  map[model.RoomID]*Room
	deps   Deps
	logger *slog.Logger
}

func NewRegistry(deps Deps) *Registry {
	return &Registry{
		rooms:  make(map[model.RoomID]*Room),
		deps:   deps,
		logger: deps.Logger.With(slog.String("component", "registry")),
	}
}

// GetOrCreate returns the room with the given id, creating it when it
// does not exist. With an empty id a fresh room code is generated. The
// passcode only takes effect at creation time.
func (reg *Registry) GetOrCreate(id model.RoomID, passcode string) (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if id == "" {
		id = reg.generateCode()
	} else if room, ok := reg.rooms[id]; ok {
		return room, nil
	}

	var passcodeHash []byte
	if passcode != "" {
		hash, err := hashPasscode(passcode)
		if err != nil {
			return nil, err
		}
		passcodeHash = hash
	}

	room := newRoom(id, passcodeHash, reg.deps, reg.Remove)
	reg.rooms[id] = room
	reg.logger.Info("room created",
		slog.String("room_id", string(id)),
		slog.Bool("passcode_protected", passcodeHash != nil),
	)
	return room, nil
}

func (reg *Registry) Get(id model.RoomID) (*Room, error) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	room, ok := reg.rooms[id]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return room, nil
}

// Remove drops the room from the registry and stops its loop
func (reg *Registry) Remove(id model.RoomID) {
	reg.mu.Lock()
	room, ok := reg.rooms[id]
	delete(reg.rooms, id)
	reg.mu.Unlock()

	if ok {
		room.Close()
		reg.logger.Info("room removed", slog.String("room_id", string(id)))
	}
}

func (reg *Registry) Count() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}

func hashPasscode(passcode string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(passcode), bcrypt.DefaultCost)
}

// generateCode must be called with reg.mu held
func (reg *Registry) generateCode() model.RoomID {
	for {
		code := model.RoomID(reg.deps.Random.String(RoomCodeLength, RoomCodeAlphabet))
		if _, taken := reg.rooms[code]; !taken {
			return code
		}
	}
}
