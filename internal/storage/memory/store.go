package memory

import (
	"context"
	"sync"
	"time"

	"github.com/mkallio/harvestmate/internal/dependencies/clock"
	"github.com/mkallio/harvestmate/internal/model"
	"github.com/mkallio/harvestmate/internal/storage"
)

// Store is an in-memory implementation of the record store. Expiry is
// enforced lazily on Get; the room's sweep deletes records for real.
type Store struct {
	mu      sync.RWMutex
	clock   clock.Clock
	records map[recordKey]*model.DisconnectedRecord
}

type recordKey struct {
	roomID model.RoomID
	color  model.Color
}

// New creates a new in-memory record store
func New(clk clock.Clock) *Store {
	return &Store{
		clock:   clk,
		records: make(map[recordKey]*model.DisconnectedRecord),
	}
}

// Ensure Store implements the interface
var _ storage.RecordStore = (*Store)(nil)

func (s *Store) Save(ctx context.Context, roomID model.RoomID, rec *model.DisconnectedRecord, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[recordKey{roomID: roomID, color: rec.Color}] = rec
	return nil
}

func (s *Store) Get(ctx context.Context, roomID model.RoomID, color model.Color) (*model.DisconnectedRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[recordKey{roomID: roomID, color: color}]
	if !ok {
		return nil, model.ErrRecordNotFound
	}
	if s.clock.Now().After(rec.ExpiresAt) {
		return nil, model.ErrRecordNotFound
	}
	return rec, nil
}

func (s *Store) Delete(ctx context.Context, roomID model.RoomID, color model.Color) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, recordKey{roomID: roomID, color: color})
	return nil
}
