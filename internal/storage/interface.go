package storage

import (
	"context"
	"time"

	"github.com/mkallio/harvestmate/internal/model"
)

// RecordStore persists disconnected-player records for the reconnection
// window. At most one record exists per room and color. All calls for a
// given room happen inside that room's serialized command loop, so
// implementations only need to be safe across rooms.
type RecordStore interface {
	// Save stores a record, replacing any previous one for the color
	Save(ctx context.Context, roomID model.RoomID, rec *model.DisconnectedRecord, ttl time.Duration) error

	// Get returns the unexpired record for a color, or ErrRecordNotFound
	Get(ctx context.Context, roomID model.RoomID, color model.Color) (*model.DisconnectedRecord, error)

	// Delete removes the record for a color; absent records are not an error
	Delete(ctx context.Context, roomID model.RoomID, color model.Color) error
}
