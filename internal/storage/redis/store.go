package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mkallio/harvestmate/internal/model"
	"github.com/mkallio/harvestmate/internal/storage"
)

// Store is a Redis-backed implementation of the record store. Record
// expiry maps directly onto key TTLs, so expired records disappear
// without a sweep.
type Store struct {
	client *redis.Client
}

// New connects to Redis using a connection URL
func New(url string) (*Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Store{client: client}, nil
}

// NewWithClient wraps an existing client, mainly for tests
func NewWithClient(client *redis.Client) *Store {
	return &Store{client: client}
}

// Ensure Store implements the interface
var _ storage.RecordStore = (*Store)(nil)

// Close releases the underlying client
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) Save(ctx context.Context, roomID model.RoomID, rec *model.DisconnectedRecord, ttl time.Duration) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	return s.client.Set(ctx, recordKey(roomID, rec.Color), raw, ttl).Err()
}

func (s *Store) Get(ctx context.Context, roomID model.RoomID, color model.Color) (*model.DisconnectedRecord, error) {
	raw, err := s.client.Get(ctx, recordKey(roomID, color)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, model.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	var rec model.DisconnectedRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	return &rec, nil
}

func (s *Store) Delete(ctx context.Context, roomID model.RoomID, color model.Color) error {
	return s.client.Del(ctx, recordKey(roomID, color)).Err()
}

// recordKey returns the Redis key for a room's per-color record
func recordKey(roomID model.RoomID, color model.Color) string {
	return fmt.Sprintf("harvestmate:record:%s:%s", roomID, color)
}
