package model

import "time"

// ConnectionID identifies a single transport connection
type ConnectionID string

// PlayerSession is a seat actively held by a connected player.
// Its plot collection is owned exclusively by the room's command loop.
type PlayerSession struct {
	ConnectionID ConnectionID
	Username     string
	Color        Color
	Balance      int
	Plots        []Plot
}

// Snapshot is the serializable portion of a session that survives a
// disconnect and seeds the session on reconnection
type Snapshot struct {
	Username string `json:"username"`
	Balance  int    `json:"balance"`
	Plots    []Plot `json:"plots"`
}

// Validate vets a client-supplied snapshot. An empty or malformed
// snapshot must never supersede a server-held one.
func (s *Snapshot) Validate() error {
	if s == nil || s.Username == "" || s.Balance < 0 {
		return ErrMalformedSnapshot
	}
	return ValidatePlots(s.Plots)
}

// SnapshotSession copies the recoverable state out of a live session
func SnapshotSession(sess *PlayerSession) Snapshot {
	plots := make([]Plot, len(sess.Plots))
	copy(plots, sess.Plots)
	return Snapshot{
		Username: sess.Username,
		Balance:  sess.Balance,
		Plots:    plots,
	}
}

// DisconnectedRecord reserves a color slot for a dropped player until
// it is consumed by a reconnection or swept after expiry
type DisconnectedRecord struct {
	Color          Color     `json:"color"`
	Username       string    `json:"username"`
	Snapshot       Snapshot  `json:"snapshot"`
	DisconnectedAt time.Time `json:"disconnected_at"`
	ExpiresAt      time.Time `json:"expires_at"`
}
