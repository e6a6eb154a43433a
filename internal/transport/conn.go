package transport

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/mkallio/harvestmate/internal/model"
	"github.com/mkallio/harvestmate/internal/room"
)

const writeTimeout = 5 * time.Second

// wsConn adapts a websocket connection to the room's Sender. Writes are
// serialized with a mutex; wsjson.Write is not safe for concurrent use.
type wsConn struct {
	id   model.ConnectionID
	conn *websocket.Conn

	writeMu sync.Mutex
}

var _ room.Sender = (*wsConn)(nil)

func newWSConn(conn *websocket.Conn) *wsConn {
	return &wsConn{
		id:   model.ConnectionID(uuid.NewString()),
		conn: conn,
	}
}

func (c *wsConn) ID() model.ConnectionID {
	return c.id
}

func (c *wsConn) Send(event model.EventType, payload any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, c.conn, OutboundEvent{Event: event, Payload: payload})
}
