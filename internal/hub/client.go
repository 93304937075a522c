package hub

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
)

type connState int

const (
	connActive connState = iota
	connClosing
	connClosed
)

// Client is a middleman between one websocket connection and the hub. A
// user may hold any number of concurrent clients.
type Client struct {
	hub *Hub

	// id is the opaque per-connection id.
	id string

	// userID is empty until the connection announces online.
	userID string

	// state makes connection teardown single-fire: both the transport
	// close and an explicit offline event may arrive for the same logical
	// disconnect, and only the first one past connActive does the work.
	// Guarded by hub.mu.
	state connState

	// chats this connection joined as a delivery target. Guarded by hub.mu.
	chats map[string]struct{}

	log *zap.SugaredLogger

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of outbound frames.
	send chan []byte

	// done closes when the connection is torn down; push and writePump
	// select on it so nothing blocks on a dead connection.
	done chan struct{}
}

func newClient(h *Hub, id string, conn *websocket.Conn) *Client {
	c := &Client{
		hub:   h,
		id:    id,
		conn:  conn,
		chats: map[string]struct{}{},
		send:  make(chan []byte, h.sendQueue),
		done:  make(chan struct{}),
		log:   h.log.With("conn", id),
	}
	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()
	return c
}

// push queues an outbound event. The channel is best-effort: a full queue
// drops the frame (clients reconcile via the re-sync operations).
func (c *Client) push(event string, data interface{}) {
	frame, err := json.Marshal(pushFrame{Event: event, Data: data})
	if err != nil {
		c.log.Error("push:marshal:", err)
		return
	}
	select {
	case <-c.done:
	case c.send <- frame:
	default:
		c.log.Warn("push:queue full, dropping ", event)
	}
}

// readPump pumps events from the websocket connection to the hub.
//
// One readPump goroutine runs per connection, so at most one reader ever
// touches the conn.
func (c *Client) readPump() {
	defer func() {
		c.hub.Disconnect(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(c.hub.readLimit)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Error(err)
			}
			break
		}
		c.hub.Handle(c, message)
	}
}

// writePump pumps queued frames to the websocket connection and keeps the
// ping/pong heartbeat going. One writePump goroutine runs per connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.log.Errorf("WriteMessage:%v\n", err.Error())
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.log.Errorf("WriteMessage PingMessage:%v\n", err.Error())
				return
			}
		}
	}
}
