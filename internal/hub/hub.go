// Package hub is the realtime core: presence tracking, chat-room delivery,
// message fanout, notification aggregation and seen/delivered bookkeeping
// over persistent websocket connections.
package hub

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/localjobs/pulse/internal/auth"
	"github.com/localjobs/pulse/internal/config"
	"github.com/localjobs/pulse/internal/dispatch"
	"github.com/localjobs/pulse/internal/store"
)

// Hub owns all in-memory realtime state. It is constructed once at process
// start and handed to every handler; nothing outside this package mutates
// the maps directly.
type Hub struct {
	mu sync.Mutex

	// conns holds every live connection, identified or not. Global
	// broadcasts go here; presence derives from users.
	conns map[*Client]struct{}

	// users: userId -> connId -> client. A user is online iff present here.
	users map[string]map[string]*Client

	// viewers: chatId -> userId -> join count across that user's
	// connections. A user is an active viewer iff their count is > 0.
	viewers map[string]map[string]int

	// rooms: chatId -> delivery-target connections.
	rooms map[string]map[*Client]struct{}

	// lastSeen holds the in-memory fallback served with every presence
	// snapshot; entries are cleared when the user comes back online.
	lastSeen map[string]time.Time

	store    *store.Store
	dispatch dispatch.Dispatcher
	tokens   *auth.Tokens

	notifySecret string

	readLimit int64
	sendQueue int

	compression      bool
	compressionLevel int

	upgrader websocket.Upgrader

	log *zap.SugaredLogger
}

// New builds a hub over the given gateway and dispatcher. tokens may be nil
// to accept online announcements without verification.
func New(st *store.Store, d dispatch.Dispatcher, tokens *auth.Tokens, notifySecret string, cc config.ClientConfig, log *zap.SugaredLogger) *Hub {
	h := &Hub{
		conns:            map[*Client]struct{}{},
		users:            map[string]map[string]*Client{},
		viewers:          map[string]map[string]int{},
		rooms:            map[string]map[*Client]struct{}{},
		lastSeen:         map[string]time.Time{},
		store:            st,
		dispatch:         d,
		tokens:           tokens,
		notifySecret:     notifySecret,
		readLimit:        cc.ReadMessageSizeLimit,
		sendQueue:        cc.SendQueue,
		compression:      cc.Compression,
		compressionLevel: cc.CompressionLevel,
		log:              log,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  cc.ReadBufferSize,
		WriteBufferSize: cc.WriteBufferSize,
	}
	h.upgrader.CheckOrigin = func(r *http.Request) bool {
		return true
	}
	return h
}

// ServeWs handles websocket requests from the peer.
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("upgrade:", err)
		return
	}
	client := newClient(h, uuid.NewString(), conn)
	if h.compression {
		client.conn.EnableWriteCompression(true)
		client.conn.SetCompressionLevel(h.compressionLevel)
	}
	client.conn.SetCloseHandler(func(code int, text string) error {
		client.log.Info("CloseHandler:", code, text)
		message := websocket.FormatCloseMessage(code, "")
		conn.WriteControl(websocket.CloseMessage, message, time.Now().Add(writeWait))
		return nil
	})
	go client.writePump()
	go client.readPump()
}

// clientsOf snapshots a user's live connections.
func (h *Hub) clientsOf(userID string) []*Client {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns := h.users[userID]
	out := make([]*Client, 0, len(conns))
	for _, c := range conns {
		out = append(out, c)
	}
	return out
}

// roomClients snapshots a chat's delivery-target connections.
func (h *Hub) roomClients(chatID string) []*Client {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*Client, 0, len(h.rooms[chatID]))
	for c := range h.rooms[chatID] {
		out = append(out, c)
	}
	return out
}

// allClients snapshots every live connection.
func (h *Hub) allClients() []*Client {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*Client, 0, len(h.conns))
	for c := range h.conns {
		out = append(out, c)
	}
	return out
}

// isViewer reports whether userID currently has the chat open.
func (h *Hub) isViewer(chatID, userID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.viewers[chatID][userID] > 0
}

// userInRoom reports whether any of userID's connections is a delivery
// target for the chat.
func (h *Hub) userInRoom(chatID, userID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.rooms[chatID] {
		if c.userID == userID {
			return true
		}
	}
	return false
}
