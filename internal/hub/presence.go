package hub

import (
	"context"
	"time"
)

// Online registers the connection under userID and broadcasts the new
// presence snapshot to everyone. A missing userID or a failed token check
// drops the event silently.
func (h *Hub) Online(c *Client, p onlinePayload) {
	if p.UserID == "" {
		return
	}
	if h.tokens != nil {
		if err := h.tokens.Verify(p.Token, p.UserID); err != nil {
			c.log.Warn("online:token:", err)
			return
		}
	}

	h.mu.Lock()
	if c.state != connActive {
		h.mu.Unlock()
		return
	}
	// A connection identifies once. Allowing it to switch users would
	// strand the old registry entry behind a dead handle.
	if c.userID != "" && c.userID != p.UserID {
		h.mu.Unlock()
		c.log.Warn("online: already identified, ignoring ", p.UserID)
		return
	}
	first := c.userID == ""
	c.userID = p.UserID
	conns, ok := h.users[p.UserID]
	if !ok {
		conns = map[string]*Client{}
		h.users[p.UserID] = conns
	}
	conns[c.id] = c
	// Back online: the stale last-seen entry no longer applies.
	delete(h.lastSeen, p.UserID)
	h.mu.Unlock()

	if first {
		c.log = c.log.With("user", p.UserID)
		c.log.Info("online")
	}
	h.broadcastPresence()
}

// SendPresence pushes the current snapshot to the requesting connection
// only; it is the re-sync path for clients that missed a broadcast.
func (h *Hub) SendPresence(c *Client) {
	c.push(pushPresence, h.presenceSnapshot())
}

// Offline is the explicit counterpart of a transport disconnect. Both may
// fire for the same logical teardown; the connection state makes the
// second one a no-op.
func (h *Hub) Offline(c *Client) {
	h.teardown(c)
}

// Disconnect handles transport-level teardown.
func (h *Hub) Disconnect(c *Client) {
	h.teardown(c)
}

// teardown runs a connection's offline transition exactly once: it leaves
// all rooms, removes the connection from its user's set, and if that was
// the user's last connection records last-seen (durably and in the
// fallback map) and broadcasts presence.
func (h *Hub) teardown(c *Client) {
	h.mu.Lock()
	if c.state != connActive {
		h.mu.Unlock()
		return
	}
	c.state = connClosing

	var leftChats []string
	for chatID := range c.chats {
		if h.dropFromRoomLocked(chatID, c) {
			leftChats = append(leftChats, chatID)
		}
	}
	c.chats = map[string]struct{}{}

	uid := c.userID
	lastConn := false
	now := time.Now()
	if uid != "" {
		if conns, ok := h.users[uid]; ok {
			delete(conns, c.id)
			if len(conns) == 0 {
				delete(h.users, uid)
				h.lastSeen[uid] = now
				lastConn = true
			}
		}
	}
	delete(h.conns, c)
	c.state = connClosed
	h.mu.Unlock()
	close(c.done)

	for _, chatID := range leftChats {
		h.broadcastChatActive(chatID, uid, false)
	}

	if !lastConn {
		return
	}
	c.log.Info("offline")
	if err := h.store.Users.SetLastSeen(context.Background(), uid, now); err != nil {
		c.log.Error("offline:lastseen:", err)
	}
	h.broadcastPresence()
}

func (h *Hub) presenceSnapshot() presencePayload {
	h.mu.Lock()
	defer h.mu.Unlock()
	p := presencePayload{
		OnlineUsers: make([]string, 0, len(h.users)),
		LastSeenMap: make(map[string]time.Time, len(h.lastSeen)),
	}
	for uid := range h.users {
		p.OnlineUsers = append(p.OnlineUsers, uid)
	}
	for uid, t := range h.lastSeen {
		p.LastSeenMap[uid] = t
	}
	return p
}

// broadcastPresence pushes the full snapshot to every connection; clients
// filter for relevance.
func (h *Hub) broadcastPresence() {
	snap := h.presenceSnapshot()
	for _, c := range h.allClients() {
		c.push(pushPresence, snap)
	}
}
