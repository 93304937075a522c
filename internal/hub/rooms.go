package hub

import "context"

// JoinChat adds the connection to the chat's delivery group and marks its
// user an active viewer, then flips delivered on the other party's pending
// messages and confirms to the room. The join is bound to the connection's
// announced identity: an unidentified connection or a mismatched userId is
// dropped, so every viewer increment has a matching decrement in teardown.
func (h *Hub) JoinChat(c *Client, p joinPayload) {
	if p.ChatID == "" || p.UserID == "" {
		return
	}

	h.mu.Lock()
	if c.state != connActive || c.userID != p.UserID {
		h.mu.Unlock()
		return
	}
	// Re-join on the same connection must not bump the viewer count:
	// teardown and leave decrement at most once per chat per connection.
	if _, joined := c.chats[p.ChatID]; !joined {
		c.chats[p.ChatID] = struct{}{}
		vs, ok := h.viewers[p.ChatID]
		if !ok {
			vs = map[string]int{}
			h.viewers[p.ChatID] = vs
		}
		vs[p.UserID]++
	}
	room, ok := h.rooms[p.ChatID]
	if !ok {
		room = map[*Client]struct{}{}
		h.rooms[p.ChatID] = room
	}
	room[c] = struct{}{}
	h.mu.Unlock()

	h.broadcastChatActive(p.ChatID, p.UserID, true)

	// Joining is the delivery event: the other party's messages have now
	// reached this user's device.
	if _, err := h.store.Messages.MarkDelivered(context.Background(), p.ChatID, p.UserID); err != nil {
		c.log.Error("join:delivered:", err)
	}
	for _, rc := range h.roomClients(p.ChatID) {
		rc.push(pushDelivered, deliveredPayload{ChatID: p.ChatID})
	}
}

// LeaveChat removes the connection from the chat's delivery group and
// viewer set. The inactive signal goes out only when this was the user's
// last connection viewing the chat; with the chat still open elsewhere the
// user is, and must be announced as, an active viewer.
func (h *Hub) LeaveChat(c *Client, p leavePayload) {
	if p.ChatID == "" {
		return
	}

	h.mu.Lock()
	if _, joined := c.chats[p.ChatID]; !joined {
		h.mu.Unlock()
		return
	}
	delete(c.chats, p.ChatID)
	lastViewer := h.dropFromRoomLocked(p.ChatID, c)
	uid := c.userID
	h.mu.Unlock()

	if uid == "" || !lastViewer {
		return
	}
	h.broadcastChatActive(p.ChatID, uid, false)
}

// Typing relays the signal to the chat's other delivery targets; nothing
// is persisted.
func (h *Hub) Typing(c *Client, p typingPayload) {
	if p.ChatID == "" {
		return
	}
	for _, rc := range h.roomClients(p.ChatID) {
		if rc == c {
			continue
		}
		rc.push(pushTyping, typingPayload{ChatID: p.ChatID})
	}
}

// dropFromRoomLocked removes the connection from a chat's delivery group
// and decrements its user's viewer count. Empty sets are evicted; the
// tracker recreates them lazily on the next join. Reports whether the
// user's viewer count reached zero.
func (h *Hub) dropFromRoomLocked(chatID string, c *Client) bool {
	if room, ok := h.rooms[chatID]; ok {
		delete(room, c)
		if len(room) == 0 {
			delete(h.rooms, chatID)
		}
	}
	uid := c.userID
	if uid == "" {
		return false
	}
	vs, ok := h.viewers[chatID]
	if !ok {
		return false
	}
	if vs[uid] > 0 {
		vs[uid]--
	}
	if vs[uid] > 0 {
		return false
	}
	delete(vs, uid)
	if len(vs) == 0 {
		delete(h.viewers, chatID)
	}
	return true
}

func (h *Hub) broadcastChatActive(chatID, userID string, active bool) {
	p := chatActivePayload{ChatID: chatID, UserID: userID, Active: active}
	for _, c := range h.allClients() {
		c.push(pushChatActive, p)
	}
}
