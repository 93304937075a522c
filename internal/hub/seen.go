package hub

import "context"

// MarkSeen batch-flips seen on the chat's messages not sent by the reader
// and read-state on the matching notifications, then confirms to the other
// member's connections. Silent no-op when the payload is incomplete or the
// chat is unknown.
func (h *Hub) MarkSeen(c *Client, p seenPayload) {
	if p.ChatID == "" || p.UserID == "" {
		return
	}
	ctx := context.Background()

	if _, err := h.store.Messages.MarkSeen(ctx, p.ChatID, p.UserID); err != nil {
		c.log.Error("seen:messages:", err)
	}
	if _, err := h.store.Notifications.MarkRead(ctx, p.UserID, p.ChatID); err != nil {
		c.log.Error("seen:notifications:", err)
	}

	chat, err := h.store.Chats.Get(ctx, p.ChatID)
	if err != nil {
		return
	}
	sender := chat.OtherMember(p.UserID)
	if sender == "" {
		return
	}
	for _, sc := range h.clientsOf(sender) {
		sc.push(pushSeenUpdate, seenUpdatePayload{ChatID: p.ChatID, SeenBy: p.UserID})
	}
}
