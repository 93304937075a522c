package hub

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/localjobs/pulse/internal/model"
)

// SendMessage runs the message pipeline: persist, fan out to the room with
// the client's correlation id, upsert the chat record, hint the
// counterpart, and hand off to the notification aggregator. Malformed
// payloads are dropped silently; persistence failures abandon the rest of
// the pipeline.
func (h *Hub) SendMessage(c *Client, p sendPayload) {
	if p.ChatID == "" || p.Text == "" || p.Sender == "" {
		return
	}
	memberA, memberB, ok := SplitChatID(p.ChatID)
	if !ok {
		c.log.Warn("send:bad chat id ", p.ChatID)
		return
	}

	ctx := context.Background()

	// Delivered means "reached a recipient device", not "durably stored":
	// it is true at creation only when the counterpart already has the
	// room open, and otherwise flips when they next join.
	counterpart := memberB
	if p.Sender == memberB {
		counterpart = memberA
	}
	msg := &model.Message{
		ID:            uuid.NewString(),
		ChatID:        p.ChatID,
		Sender:        p.Sender,
		Text:          p.Text,
		AppointmentID: p.AppointmentID,
		ReplyTo:       p.ReplyTo,
		ReplyText:     p.ReplyText,
		ReplySender:   p.ReplySender,
		Delivered:     p.Sender != counterpart && h.userInRoom(p.ChatID, counterpart),
		Seen:          false,
		CreatedAt:     time.Now(),
	}
	if err := h.store.Messages.Create(ctx, msg); err != nil {
		c.log.Error("send:create:", err)
		return
	}

	fanout := receiveMessagePayload{Message: *msg, TempID: p.TempID}
	for _, rc := range h.roomClients(p.ChatID) {
		rc.push(pushReceiveMessage, fanout)
	}

	if _, err := h.store.Chats.Ensure(ctx, p.ChatID, memberA, memberB); err != nil {
		c.log.Error("send:chat:", err)
	} else if err := h.store.Chats.Touch(ctx, p.ChatID, msg.ID, msg.CreatedAt); err != nil {
		c.log.Error("send:touch:", err)
	}

	// Self-chat: there is no counterpart to hint or notify.
	if counterpart == p.Sender {
		return
	}

	for _, cc := range h.clientsOf(counterpart) {
		cc.push(pushNewMessage, newMessagePayload{ChatID: p.ChatID, From: p.Sender})
	}

	h.notifyMessage(ctx, p.ChatID, p.Sender, counterpart, p.AppointmentID)
}
