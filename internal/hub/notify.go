package hub

import (
	"context"
	"errors"

	"github.com/localjobs/pulse/internal/store"
)

// notifyMessage decides whether a just-persisted message needs a
// notification. An active viewer's client already renders the message, so
// nothing is created; otherwise the single unread row for
// (recipient, chat, sender) is created or incremented atomically and
// pushed to the recipient's live connections.
func (h *Hub) notifyMessage(ctx context.Context, chatID, sender, recipient, appointmentID string) {
	if h.isViewer(chatID, recipient) {
		return
	}

	senderName := "Someone"
	u, err := h.store.Users.Get(ctx, sender)
	switch {
	case err == nil && u.Name != "":
		senderName = u.Name
	case err != nil && !errors.Is(err, store.ErrNotFound):
		h.log.Error("notify:sender lookup:", err)
	}

	n, err := h.store.Notifications.UpsertMessage(ctx, recipient, chatID, sender, "New message from "+senderName, appointmentID)
	if err != nil {
		h.log.Error("notify:upsert:", err)
		return
	}

	for _, rc := range h.clientsOf(recipient) {
		rc.push(pushNewNotification, n)
	}
	h.dispatch.Notify(ctx, n)
}
