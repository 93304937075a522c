// Package store is the persistence gateway for the realtime node: users,
// chats, messages and notifications behind narrow per-entity interfaces so
// the hub can be tested against fakes.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/localjobs/pulse/internal/model"
)

var ErrNotFound = errors.New("store: not found")

type Users interface {
	// Get returns the user or ErrNotFound.
	Get(ctx context.Context, id string) (*model.User, error)
	// SetLastSeen stamps the user's last-seen instant. Missing user is not
	// an error; there is nothing to compensate for.
	SetLastSeen(ctx context.Context, id string, at time.Time) error
}

type Messages interface {
	Create(ctx context.Context, m *model.Message) error
	// MarkDelivered flips delivered=true on all undelivered messages in the
	// chat not sent by exceptSender. Returns the number of rows flipped.
	MarkDelivered(ctx context.Context, chatID, exceptSender string) (int64, error)
	// MarkSeen flips seen=true on all unseen messages in the chat not sent
	// by exceptSender.
	MarkSeen(ctx context.Context, chatID, exceptSender string) (int64, error)
	// ListChat returns the chat's messages in creation order as userID sees
	// them: anything at or before the user's cleared cutoff is skipped.
	ListChat(ctx context.Context, chatID, userID string) ([]model.Message, error)
}

type Chats interface {
	// Get returns the chat or ErrNotFound.
	Get(ctx context.Context, chatID string) (*model.Chat, error)
	// Ensure returns the chat, creating it with the given member pair if it
	// does not exist yet. Concurrent callers converge on one row.
	Ensure(ctx context.Context, chatID, memberA, memberB string) (*model.Chat, error)
	// Touch updates the last-message pointer and recency timestamp.
	Touch(ctx context.Context, chatID, lastMessageID string, at time.Time) error
	// Clear records the per-user hide-before cutoff for the chat.
	Clear(ctx context.Context, chatID, userID string, at time.Time) error
	// ClearedAt returns the user's cutoff for the chat, nil if never cleared.
	ClearedAt(ctx context.Context, chatID, userID string) (*time.Time, error)
	// Preview returns the chat's last message as seen by userID: nil when
	// the chat has no last message or the user cleared past it.
	Preview(ctx context.Context, chatID, userID string) (*model.Message, error)
}

type Notifications interface {
	Create(ctx context.Context, n *model.Notification) error
	// UpsertMessage performs the atomic find-or-increment for the single
	// unread message-notification keyed by (recipient, chatID, sender):
	// inserts a count=1 "1 new message" row, or bumps the count and rewrites
	// the display text on the existing unread row. Returns the resulting row.
	UpsertMessage(ctx context.Context, recipient, chatID, sender, title, appointmentID string) (*model.Notification, error)
	// MarkRead flips isRead=true on all unread message-notifications for
	// (userID, chatID). Returns the number of rows flipped.
	MarkRead(ctx context.Context, userID, chatID string) (int64, error)
}

// Store bundles the gateway interfaces handed to the hub.
type Store struct {
	Users         Users
	Messages      Messages
	Chats         Chats
	Notifications Notifications
}
