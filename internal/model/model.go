package model

import "time"

// Notification types. The realtime core only creates NotifMessage rows;
// everything else arrives through the signed push endpoint.
const (
	NotifMessage     = "message"
	NotifAppointment = "appointment"
	NotifJob         = "job"
	NotifAccount     = "account"
	NotifPayment     = "payment"
)

// ValidNotifType reports whether t is one of the known notification types.
func ValidNotifType(t string) bool {
	switch t {
	case NotifMessage, NotifAppointment, NotifJob, NotifAccount, NotifPayment:
		return true
	}
	return false
}

// User is the slice of the account row this subsystem touches. The rest of
// the account (auth, profile, moderation) belongs to the CRUD side.
type User struct {
	ID        string     `json:"id" gorm:"primaryKey;size:64"`
	Name      string     `json:"name"`
	Email     string     `json:"email" gorm:"index"`
	LastSeen  *time.Time `json:"lastSeen"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Message is immutable after creation except for the delivered/seen flags,
// which only ever flip false to true.
type Message struct {
	ID     string `json:"id" gorm:"primaryKey;size:36"`
	ChatID string `json:"chatId" gorm:"column:chat_id;size:129;index:idx_messages_chat_seen_sender,priority:1"`
	Sender string `json:"sender" gorm:"size:64;index:idx_messages_chat_seen_sender,priority:3"`
	Text   string `json:"text"`

	// Optional appointment this conversation is about, carried verbatim.
	AppointmentID string `json:"appointmentId,omitempty"`

	// Reply snapshots. ReplyTo is a weak reference; the text and sender are
	// copied at send time so the preview survives the target being cleared.
	ReplyTo     string `json:"replyTo,omitempty" gorm:"size:36"`
	ReplyText   string `json:"replyText,omitempty"`
	ReplySender string `json:"replySender,omitempty" gorm:"size:64"`

	Delivered bool `json:"delivered"`
	Seen      bool `json:"seen" gorm:"index:idx_messages_chat_seen_sender,priority:2"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Chat is the two-party conversation record. ChatID is canonical: derivable
// from the member pair in either order, so MemberA < MemberB always holds.
type Chat struct {
	ChatID        string    `json:"chatId" gorm:"primaryKey;size:129"`
	MemberA       string    `json:"-" gorm:"size:64;index"`
	MemberB       string    `json:"-" gorm:"size:64;index"`
	LastMessageID string    `json:"lastMessage,omitempty" gorm:"size:36"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Members returns the member pair in canonical order.
func (c *Chat) Members() [2]string {
	return [2]string{c.MemberA, c.MemberB}
}

// OtherMember returns the member that is not userID, or "" if userID is not
// a member. A self-chat (both members equal) returns "".
func (c *Chat) OtherMember(userID string) string {
	switch userID {
	case c.MemberA:
		if c.MemberB == userID {
			return ""
		}
		return c.MemberB
	case c.MemberB:
		return c.MemberA
	}
	return ""
}

// ChatClear records a per-user cutoff for a chat. Messages created at or
// before ClearedAt are hidden from that user without being deleted, and the
// other member's view is unaffected.
type ChatClear struct {
	ID        uint      `gorm:"primaryKey"`
	ChatID    string    `gorm:"size:129;uniqueIndex:idx_chat_clears_chat_user,priority:1"`
	UserID    string    `gorm:"size:64;uniqueIndex:idx_chat_clears_chat_user,priority:2"`
	ClearedAt time.Time
}

// VisibleAfterClear reports whether a message created at createdAt is still
// visible to a user whose cutoff is clearedAt (nil means never cleared).
func VisibleAfterClear(createdAt time.Time, clearedAt *time.Time) bool {
	if clearedAt == nil {
		return true
	}
	return createdAt.After(*clearedAt)
}

// NotificationMeta is the message-notification aggregation key plus count.
type NotificationMeta struct {
	ChatID        string `json:"chatId,omitempty" gorm:"column:meta_chat_id;size:129"`
	Sender        string `json:"sender,omitempty" gorm:"column:meta_sender;size:64"`
	AppointmentID string `json:"appointmentId,omitempty" gorm:"column:meta_appointment_id"`
	Count         int    `json:"count,omitempty" gorm:"column:meta_count"`
}

// Notification is a persisted user notification. For Type == NotifMessage at
// most one unread row exists per (UserID, Meta.ChatID, Meta.Sender); later
// messages increment Meta.Count instead of inserting.
type Notification struct {
	ID      string           `json:"id" gorm:"primaryKey;size:36"`
	UserID  string           `json:"user" gorm:"size:64;index"`
	Title   string           `json:"title"`
	Message string           `json:"message"`
	Type    string           `json:"type" gorm:"size:24;index"`
	IsRead  bool             `json:"isRead"`
	Meta    NotificationMeta `json:"meta" gorm:"embedded"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
