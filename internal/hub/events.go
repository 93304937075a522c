package hub

import (
	"encoding/json"
	"time"

	"github.com/localjobs/pulse/internal/model"
)

// Inbound events (client to server).
const (
	evOnline      = "online"
	evGetPresence = "get-presence"
	evOnlineCheck = "online-check" // legacy alias for get-presence
	evOffline     = "offline"
	evJoinChat    = "joinChat"
	evLeaveChat   = "leaveChat"
	evSendMessage = "sendMessage"
	evTyping      = "typing"
	evMarkSeen    = "markSeen"
)

// Outbound push events (server to client).
const (
	pushPresence        = "presence"
	pushChatActive      = "chat-active"
	pushDelivered       = "deliveredUpdate"
	pushReceiveMessage  = "receiveMessage"
	pushNewMessage      = "new-message"
	pushNewNotification = "new-notification"
	pushTyping          = "typing"
	pushSeenUpdate      = "seenUpdate"
)

// envelope frames every inbound event.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// pushFrame frames every outbound event.
type pushFrame struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type onlinePayload struct {
	UserID string `json:"userId"`
	Token  string `json:"token,omitempty"`
}

type joinPayload struct {
	ChatID string `json:"chatId"`
	UserID string `json:"userId"`
}

type leavePayload struct {
	ChatID string `json:"chatId"`
}

type sendPayload struct {
	ChatID        string `json:"chatId"`
	Text          string `json:"text"`
	Sender        string `json:"sender"`
	TempID        string `json:"tempId,omitempty"`
	AppointmentID string `json:"appointmentId,omitempty"`
	ReplyTo       string `json:"replyTo,omitempty"`
	ReplyText     string `json:"replyText,omitempty"`
	ReplySender   string `json:"replySender,omitempty"`
}

type typingPayload struct {
	ChatID string `json:"chatId"`
}

type seenPayload struct {
	ChatID string `json:"chatId"`
	UserID string `json:"userId"`
}

type presencePayload struct {
	OnlineUsers []string             `json:"onlineUsers"`
	LastSeenMap map[string]time.Time `json:"lastSeenMap"`
}

type chatActivePayload struct {
	ChatID string `json:"chatId"`
	UserID string `json:"userId"`
	Active bool   `json:"active"`
}

type deliveredPayload struct {
	ChatID string `json:"chatId"`
}

type receiveMessagePayload struct {
	model.Message
	TempID string `json:"tempId,omitempty"`
}

type newMessagePayload struct {
	ChatID string `json:"chatId"`
	From   string `json:"from"`
}

type seenUpdatePayload struct {
	ChatID string `json:"chatId"`
	SeenBy string `json:"seenBy"`
}
