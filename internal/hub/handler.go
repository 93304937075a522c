package hub

import "encoding/json"

// Handle dispatches one inbound frame. Handlers are fire-and-forget: a
// malformed frame or a failed operation never produces an error event,
// only a log line.
func (h *Hub) Handle(c *Client, data []byte) {
	defer func() {
		if err := recover(); err != nil {
			c.log.Errorf("handler panic:%v\n", err)
		}
	}()

	env := envelope{}
	if err := json.Unmarshal(data, &env); err != nil {
		c.log.Errorf("handler:json unmarshal: %+v\n", err.Error())
		return
	}

	switch env.Event {
	case evOnline:
		p := onlinePayload{}
		if !decode(c, env, &p) {
			return
		}
		h.Online(c, p)
	case evGetPresence, evOnlineCheck:
		h.SendPresence(c)
	case evOffline:
		h.Offline(c)
	case evJoinChat:
		p := joinPayload{}
		if !decode(c, env, &p) {
			return
		}
		h.JoinChat(c, p)
	case evLeaveChat:
		p := leavePayload{}
		if !decode(c, env, &p) {
			return
		}
		h.LeaveChat(c, p)
	case evSendMessage:
		p := sendPayload{}
		if !decode(c, env, &p) {
			return
		}
		h.SendMessage(c, p)
	case evTyping:
		p := typingPayload{}
		if !decode(c, env, &p) {
			return
		}
		h.Typing(c, p)
	case evMarkSeen:
		p := seenPayload{}
		if !decode(c, env, &p) {
			return
		}
		h.MarkSeen(c, p)
	default:
		c.log.Warn("handler:unknown event ", env.Event)
	}
}

func decode(c *Client, env envelope, out interface{}) bool {
	if len(env.Data) == 0 {
		return false
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		c.log.Errorf("handler:%s payload: %v\n", env.Event, err)
		return false
	}
	return true
}
