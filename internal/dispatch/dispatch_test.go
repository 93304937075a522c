package dispatch

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/localjobs/pulse/internal/model"
)

func TestEncode(t *testing.T) {
	n := &model.Notification{
		ID:      "n1",
		UserID:  "bob",
		Title:   "New message from Alice",
		Message: "1 new message",
		Type:    model.NotifMessage,
		Meta:    model.NotificationMeta{ChatID: "alice_bob", Sender: "alice", Count: 1},
	}
	data, err := encode(n)
	require.NoError(t, err)

	env := envelope{}
	require.NoError(t, json.Unmarshal(data, &env))
	require.Equal(t, "bob", env.Recipient)
	require.NotZero(t, env.Timestamp)
	require.Equal(t, "n1", env.Notification.ID)
	require.Equal(t, 1, env.Notification.Meta.Count)
}

func TestNopIsSilent(t *testing.T) {
	Nop{}.Notify(context.Background(), &model.Notification{ID: "n1"})
}
