package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOtherMember(t *testing.T) {
	c := &Chat{ChatID: "alice_bob", MemberA: "alice", MemberB: "bob"}
	require.Equal(t, "bob", c.OtherMember("alice"))
	require.Equal(t, "alice", c.OtherMember("bob"))
	require.Equal(t, "", c.OtherMember("carol"))

	self := &Chat{ChatID: "alice_alice", MemberA: "alice", MemberB: "alice"}
	require.Equal(t, "", self.OtherMember("alice"))
}

func TestVisibleAfterClear(t *testing.T) {
	cut := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.True(t, VisibleAfterClear(cut.Add(time.Second), &cut))
	// Messages at or before the cutoff are hidden.
	require.False(t, VisibleAfterClear(cut, &cut))
	require.False(t, VisibleAfterClear(cut.Add(-time.Hour), &cut))
	// Never cleared: everything visible.
	require.True(t, VisibleAfterClear(cut.Add(-time.Hour), nil))
}

func TestValidNotifType(t *testing.T) {
	for _, ok := range []string{NotifMessage, NotifAppointment, NotifJob, NotifAccount, NotifPayment} {
		require.True(t, ValidNotifType(ok), ok)
	}
	require.False(t, ValidNotifType(""))
	require.False(t, ValidNotifType("spam"))
}
