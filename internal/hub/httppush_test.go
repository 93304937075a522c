package hub

import (
	"bytes"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/localjobs/pulse/internal/auth"
	"github.com/localjobs/pulse/internal/model"
)

func TestServeNotifyPersistsAndPushes(t *testing.T) {
	h, f := newTestHub(t)
	b1 := online(h, "b1", "bob")
	drain(t, b1)

	body := []byte(`{"userId":"bob","title":"Appointment Accepted","message":"Your appointment for Plumbing was accepted","type":"appointment"}`)
	ts := fmt.Sprint(time.Now().Unix())
	sign := auth.Sign("push-secret", body, ts)

	req := httptest.NewRequest("POST", "/notify?sign="+sign+"&ts="+ts, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeNotify(rec, req)

	require.Equal(t, 200, rec.Code)
	require.Len(t, f.notifs.created, 1)
	n := f.notifs.created[0]
	require.Equal(t, model.NotifAppointment, n.Type)
	require.Equal(t, "bob", n.UserID)

	require.Len(t, framesOf(drain(t, b1), pushNewNotification), 1)
	require.Len(t, f.dispatch.sent, 1)
}

func TestServeNotifyRejectsBadSignature(t *testing.T) {
	h, f := newTestHub(t)

	body := []byte(`{"userId":"bob","title":"t","message":"m","type":"job"}`)
	ts := fmt.Sprint(time.Now().Unix())

	req := httptest.NewRequest("POST", "/notify?sign=deadbeef&ts="+ts, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeNotify(rec, req)

	require.Equal(t, 401, rec.Code)
	require.Empty(t, f.notifs.created)
}

func TestServeNotifyRejectsMessageType(t *testing.T) {
	h, f := newTestHub(t)

	body := []byte(`{"userId":"bob","title":"t","message":"m","type":"message"}`)
	ts := fmt.Sprint(time.Now().Unix())
	sign := auth.Sign("push-secret", body, ts)

	req := httptest.NewRequest("POST", "/notify?sign="+sign+"&ts="+ts, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeNotify(rec, req)

	require.Equal(t, 400, rec.Code)
	require.Empty(t, f.notifs.created)
}
