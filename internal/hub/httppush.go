package hub

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/localjobs/pulse/internal/auth"
	"github.com/localjobs/pulse/internal/model"
)

// pushRequest is what the CRUD side posts to /notify when an appointment,
// job, moderation or payment event needs a user notification.
type pushRequest struct {
	UserID  string `json:"userId"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Type    string `json:"type"`

	AppointmentID string `json:"appointmentId,omitempty"`
}

func pushResp(log *zap.SugaredLogger, w http.ResponseWriter, status int, code, content string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"code":"` + code + `","data":"` + content + `"}`))
	log.Info("[PUSHRESP]", code, content)
}

// ServeNotify persists a non-message notification and pushes it to the
// recipient's live connections. Requests must carry sign and ts query
// params computed over the body with the shared notify secret.
func (h *Hub) ServeNotify(w http.ResponseWriter, r *http.Request) {
	log := h.log.With("method", "notifypush")
	defer r.Body.Close()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		pushResp(log, w, http.StatusBadRequest, "fail", "body")
		return
	}

	sign := r.URL.Query().Get("sign")
	ts := r.URL.Query().Get("ts")
	if sign == "" || ts == "" {
		pushResp(log, w, http.StatusUnauthorized, "fail", "sign")
		return
	}
	if !auth.CheckSign(h.notifySecret, body, ts, sign) {
		pushResp(log, w, http.StatusUnauthorized, "fail", "sign")
		return
	}

	req := pushRequest{}
	if err := json.Unmarshal(body, &req); err != nil {
		pushResp(log, w, http.StatusBadRequest, "fail", "data format")
		return
	}
	if req.UserID == "" || req.Title == "" || req.Message == "" {
		pushResp(log, w, http.StatusBadRequest, "fail", "missing field")
		return
	}
	// The message type is owned by the aggregator; everything else comes
	// through here.
	if !model.ValidNotifType(req.Type) || req.Type == model.NotifMessage {
		pushResp(log, w, http.StatusBadRequest, "fail", "type")
		return
	}

	n := &model.Notification{
		UserID:  req.UserID,
		Title:   req.Title,
		Message: req.Message,
		Type:    req.Type,
		Meta: model.NotificationMeta{
			AppointmentID: req.AppointmentID,
		},
	}
	ctx := context.Background()
	if err := h.store.Notifications.Create(ctx, n); err != nil {
		log.Error("notifypush:create:", err)
		pushResp(log, w, http.StatusInternalServerError, "fail", "store")
		return
	}

	for _, c := range h.clientsOf(req.UserID) {
		c.push(pushNewNotification, n)
	}
	h.dispatch.Notify(ctx, n)

	pushResp(log, w, http.StatusOK, "ok", n.ID)
}
