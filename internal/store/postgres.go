package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/localjobs/pulse/internal/model"
)

// NewPostgres wires the gorm-backed gateway over db.
func NewPostgres(db *gorm.DB) *Store {
	return &Store{
		Users:         &userStore{db: db},
		Messages:      &messageStore{db: db},
		Chats:         &chatStore{db: db},
		Notifications: &notificationStore{db: db},
	}
}

type userStore struct {
	db *gorm.DB
}

func (s *userStore) Get(ctx context.Context, id string) (*model.User, error) {
	u := &model.User{}
	err := s.db.WithContext(ctx).First(u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *userStore) SetLastSeen(ctx context.Context, id string, at time.Time) error {
	return s.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("last_seen", at).Error
}

type messageStore struct {
	db *gorm.DB
}

func (s *messageStore) Create(ctx context.Context, m *model.Message) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return s.db.WithContext(ctx).Create(m).Error
}

func (s *messageStore) MarkDelivered(ctx context.Context, chatID, exceptSender string) (int64, error) {
	res := s.db.WithContext(ctx).Model(&model.Message{}).
		Where("chat_id = ? AND delivered = ? AND sender <> ?", chatID, false, exceptSender).
		Update("delivered", true)
	return res.RowsAffected, res.Error
}

func (s *messageStore) MarkSeen(ctx context.Context, chatID, exceptSender string) (int64, error) {
	res := s.db.WithContext(ctx).Model(&model.Message{}).
		Where("chat_id = ? AND seen = ? AND sender <> ?", chatID, false, exceptSender).
		Update("seen", true)
	return res.RowsAffected, res.Error
}

func (s *messageStore) ListChat(ctx context.Context, chatID, userID string) ([]model.Message, error) {
	q := s.db.WithContext(ctx).Where("chat_id = ?", chatID)
	cc := &model.ChatClear{}
	err := s.db.WithContext(ctx).First(cc, "chat_id = ? AND user_id = ?", chatID, userID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
	case err != nil:
		return nil, err
	default:
		q = q.Where("created_at > ?", cc.ClearedAt)
	}
	var ms []model.Message
	err = q.Order("created_at").Find(&ms).Error
	return ms, err
}

type chatStore struct {
	db *gorm.DB
}

func (s *chatStore) Get(ctx context.Context, chatID string) (*model.Chat, error) {
	c := &model.Chat{}
	err := s.db.WithContext(ctx).First(c, "chat_id = ?", chatID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *chatStore) Ensure(ctx context.Context, chatID, memberA, memberB string) (*model.Chat, error) {
	if memberA > memberB {
		memberA, memberB = memberB, memberA
	}
	c := &model.Chat{ChatID: chatID, MemberA: memberA, MemberB: memberB}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(c).Error
	if err != nil {
		return nil, err
	}
	// Re-read so a lost insert race still returns the winning row.
	return s.Get(ctx, chatID)
}

func (s *chatStore) Touch(ctx context.Context, chatID, lastMessageID string, at time.Time) error {
	return s.db.WithContext(ctx).Model(&model.Chat{}).
		Where("chat_id = ?", chatID).
		Updates(map[string]interface{}{
			"last_message_id": lastMessageID,
			"updated_at":      at,
		}).Error
}

func (s *chatStore) Clear(ctx context.Context, chatID, userID string, at time.Time) error {
	cc := &model.ChatClear{ChatID: chatID, UserID: userID, ClearedAt: at}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "chat_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"cleared_at"}),
		}).
		Create(cc).Error
}

func (s *chatStore) ClearedAt(ctx context.Context, chatID, userID string) (*time.Time, error) {
	cc := &model.ChatClear{}
	err := s.db.WithContext(ctx).
		First(cc, "chat_id = ? AND user_id = ?", chatID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t := cc.ClearedAt
	return &t, nil
}

func (s *chatStore) Preview(ctx context.Context, chatID, userID string) (*model.Message, error) {
	c, err := s.Get(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if c.LastMessageID == "" {
		return nil, nil
	}
	m := &model.Message{}
	err = s.db.WithContext(ctx).First(m, "id = ?", c.LastMessageID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	cleared, err := s.ClearedAt(ctx, chatID, userID)
	if err != nil {
		return nil, err
	}
	if !model.VisibleAfterClear(m.CreatedAt, cleared) {
		return nil, nil
	}
	return m, nil
}

type notificationStore struct {
	db *gorm.DB
}

func (s *notificationStore) Create(ctx context.Context, n *model.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return s.db.WithContext(ctx).Create(n).Error
}

// The partial unique index idx_notifications_unread_message (see Migrate)
// makes this insert-or-increment atomic, closing the window where two
// near-simultaneous sends would each create their own row.
const upsertMessageNotifSQL = `
INSERT INTO notifications
  (id, user_id, title, message, type, is_read, meta_chat_id, meta_sender, meta_appointment_id, meta_count, created_at, updated_at)
VALUES
  (?, ?, ?, '1 new message', 'message', false, ?, ?, ?, 1, ?, ?)
ON CONFLICT (user_id, meta_chat_id, meta_sender) WHERE is_read = false AND type = 'message'
DO UPDATE SET
  meta_count = notifications.meta_count + 1,
  message    = (notifications.meta_count + 1)::text || ' new messages',
  updated_at = EXCLUDED.updated_at
RETURNING id, user_id, title, message, type, is_read, meta_chat_id, meta_sender, meta_appointment_id, meta_count, created_at, updated_at`

type notifRow struct {
	ID                string    `gorm:"column:id"`
	UserID            string    `gorm:"column:user_id"`
	Title             string    `gorm:"column:title"`
	Message           string    `gorm:"column:message"`
	Type              string    `gorm:"column:type"`
	IsRead            bool      `gorm:"column:is_read"`
	MetaChatID        string    `gorm:"column:meta_chat_id"`
	MetaSender        string    `gorm:"column:meta_sender"`
	MetaAppointmentID string    `gorm:"column:meta_appointment_id"`
	MetaCount         int       `gorm:"column:meta_count"`
	CreatedAt         time.Time `gorm:"column:created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at"`
}

func (s *notificationStore) UpsertMessage(ctx context.Context, recipient, chatID, sender, title, appointmentID string) (*model.Notification, error) {
	now := time.Now()
	row := notifRow{}
	err := s.db.WithContext(ctx).
		Raw(upsertMessageNotifSQL, uuid.NewString(), recipient, title, chatID, sender, appointmentID, now, now).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &model.Notification{
		ID:      row.ID,
		UserID:  row.UserID,
		Title:   row.Title,
		Message: row.Message,
		Type:    row.Type,
		IsRead:  row.IsRead,
		Meta: model.NotificationMeta{
			ChatID:        row.MetaChatID,
			Sender:        row.MetaSender,
			AppointmentID: row.MetaAppointmentID,
			Count:         row.MetaCount,
		},
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

func (s *notificationStore) MarkRead(ctx context.Context, userID, chatID string) (int64, error) {
	res := s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND type = ? AND meta_chat_id = ? AND is_read = ?",
			userID, model.NotifMessage, chatID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}
