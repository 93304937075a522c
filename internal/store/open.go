package store

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/localjobs/pulse/internal/model"
)

// Open connects to postgres with SQL logging routed through zap.
func Open(dsn string, logSQL bool) (*gorm.DB, error) {
	loglevel := logger.Error
	if logSQL {
		loglevel = logger.Info
	}
	return gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.New(zap.NewStdLog(zap.L()), logger.Config{
			SlowThreshold: 200 * time.Millisecond,
			LogLevel:      loglevel,
		}),
	})
}

// Migrate creates the schema plus the partial unique index backing the
// atomic notification upsert (AutoMigrate cannot express the predicate).
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		new(model.User),
		new(model.Chat),
		new(model.ChatClear),
		new(model.Message),
		new(model.Notification),
	); err != nil {
		return err
	}
	return db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_notifications_unread_message
  ON notifications (user_id, meta_chat_id, meta_sender)
  WHERE is_read = false AND type = 'message'`).Error
}
