// Package dispatch hands persisted notifications to the external
// email/notification worker. Delivery is fire-and-forget: failures are
// logged and never retried or surfaced to the connection that caused them.
package dispatch

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v9"
	"go.uber.org/zap"

	"github.com/localjobs/pulse/internal/model"
)

type Dispatcher interface {
	Notify(ctx context.Context, n *model.Notification)
}

// envelope is the wire shape published to the worker channel.
type envelope struct {
	Recipient    string              `json:"recipient"`
	Notification *model.Notification `json:"notification"`
	Timestamp    int64               `json:"ts"`
}

func encode(n *model.Notification) ([]byte, error) {
	return json.Marshal(envelope{
		Recipient:    n.UserID,
		Notification: n,
		Timestamp:    time.Now().Unix(),
	})
}

// Redis publishes notifications to a redis channel the email worker
// subscribes to.
type Redis struct {
	rdb     *redis.Client
	channel string
	log     *zap.SugaredLogger
}

func NewRedis(host, channel string, log *zap.SugaredLogger) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         host,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		PoolSize:     10,
		PoolTimeout:  30 * time.Second,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return &Redis{rdb: rdb, channel: channel, log: log}, nil
}

func (d *Redis) Notify(ctx context.Context, n *model.Notification) {
	data, err := encode(n)
	if err != nil {
		d.log.Error("dispatch:encode:", err)
		return
	}
	if err := d.rdb.Publish(ctx, d.channel, string(data)).Err(); err != nil {
		d.log.Error("dispatch:publish:", err)
	}
}

func (d *Redis) Close() error {
	return d.rdb.Close()
}

// Nop is used when the dispatcher is disabled by config.
type Nop struct{}

func (Nop) Notify(context.Context, *model.Notification) {}
