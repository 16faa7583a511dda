// Package notify delivers fire-and-forget update notices over Redis
// pub/sub. Downstream consumers (email senders, audit pipelines) subscribe
// to the channel; delivery failures never affect the reconciliation that
// produced the notice.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const UpdateChannel = "registrar:updates"

// UpdateNotice is the message published for every successful mutation.
type UpdateNotice struct {
	ID         string    `json:"id"`
	DomainName string    `json:"domain_name"`
	Change     string    `json:"change"`
	OccurredAt time.Time `json:"occurred_at"`
}

type RedisNotifier struct {
	client *redis.Client
}

func NewRedisNotifier(addr string, password string, db int) *RedisNotifier {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisNotifier{client: rdb}
}

// NotifyUpdate publishes an update notice to all subscribers.
func (n *RedisNotifier) NotifyUpdate(ctx context.Context, domainName, change string) error {
	notice := UpdateNotice{
		ID:         uuid.New().String(),
		DomainName: domainName,
		Change:     change,
		OccurredAt: time.Now(),
	}
	payload, err := json.Marshal(notice)
	if err != nil {
		return err
	}
	return n.client.Publish(ctx, UpdateChannel, payload).Err()
}

func (n *RedisNotifier) Ping(ctx context.Context) error {
	return n.client.Ping(ctx).Err()
}

// Subscribe returns a channel that receives published notices.
func (n *RedisNotifier) Subscribe(ctx context.Context) <-chan *redis.Message {
	pubsub := n.client.Subscribe(ctx, UpdateChannel)
	return pubsub.Channel()
}
