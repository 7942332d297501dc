package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/iho/memledger/internal/domain"
)

// DefaultChannel is the pub/sub channel used when none is configured.
const DefaultChannel = "memledger:notifications"

// RedisNotifier publishes notifications to a Redis pub/sub channel.
type RedisNotifier struct {
	client  *redis.Client
	channel string
}

// NewRedisNotifier creates a new RedisNotifier.
func NewRedisNotifier(client *redis.Client, channel string) *RedisNotifier {
	if channel == "" {
		channel = DefaultChannel
	}

	return &RedisNotifier{
		client:  client,
		channel: channel,
	}
}

// NotifyAboutTransfer publishes a JSON encoded domain.TransferNotification.
func (n *RedisNotifier) NotifyAboutTransfer(ctx context.Context, account domain.Account, message string) error {
	payload, err := json.Marshal(newNotification(account, message))
	if err != nil {
		return err
	}

	if err := n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	return nil
}

func newNotification(account domain.Account, message string) domain.TransferNotification {
	return domain.TransferNotification{
		ID:        ulid.Make().String(),
		AccountID: account.ID,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
}
