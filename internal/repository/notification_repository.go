package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/deskline/helpdesk-service/internal/domain"
)

const notificationKeyPrefix = "helpdesk:notifications:"

// NotificationRepository stores per-account notification feeds.
type NotificationRepository interface {
	Push(ctx context.Context, notification domain.Notification) error
	List(ctx context.Context, accountID string, limit int) ([]domain.Notification, error)
	Clear(ctx context.Context, accountID string) error
}

type notificationRepository struct {
	client   *redis.Client
	feedSize int
}

// NewNotificationRepository returns a Redis list backed feed capped at feedSize entries.
func NewNotificationRepository(client *redis.Client, feedSize int) NotificationRepository {
	if feedSize <= 0 {
		feedSize = 50
	}
	return &notificationRepository{client: client, feedSize: feedSize}
}

func notificationKey(accountID string) string {
	return notificationKeyPrefix + accountID
}

func (r *notificationRepository) Push(ctx context.Context, notification domain.Notification) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	key := notificationKey(notification.AccountID)
	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, key, payload)
	pipe.LTrim(ctx, key, 0, int64(r.feedSize-1))
	_, err = pipe.Exec(ctx)
	return err
}

func (r *notificationRepository) List(ctx context.Context, accountID string, limit int) ([]domain.Notification, error) {
	if limit <= 0 || limit > r.feedSize {
		limit = r.feedSize
	}
	raw, err := r.client.LRange(ctx, notificationKey(accountID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	result := make([]domain.Notification, 0, len(raw))
	for _, item := range raw {
		var n domain.Notification
		if err := json.Unmarshal([]byte(item), &n); err != nil {
			continue
		}
		result = append(result, n)
	}
	return result, nil
}

func (r *notificationRepository) Clear(ctx context.Context, accountID string) error {
	return r.client.Del(ctx, notificationKey(accountID)).Err()
}
