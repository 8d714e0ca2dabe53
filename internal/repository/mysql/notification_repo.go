package mysql

import (
	"context"
	"encoding/json"
	"time"

	"campushub/internal/model"

	"gorm.io/gorm"
)

type NotificationRepository struct {
	DB *gorm.DB
}

// Insert 通知行与outbox事件在同一事务写入，投递由relayer异步完成
func (r *NotificationRepository) Insert(ctx context.Context, n *model.Notification, eventType string, actorID uint64) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(n).Error; err != nil {
			return err
		}
		payload, _ := json.Marshal(map[string]any{
			"event_time": time.Now().UTC().Format(time.RFC3339Nano),
			"user_id":    n.UserID,
			"actor_id":   actorID,
			"message":    n.Message,
			"link":       n.Link,
		})
		return tx.Create(&model.NotificationOutbox{
			EventType: eventType,
			UserID:    n.UserID,
			ActorID:   actorID,
			Payload:   string(payload),
			Status:    0,
		}).Error
	})
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID uint64, offset, limit int) ([]model.Notification, error) {
	var list []model.Notification
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&list).Error
	return list, err
}

// MarkRead 只允许本人标记自己的通知
func (r *NotificationRepository) MarkRead(ctx context.Context, userID, notificationID uint64) error {
	return r.DB.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read", true).Error
}

func (r *NotificationRepository) UnreadCount(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND `read` = ?", userID, false).
		Count(&count).Error
	return count, err
}
