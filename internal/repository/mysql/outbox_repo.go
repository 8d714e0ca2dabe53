package mysql

import (
	"context"

	"campushub/internal/model"

	"gorm.io/gorm"
)

type OutboxRepository struct {
	DB *gorm.DB
}

// ListPending 按批量取待投递事件，含曾失败的重试行
func (r *OutboxRepository) ListPending(ctx context.Context, limit int) ([]model.NotificationOutbox, error) {
	var rows []model.NotificationOutbox
	err := r.DB.WithContext(ctx).
		Where("status IN ?", []int8{0, 2}).
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *OutboxRepository) MarkSent(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.NotificationOutbox{}).
		Where("id = ?", id).
		Update("status", 1).Error
}

func (r *OutboxRepository) MarkFailed(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.NotificationOutbox{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status": 2,
			"retry":  gorm.Expr("retry + 1"),
		}).Error
}
