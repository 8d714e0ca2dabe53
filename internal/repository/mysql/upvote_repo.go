package mysql

import (
	"context"
	"errors"

	"campushub/internal/model"

	"gorm.io/gorm"
)

type UpvoteRepository struct {
	DB *gorm.DB
}

// Upvote 唯一键(user_id, post_id)幂等插入；重复点赞返回 changed=false
func (r *UpvoteRepository) Upvote(ctx context.Context, userID, postID uint64) (bool, error) {
	var changed bool
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Create(&model.Upvote{UserID: userID, PostID: postID}).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			changed = false
			return nil
		}
		if err != nil {
			return err
		}
		changed = true
		return tx.Model(&model.Post{}).
			Where("id = ?", postID).
			UpdateColumn("upvote_count", gorm.Expr("upvote_count + 1")).Error
	})
	return changed, err
}

// RemoveUpvote 未删除任何行视为幂等成功；计数防负
func (r *UpvoteRepository) RemoveUpvote(ctx context.Context, userID, postID uint64) (bool, error) {
	var changed bool
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND post_id = ?", userID, postID).
			Delete(&model.Upvote{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			changed = false
			return nil
		}
		changed = true
		return tx.Model(&model.Post{}).
			Where("id = ?", postID).
			UpdateColumn("upvote_count", gorm.Expr("CASE WHEN upvote_count > 0 THEN upvote_count - 1 ELSE 0 END")).Error
	})
	return changed, err
}

func (r *UpvoteRepository) IsUpvoted(ctx context.Context, userID, postID uint64) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Upvote{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	return count > 0, err
}

func (r *UpvoteRepository) Count(ctx context.Context, postID uint64) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Upvote{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}
