package mysql

import (
	"context"

	"campushub/internal/model"

	"gorm.io/gorm"
)

type GroupRepository struct {
	DB *gorm.DB
}

// Create 建组并种入创建者，同一事务
func (r *GroupRepository) Create(ctx context.Context, g *model.Group) (*model.Group, error) {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(g).Error; err != nil {
			return err
		}
		return tx.Create(&model.GroupMember{
			GroupID: g.ID,
			UserID:  g.CreatorID,
			Role:    model.MemberRoleManager,
		}).Error
	})
	return g, translate(err, "group", 0)
}

func (r *GroupRepository) FindByID(ctx context.Context, id uint64) (*model.Group, error) {
	var group model.Group
	err := r.DB.WithContext(ctx).First(&group, id).Error
	return &group, translate(err, "group", id)
}

func (r *GroupRepository) ListByCommunity(ctx context.Context, communityID uint64, offset, limit int) ([]model.Group, error) {
	var list []model.Group
	err := r.DB.WithContext(ctx).
		Where("community_id = ?", communityID).
		Order("id desc").Offset(offset).Limit(limit).
		Find(&list).Error
	return list, err
}

func (r *GroupRepository) CountByCommunity(ctx context.Context, communityID uint64) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Group{}).
		Where("community_id = ?", communityID).
		Count(&count).Error
	return count, err
}

// Delete 级联删除，单事务：组内帖子(含评论/点赞)、组成员表、组本体
func (r *GroupRepository) Delete(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var postIDs []uint64
		if err := tx.Model(&model.Post{}).
			Where("group_id = ?", id).
			Pluck("id", &postIDs).Error; err != nil {
			return err
		}

		if len(postIDs) > 0 {
			if err := tx.Where("post_id IN ?", postIDs).Delete(&model.Comment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("post_id IN ?", postIDs).Delete(&model.Upvote{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", postIDs).Delete(&model.Post{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("group_id = ?", id).Delete(&model.GroupMember{}).Error; err != nil {
			return err
		}

		return tx.Delete(&model.Group{}, id).Error
	})
}
