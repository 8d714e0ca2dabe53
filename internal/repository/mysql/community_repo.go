package mysql

import (
	"context"

	"campushub/internal/model"

	"gorm.io/gorm"
)

type CommunityRepository struct {
	DB *gorm.DB
}

// Create 建社区并在同一事务里把创建者种为manager+member
func (r *CommunityRepository) Create(ctx context.Context, c *model.Community) (*model.Community, error) {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(c).Error; err != nil {
			return err
		}
		return tx.Create(&model.CommunityMember{
			CommunityID: c.ID,
			UserID:      c.CreatorID,
			Role:        model.MemberRoleManager,
		}).Error
	})
	return c, translate(err, "community", 0)
}

func (r *CommunityRepository) FindByID(ctx context.Context, id uint64) (*model.Community, error) {
	var community model.Community
	err := r.DB.WithContext(ctx).First(&community, id).Error
	return &community, translate(err, "community", id)
}

func (r *CommunityRepository) FindByName(ctx context.Context, name string) (*model.Community, error) {
	var community model.Community
	err := r.DB.WithContext(ctx).Where("name = ?", name).First(&community).Error
	return &community, translate(err, "community", 0)
}

func (r *CommunityRepository) List(ctx context.Context, offset, limit int) ([]model.Community, error) {
	var list []model.Community
	err := r.DB.WithContext(ctx).Order("id desc").Offset(offset).Limit(limit).Find(&list).Error
	return list, err
}

// Delete 级联删除，单事务：帖子(含评论/点赞)、小组(含成员表)、社区成员表、社区本体。
// 成员表行即用户侧的归属集合，删行即"从每个用户的集合中剥离"
func (r *CommunityRepository) Delete(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var groupIDs []uint64
		if err := tx.Model(&model.Group{}).
			Where("community_id = ?", id).
			Pluck("id", &groupIDs).Error; err != nil {
			return err
		}

		postQuery := tx.Model(&model.Post{}).Where("community_id = ?", id)
		if len(groupIDs) > 0 {
			postQuery = tx.Model(&model.Post{}).
				Where("community_id = ? OR group_id IN ?", id, groupIDs)
		}
		var postIDs []uint64
		if err := postQuery.Pluck("id", &postIDs).Error; err != nil {
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

		if len(groupIDs) > 0 {
			if err := tx.Where("group_id IN ?", groupIDs).Delete(&model.GroupMember{}).Error; err != nil {
				return err
			}
			if err := tx.Where("community_id = ?", id).Delete(&model.Group{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("community_id = ?", id).Delete(&model.CommunityMember{}).Error; err != nil {
			return err
		}

		return tx.Delete(&model.Community{}, id).Error
	})
}
