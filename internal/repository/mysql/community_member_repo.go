package mysql

import (
	"context"
	"errors"

	"campushub/internal/model"
	"campushub/internal/pkg"

	"gorm.io/gorm"
)

type CommunityMemberRepository struct {
	DB *gorm.DB
}

// Join 依赖 uk_community_user 唯一键兜底并发：重复插入统一返回 conflict
func (r *CommunityMemberRepository) Join(ctx context.Context, communityID, userID uint64, role int) error {
	err := r.DB.WithContext(ctx).Create(&model.CommunityMember{
		CommunityID: communityID,
		UserID:      userID,
		Role:        role,
	}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return pkg.Wrap(pkg.KindConflict, "community", communityID, "already a member", err)
	}
	return err
}

// Leave 单语句条件删除：成员行与管理员人数复查在同一条 DELETE 内完成，
// 避免"检查-删除"之间被并发降级打穿最后一个manager
func (r *CommunityMemberRepository) Leave(ctx context.Context, communityID, userID uint64) error {
	res := r.DB.WithContext(ctx).Exec(`
		DELETE FROM community_members
		WHERE community_id = ? AND user_id = ?
		  AND (role = 0 OR (SELECT cnt FROM (
		       SELECT COUNT(*) AS cnt FROM community_members WHERE community_id = ? AND role = 1
		  ) t) > 1)`,
		communityID, userID, communityID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.classifyLeave(ctx, communityID, userID)
	}
	return nil
}

func (r *CommunityMemberRepository) classifyLeave(ctx context.Context, communityID, userID uint64) error {
	var m model.CommunityMember
	err := r.DB.WithContext(ctx).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkg.E(pkg.KindConflict, "community", communityID, "not a member")
	}
	if err != nil {
		return err
	}
	return pkg.E(pkg.KindConflict, "community", communityID, "only manager, assign another first")
}

// Promote 仅member可晋升；幂等区分"非成员"与"已是manager"
func (r *CommunityMemberRepository) Promote(ctx context.Context, communityID, userID uint64) error {
	res := r.DB.WithContext(ctx).Model(&model.CommunityMember{}).
		Where("community_id = ? AND user_id = ? AND role = ?", communityID, userID, model.MemberRoleMember).
		Update("role", model.MemberRoleManager)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		ok, err := r.IsMember(ctx, communityID, userID)
		if err != nil {
			return err
		}
		if !ok {
			return pkg.E(pkg.KindPrecondition, "community", communityID, "must be a member first")
		}
		return pkg.E(pkg.KindConflict, "community", communityID, "already a manager")
	}
	return nil
}

// Demote 与 Leave 同样的单语句manager人数保护
func (r *CommunityMemberRepository) Demote(ctx context.Context, communityID, userID uint64) error {
	res := r.DB.WithContext(ctx).Exec(`
		UPDATE community_members SET role = 0
		WHERE community_id = ? AND user_id = ? AND role = 1
		  AND (SELECT cnt FROM (
		       SELECT COUNT(*) AS cnt FROM community_members WHERE community_id = ? AND role = 1
		  ) t) > 1`,
		communityID, userID, communityID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		ok, err := r.IsManager(ctx, communityID, userID)
		if err != nil {
			return err
		}
		if !ok {
			return pkg.E(pkg.KindConflict, "community", communityID, "not a manager")
		}
		return pkg.E(pkg.KindConflict, "community", communityID, "only manager, assign another first")
	}
	return nil
}

func (r *CommunityMemberRepository) IsMember(ctx context.Context, communityID, userID uint64) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.CommunityMember{}).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *CommunityMemberRepository) IsManager(ctx context.Context, communityID, userID uint64) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.CommunityMember{}).
		Where("community_id = ? AND user_id = ? AND role = ?", communityID, userID, model.MemberRoleManager).
		Count(&count).Error
	return count > 0, err
}

func (r *CommunityMemberRepository) ManagerCount(ctx context.Context, communityID uint64) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.CommunityMember{}).
		Where("community_id = ? AND role = ?", communityID, model.MemberRoleManager).
		Count(&count).Error
	return count, err
}

// ManagedCount 用户管理的社区数，用于创建上限校验
func (r *CommunityMemberRepository) ManagedCount(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.CommunityMember{}).
		Where("user_id = ? AND role = ?", userID, model.MemberRoleManager).
		Count(&count).Error
	return count, err
}

func (r *CommunityMemberRepository) List(ctx context.Context, communityID uint64) ([]model.CommunityMember, error) {
	var list []model.CommunityMember
	err := r.DB.WithContext(ctx).
		Where("community_id = ?", communityID).
		Order("role DESC, id ASC").
		Find(&list).Error
	return list, err
}

// MemberIDs 成员ID列表，通知扇出用
func (r *CommunityMemberRepository) MemberIDs(ctx context.Context, communityID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.DB.WithContext(ctx).Model(&model.CommunityMember{}).
		Where("community_id = ?", communityID).
		Pluck("user_id", &ids).Error
	return ids, err
}
