package mysql

import (
	"context"
	"errors"

	"campushub/internal/model"
	"campushub/internal/pkg"

	"gorm.io/gorm"
)

type GroupMemberRepository struct {
	DB *gorm.DB
}

// Join 同社区成员表：唯一键 uk_group_user 兜底并发重复插入
func (r *GroupMemberRepository) Join(ctx context.Context, groupID, userID uint64, role int) error {
	err := r.DB.WithContext(ctx).Create(&model.GroupMember{
		GroupID: groupID,
		UserID:  userID,
		Role:    role,
	}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return pkg.Wrap(pkg.KindConflict, "group", groupID, "already a member", err)
	}
	return err
}

// Leave 条件删除，manager人数复查内联在语句里
func (r *GroupMemberRepository) Leave(ctx context.Context, groupID, userID uint64) error {
	res := r.DB.WithContext(ctx).Exec(`
		DELETE FROM group_members
		WHERE group_id = ? AND user_id = ?
		  AND (role = 0 OR (SELECT cnt FROM (
		       SELECT COUNT(*) AS cnt FROM group_members WHERE group_id = ? AND role = 1
		  ) t) > 1)`,
		groupID, userID, groupID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var m model.GroupMember
		err := r.DB.WithContext(ctx).
			Where("group_id = ? AND user_id = ?", groupID, userID).
			First(&m).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkg.E(pkg.KindConflict, "group", groupID, "not a member")
		}
		if err != nil {
			return err
		}
		return pkg.E(pkg.KindConflict, "group", groupID, "only manager, assign another first")
	}
	return nil
}

func (r *GroupMemberRepository) Promote(ctx context.Context, groupID, userID uint64) error {
	res := r.DB.WithContext(ctx).Model(&model.GroupMember{}).
		Where("group_id = ? AND user_id = ? AND role = ?", groupID, userID, model.MemberRoleMember).
		Update("role", model.MemberRoleManager)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		ok, err := r.IsMember(ctx, groupID, userID)
		if err != nil {
			return err
		}
		if !ok {
			return pkg.E(pkg.KindPrecondition, "group", groupID, "must be a member first")
		}
		return pkg.E(pkg.KindConflict, "group", groupID, "already a manager")
	}
	return nil
}

func (r *GroupMemberRepository) Demote(ctx context.Context, groupID, userID uint64) error {
	res := r.DB.WithContext(ctx).Exec(`
		UPDATE group_members SET role = 0
		WHERE group_id = ? AND user_id = ? AND role = 1
		  AND (SELECT cnt FROM (
		       SELECT COUNT(*) AS cnt FROM group_members WHERE group_id = ? AND role = 1
		  ) t) > 1`,
		groupID, userID, groupID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		ok, err := r.IsManager(ctx, groupID, userID)
		if err != nil {
			return err
		}
		if !ok {
			return pkg.E(pkg.KindConflict, "group", groupID, "not a manager")
		}
		return pkg.E(pkg.KindConflict, "group", groupID, "only manager, assign another first")
	}
	return nil
}

func (r *GroupMemberRepository) IsMember(ctx context.Context, groupID, userID uint64) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *GroupMemberRepository) IsManager(ctx context.Context, groupID, userID uint64) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.GroupMember{}).
		Where("group_id = ? AND user_id = ? AND role = ?", groupID, userID, model.MemberRoleManager).
		Count(&count).Error
	return count > 0, err
}

func (r *GroupMemberRepository) ManagerCount(ctx context.Context, groupID uint64) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.GroupMember{}).
		Where("group_id = ? AND role = ?", groupID, model.MemberRoleManager).
		Count(&count).Error
	return count, err
}

func (r *GroupMemberRepository) List(ctx context.Context, groupID uint64) ([]model.GroupMember, error) {
	var list []model.GroupMember
	err := r.DB.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("role DESC, id ASC").
		Find(&list).Error
	return list, err
}

func (r *GroupMemberRepository) MemberIDs(ctx context.Context, groupID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.DB.WithContext(ctx).Model(&model.GroupMember{}).
		Where("group_id = ?", groupID).
		Pluck("user_id", &ids).Error
	return ids, err
}
