package service

import (
	"context"

	"campushub/internal/model"
	"campushub/internal/repository/mysql"

	"gorm.io/gorm"
)

// AuthzService 统一的权限裁决入口。所有帖子/评论/scope变更先走这里，
// 固定优先级：作者 → admin → 社区manager → 小组manager(含父社区manager) → 拒绝
type AuthzService struct {
	groups     *mysql.GroupRepository
	comMembers *mysql.CommunityMemberRepository
	grpMembers *mysql.GroupMemberRepository
}

func NewAuthzService(db *gorm.DB) *AuthzService {
	return &AuthzService{
		groups:     &mysql.GroupRepository{DB: db},
		comMembers: &mysql.CommunityMemberRepository{DB: db},
		grpMembers: &mysql.GroupMemberRepository{DB: db},
	}
}

// CanManageCommunity admin 或该社区manager；小组manager不在此列
func (s *AuthzService) CanManageCommunity(ctx context.Context, actor *model.User, communityID uint64) (bool, error) {
	if actor.Role.IsAdmin() {
		return true, nil
	}
	return s.comMembers.IsManager(ctx, communityID, actor.ID)
}

// CanManageGroup 三方OR：小组manager、父社区manager、admin。
// 小组的更新/删除/任免一律用这一个判断
func (s *AuthzService) CanManageGroup(ctx context.Context, actor *model.User, group *model.Group) (bool, error) {
	if actor.Role.IsAdmin() {
		return true, nil
	}
	ok, err := s.grpMembers.IsManager(ctx, group.ID, actor.ID)
	if err != nil || ok {
		return ok, err
	}
	// 沿scope层级上溯到父社区
	return s.comMembers.IsManager(ctx, group.CommunityID, actor.ID)
}

// CanMutatePost 帖子变更裁决，首个命中即返回
func (s *AuthzService) CanMutatePost(ctx context.Context, actor *model.User, post *model.Post) (bool, error) {
	if actor.ID == post.AuthorID {
		return true, nil
	}
	if actor.Role.IsAdmin() {
		return true, nil
	}
	// 无归属帖只有作者/admin两条通道
	if !post.Scoped() {
		return false, nil
	}
	if post.CommunityID != 0 {
		return s.comMembers.IsManager(ctx, post.CommunityID, actor.ID)
	}
	group, err := s.groups.FindByID(ctx, post.GroupID)
	if err != nil {
		return false, err
	}
	return s.CanManageGroup(ctx, actor, group)
}

// CanMutateComment 评论裁决；帖主可删自己帖子下的任意评论，
// 该通道排在作者/admin之后、scope manager之前
func (s *AuthzService) CanMutateComment(ctx context.Context, actor *model.User, post *model.Post, comment *model.Comment) (bool, error) {
	if actor.ID == comment.AuthorID {
		return true, nil
	}
	if actor.Role.IsAdmin() {
		return true, nil
	}
	if actor.ID == post.AuthorID {
		return true, nil
	}
	return s.CanMutatePost(ctx, actor, post)
}

// CanCreateAnnouncement 公告要求发帖时就已具备该scope的manager权限
func (s *AuthzService) CanCreateAnnouncement(ctx context.Context, actor *model.User, communityID, groupID uint64) (bool, error) {
	if groupID != 0 {
		group, err := s.groups.FindByID(ctx, groupID)
		if err != nil {
			return false, err
		}
		return s.CanManageGroup(ctx, actor, group)
	}
	if communityID != 0 {
		return s.CanManageCommunity(ctx, actor, communityID)
	}
	return false, nil
}
