package service

import (
	"context"

	"campushub/internal/model"
	"campushub/internal/pkg"
	"campushub/internal/repository/mysql"

	"gorm.io/gorm"
)

// GroupService 小组嵌套在社区内：入组前置社区成员资格，
// 管理权沿层级上溯（组manager或父社区manager或admin）
type GroupService struct {
	repo       *mysql.GroupRepository
	members    *mysql.GroupMemberRepository
	comMembers *mysql.CommunityMemberRepository
	communes   *mysql.CommunityRepository
	users      *mysql.UserRepository
	authz      *AuthzService
	notify     *NotificationService
	maxGroups  int
}

func NewGroupService(db *gorm.DB, authz *AuthzService, notify *NotificationService, maxGroups int) *GroupService {
	return &GroupService{
		repo:       &mysql.GroupRepository{DB: db},
		members:    &mysql.GroupMemberRepository{DB: db},
		comMembers: &mysql.CommunityMemberRepository{DB: db},
		communes:   &mysql.CommunityRepository{DB: db},
		users:      &mysql.UserRepository{DB: db},
		authz:      authz,
		notify:     notify,
		maxGroups:  maxGroups,
	}
}

// Create 建组需要父社区的manager权限（或admin）；创建者种为组manager+member
func (s *GroupService) Create(ctx context.Context, actorID, communityID uint64, name, desc string) (*model.Group, error) {
	if name == "" {
		return nil, pkg.E(pkg.KindPrecondition, "group", 0, "name required")
	}
	if _, err := s.communes.FindByID(ctx, communityID); err != nil {
		return nil, err
	}
	actor, err := s.users.FindByID(actorID)
	if err != nil {
		return nil, err
	}
	ok, err := s.authz.CanManageCommunity(ctx, actor, communityID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, pkg.E(pkg.KindUnauthorized, "community", communityID, "manager authority required")
	}

	count, err := s.repo.CountByCommunity(ctx, communityID)
	if err != nil {
		return nil, err
	}
	if s.maxGroups > 0 && count >= int64(s.maxGroups) {
		return nil, pkg.E(pkg.KindLimitExceeded, "community", communityID, "group limit reached")
	}

	group := &model.Group{
		CommunityID: communityID,
		Name:        name,
		Description: desc,
		CreatorID:   actorID,
	}
	return s.repo.Create(ctx, group)
}

// Join 入组前必须先是父社区成员
func (s *GroupService) Join(ctx context.Context, userID, groupID uint64) error {
	group, err := s.repo.FindByID(ctx, groupID)
	if err != nil {
		return err
	}
	ok, err := s.comMembers.IsMember(ctx, group.CommunityID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return pkg.E(pkg.KindPrecondition, "group", groupID, "must join parent community first")
	}
	return s.members.Join(ctx, groupID, userID, model.MemberRoleMember)
}

func (s *GroupService) Leave(ctx context.Context, userID, groupID uint64) error {
	if _, err := s.repo.FindByID(ctx, groupID); err != nil {
		return err
	}
	return s.members.Leave(ctx, groupID, userID)
}

// AddManager 三方OR授权；目标必须已是组成员
func (s *GroupService) AddManager(ctx context.Context, actorID, groupID, targetID uint64) error {
	group, err := s.repo.FindByID(ctx, groupID)
	if err != nil {
		return err
	}
	if err := s.requireGroupAuthority(ctx, actorID, group); err != nil {
		return err
	}
	if err := s.members.Promote(ctx, groupID, targetID); err != nil {
		return err
	}
	s.notify.Notify(ctx, targetID, actorID, "manager",
		"你已成为小组「"+group.Name+"」的管理员", groupLink(groupID))
	return nil
}

func (s *GroupService) RemoveManager(ctx context.Context, actorID, groupID, targetID uint64) error {
	group, err := s.repo.FindByID(ctx, groupID)
	if err != nil {
		return err
	}
	if err := s.requireGroupAuthority(ctx, actorID, group); err != nil {
		return err
	}
	return s.members.Demote(ctx, groupID, targetID)
}

// Delete 级联单事务：组帖子、组成员、组本体
func (s *GroupService) Delete(ctx context.Context, actorID, groupID uint64) error {
	group, err := s.repo.FindByID(ctx, groupID)
	if err != nil {
		return err
	}
	if err := s.requireGroupAuthority(ctx, actorID, group); err != nil {
		return err
	}
	return s.repo.Delete(ctx, groupID)
}

func (s *GroupService) ListByCommunity(ctx context.Context, communityID uint64, page, size int) ([]model.Group, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 50 {
		size = 20
	}
	return s.repo.ListByCommunity(ctx, communityID, (page-1)*size, size)
}

func (s *GroupService) Members(ctx context.Context, groupID uint64) ([]model.GroupMember, error) {
	if _, err := s.repo.FindByID(ctx, groupID); err != nil {
		return nil, err
	}
	return s.members.List(ctx, groupID)
}

func (s *GroupService) requireGroupAuthority(ctx context.Context, actorID uint64, group *model.Group) error {
	actor, err := s.users.FindByID(actorID)
	if err != nil {
		return err
	}
	ok, err := s.authz.CanManageGroup(ctx, actor, group)
	if err != nil {
		return err
	}
	if !ok {
		return pkg.E(pkg.KindUnauthorized, "group", group.ID, "manager authority required")
	}
	return nil
}
