package service

import (
	"context"

	"campushub/internal/model"
	"campushub/internal/pkg"
	"campushub/internal/repository/mysql"

	"gorm.io/gorm"
)

// CommunityService 社区侧的成员台账与级联删除
type CommunityService struct {
	repo       *mysql.CommunityRepository
	members    *mysql.CommunityMemberRepository
	users      *mysql.UserRepository
	authz      *AuthzService
	notify     *NotificationService
	maxManaged int
}

func NewCommunityService(db *gorm.DB, authz *AuthzService, notify *NotificationService, maxManaged int) *CommunityService {
	return &CommunityService{
		repo:       &mysql.CommunityRepository{DB: db},
		members:    &mysql.CommunityMemberRepository{DB: db},
		users:      &mysql.UserRepository{DB: db},
		authz:      authz,
		notify:     notify,
		maxManaged: maxManaged,
	}
}

// Create 仅communityManager/admin可建；创建者自动成为manager+member
func (s *CommunityService) Create(ctx context.Context, actorID uint64, name, desc string, isPrivate bool) (*model.Community, error) {
	if name == "" {
		return nil, pkg.E(pkg.KindPrecondition, "community", 0, "name required")
	}

	actor, err := s.users.FindByID(actorID)
	if err != nil {
		return nil, err
	}
	if !actor.Role.CanCreateCommunity() {
		return nil, pkg.E(pkg.KindUnauthorized, "community", 0, "community manager role required")
	}

	// 创建上限来自配置（Settings Provider）
	managed, err := s.members.ManagedCount(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if s.maxManaged > 0 && managed >= int64(s.maxManaged) {
		return nil, pkg.E(pkg.KindLimitExceeded, "community", 0, "managed community limit reached")
	}

	community := &model.Community{
		Name:        name,
		Description: desc,
		CreatorID:   actorID,
		IsPrivate:   isPrivate,
	}
	return s.repo.Create(ctx, community)
}

func (s *CommunityService) Join(ctx context.Context, userID, communityID uint64) error {
	if _, err := s.repo.FindByID(ctx, communityID); err != nil {
		return err
	}
	return s.members.Join(ctx, communityID, userID, model.MemberRoleMember)
}

// Leave 最后一个manager不允许退出，先指定接任者
func (s *CommunityService) Leave(ctx context.Context, userID, communityID uint64) error {
	if _, err := s.repo.FindByID(ctx, communityID); err != nil {
		return err
	}
	return s.members.Leave(ctx, communityID, userID)
}

// AddManager 任命manager；目标必须已是成员
func (s *CommunityService) AddManager(ctx context.Context, actorID, communityID, targetID uint64) error {
	community, err := s.repo.FindByID(ctx, communityID)
	if err != nil {
		return err
	}
	actor, err := s.users.FindByID(actorID)
	if err != nil {
		return err
	}
	ok, err := s.authz.CanManageCommunity(ctx, actor, communityID)
	if err != nil {
		return err
	}
	if !ok {
		return pkg.E(pkg.KindUnauthorized, "community", communityID, "manager authority required")
	}
	if err := s.members.Promote(ctx, communityID, targetID); err != nil {
		return err
	}
	s.notify.Notify(ctx, targetID, actorID, "manager",
		"你已成为社区「"+community.Name+"」的管理员", communityLink(communityID))
	return nil
}

// RemoveManager 撤销manager；最后一个manager不可撤
func (s *CommunityService) RemoveManager(ctx context.Context, actorID, communityID, targetID uint64) error {
	if _, err := s.repo.FindByID(ctx, communityID); err != nil {
		return err
	}
	actor, err := s.users.FindByID(actorID)
	if err != nil {
		return err
	}
	ok, err := s.authz.CanManageCommunity(ctx, actor, communityID)
	if err != nil {
		return err
	}
	if !ok {
		return pkg.E(pkg.KindUnauthorized, "community", communityID, "manager authority required")
	}
	return s.members.Demote(ctx, communityID, targetID)
}

// Delete 仅admin或本社区manager可删（小组manager无权限）；级联单事务
func (s *CommunityService) Delete(ctx context.Context, actorID, communityID uint64) error {
	if _, err := s.repo.FindByID(ctx, communityID); err != nil {
		return err
	}
	actor, err := s.users.FindByID(actorID)
	if err != nil {
		return err
	}
	ok, err := s.authz.CanManageCommunity(ctx, actor, communityID)
	if err != nil {
		return err
	}
	if !ok {
		return pkg.E(pkg.KindUnauthorized, "community", communityID, "manager authority required")
	}
	return s.repo.Delete(ctx, communityID)
}

func (s *CommunityService) List(ctx context.Context, page, size int) ([]model.Community, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 50 {
		size = 20
	}
	return s.repo.List(ctx, (page-1)*size, size)
}

func (s *CommunityService) Members(ctx context.Context, communityID uint64) ([]model.CommunityMember, error) {
	if _, err := s.repo.FindByID(ctx, communityID); err != nil {
		return nil, err
	}
	return s.members.List(ctx, communityID)
}
