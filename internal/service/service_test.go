package service

import (
	"context"
	"fmt"
	"testing"

	"campushub/internal/model"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fixture 每个测试独立的内存库 + 组装好的服务
type fixture struct {
	db          *gorm.DB
	authz       *AuthzService
	notify      *NotificationService
	communities *CommunityService
	groups      *GroupService
	posts       *PostService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// 单连接串行化，内存sqlite下避免table locked
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Community{},
		&model.CommunityMember{},
		&model.Group{},
		&model.GroupMember{},
		&model.Post{},
		&model.Comment{},
		&model.Upvote{},
		&model.Notification{},
		&model.NotificationOutbox{},
	))

	authz := NewAuthzService(db)
	notify := NewNotificationService(db)
	return &fixture{
		db:          db,
		authz:       authz,
		notify:      notify,
		communities: NewCommunityService(db, authz, notify, 5),
		groups:      NewGroupService(db, authz, notify, 20),
		posts:       NewPostService(db, authz, notify, nil, nil),
	}
}

func (f *fixture) seedUser(t *testing.T, username string, role model.Role) *model.User {
	t.Helper()
	u := &model.User{
		Username: username,
		Password: "x",
		Email:    username + "@campus.test",
		Role:     role,
	}
	require.NoError(t, f.db.Create(u).Error)
	return u
}

func (f *fixture) communityManagers(t *testing.T, communityID uint64) []uint64 {
	t.Helper()
	var ids []uint64
	require.NoError(t, f.db.Model(&model.CommunityMember{}).
		Where("community_id = ? AND role = ?", communityID, model.MemberRoleManager).
		Order("user_id").
		Pluck("user_id", &ids).Error)
	return ids
}

func (f *fixture) communityMembers(t *testing.T, communityID uint64) []uint64 {
	t.Helper()
	var ids []uint64
	require.NoError(t, f.db.Model(&model.CommunityMember{}).
		Where("community_id = ?", communityID).
		Order("user_id").
		Pluck("user_id", &ids).Error)
	return ids
}

func (f *fixture) groupManagers(t *testing.T, groupID uint64) []uint64 {
	t.Helper()
	var ids []uint64
	require.NoError(t, f.db.Model(&model.GroupMember{}).
		Where("group_id = ? AND role = ?", groupID, model.MemberRoleManager).
		Order("user_id").
		Pluck("user_id", &ids).Error)
	return ids
}

func (f *fixture) notificationsFor(t *testing.T, userID uint64) []model.Notification {
	t.Helper()
	var list []model.Notification
	require.NoError(t, f.db.Where("user_id = ?", userID).Find(&list).Error)
	return list
}

func ctxb() context.Context { return context.Background() }
