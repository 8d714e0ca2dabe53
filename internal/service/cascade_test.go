package service

import (
	"testing"

	"campushub/internal/model"
	"campushub/internal/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) count(t *testing.T, m any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(m).Where(query, args...).Count(&n).Error)
	return n
}

// 删社区布景：社区帖+小组帖，各带评论和点赞
func seedCascadeTree(t *testing.T, f *fixture) (*model.User, *model.Community, *model.Group, *model.Post, *model.Post) {
	t.Helper()
	mgr, community, group := seedCommunityWithGroup(t, f)
	member := f.seedUser(t, "member", model.RoleUser)
	require.NoError(t, f.communities.Join(ctxb(), member.ID, community.ID))
	require.NoError(t, f.groups.Join(ctxb(), member.ID, group.ID))

	cpost, err := f.posts.Create(ctxb(), member.ID, community.ID, 0, "社区帖", "body", false)
	require.NoError(t, err)
	gpost, err := f.posts.Create(ctxb(), member.ID, 0, group.ID, "小组帖", "body", false)
	require.NoError(t, err)
	for _, p := range []*model.Post{cpost, gpost} {
		_, err = f.posts.AddComment(ctxb(), mgr.ID, p.ID, "评论")
		require.NoError(t, err)
		_, err = f.posts.Upvote(ctxb(), mgr.ID, p.ID)
		require.NoError(t, err)
	}
	return member, community, group, cpost, gpost
}

// 删社区连带：小组、两类成员、帖子、评论、点赞一并清空
func TestDeleteCommunityCascade(t *testing.T) {
	f := newFixture(t)
	_, community, group, cpost, gpost := seedCascadeTree(t, f)
	adm := f.seedUser(t, "root", model.RoleAdmin)

	require.NoError(t, f.communities.Delete(ctxb(), adm.ID, community.ID))

	assert.Zero(t, f.count(t, &model.Community{}, "id = ?", community.ID))
	assert.Zero(t, f.count(t, &model.Group{}, "community_id = ?", community.ID))
	assert.Zero(t, f.count(t, &model.CommunityMember{}, "community_id = ?", community.ID))
	assert.Zero(t, f.count(t, &model.GroupMember{}, "group_id = ?", group.ID))
	assert.Zero(t, f.count(t, &model.Post{}, "community_id = ? OR group_id = ?", community.ID, group.ID))
	assert.Zero(t, f.count(t, &model.Comment{}, "post_id IN ?", []uint64{cpost.ID, gpost.ID}))
	assert.Zero(t, f.count(t, &model.Upvote{}, "post_id IN ?", []uint64{cpost.ID, gpost.ID}))
}

// 删小组只清小组子树，社区层内容原样保留
func TestDeleteGroupCascade(t *testing.T) {
	f := newFixture(t)
	_, community, group, cpost, gpost := seedCascadeTree(t, f)
	var mgr model.User
	require.NoError(t, f.db.First(&mgr, "username = ?", "manager").Error)

	require.NoError(t, f.groups.Delete(ctxb(), mgr.ID, group.ID))

	assert.Zero(t, f.count(t, &model.Group{}, "id = ?", group.ID))
	assert.Zero(t, f.count(t, &model.GroupMember{}, "group_id = ?", group.ID))
	assert.Zero(t, f.count(t, &model.Post{}, "id = ?", gpost.ID))
	assert.Zero(t, f.count(t, &model.Comment{}, "post_id = ?", gpost.ID))
	assert.Zero(t, f.count(t, &model.Upvote{}, "post_id = ?", gpost.ID))

	// 社区侧不受影响
	assert.EqualValues(t, 1, f.count(t, &model.Community{}, "id = ?", community.ID))
	assert.EqualValues(t, 1, f.count(t, &model.Post{}, "id = ?", cpost.ID))
	assert.EqualValues(t, 1, f.count(t, &model.Comment{}, "post_id = ?", cpost.ID))
}

// 小组manager无权删整个社区
func TestDeleteCommunityDeniedForGroupManager(t *testing.T) {
	f := newFixture(t)
	mgr, community, group := seedCommunityWithGroup(t, f)
	grpMgr := f.seedUser(t, "grpmgr", model.RoleUser)
	require.NoError(t, f.communities.Join(ctxb(), grpMgr.ID, community.ID))
	require.NoError(t, f.groups.Join(ctxb(), grpMgr.ID, group.ID))
	require.NoError(t, f.groups.AddManager(ctxb(), mgr.ID, group.ID, grpMgr.ID))

	err := f.communities.Delete(ctxb(), grpMgr.ID, community.ID)
	assert.True(t, pkg.IsKind(err, pkg.KindUnauthorized))
	assert.EqualValues(t, 1, f.count(t, &model.Community{}, "id = ?", community.ID))
}

func TestDeleteGroupDeniedForMember(t *testing.T) {
	f := newFixture(t)
	_, community, group := seedCommunityWithGroup(t, f)
	member := f.seedUser(t, "member", model.RoleUser)
	require.NoError(t, f.communities.Join(ctxb(), member.ID, community.ID))
	require.NoError(t, f.groups.Join(ctxb(), member.ID, group.ID))

	err := f.groups.Delete(ctxb(), member.ID, group.ID)
	assert.True(t, pkg.IsKind(err, pkg.KindUnauthorized))
}

func TestDeleteCommunityNotFound(t *testing.T) {
	f := newFixture(t)
	adm := f.seedUser(t, "root", model.RoleAdmin)

	err := f.communities.Delete(ctxb(), adm.ID, 404)
	assert.True(t, pkg.IsKind(err, pkg.KindNotFound))
}
