package service

import (
	"testing"

	"campushub/internal/model"
	"campushub/internal/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePostRequiresMembership(t *testing.T) {
	f := newFixture(t)
	_, community, group := seedCommunityWithGroup(t, f)
	outsider := f.seedUser(t, "outsider", model.RoleUser)

	_, err := f.posts.Create(ctxb(), outsider.ID, community.ID, 0, "hi", "", false)
	assert.True(t, pkg.IsKind(err, pkg.KindUnauthorized))

	_, err = f.posts.Create(ctxb(), outsider.ID, 0, group.ID, "hi", "", false)
	assert.True(t, pkg.IsKind(err, pkg.KindUnauthorized))
}

func TestCreatePostRejectsDoubleScope(t *testing.T) {
	f := newFixture(t)
	mgr, community, group := seedCommunityWithGroup(t, f)

	_, err := f.posts.Create(ctxb(), mgr.ID, community.ID, group.ID, "hi", "", false)
	assert.True(t, pkg.IsKind(err, pkg.KindPrecondition))
}

// 普通成员发公告被拒；manager发公告后scope内成员（除作者）各收到一条
func TestAnnouncementGateAndFanOut(t *testing.T) {
	f := newFixture(t)
	mgr, community, _ := seedCommunityWithGroup(t, f)
	b := f.seedUser(t, "bob", model.RoleUser)
	c := f.seedUser(t, "carol", model.RoleUser)
	require.NoError(t, f.communities.Join(ctxb(), b.ID, community.ID))
	require.NoError(t, f.communities.Join(ctxb(), c.ID, community.ID))

	_, err := f.posts.Create(ctxb(), b.ID, community.ID, 0, "假公告", "", true)
	assert.True(t, pkg.IsKind(err, pkg.KindUnauthorized))

	_, err = f.posts.Create(ctxb(), mgr.ID, community.ID, 0, "期中通知", "", true)
	require.NoError(t, err)

	assert.Len(t, f.notificationsFor(t, b.ID), 1)
	assert.Len(t, f.notificationsFor(t, c.ID), 1)
	// 作者不给自己发
	assert.Empty(t, f.notificationsFor(t, mgr.ID))
}

func TestCommentNotifiesAuthorSkipSelf(t *testing.T) {
	f := newFixture(t)
	_, community, _ := seedCommunityWithGroup(t, f)
	a := f.seedUser(t, "alice", model.RoleUser)
	b := f.seedUser(t, "bob", model.RoleUser)
	require.NoError(t, f.communities.Join(ctxb(), a.ID, community.ID))
	require.NoError(t, f.communities.Join(ctxb(), b.ID, community.ID))

	post, err := f.posts.Create(ctxb(), a.ID, community.ID, 0, "求组队", "", false)
	require.NoError(t, err)

	// 自评不通知
	_, err = f.posts.AddComment(ctxb(), a.ID, post.ID, "顶一下")
	require.NoError(t, err)
	assert.Empty(t, f.notificationsFor(t, a.ID))

	_, err = f.posts.AddComment(ctxb(), b.ID, post.ID, "带我一个")
	require.NoError(t, err)
	require.Len(t, f.notificationsFor(t, a.ID), 1)

	// 事件元数据在outbox行上
	rows := f.outboxRows(t)
	require.Len(t, rows, 1)
	assert.Equal(t, "comment", rows[0].EventType)
	assert.Equal(t, b.ID, rows[0].ActorID)
	assert.Equal(t, a.ID, rows[0].UserID)
}

func TestCommentRequiresScopeMembership(t *testing.T) {
	f := newFixture(t)
	mgr, community, _ := seedCommunityWithGroup(t, f)
	outsider := f.seedUser(t, "outsider", model.RoleUser)

	post, err := f.posts.Create(ctxb(), mgr.ID, community.ID, 0, "内部帖", "", false)
	require.NoError(t, err)

	_, err = f.posts.AddComment(ctxb(), outsider.ID, post.ID, "路过")
	assert.True(t, pkg.IsKind(err, pkg.KindUnauthorized))
}

// 帖主删他人评论走帖主通道；无关成员删除被拒
func TestDeleteCommentChannels(t *testing.T) {
	f := newFixture(t)
	_, community, _ := seedCommunityWithGroup(t, f)
	a := f.seedUser(t, "alice", model.RoleUser)
	b := f.seedUser(t, "bob", model.RoleUser)
	c := f.seedUser(t, "carol", model.RoleUser)
	for _, u := range []uint64{a.ID, b.ID, c.ID} {
		require.NoError(t, f.communities.Join(ctxb(), u, community.ID))
	}

	post, err := f.posts.Create(ctxb(), a.ID, community.ID, 0, "求组队", "", false)
	require.NoError(t, err)
	comment, err := f.posts.AddComment(ctxb(), b.ID, post.ID, "广告")
	require.NoError(t, err)

	err = f.posts.DeleteComment(ctxb(), c.ID, comment.ID)
	assert.True(t, pkg.IsKind(err, pkg.KindUnauthorized))

	require.NoError(t, f.posts.DeleteComment(ctxb(), a.ID, comment.ID))
	err = f.posts.DeleteComment(ctxb(), a.ID, comment.ID)
	assert.True(t, pkg.IsKind(err, pkg.KindNotFound))
}

func TestDeletePostByScopeManager(t *testing.T) {
	f := newFixture(t)
	mgr, community, _ := seedCommunityWithGroup(t, f)
	a := f.seedUser(t, "alice", model.RoleUser)
	b := f.seedUser(t, "bob", model.RoleUser)
	require.NoError(t, f.communities.Join(ctxb(), a.ID, community.ID))
	require.NoError(t, f.communities.Join(ctxb(), b.ID, community.ID))

	post, err := f.posts.Create(ctxb(), a.ID, community.ID, 0, "违规帖", "", false)
	require.NoError(t, err)

	err = f.posts.Delete(ctxb(), b.ID, post.ID)
	assert.True(t, pkg.IsKind(err, pkg.KindUnauthorized))

	require.NoError(t, f.posts.Delete(ctxb(), mgr.ID, post.ID))
	_, err = f.posts.Get(ctxb(), post.ID)
	assert.True(t, pkg.IsKind(err, pkg.KindNotFound))
}

// 点赞幂等：重复点赞不累计、不重复通知；取消后可以再点
func TestUpvoteIdempotentAndNotifies(t *testing.T) {
	f := newFixture(t)
	_, community, _ := seedCommunityWithGroup(t, f)
	a := f.seedUser(t, "alice", model.RoleUser)
	b := f.seedUser(t, "bob", model.RoleUser)
	require.NoError(t, f.communities.Join(ctxb(), a.ID, community.ID))
	require.NoError(t, f.communities.Join(ctxb(), b.ID, community.ID))

	post, err := f.posts.Create(ctxb(), a.ID, community.ID, 0, "日常", "", false)
	require.NoError(t, err)

	changed, err := f.posts.Upvote(ctxb(), b.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = f.posts.Upvote(ctxb(), b.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	n, err := f.posts.UpvoteCount(ctxb(), b.ID, post.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Len(t, f.notificationsFor(t, a.ID), 1)

	changed, err = f.posts.RemoveUpvote(ctxb(), b.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = f.posts.RemoveUpvote(ctxb(), b.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	n, err = f.posts.UpvoteCount(ctxb(), b.ID, post.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

// 自赞落库但不产生通知
func TestSelfUpvoteNoNotification(t *testing.T) {
	f := newFixture(t)
	_, community, _ := seedCommunityWithGroup(t, f)
	a := f.seedUser(t, "alice", model.RoleUser)
	require.NoError(t, f.communities.Join(ctxb(), a.ID, community.ID))

	post, err := f.posts.Create(ctxb(), a.ID, community.ID, 0, "日常", "", false)
	require.NoError(t, err)

	changed, err := f.posts.Upvote(ctxb(), a.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Empty(t, f.notificationsFor(t, a.ID))
}

func TestListPostsPagination(t *testing.T) {
	f := newFixture(t)
	mgr, community, _ := seedCommunityWithGroup(t, f)
	for i := 0; i < 5; i++ {
		_, err := f.posts.Create(ctxb(), mgr.ID, community.ID, 0, "帖子", "", false)
		require.NoError(t, err)
	}

	page1, err := f.posts.ListByCommunity(ctxb(), community.ID, 1, 2)
	require.NoError(t, err)
	assert.Len(t, page1, 2)

	page3, err := f.posts.ListByCommunity(ctxb(), community.ID, 3, 2)
	require.NoError(t, err)
	assert.Len(t, page3, 1)
}
