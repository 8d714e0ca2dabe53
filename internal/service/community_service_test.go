package service

import (
	"sync"
	"testing"

	"campushub/internal/model"
	"campushub/internal/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCommunitySeedsCreator(t *testing.T) {
	f := newFixture(t)
	a := f.seedUser(t, "alice", model.RoleCommunityManager)

	community, err := f.communities.Create(ctxb(), a.ID, "CS Club", "", false)
	require.NoError(t, err)

	assert.Equal(t, []uint64{a.ID}, f.communityManagers(t, community.ID))
	assert.Equal(t, []uint64{a.ID}, f.communityMembers(t, community.ID))
}

func TestCreateCommunityRequiresRole(t *testing.T) {
	f := newFixture(t)
	u := f.seedUser(t, "plain", model.RoleUser)

	_, err := f.communities.Create(ctxb(), u.ID, "Nope", "", false)
	assert.True(t, pkg.IsKind(err, pkg.KindUnauthorized))
}

func TestCreateCommunityDuplicateName(t *testing.T) {
	f := newFixture(t)
	a := f.seedUser(t, "alice", model.RoleCommunityManager)

	_, err := f.communities.Create(ctxb(), a.ID, "CS Club", "", false)
	require.NoError(t, err)
	_, err = f.communities.Create(ctxb(), a.ID, "CS Club", "", false)
	assert.True(t, pkg.IsKind(err, pkg.KindConflict))
}

func TestCreateCommunityManagedLimit(t *testing.T) {
	f := newFixture(t)
	f.communities.maxManaged = 1
	a := f.seedUser(t, "alice", model.RoleCommunityManager)

	_, err := f.communities.Create(ctxb(), a.ID, "First", "", false)
	require.NoError(t, err)
	_, err = f.communities.Create(ctxb(), a.ID, "Second", "", false)
	assert.True(t, pkg.IsKind(err, pkg.KindLimitExceeded))
}

func TestJoinTwiceConflict(t *testing.T) {
	f := newFixture(t)
	a := f.seedUser(t, "alice", model.RoleCommunityManager)
	b := f.seedUser(t, "bob", model.RoleUser)
	community, err := f.communities.Create(ctxb(), a.ID, "CS Club", "", false)
	require.NoError(t, err)

	require.NoError(t, f.communities.Join(ctxb(), b.ID, community.ID))
	err = f.communities.Join(ctxb(), b.ID, community.ID)
	assert.True(t, pkg.IsKind(err, pkg.KindConflict))

	assert.Equal(t, []uint64{a.ID, b.ID}, f.communityMembers(t, community.ID))
}

func TestJoinCommunityNotFound(t *testing.T) {
	f := newFixture(t)
	b := f.seedUser(t, "bob", model.RoleUser)

	err := f.communities.Join(ctxb(), b.ID, 9999)
	assert.True(t, pkg.IsKind(err, pkg.KindNotFound))
}

func TestLeaveNotMemberConflict(t *testing.T) {
	f := newFixture(t)
	a := f.seedUser(t, "alice", model.RoleCommunityManager)
	b := f.seedUser(t, "bob", model.RoleUser)
	community, err := f.communities.Create(ctxb(), a.ID, "CS Club", "", false)
	require.NoError(t, err)

	err = f.communities.Leave(ctxb(), b.ID, community.ID)
	assert.True(t, pkg.IsKind(err, pkg.KindConflict))
}

// 场景：A建社区，B加入并被任命manager，A退出后B独掌
func TestManagerHandover(t *testing.T) {
	f := newFixture(t)
	a := f.seedUser(t, "alice", model.RoleCommunityManager)
	b := f.seedUser(t, "bob", model.RoleUser)

	community, err := f.communities.Create(ctxb(), a.ID, "CS Club", "", false)
	require.NoError(t, err)

	require.NoError(t, f.communities.Join(ctxb(), b.ID, community.ID))
	require.NoError(t, f.communities.AddManager(ctxb(), a.ID, community.ID, b.ID))
	assert.Equal(t, []uint64{a.ID, b.ID}, f.communityManagers(t, community.ID))

	require.NoError(t, f.communities.Leave(ctxb(), a.ID, community.ID))
	assert.Equal(t, []uint64{b.ID}, f.communityManagers(t, community.ID))
}

// 独掌manager不允许退出，状态不变
func TestSoleManagerCannotLeave(t *testing.T) {
	f := newFixture(t)
	a := f.seedUser(t, "alice", model.RoleCommunityManager)
	community, err := f.communities.Create(ctxb(), a.ID, "CS Club", "", false)
	require.NoError(t, err)

	err = f.communities.Leave(ctxb(), a.ID, community.ID)
	assert.True(t, pkg.IsKind(err, pkg.KindConflict))
	assert.Equal(t, []uint64{a.ID}, f.communityManagers(t, community.ID))
	assert.Equal(t, []uint64{a.ID}, f.communityMembers(t, community.ID))
}

func TestAddManagerRequiresMembership(t *testing.T) {
	f := newFixture(t)
	a := f.seedUser(t, "alice", model.RoleCommunityManager)
	b := f.seedUser(t, "bob", model.RoleUser)
	community, err := f.communities.Create(ctxb(), a.ID, "CS Club", "", false)
	require.NoError(t, err)

	err = f.communities.AddManager(ctxb(), a.ID, community.ID, b.ID)
	assert.True(t, pkg.IsKind(err, pkg.KindPrecondition))
}

func TestAddManagerAlreadyManager(t *testing.T) {
	f := newFixture(t)
	a := f.seedUser(t, "alice", model.RoleCommunityManager)
	community, err := f.communities.Create(ctxb(), a.ID, "CS Club", "", false)
	require.NoError(t, err)

	err = f.communities.AddManager(ctxb(), a.ID, community.ID, a.ID)
	assert.True(t, pkg.IsKind(err, pkg.KindConflict))
}

func TestAddManagerUnauthorized(t *testing.T) {
	f := newFixture(t)
	a := f.seedUser(t, "alice", model.RoleCommunityManager)
	b := f.seedUser(t, "bob", model.RoleUser)
	c := f.seedUser(t, "carol", model.RoleUser)
	community, err := f.communities.Create(ctxb(), a.ID, "CS Club", "", false)
	require.NoError(t, err)
	require.NoError(t, f.communities.Join(ctxb(), b.ID, community.ID))
	require.NoError(t, f.communities.Join(ctxb(), c.ID, community.ID))

	// 普通成员不能任命
	err = f.communities.AddManager(ctxb(), b.ID, community.ID, c.ID)
	assert.True(t, pkg.IsKind(err, pkg.KindUnauthorized))
}

func TestAddManagerNotifiesTarget(t *testing.T) {
	f := newFixture(t)
	a := f.seedUser(t, "alice", model.RoleCommunityManager)
	b := f.seedUser(t, "bob", model.RoleUser)
	community, err := f.communities.Create(ctxb(), a.ID, "CS Club", "", false)
	require.NoError(t, err)
	require.NoError(t, f.communities.Join(ctxb(), b.ID, community.ID))

	require.NoError(t, f.communities.AddManager(ctxb(), a.ID, community.ID, b.ID))
	require.Len(t, f.notificationsFor(t, b.ID), 1)
}

func TestRemoveSoleManagerBlocked(t *testing.T) {
	f := newFixture(t)
	a := f.seedUser(t, "alice", model.RoleCommunityManager)
	adm := f.seedUser(t, "root", model.RoleAdmin)
	community, err := f.communities.Create(ctxb(), a.ID, "CS Club", "", false)
	require.NoError(t, err)

	// admin也不能撤掉最后一个manager
	err = f.communities.RemoveManager(ctxb(), adm.ID, community.ID, a.ID)
	assert.True(t, pkg.IsKind(err, pkg.KindConflict))
	assert.Equal(t, []uint64{a.ID}, f.communityManagers(t, community.ID))
}

func TestRemoveManagerNotManager(t *testing.T) {
	f := newFixture(t)
	a := f.seedUser(t, "alice", model.RoleCommunityManager)
	b := f.seedUser(t, "bob", model.RoleUser)
	community, err := f.communities.Create(ctxb(), a.ID, "CS Club", "", false)
	require.NoError(t, err)
	require.NoError(t, f.communities.Join(ctxb(), b.ID, community.ID))

	err = f.communities.RemoveManager(ctxb(), a.ID, community.ID, b.ID)
	assert.True(t, pkg.IsKind(err, pkg.KindConflict))
}

// 并发join同一社区：唯一键兜底，恰好一个成功，其余conflict
func TestConcurrentJoinSingleWinner(t *testing.T) {
	f := newFixture(t)
	a := f.seedUser(t, "alice", model.RoleCommunityManager)
	x := f.seedUser(t, "xavier", model.RoleUser)
	community, err := f.communities.Create(ctxb(), a.ID, "CS Club", "", false)
	require.NoError(t, err)

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = f.communities.Join(ctxb(), x.ID, community.ID)
		}(i)
	}
	wg.Wait()

	var okCount int
	for _, err := range errs {
		if err == nil {
			okCount++
			continue
		}
		assert.True(t, pkg.IsKind(err, pkg.KindConflict), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, okCount)
	assert.Equal(t, []uint64{a.ID, x.ID}, f.communityMembers(t, community.ID))
}
