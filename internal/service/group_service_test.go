package service

import (
	"testing"

	"campushub/internal/model"
	"campushub/internal/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 常用布景：manager管理的社区 + 其下小组
func seedCommunityWithGroup(t *testing.T, f *fixture) (*model.User, *model.Community, *model.Group) {
	t.Helper()
	m := f.seedUser(t, "manager", model.RoleCommunityManager)
	community, err := f.communities.Create(ctxb(), m.ID, "CS Club", "", false)
	require.NoError(t, err)
	group, err := f.groups.Create(ctxb(), m.ID, community.ID, "Algorithms", "")
	require.NoError(t, err)
	return m, community, group
}

func TestCreateGroupSeedsCreator(t *testing.T) {
	f := newFixture(t)
	m, _, group := seedCommunityWithGroup(t, f)

	assert.Equal(t, []uint64{m.ID}, f.groupManagers(t, group.ID))
}

func TestCreateGroupRequiresCommunityAuthority(t *testing.T) {
	f := newFixture(t)
	_, community, _ := seedCommunityWithGroup(t, f)
	b := f.seedUser(t, "bob", model.RoleUser)
	require.NoError(t, f.communities.Join(ctxb(), b.ID, community.ID))

	_, err := f.groups.Create(ctxb(), b.ID, community.ID, "Rogue", "")
	assert.True(t, pkg.IsKind(err, pkg.KindUnauthorized))
}

func TestCreateGroupDuplicateNameWithinCommunity(t *testing.T) {
	f := newFixture(t)
	m, community, _ := seedCommunityWithGroup(t, f)

	_, err := f.groups.Create(ctxb(), m.ID, community.ID, "Algorithms", "")
	assert.True(t, pkg.IsKind(err, pkg.KindConflict))
}

func TestCreateGroupLimit(t *testing.T) {
	f := newFixture(t)
	f.groups.maxGroups = 1
	m, community, _ := seedCommunityWithGroup(t, f)

	_, err := f.groups.Create(ctxb(), m.ID, community.ID, "Another", "")
	assert.True(t, pkg.IsKind(err, pkg.KindLimitExceeded))
}

// 入组前必须先是父社区成员
func TestJoinGroupRequiresCommunityMembership(t *testing.T) {
	f := newFixture(t)
	_, community, group := seedCommunityWithGroup(t, f)
	c := f.seedUser(t, "carol", model.RoleUser)

	err := f.groups.Join(ctxb(), c.ID, group.ID)
	assert.True(t, pkg.IsKind(err, pkg.KindPrecondition))

	require.NoError(t, f.communities.Join(ctxb(), c.ID, community.ID))
	require.NoError(t, f.groups.Join(ctxb(), c.ID, group.ID))
}

func TestJoinGroupTwiceConflict(t *testing.T) {
	f := newFixture(t)
	_, community, group := seedCommunityWithGroup(t, f)
	c := f.seedUser(t, "carol", model.RoleUser)
	require.NoError(t, f.communities.Join(ctxb(), c.ID, community.ID))
	require.NoError(t, f.groups.Join(ctxb(), c.ID, group.ID))

	err := f.groups.Join(ctxb(), c.ID, group.ID)
	assert.True(t, pkg.IsKind(err, pkg.KindConflict))
}

// 任命组manager要求目标已是组成员
func TestGroupAddManagerRequiresMembership(t *testing.T) {
	f := newFixture(t)
	m, community, group := seedCommunityWithGroup(t, f)
	c := f.seedUser(t, "carol", model.RoleUser)
	require.NoError(t, f.communities.Join(ctxb(), c.ID, community.ID))

	err := f.groups.AddManager(ctxb(), m.ID, group.ID, c.ID)
	assert.True(t, pkg.IsKind(err, pkg.KindPrecondition))

	require.NoError(t, f.groups.Join(ctxb(), c.ID, group.ID))
	require.NoError(t, f.groups.AddManager(ctxb(), m.ID, group.ID, c.ID))
	assert.Equal(t, []uint64{m.ID, c.ID}, f.groupManagers(t, group.ID))
}

// 父社区manager对小组有同等管理权（三方OR）
func TestParentCommunityManagerHasGroupAuthority(t *testing.T) {
	f := newFixture(t)
	m, community, group := seedCommunityWithGroup(t, f)

	// 再任命一个只在社区层的manager
	p := f.seedUser(t, "parentmgr", model.RoleUser)
	require.NoError(t, f.communities.Join(ctxb(), p.ID, community.ID))
	require.NoError(t, f.communities.AddManager(ctxb(), m.ID, community.ID, p.ID))

	c := f.seedUser(t, "carol", model.RoleUser)
	require.NoError(t, f.communities.Join(ctxb(), c.ID, community.ID))
	require.NoError(t, f.groups.Join(ctxb(), c.ID, group.ID))

	// p不是组成员，但可以任命组manager
	require.NoError(t, f.groups.AddManager(ctxb(), p.ID, group.ID, c.ID))
}

func TestGroupSoleManagerCannotLeave(t *testing.T) {
	f := newFixture(t)
	m, _, group := seedCommunityWithGroup(t, f)

	err := f.groups.Leave(ctxb(), m.ID, group.ID)
	assert.True(t, pkg.IsKind(err, pkg.KindConflict))
	assert.Equal(t, []uint64{m.ID}, f.groupManagers(t, group.ID))
}

func TestGroupRemoveSoleManagerBlocked(t *testing.T) {
	f := newFixture(t)
	m, _, group := seedCommunityWithGroup(t, f)
	adm := f.seedUser(t, "root", model.RoleAdmin)

	err := f.groups.RemoveManager(ctxb(), adm.ID, group.ID, m.ID)
	assert.True(t, pkg.IsKind(err, pkg.KindConflict))
}

func TestGroupMemberCannotManage(t *testing.T) {
	f := newFixture(t)
	_, community, group := seedCommunityWithGroup(t, f)
	c := f.seedUser(t, "carol", model.RoleUser)
	d := f.seedUser(t, "dave", model.RoleUser)
	for _, u := range []uint64{c.ID, d.ID} {
		require.NoError(t, f.communities.Join(ctxb(), u, community.ID))
		require.NoError(t, f.groups.Join(ctxb(), u, group.ID))
	}

	err := f.groups.AddManager(ctxb(), c.ID, group.ID, d.ID)
	assert.True(t, pkg.IsKind(err, pkg.KindUnauthorized))

	err = f.groups.Delete(ctxb(), c.ID, group.ID)
	assert.True(t, pkg.IsKind(err, pkg.KindUnauthorized))
}
