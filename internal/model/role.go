package model

// Role 全局角色，闭合枚举；数值即权限等级
type Role int

const (
	RoleUser             Role = 0
	RoleCommunityManager Role = 1
	RoleEventManager     Role = 2
	RoleAdmin            Role = 3
)

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleCommunityManager:
		return "communityManager"
	case RoleEventManager:
		return "eventManager"
	case RoleAdmin:
		return "admin"
	}
	return "unknown"
}

// CanCreateCommunity 只有communityManager与admin可以创建社区
func (r Role) CanCreateCommunity() bool {
	return r == RoleCommunityManager || r == RoleAdmin
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// 成员表内的scope角色，与全局Role区分
const (
	MemberRoleMember  = 0
	MemberRoleManager = 1
)
