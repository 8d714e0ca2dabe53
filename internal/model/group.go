package model

import "time"

// Group 社区内的小组；community_id 创建后不可变
type Group struct {
	ID          uint64 `gorm:"primaryKey"`
	CommunityID uint64 `gorm:"not null;index;uniqueIndex:uk_community_name"`
	Name        string `gorm:"size:64;not null;uniqueIndex:uk_community_name"`
	Description string `gorm:"type:text"`
	CreatorID   uint64 `gorm:"not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type GroupMember struct {
	ID        uint64 `gorm:"primaryKey"`
	GroupID   uint64 `gorm:"not null;index;uniqueIndex:uk_group_user"`
	UserID    uint64 `gorm:"not null;index;uniqueIndex:uk_group_user"`
	Role      int    `gorm:"not null;default:0"` // 0=member, 1=manager
	CreatedAt time.Time
	UpdatedAt time.Time
}
