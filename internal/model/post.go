package model

import "time"

// Post 帖子；community_id 与 group_id 至多一个非零，都为零表示无归属
type Post struct {
	ID             uint64    `gorm:"primaryKey"`
	CommunityID    uint64    `gorm:"not null;default:0;index:idx_community_time"`
	GroupID        uint64    `gorm:"not null;default:0;index:idx_group_time"`
	AuthorID       uint64    `gorm:"not null;index:idx_author_time"`
	Title          string    `gorm:"size:200;not null"`
	Content        string    `gorm:"type:text"`
	IsAnnouncement bool      `gorm:"not null;default:false"`
	Status         int       `gorm:"not null;default:0"` // 0=normal 1=deleted 2=banned
	UpvoteCount    int64     `gorm:"not null;default:0"`
	CreatedAt      time.Time `gorm:"index:idx_community_time,priority:2,sort:desc;index:idx_group_time,priority:2,sort:desc;index:idx_author_time,priority:2,sort:desc"`
	UpdatedAt      time.Time
}

// Scoped 是否归属于某个scope
func (p *Post) Scoped() bool {
	return p.CommunityID != 0 || p.GroupID != 0
}
