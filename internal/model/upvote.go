package model

import "time"

type Upvote struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	UserID    uint64 `gorm:"not null;uniqueIndex:uk_user_post"`
	PostID    uint64 `gorm:"not null;index;uniqueIndex:uk_user_post"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Upvote) TableName() string {
	return "upvotes"
}
