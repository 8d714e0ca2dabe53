package model

import "time"

type Notification struct {
	ID        uint64    `gorm:"primaryKey"`
	UserID    uint64    `gorm:"not null;index:idx_user_time"`
	Message   string    `gorm:"size:255;not null"`
	Link      string    `gorm:"size:255"`
	Read      bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"index:idx_user_time,priority:2,sort:desc"`
	UpdatedAt time.Time
}

// NotificationOutbox 通知事件监控表，由relayer异步投递到kafka
type NotificationOutbox struct {
	ID        uint64 `gorm:"primaryKey"`
	EventType string `gorm:"size:32;not null"` // announcement / upvote / comment / manager
	UserID    uint64 `gorm:"not null"`         // 接收者
	ActorID   uint64 `gorm:"not null"`         // 触发者
	Payload   string `gorm:"type:json;not null"`
	Status    int8   `gorm:"not null;default:0;comment:'0=pending,1=sent,2=failed'"`
	Retry     int    `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (NotificationOutbox) TableName() string { return "notification_outbox" }
