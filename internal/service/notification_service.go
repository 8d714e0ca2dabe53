package service

import (
	"context"
	"log"
	"time"

	"campushub/internal/model"
	"campushub/internal/pkg"
	"campushub/internal/repository/mysql"

	"gorm.io/gorm"
)

// NotificationService 通知下发。Notify是fire-and-forget：
// 入队失败只打日志，绝不让主操作失败
type NotificationService struct {
	repo *mysql.NotificationRepository
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{
		repo: &mysql.NotificationRepository{DB: db},
	}
}

// Notify 单条通知；actor即接收者时跳过（不给自己发提醒）
func (s *NotificationService) Notify(ctx context.Context, userID, actorID uint64, eventType, message, link string) {
	if userID == actorID {
		return
	}
	n := &model.Notification{UserID: userID, Message: message, Link: link}
	if err := s.repo.Insert(ctx, n, eventType, actorID); err != nil {
		log.Printf("notify enqueue failed user=%d event=%s: %v", userID, eventType, err)
	}
}

// FanOut 批量通知，逐条best-effort
func (s *NotificationService) FanOut(ctx context.Context, userIDs []uint64, actorID uint64, eventType, message, link string) {
	for _, id := range userIDs {
		s.Notify(ctx, id, actorID, eventType, message, link)
	}
}

func (s *NotificationService) List(ctx context.Context, userID uint64, page, size int) ([]model.Notification, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 50 {
		size = 20
	}
	return s.repo.ListByUser(ctx, userID, (page-1)*size, size)
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uint64) error {
	return s.repo.MarkRead(ctx, userID, notificationID)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uint64) (int64, error) {
	return s.repo.UnreadCount(ctx, userID)
}

type Sender func(ctx context.Context, ob *model.NotificationOutbox) error

// OutboxRelayer 从outbox表批量捞取待投递事件，异步交给kafka
type OutboxRelayer struct {
	repo      *mysql.OutboxRepository
	batchSize int
	interval  time.Duration
	sender    Sender
}

func NewOutboxRelayer(db *gorm.DB, sender Sender) *OutboxRelayer {
	return &OutboxRelayer{
		repo:      &mysql.OutboxRepository{DB: db},
		batchSize: 200,
		interval:  time.Second,
		sender:    sender,
	}
}

// Run outbox启动器
func (r *OutboxRelayer) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.drainOnce(ctx)
		}
	}
}

func (r *OutboxRelayer) drainOnce(ctx context.Context) {
	rows, err := r.repo.ListPending(ctx, r.batchSize)
	if err != nil {
		log.Printf("outbox query err: %v", err)
		return
	}
	for i := range rows {
		ob := rows[i]
		if err = r.sender(ctx, &ob); err != nil {
			_ = r.repo.MarkFailed(ctx, ob.ID)
			continue
		}
		_ = r.repo.MarkSent(ctx, ob.ID)
	}
}

// KafkaSender 用通知接收者做分区key，保证同一用户的通知有序
func KafkaSender(producer *pkg.KafkaProducer) Sender {
	return func(ctx context.Context, ob *model.NotificationOutbox) error {
		return producer.Send(ctx, pkg.MakeKeyFromID(ob.UserID), []byte(ob.Payload))
	}
}

// LogSender 默认 sender（占位）：本地开发无kafka时使用
func LogSender(ctx context.Context, ob *model.NotificationOutbox) error {
	log.Printf("OUTBOX SEND type=%s user=%d actor=%d payload=%s", ob.EventType, ob.UserID, ob.ActorID, ob.Payload)
	return nil
}
