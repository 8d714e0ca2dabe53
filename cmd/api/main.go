package main

import (
	"context"
	"log"

	"campushub/internal/config"
	"campushub/internal/handler"
	"campushub/internal/model"
	"campushub/internal/pkg"
	"campushub/internal/repository/mysql"
	"campushub/internal/repository/redis"
	"campushub/internal/router"
	"campushub/internal/service"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}
	cfg := config.Load()
	pkg.SetSecrets(cfg.JWTAccessSecret, cfg.JWTRefreshSecret)

	if err := mysql.InitDB(cfg.MySQLDSN); err != nil {
		panic(err)
	}

	if err := redis.Init(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); err != nil {
		panic(err)
	}

	// 自动建表（开发阶段 OK）
	if err := mysql.DB.AutoMigrate(
		&model.User{},
		&model.Community{},
		&model.CommunityMember{},
		&model.Group{},
		&model.GroupMember{},
		&model.Post{},
		&model.Comment{},
		&model.Upvote{},
		&model.Notification{},
		&model.NotificationOutbox{},
	); err != nil {
		panic(err)
	}

	// 通知事件投递：kafka不可用时降级为日志
	sender := service.LogSender
	producer, err := pkg.NewKafkaProducer(pkg.KafkaConfig{
		Brokers: cfg.KafkaBrokers,
		Topic:   cfg.KafkaTopic,
	})
	if err != nil {
		log.Printf("kafka producer init failed, falling back to log sender: %v", err)
	} else {
		defer producer.Close()
		sender = service.KafkaSender(producer)
	}

	relayer := service.NewOutboxRelayer(mysql.DB, sender)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go relayer.Run(ctx)

	emailCfg := pkg.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	}

	authz := service.NewAuthzService(mysql.DB)
	notify := service.NewNotificationService(mysql.DB)
	emailSvc := service.NewEmailService(emailCfg)
	userSvc := service.NewUserService(mysql.DB, emailSvc)
	communitySvc := service.NewCommunityService(mysql.DB, authz, notify, cfg.MaxManagedCommunities)
	groupSvc := service.NewGroupService(mysql.DB, authz, notify, cfg.MaxGroupsPerCommunity)
	postSvc := service.NewPostService(mysql.DB, authz, notify,
		redis.NewUpvoteCacheRepository(), &redis.DistLock{})

	r := router.InitRouter(&router.Handlers{
		User:         handler.NewUserHandler(userSvc),
		Email:        handler.NewEmailHandler(emailSvc),
		Community:    handler.NewCommunityHandler(communitySvc),
		Group:        handler.NewGroupHandler(groupSvc),
		Post:         handler.NewPostHandler(postSvc),
		Notification: handler.NewNotificationHandler(notify),
	})
	if err := r.Run(cfg.Addr); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
