package router

import (
	"campushub/internal/handler"
	"campushub/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	User         *handler.UserHandler
	Email        *handler.EmailHandler
	Community    *handler.CommunityHandler
	Group        *handler.GroupHandler
	Post         *handler.PostHandler
	Notification *handler.NotificationHandler
}

func InitRouter(h *Handlers) *gin.Engine {
	r := gin.Default()

	// 邮件相关接口
	emailGroup := r.Group("/api/email")
	{
		emailGroup.POST("/:scope/code", h.Email.SendCode)
	}

	// 用户相关接口
	userGroup := r.Group("/api/user")
	{
		userGroup.POST("/register", h.User.Register)
		userGroup.POST("/login", h.User.Login)
		userGroup.POST("/reset", h.User.ResetPassword)
	}

	// token相关接口
	tokenGroup := r.Group("/api/token")
	{
		tokenGroup.POST("/refresh", h.User.TokenRefresh)
	}

	// 登录态接口
	authGroup := r.Group("/api/auth")
	authGroup.Use(middleware.AuthMiddleware())
	{
		authGroup.POST("/logout", h.User.Logout)
		authGroup.POST("/change-password", h.User.ChangePassword)
	}

	// 社区相关接口
	communityGroup := r.Group("/api/community")
	communityGroup.Use(middleware.AuthMiddleware())
	{
		communityGroup.POST("/create", h.Community.Create)
		communityGroup.GET("/list", h.Community.List)
		communityGroup.POST("/:id/join", h.Community.Join)
		communityGroup.POST("/:id/leave", h.Community.Leave)
		communityGroup.POST("/:id/managers", h.Community.AddManager)
		communityGroup.DELETE("/:id/managers", h.Community.RemoveManager)
		communityGroup.GET("/:id/members", h.Community.Members)
		communityGroup.GET("/:id/groups", h.Group.ListByCommunity)
		communityGroup.DELETE("/:id", h.Community.Delete)
	}

	// 小组相关接口
	groupGroup := r.Group("/api/group")
	groupGroup.Use(middleware.AuthMiddleware())
	{
		groupGroup.POST("/create", h.Group.Create)
		groupGroup.POST("/:id/join", h.Group.Join)
		groupGroup.POST("/:id/leave", h.Group.Leave)
		groupGroup.POST("/:id/managers", h.Group.AddManager)
		groupGroup.DELETE("/:id/managers", h.Group.RemoveManager)
		groupGroup.GET("/:id/members", h.Group.Members)
		groupGroup.DELETE("/:id", h.Group.Delete)
	}

	// 帖子相关接口
	postGroup := r.Group("/api/post")
	postGroup.Use(middleware.AuthMiddleware())
	{
		postGroup.POST("/create", h.Post.CreatePost)
		postGroup.DELETE("/:id", h.Post.DeletePost)
		postGroup.GET("/list/community/:id", h.Post.ListByCommunity)
		postGroup.GET("/list/group/:id", h.Post.ListByGroup)
		postGroup.POST("/:id/comments", h.Post.AddComment)
		postGroup.GET("/:id/comments", h.Post.ListComments)
		postGroup.POST("/:id/upvote", h.Post.Upvote)
		postGroup.DELETE("/:id/upvote", h.Post.RemoveUpvote)
		postGroup.GET("/:id/upvote", h.Post.UpvoteState)
	}

	// 评论删除单独挂在 comment 下，:id 为评论ID
	commentGroup := r.Group("/api/comment")
	commentGroup.Use(middleware.AuthMiddleware())
	{
		commentGroup.DELETE("/:id", h.Post.DeleteComment)
	}

	// 通知相关接口
	notifyGroup := r.Group("/api/notification")
	notifyGroup.Use(middleware.AuthMiddleware())
	{
		notifyGroup.GET("/list", h.Notification.List)
		notifyGroup.GET("/unread", h.Notification.UnreadCount)
		notifyGroup.POST("/:id/read", h.Notification.MarkRead)
	}

	return r
}
