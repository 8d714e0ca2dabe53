package handler

import (
	"net/http"
	"strconv"
	"time"

	"campushub/internal/service"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	svc *service.PostService
}

type CreatePostReq struct {
	CommunityID    uint64 `json:"community_id"`
	GroupID        uint64 `json:"group_id"`
	Title          string `json:"title" binding:"required"`
	Content        string `json:"content"`
	IsAnnouncement bool   `json:"is_announcement"`
}

type CreateCommentReq struct {
	Content string `json:"content" binding:"required"`
}

func NewPostHandler(svc *service.PostService) *PostHandler {
	return &PostHandler{svc: svc}
}

// CreatePost 创建帖子接口
func (h *PostHandler) CreatePost(c *gin.Context) {
	var req CreatePostReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	post, err := h.svc.Create(c.Request.Context(), currentUserID(c),
		req.CommunityID, req.GroupID, req.Title, req.Content, req.IsAnnouncement)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": post.ID})
}

// ListByCommunity 获取帖子列表接口（优先游标分页，兼容页码）
func (h *PostHandler) ListByCommunity(c *gin.Context) {
	communityID, ok := pathID(c)
	if !ok {
		return
	}

	lastIDStr := c.Query("last_id")
	lastTSStr := c.Query("last_created_at")

	// 提供了游标就走游标分页
	if lastIDStr != "" || lastTSStr != "" {
		var lastID uint64
		var lastTS int64
		if lastIDStr != "" {
			v, err := strconv.ParseUint(lastIDStr, 10, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid last_id"})
				return
			}
			lastID = v
		}
		if lastTSStr != "" {
			v, err := strconv.ParseInt(lastTSStr, 10, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid last_created_at"})
				return
			}
			lastTS = v
		}

		size, _ := strconv.Atoi(c.Query("size"))

		list, nextID, nextTS, err := h.svc.ListByCommunityCursor(c.Request.Context(), communityID, lastID, lastTS, size)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "list failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"list":              list,
			"next_last_id":      nextID,
			"next_created_at":   nextTS,
			"next_created_at_s": time.Unix(nextTS, 0).Format(time.RFC3339),
		})
		return
	}

	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("size"))

	list, err := h.svc.ListByCommunity(c.Request.Context(), communityID, page, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list, "page": page, "size": size})
}

// ListByGroup 小组帖子列表
func (h *PostHandler) ListByGroup(c *gin.Context) {
	groupID, ok := pathID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("size"))

	list, err := h.svc.ListByGroup(c.Request.Context(), groupID, page, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

// DeletePost 删除帖子接口
func (h *PostHandler) DeletePost(c *gin.Context) {
	postID, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), currentUserID(c), postID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "deleted"})
}

// AddComment 评论
func (h *PostHandler) AddComment(c *gin.Context) {
	postID, ok := pathID(c)
	if !ok {
		return
	}
	var req CreateCommentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	comment, err := h.svc.AddComment(c.Request.Context(), currentUserID(c), postID, req.Content)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": comment.ID})
}

func (h *PostHandler) ListComments(c *gin.Context) {
	postID, ok := pathID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("size"))

	list, err := h.svc.ListComments(c.Request.Context(), postID, page, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

// DeleteComment 删除评论；:id 为评论ID
func (h *PostHandler) DeleteComment(c *gin.Context) {
	commentID, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteComment(c.Request.Context(), currentUserID(c), commentID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "deleted"})
}

// Upvote 点赞
func (h *PostHandler) Upvote(c *gin.Context) {
	postID, ok := pathID(c)
	if !ok {
		return
	}
	changed, err := h.svc.Upvote(c.Request.Context(), currentUserID(c), postID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": changed})
}

// RemoveUpvote 取消点赞
func (h *PostHandler) RemoveUpvote(c *gin.Context) {
	postID, ok := pathID(c)
	if !ok {
		return
	}
	changed, err := h.svc.RemoveUpvote(c.Request.Context(), currentUserID(c), postID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": changed})
}

// UpvoteState 点赞状态+计数
func (h *PostHandler) UpvoteState(c *gin.Context) {
	postID, ok := pathID(c)
	if !ok {
		return
	}
	userID := currentUserID(c)

	upvoted, err := h.svc.IsUpvoted(c.Request.Context(), userID, postID)
	if err != nil {
		fail(c, err)
		return
	}
	count, err := h.svc.UpvoteCount(c.Request.Context(), userID, postID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"upvoted": upvoted, "count": count})
}
