package handler

import (
	"net/http"
	"strconv"

	"campushub/internal/service"

	"github.com/gin-gonic/gin"
)

type GroupHandler struct {
	svc *service.GroupService
}

type GroupCreateReq struct {
	CommunityID uint64 `json:"community_id" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func NewGroupHandler(svc *service.GroupService) *GroupHandler {
	return &GroupHandler{svc: svc}
}

func (h *GroupHandler) Create(c *gin.Context) {
	var req GroupCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	group, err := h.svc.Create(c.Request.Context(), currentUserID(c), req.CommunityID, req.Name, req.Description)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":           group.ID,
		"community_id": group.CommunityID,
		"name":         group.Name,
	})
}

func (h *GroupHandler) Join(c *gin.Context) {
	groupID, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.Join(c.Request.Context(), currentUserID(c), groupID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *GroupHandler) Leave(c *gin.Context) {
	groupID, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.Leave(c.Request.Context(), currentUserID(c), groupID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *GroupHandler) AddManager(c *gin.Context) {
	groupID, ok := pathID(c)
	if !ok {
		return
	}
	var req ManagerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	if err := h.svc.AddManager(c.Request.Context(), currentUserID(c), groupID, req.UserID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *GroupHandler) RemoveManager(c *gin.Context) {
	groupID, ok := pathID(c)
	if !ok {
		return
	}
	var req ManagerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	if err := h.svc.RemoveManager(c.Request.Context(), currentUserID(c), groupID, req.UserID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *GroupHandler) Delete(c *gin.Context) {
	groupID, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), currentUserID(c), groupID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "deleted"})
}

// ListByCommunity 社区下的小组列表
func (h *GroupHandler) ListByCommunity(c *gin.Context) {
	communityID, ok := pathID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("size"))

	list, err := h.svc.ListByCommunity(c.Request.Context(), communityID, page, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *GroupHandler) Members(c *gin.Context) {
	groupID, ok := pathID(c)
	if !ok {
		return
	}
	list, err := h.svc.Members(c.Request.Context(), groupID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}
