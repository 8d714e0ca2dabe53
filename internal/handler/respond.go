package handler

import (
	"campushub/internal/middleware"
	"campushub/internal/pkg"

	"github.com/gin-gonic/gin"
)

// fail 业务错误统一出口：错误分类映射状态码，消息原样透传
func fail(c *gin.Context, err error) {
	c.JSON(pkg.HTTPStatus(err), gin.H{"msg": err.Error()})
}

func currentUserID(c *gin.Context) uint64 {
	v, _ := c.Get(middleware.ContextUserIDKey)
	id, _ := v.(uint64)
	return id
}
