package handlers

import (
	"errors"
	"net/http"
	"songlin/internal/middleware"
	"songlin/internal/models"
	"songlin/internal/services"

	"github.com/gin-gonic/gin"
)

// CurrentUser 从请求上下文取登录用户，未登录返回 nil
func CurrentUser(c *gin.Context) *models.User {
	if u, exists := c.Get(middleware.CheckUserKey); exists {
		return u.(*models.User)
	}
	return nil
}

// RenderError 统一的错误响应：按错误类别映射状态码
func RenderError(c *gin.Context, err error) {
	var ve *services.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Msg, "field": ve.Field})
		return
	}
	var ce *services.ConflictError
	if errors.As(err, &ce) {
		c.JSON(http.StatusConflict, gin.H{"error": "评论状态已变化，请刷新后重试"})
		return
	}
	if errors.Is(err, services.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "记录不存在"})
		return
	}
	if errors.Is(err, services.ErrDependencyTimeout) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "服务暂时不可用，请稍后重试"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "服务器开小差了"})
}
