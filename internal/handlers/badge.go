package handlers

import (
	"net/http"
	"songlin/internal/services"
	"songlin/internal/utils"

	"github.com/gin-gonic/gin"
)

// BadgeHandler 徽章查询与手动授予
type BadgeHandler struct {
	recognition *services.RecognitionService
}

func NewBadgeHandler(recognition *services.RecognitionService) *BadgeHandler {
	return &BadgeHandler{recognition: recognition}
}

// Leaderboard 徽章排行榜
func (h *BadgeHandler) Leaderboard(c *gin.Context) {
	limit := utils.StringToInt(c.DefaultQuery("limit", "20"))
	rows, err := h.recognition.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": rows})
}

// UserBadges 用户的徽章列表
func (h *BadgeHandler) UserBadges(c *gin.Context) {
	awards, err := h.recognition.UserBadges(c.Request.Context(), utils.StringToUint(c.Param("id")))
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"badges": awards})
}

// ManualAward 管理员手动授予徽章
func (h *BadgeHandler) ManualAward(c *gin.Context) {
	moderator := CurrentUser(c)
	created, err := h.recognition.ManualAward(
		c.Request.Context(),
		moderator.ID,
		utils.StringToUint(c.Param("id")),
		c.Param("slug"),
		c.PostForm("reason"),
	)
	if err != nil {
		RenderError(c, err)
		return
	}
	if !created {
		c.JSON(http.StatusOK, gin.H{"awarded": false, "message": "该用户已持有此徽章"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"awarded": true})
}
