package handlers

import (
	"net/http"
	"songlin/internal/models"
	"songlin/internal/services"
	"songlin/internal/utils"

	"github.com/gin-gonic/gin"
)

// ModerationHandler 管理后台：状态迁移、删除、复核队列、封禁规则。
// 路由层已由 ModeratorRequired 拦住非管理身份。
type ModerationHandler struct {
	moderation *services.ModerationService
	denylist   *services.DenylistService
}

func NewModerationHandler(moderation *services.ModerationService, denylist *services.DenylistService) *ModerationHandler {
	return &ModerationHandler{moderation: moderation, denylist: denylist}
}

func (h *ModerationHandler) transition(c *gin.Context, action services.ModAction) {
	moderator := CurrentUser(c)
	comment, err := h.moderation.Transition(c.Request.Context(), c.Param("cid"), action, moderator.ID)
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cid": comment.Cid, "status": comment.Status})
}

// Approve pending/spam -> approved
func (h *ModerationHandler) Approve(c *gin.Context) {
	h.transition(c, services.ActionApprove)
}

// Reject pending/spam -> rejected（终态）
func (h *ModerationHandler) Reject(c *gin.Context) {
	h.transition(c, services.ActionReject)
}

// MarkSpam pending/approved -> spam，已公开的评论会被下架
func (h *ModerationHandler) MarkSpam(c *gin.Context) {
	h.transition(c, services.ActionSpam)
}

// Delete 物理删除
func (h *ModerationHandler) Delete(c *gin.Context) {
	moderator := CurrentUser(c)
	if err := h.moderation.HardDelete(c.Request.Context(), c.Param("cid"), moderator.ID); err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// Queue 复核队列
func (h *ModerationHandler) Queue(c *gin.Context) {
	status := models.CommentStatus(c.DefaultQuery("status", string(models.StatusPending)))
	limit := utils.StringToInt(c.DefaultQuery("limit", "50"))
	comments, err := h.moderation.Queue(c.Request.Context(), status, limit)
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status, "comments": comments})
}

// ListDenylist 封禁规则列表
func (h *ModerationHandler) ListDenylist(c *gin.Context) {
	entries, err := h.denylist.List(c.Request.Context())
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// AddDenylist 新增封禁规则
func (h *ModerationHandler) AddDenylist(c *gin.Context) {
	entry, err := h.denylist.Add(
		c.Request.Context(),
		models.DenylistType(c.PostForm("type")),
		c.PostForm("value"),
		c.PostForm("reason"),
	)
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// RemoveDenylist 删除封禁规则
func (h *ModerationHandler) RemoveDenylist(c *gin.Context) {
	if err := h.denylist.Remove(c.Request.Context(), utils.StringToUint(c.Param("id"))); err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
