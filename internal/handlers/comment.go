package handlers

import (
	"net/http"
	"time"

	"songlin/internal/models"
	"songlin/internal/services"
	"songlin/internal/utils"

	"github.com/gin-gonic/gin"
)

// CommentHandler 评论提交、展示、点赞
type CommentHandler struct {
	pipeline *services.SubmissionPipeline
	tree     *services.TreeService
	likes    *services.LikeService
	subjects services.SubjectStore
}

func NewCommentHandler(
	pipeline *services.SubmissionPipeline,
	tree *services.TreeService,
	likes *services.LikeService,
	subjects services.SubjectStore,
) *CommentHandler {
	return &CommentHandler{
		pipeline: pipeline,
		tree:     tree,
		likes:    likes,
		subjects: subjects,
	}
}

// Create 提交评论，走完整的审核管道
func (h *CommentHandler) Create(c *gin.Context) {
	user := CurrentUser(c)
	subject, err := h.subjects.GetByPid(c.Request.Context(), c.Param("sid"))
	if err != nil {
		RenderError(c, err)
		return
	}

	var parentID *uint
	if p := c.PostForm("parent_id"); p != "" {
		id := utils.StringToUint(p)
		parentID = &id
	}

	comment, err := h.pipeline.Submit(c.Request.Context(), services.SubmissionInput{
		AuthorID:      user.ID,
		AuthorEmail:   user.Email,
		AuthorTrust:   user.TrustLevel,
		AuthorAgeDays: user.AccountAgeDays(),
		SubjectID:     subject.ID,
		ParentID:      parentID,
		Body:          c.PostForm("body"),
		IP:            c.ClientIP(),
	})
	if err != nil {
		RenderError(c, err)
		return
	}

	// 公开评论树缓存失效
	utils.GetCache().Delete("comments:tree:" + subject.Pid)

	c.JSON(http.StatusCreated, gin.H{
		"cid":    comment.Cid,
		"status": comment.Status,
		"body":   comment.Body,
	})
}

// Tree 评论树。普通访客只看 approved；管理员可以用 status 参数看复核队列视角。
// 匿名视角无个性化字段，短时缓存。
func (h *CommentHandler) Tree(c *gin.Context) {
	subject, err := h.subjects.GetByPid(c.Request.Context(), c.Param("sid"))
	if err != nil {
		RenderError(c, err)
		return
	}

	user := CurrentUser(c)
	var viewerID *uint
	if user != nil {
		viewerID = &user.ID
	}

	cacheKey := "comments:tree:" + subject.Pid
	if user == nil && c.Query("status") == "" {
		if cached := utils.GetCache().Get(cacheKey); cached != nil {
			if data, ok := cached.(gin.H); ok {
				c.JSON(http.StatusOK, data)
				return
			}
		}
	}

	statuses := []models.CommentStatus{models.StatusApproved}
	if want := c.Query("status"); want != "" {
		if user == nil || !user.IsModerator() {
			c.JSON(http.StatusForbidden, gin.H{"error": "需要管理权限"})
			return
		}
		status := models.CommentStatus(want)
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "未知的状态"})
			return
		}
		statuses = append(statuses, status)
	}

	nodes, err := h.tree.Assemble(c.Request.Context(), subject.ID, viewerID, statuses)
	if err != nil {
		RenderError(c, err)
		return
	}

	data := gin.H{
		"subject":       subject.Pid,
		"comment_count": subject.CommentCount,
		"comments":      nodes,
	}
	if user == nil {
		utils.GetCache().Set(cacheKey, data, 1*time.Minute)
	}
	c.JSON(http.StatusOK, data)
}

// Like 点赞
func (h *CommentHandler) Like(c *gin.Context) {
	user := CurrentUser(c)
	changed, err := h.likes.Like(c.Request.Context(), user.ID, c.Param("cid"))
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": true, "changed": changed})
}

// Unlike 取消点赞
func (h *CommentHandler) Unlike(c *gin.Context) {
	user := CurrentUser(c)
	changed, err := h.likes.Unlike(c.Request.Context(), user.ID, c.Param("cid"))
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": false, "changed": changed})
}
