package services

import (
	"context"
	"fmt"
	"time"

	"songlin/internal/models"

	"github.com/sirupsen/logrus"
)

// ModAction 管理动作
type ModAction string

const (
	ActionApprove ModAction = "approve"
	ActionReject  ModAction = "reject"
	ActionSpam    ModAction = "spam"
)

// 状态迁移表：from × action → to。表里没有的组合一律拒绝。
// rejected 是终态，该行记录不再回到任何公开状态。
var transitions = map[models.CommentStatus]map[ModAction]models.CommentStatus{
	models.StatusPending: {
		ActionApprove: models.StatusApproved,
		ActionReject:  models.StatusRejected,
		ActionSpam:    models.StatusSpam,
	},
	models.StatusSpam: {
		ActionApprove: models.StatusApproved,
		ActionReject:  models.StatusRejected,
	},
	models.StatusApproved: {
		ActionSpam: models.StatusSpam, // 追溯下架已公开的评论
	},
	models.StatusRejected: {},
}

// ApprovalListener 评论过审事件的消费方。状态机只投递事件，
// 徽章评估在后台进行，不占用审核操作的响应时间。
type ApprovalListener interface {
	CommentApproved(userID uint)
}

// ModerationService 评论状态机。所有迁移都要求管理身份并记录时间；
// 同一行上的并发迁移靠条件更新串行化，基于过期状态的操作返回冲突。
type ModerationService struct {
	comments CommentStore
	subjects SubjectStore
	notes    NotificationStore
	listener ApprovalListener
	log      *logrus.Logger
}

func NewModerationService(
	comments CommentStore,
	subjects SubjectStore,
	notes NotificationStore,
	listener ApprovalListener,
	log *logrus.Logger,
) *ModerationService {
	return &ModerationService{
		comments: comments,
		subjects: subjects,
		notes:    notes,
		listener: listener,
		log:      log,
	}
}

// Transition 执行一次管理迁移
func (s *ModerationService) Transition(ctx context.Context, cid string, action ModAction, moderatorID uint) (*models.Comment, error) {
	comment, err := s.comments.GetByCid(ctx, cid)
	if err != nil {
		return nil, err
	}

	from := comment.Status
	to, ok := transitions[from][action]
	if !ok {
		return nil, &ConflictError{Cid: cid, Want: string(from)}
	}

	now := time.Now()
	applied, err := s.comments.UpdateStatus(ctx, comment.ID, from, to, moderatorID, now)
	if err != nil {
		return nil, err
	}
	if !applied {
		// 另一位管理员先动了手，让调用方读最新状态重试
		return nil, &ConflictError{Cid: cid, Want: string(from)}
	}

	comment.Status = to
	comment.ModeratedBy = &moderatorID
	comment.ModeratedAt = &now

	// 公开计数只跟随 approved 状态的进出
	if to == models.StatusApproved {
		if err := s.subjects.IncrCommentCount(ctx, comment.SubjectID, 1); err != nil {
			s.log.WithError(err).WithField("cid", cid).Error("公开评论计数增加失败")
		}
		if s.listener != nil {
			s.listener.CommentApproved(comment.UserID)
		}
	} else if from == models.StatusApproved {
		if err := s.subjects.IncrCommentCount(ctx, comment.SubjectID, -1); err != nil {
			s.log.WithError(err).WithField("cid", cid).Error("公开评论计数减少失败")
		}
	}

	s.notifyAuthor(comment, from, to)

	s.log.WithFields(logrus.Fields{
		"cid":          cid,
		"from":         from,
		"to":           to,
		"moderated_by": moderatorID,
	}).Info("评论状态已迁移")
	return comment, nil
}

// HardDelete 物理删除，不走状态机，任何状态下可用
func (s *ModerationService) HardDelete(ctx context.Context, cid string, moderatorID uint) error {
	comment, err := s.comments.GetByCid(ctx, cid)
	if err != nil {
		return err
	}
	if err := s.comments.Delete(ctx, comment.ID); err != nil {
		return err
	}
	// 删的是公开评论才回退计数
	if comment.Status == models.StatusApproved {
		if err := s.subjects.IncrCommentCount(ctx, comment.SubjectID, -1); err != nil {
			s.log.WithError(err).WithField("cid", cid).Error("公开评论计数减少失败")
		}
	}
	s.log.WithFields(logrus.Fields{
		"cid":          cid,
		"moderated_by": moderatorID,
	}).Info("评论已删除")
	return nil
}

// Queue 待复核队列（pending / spam），给管理后台用
func (s *ModerationService) Queue(ctx context.Context, status models.CommentStatus, limit int) ([]models.Comment, error) {
	if status != models.StatusPending && status != models.StatusSpam {
		return nil, &ValidationError{Field: "status", Msg: "只能查看 pending 或 spam 队列"}
	}
	return s.comments.ListByStatus(ctx, status, limit)
}

// notifyAuthor 审核结果异步通知作者
func (s *ModerationService) notifyAuthor(comment *models.Comment, from, to models.CommentStatus) {
	if s.notes == nil {
		return
	}
	var reason string
	switch {
	case to == models.StatusRejected:
		reason = "您的评论经复核未获通过，不会公开展示。"
	case to == models.StatusSpam && from == models.StatusApproved:
		reason = "您的一条评论被标记为垃圾内容并已下架，如有疑问请联系管理。"
	default:
		return
	}
	go func() {
		n := &models.Notification{
			UserID: comment.UserID,
			Type:   models.NotificationTypeModeration,
			Reason: fmt.Sprintf("%s（评论 #%s）", reason, comment.Cid),
		}
		if err := s.notes.Create(context.Background(), n); err != nil {
			s.log.WithError(err).Warn("审核通知写入失败")
		}
	}()
}
