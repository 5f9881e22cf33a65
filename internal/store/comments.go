package store

import (
	"context"
	"errors"
	"time"

	"songlin/internal/models"
	"songlin/internal/services"

	"gorm.io/gorm"
)

// Comments 评论仓储的 gorm 实现
type Comments struct {
	db *gorm.DB
}

func NewComments(db *gorm.DB) *Comments {
	return &Comments{db: db}
}

func (s *Comments) Create(ctx context.Context, c *models.Comment) error {
	return s.db.WithContext(ctx).Create(c).Error
}

func (s *Comments) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var c models.Comment
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *Comments) GetByCid(ctx context.Context, cid string) (*models.Comment, error) {
	var c models.Comment
	if err := s.db.WithContext(ctx).Where("cid = ?", cid).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *Comments) ListBySubject(ctx context.Context, subjectID uint, statuses []models.CommentStatus) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.WithContext(ctx).Preload("User").
		Where("subject_id = ? AND status IN ?", subjectID, statuses).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

func (s *Comments) ListByStatus(ctx context.Context, status models.CommentStatus, limit int) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.WithContext(ctx).Preload("User").
		Where("status = ?", status).
		Order("created_at ASC").
		Limit(limit).
		Find(&comments).Error
	return comments, err
}

// UpdateStatus 条件更新：status 已经不是 from 时零行生效，由调用方转为冲突错误
func (s *Comments) UpdateStatus(ctx context.Context, id uint, from, to models.CommentStatus, moderatorID uint, at time.Time) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":       to,
			"moderated_by": moderatorID,
			"moderated_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *Comments) IncrLikeCount(ctx context.Context, id uint, delta int) error {
	return s.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ?", id).
		UpdateColumn("like_count", gorm.Expr("like_count + ?", delta)).Error
}

func (s *Comments) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Unscoped().Delete(&models.Comment{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return services.ErrNotFound
	}
	return nil
}
