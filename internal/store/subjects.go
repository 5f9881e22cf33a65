package store

import (
	"context"
	"errors"

	"songlin/internal/models"
	"songlin/internal/services"

	"gorm.io/gorm"
)

// Subjects 内容条目仓储的 gorm 实现。正式部署里公开评论计数在内容侧系统，
// 这里的表是它的本地替身。
type Subjects struct {
	db *gorm.DB
}

func NewSubjects(db *gorm.DB) *Subjects {
	return &Subjects{db: db}
}

func (s *Subjects) GetByPid(ctx context.Context, pid string) (*models.Subject, error) {
	var subject models.Subject
	if err := s.db.WithContext(ctx).Where("pid = ?", pid).First(&subject).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrNotFound
		}
		return nil, err
	}
	return &subject, nil
}

func (s *Subjects) IncrCommentCount(ctx context.Context, subjectID uint, delta int) error {
	return s.db.WithContext(ctx).Model(&models.Subject{}).
		Where("id = ?", subjectID).
		UpdateColumn("comment_count", gorm.Expr("comment_count + ?", delta)).Error
}
