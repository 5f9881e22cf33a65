package store

import (
	"context"
	"errors"
	"time"

	"songlin/internal/models"
	"songlin/internal/services"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Badges 徽章仓储的 gorm 实现
type Badges struct {
	db *gorm.DB
}

func NewBadges(db *gorm.DB) *Badges {
	return &Badges{db: db}
}

func (s *Badges) ListAuto(ctx context.Context) ([]models.Badge, error) {
	var badges []models.Badge
	err := s.db.WithContext(ctx).Where("auto_award = ?", true).Find(&badges).Error
	return badges, err
}

func (s *Badges) GetBySlug(ctx context.Context, slug string) (*models.Badge, error) {
	var badge models.Badge
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&badge).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrNotFound
		}
		return nil, err
	}
	return &badge, nil
}

// Award 幂等授予：唯一约束兜底，已持有时零行生效
func (s *Badges) Award(ctx context.Context, award *models.UserBadge) (bool, error) {
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(award)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CriteriaCount 统计自动授予口径的当前值
func (s *Badges) CriteriaCount(ctx context.Context, userID uint, criteriaType string) (int, error) {
	switch criteriaType {
	case models.CriteriaApprovedComments:
		var count int64
		err := s.db.WithContext(ctx).Model(&models.Comment{}).
			Where("user_id = ? AND status = ?", userID, models.StatusApproved).
			Count(&count).Error
		return int(count), err

	case models.CriteriaLikesReceived:
		var total int64
		err := s.db.WithContext(ctx).Model(&models.Comment{}).
			Where("user_id = ?", userID).
			Select("COALESCE(SUM(like_count), 0)").
			Scan(&total).Error
		return int(total), err

	case models.CriteriaMemberDays:
		var user models.User
		if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, services.ErrNotFound
			}
			return 0, err
		}
		return int(time.Since(user.CreatedAt).Hours() / 24), nil
	}
	// 未知口径按未达标处理
	return 0, nil
}

func (s *Badges) ListByUser(ctx context.Context, userID uint) ([]models.UserBadge, error) {
	var awards []models.UserBadge
	err := s.db.WithContext(ctx).Preload("Badge").
		Where("user_id = ?", userID).
		Order("awarded_at ASC").
		Find(&awards).Error
	return awards, err
}

func (s *Badges) AllAwards(ctx context.Context) ([]models.UserBadge, error) {
	var awards []models.UserBadge
	err := s.db.WithContext(ctx).Preload("Badge").Preload("User").Find(&awards).Error
	return awards, err
}
