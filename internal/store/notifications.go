package store

import (
	"context"

	"songlin/internal/models"

	"gorm.io/gorm"
)

// Notifications 站内通知仓储的 gorm 实现
type Notifications struct {
	db *gorm.DB
}

func NewNotifications(db *gorm.DB) *Notifications {
	return &Notifications{db: db}
}

func (s *Notifications) Create(ctx context.Context, n *models.Notification) error {
	return s.db.WithContext(ctx).Create(n).Error
}
