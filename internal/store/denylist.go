package store

import (
	"context"

	"songlin/internal/models"
	"songlin/internal/services"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Denylist 封禁规则仓储的 gorm 实现
type Denylist struct {
	db *gorm.DB
}

func NewDenylist(db *gorm.DB) *Denylist {
	return &Denylist{db: db}
}

func (s *Denylist) List(ctx context.Context) ([]models.DenylistEntry, error) {
	var entries []models.DenylistEntry
	err := s.db.WithContext(ctx).Order("id ASC").Find(&entries).Error
	return entries, err
}

// Upsert (type, value) 已存在时命中数 +1，不新建行
func (s *Denylist) Upsert(ctx context.Context, entry *models.DenylistEntry) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "type"}, {Name: "value"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"hit_count": gorm.Expr("denylist_entries.hit_count + 1"),
		}),
	}).Create(entry).Error
}

func (s *Denylist) IncrHit(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Model(&models.DenylistEntry{}).
		Where("id = ?", id).
		UpdateColumn("hit_count", gorm.Expr("hit_count + ?", 1)).Error
}

func (s *Denylist) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.DenylistEntry{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return services.ErrNotFound
	}
	return nil
}
