package store

import (
	"context"

	"songlin/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Likes 点赞仓储的 gorm 实现
type Likes struct {
	db *gorm.DB
}

func NewLikes(db *gorm.DB) *Likes {
	return &Likes{db: db}
}

// Add 依赖 (user_id, comment_id) 唯一索引，重复点赞不报错也不生效
func (s *Likes) Add(ctx context.Context, userID, commentID uint) (bool, error) {
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.CommentLike{UserID: userID, CommentID: commentID})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *Likes) Remove(ctx context.Context, userID, commentID uint) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND comment_id = ?", userID, commentID).
		Delete(&models.CommentLike{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *Likes) LikedSet(ctx context.Context, userID uint, commentIDs []uint) (map[uint]bool, error) {
	liked := make(map[uint]bool)
	if len(commentIDs) == 0 {
		return liked, nil
	}
	var likes []models.CommentLike
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND comment_id IN ?", userID, commentIDs).
		Find(&likes).Error
	if err != nil {
		return nil, err
	}
	for _, l := range likes {
		liked[l.CommentID] = true
	}
	return liked, nil
}
