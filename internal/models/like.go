package models

import (
	"time"
)

// CommentLike 点赞记录，一人一条
type CommentLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_like_user_comment" json:"user_id"`
	CommentID uint      `gorm:"not null;uniqueIndex:idx_like_user_comment;index" json:"comment_id"`
	CreatedAt time.Time `json:"created_at"`
}
