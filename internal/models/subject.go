package models

import (
	"time"
)

// Subject 被评论的内容条目。内容本体（文章、视频、商品）由外部系统维护，
// 这里只承载审核引擎需要的公开评论计数。
type Subject struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Pid          string    `gorm:"uniqueIndex;size:8;not null" json:"pid"`
	Title        string    `gorm:"size:200" json:"title"`
	CommentCount int       `gorm:"default:0;not null" json:"comment_count"` // 仅统计 approved 评论
	CreatedAt    time.Time `json:"created_at"`
}
