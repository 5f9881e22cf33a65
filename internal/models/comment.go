package models

import (
	"time"
)

// CommentStatus 评论状态，闭合枚举，不接受表外取值
type CommentStatus string

const (
	StatusPending  CommentStatus = "pending"
	StatusApproved CommentStatus = "approved"
	StatusRejected CommentStatus = "rejected"
	StatusSpam     CommentStatus = "spam"
)

// Valid 校验状态取值是否在闭合集合内
func (s CommentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusSpam:
		return true
	}
	return false
}

// Stable 稳定状态：approved / rejected；pending / spam 为待复核状态
func (s CommentStatus) Stable() bool {
	return s == StatusApproved || s == StatusRejected
}

type Comment struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	Cid         string        `gorm:"uniqueIndex;size:8;not null" json:"cid"`
	SubjectID   uint          `gorm:"not null;index" json:"subject_id"`
	Subject     Subject       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID      uint          `gorm:"not null;index" json:"user_id"`
	User        User          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	ParentID    *uint         `gorm:"index" json:"parent_id"` // 顶层评论为空；回复只有一层，不允许回复的回复
	Body        string        `gorm:"type:text;not null" json:"body"` // 入库即定稿，低危词已替换为掩码，之后不再改写
	Status      CommentStatus `gorm:"type:varchar(10);not null;index" json:"status"`
	SpamScore   float64       `gorm:"default:0" json:"spam_score"` // [0,1] 仅供参考，始终落库
	LikeCount   int           `gorm:"default:0" json:"like_count"`
	ModeratedBy *uint         `json:"moderated_by"` // 仅管理操作写入；自动初始状态为空
	ModeratedAt *time.Time    `json:"moderated_at"`
	CreatedAt   time.Time     `json:"created_at"`
}
