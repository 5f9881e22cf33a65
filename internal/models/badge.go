package models

import (
	"time"
)

// BadgeTier 徽章档位
type BadgeTier string

const (
	TierBronze    BadgeTier = "bronze"
	TierSilver    BadgeTier = "silver"
	TierGold      BadgeTier = "gold"
	TierPlatinum  BadgeTier = "platinum"
	TierLegendary BadgeTier = "legendary"
	TierSpecial   BadgeTier = "special"
)

// Rank 排行榜同分比较用的档位序号。special 虽然在枚举序列末尾，
// 但作为纪念性徽章，比较时排在所有常规档位之后。
func (t BadgeTier) Rank() int {
	switch t {
	case TierLegendary:
		return 5
	case TierPlatinum:
		return 4
	case TierGold:
		return 3
	case TierSilver:
		return 2
	case TierBronze:
		return 1
	}
	return 0 // special 及未知
}

// 自动授予的统计口径
const (
	CriteriaApprovedComments = "approved_comments" // 过审评论数
	CriteriaLikesReceived    = "likes_received"    // 评论累计获赞
	CriteriaMemberDays       = "member_days"       // 注册天数
)

// Badge 徽章定义，属于参考数据，仅管理员修改
type Badge struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Slug          string    `gorm:"uniqueIndex;size:50;not null" json:"slug"`
	Name          string    `gorm:"size:50;not null" json:"name"`
	Tier          BadgeTier `gorm:"type:varchar(12);not null" json:"tier"`
	Category      string    `gorm:"size:30" json:"category"`
	AutoAward     bool      `gorm:"default:false;not null" json:"auto_award"`
	CriteriaType  string    `gorm:"size:30" json:"criteria_type"`
	CriteriaValue int       `gorm:"default:0" json:"criteria_value"`
	CreatedAt     time.Time `json:"created_at"`
}

// UserBadge 授予记录。(user_id, badge_id) 唯一，重复授予是幂等的空操作。
type UserBadge struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_badge;index" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	BadgeID   uint      `gorm:"not null;uniqueIndex:idx_user_badge" json:"badge_id"`
	Badge     Badge     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"badge"`
	Reason    string    `gorm:"size:200" json:"reason"`
	AwardedBy *uint     `json:"awarded_by"` // 空表示系统自动授予
	AwardedAt time.Time `gorm:"autoCreateTime" json:"awarded_at"`
}
