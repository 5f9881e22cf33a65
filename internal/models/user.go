package models

import (
	"time"
)

// 用户角色常量
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
)

type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Username   string    `gorm:"not null" json:"username"`
	Email      string    `gorm:"uniqueIndex;not null" json:"email"`
	Password   string    `gorm:"not null" json:"-"` // Hash
	Role       string    `gorm:"size:20;default:'user';not null" json:"role"` // user, moderator
	TrustLevel int       `gorm:"default:1;not null" json:"trust_level"`       // 信任等级，低于阈值无法自由发言（由身份系统维护）
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// IsModerator 是否具有管理权限
func (u *User) IsModerator() bool {
	return u.Role == RoleModerator
}

// AccountAgeDays 注册至今的天数
func (u *User) AccountAgeDays() int {
	return int(time.Since(u.CreatedAt).Hours() / 24)
}
