package models

import (
	"time"
)

// DenylistType 封禁规则类型
type DenylistType string

const (
	DenyWord   DenylistType = "word"      // 正文子串匹配
	DenyEmail  DenylistType = "email"     // 作者邮箱精确匹配
	DenyDomain DenylistType = "domain"    // 作者邮箱域名后缀匹配
	DenyIP     DenylistType = "ipAddress" // 来源地址精确匹配
	DenyUserID DenylistType = "userId"    // 账号精确封禁
)

// Valid 校验规则类型
func (t DenylistType) Valid() bool {
	switch t {
	case DenyWord, DenyEmail, DenyDomain, DenyIP, DenyUserID:
		return true
	}
	return false
}

// DenylistEntry 封禁规则。(type, value) 唯一，重复添加只累加命中数。
type DenylistEntry struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	Type      DenylistType `gorm:"type:varchar(12);not null;uniqueIndex:idx_deny_type_value" json:"type"`
	Value     string       `gorm:"size:200;not null;uniqueIndex:idx_deny_type_value" json:"value"` // 入库前统一 trim + 小写
	Reason    string       `gorm:"size:200" json:"reason"`
	HitCount  int64        `gorm:"default:0;not null" json:"hit_count"` // 每次作为判定依据拦截一条提交时 +1
	CreatedAt time.Time    `json:"created_at"`
}
