package services

import (
	"context"
	"time"

	"songlin/internal/models"
)

// 各服务依赖的仓储接口。统一注入而不是进程内单例，
// 多实例部署时封禁库与活跃窗口必须是共享状态。
// gorm / redis 实现见 internal/store。

// CommentStore 评论仓储。状态变更必须是条件更新（携带旧状态），
// 计数变更必须是数据库侧原子自增，避免读改写丢更新。
type CommentStore interface {
	Create(ctx context.Context, c *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	GetByCid(ctx context.Context, cid string) (*models.Comment, error)
	// ListBySubject 返回指定状态集合的评论，created_at 升序，带作者信息
	ListBySubject(ctx context.Context, subjectID uint, statuses []models.CommentStatus) ([]models.Comment, error)
	ListByStatus(ctx context.Context, status models.CommentStatus, limit int) ([]models.Comment, error)
	// UpdateStatus 乐观并发：仅当当前状态等于 from 时写入，返回是否生效
	UpdateStatus(ctx context.Context, id uint, from, to models.CommentStatus, moderatorID uint, at time.Time) (bool, error)
	IncrLikeCount(ctx context.Context, id uint, delta int) error
	Delete(ctx context.Context, id uint) error
}

// SubjectStore 内容条目仓储。公开评论计数归内容侧所有，这里只做原子增减。
type SubjectStore interface {
	GetByPid(ctx context.Context, pid string) (*models.Subject, error)
	IncrCommentCount(ctx context.Context, subjectID uint, delta int) error
}

// DenylistStore 封禁规则仓储
type DenylistStore interface {
	List(ctx context.Context) ([]models.DenylistEntry, error)
	// Upsert (type,value) 冲突时命中数 +1 而不是新建行
	Upsert(ctx context.Context, entry *models.DenylistEntry) error
	IncrHit(ctx context.Context, id uint) error
	Delete(ctx context.Context, id uint) error
}

// LikeStore 点赞仓储
type LikeStore interface {
	// Add 返回是否新建（false 表示已点过）
	Add(ctx context.Context, userID, commentID uint) (bool, error)
	Remove(ctx context.Context, userID, commentID uint) (bool, error)
	// LikedSet 批量查询 viewer 对一组评论的点赞状态
	LikedSet(ctx context.Context, userID uint, commentIDs []uint) (map[uint]bool, error)
}

// BadgeStore 徽章仓储
type BadgeStore interface {
	ListAuto(ctx context.Context) ([]models.Badge, error)
	GetBySlug(ctx context.Context, slug string) (*models.Badge, error)
	// Award 依赖 (user_id, badge_id) 唯一约束做幂等，返回是否新建
	Award(ctx context.Context, award *models.UserBadge) (bool, error)
	CriteriaCount(ctx context.Context, userID uint, criteriaType string) (int, error)
	ListByUser(ctx context.Context, userID uint) ([]models.UserBadge, error)
	AllAwards(ctx context.Context) ([]models.UserBadge, error)
}

// NotificationStore 站内通知仓储
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
}

// ActivityWindow 作者近期提交窗口，重复内容检测用。
// 允许并发下的至少一次重复计数：误报只会抬高 spamScore，漏报无害。
type ActivityWindow interface {
	// SeenRecently 记录指纹并返回窗口内是否已出现过
	SeenRecently(ctx context.Context, userID uint, fingerprint string) (bool, error)
}
