package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"songlin/internal/models"
	"songlin/internal/utils"

	"github.com/sirupsen/logrus"
)

const leaderboardCacheKey = "badge:leaderboard"

// RecognitionService 徽章子系统。过审事件进缓冲队列由后台 worker 消化，
// 评估是幂等的：唯一约束保证同一 (user, badge) 只会授予一次，
// 重复触发、重放都无害。
type RecognitionService struct {
	badges BadgeStore
	notes  NotificationStore
	log    *logrus.Logger

	queue   chan uint // 待评估的用户 ID 队列
	pending map[uint]bool
	mu      sync.Mutex
}

func NewRecognitionService(badges BadgeStore, notes NotificationStore, log *logrus.Logger) *RecognitionService {
	s := &RecognitionService{
		badges:  badges,
		notes:   notes,
		log:     log,
		queue:   make(chan uint, 1000), // 缓冲队列，防止阻塞审核链路
		pending: make(map[uint]bool),
	}
	go s.worker()
	return s
}

// CommentApproved 实现 ApprovalListener：过审只投递事件，立即返回
func (s *RecognitionService) CommentApproved(userID uint) {
	s.Schedule(userID)
}

// Schedule 将用户加入评估队列（异步），短时间内的重复触发去重
func (s *RecognitionService) Schedule(userID uint) {
	s.mu.Lock()
	if s.pending[userID] {
		s.mu.Unlock()
		return
	}
	s.pending[userID] = true
	s.mu.Unlock()

	select {
	case s.queue <- userID:
	default:
		// 队列满了，移除 pending 标记；下一次过审会再触发
		s.mu.Lock()
		delete(s.pending, userID)
		s.mu.Unlock()
		s.log.WithField("user_id", userID).Warn("徽章评估队列已满，本次跳过")
	}
}

func (s *RecognitionService) worker() {
	for userID := range s.queue {
		if err := s.Evaluate(context.Background(), userID); err != nil {
			s.log.WithError(err).WithField("user_id", userID).Warn("徽章评估失败")
		}
		s.mu.Lock()
		delete(s.pending, userID)
		s.mu.Unlock()
	}
}

// Evaluate 核对所有自动授予徽章的达标情况，可安全重复执行
func (s *RecognitionService) Evaluate(ctx context.Context, userID uint) error {
	badges, err := s.badges.ListAuto(ctx)
	if err != nil {
		return err
	}

	for _, badge := range badges {
		count, err := s.badges.CriteriaCount(ctx, userID, badge.CriteriaType)
		if err != nil {
			return err
		}
		if count < badge.CriteriaValue {
			continue
		}
		created, err := s.badges.Award(ctx, &models.UserBadge{
			UserID:  userID,
			BadgeID: badge.ID,
			Reason:  fmt.Sprintf("%s 达到 %d", badge.CriteriaType, badge.CriteriaValue),
			// AwardedBy 为空表示系统授予
		})
		if err != nil {
			return err
		}
		if created {
			utils.GetCache().Delete(leaderboardCacheKey)
			s.notifyAward(userID, badge)
			s.log.WithFields(logrus.Fields{
				"user_id": userID,
				"badge":   badge.Slug,
			}).Info("系统授予徽章")
		}
	}
	return nil
}

// ManualAward 管理员手动授予，绕过达标核对。
// 已持有时返回 false（"already held"），不是错误。
func (s *RecognitionService) ManualAward(ctx context.Context, moderatorID, userID uint, slug, reason string) (bool, error) {
	badge, err := s.badges.GetBySlug(ctx, slug)
	if err != nil {
		return false, err
	}
	created, err := s.badges.Award(ctx, &models.UserBadge{
		UserID:    userID,
		BadgeID:   badge.ID,
		Reason:    reason,
		AwardedBy: &moderatorID,
	})
	if err != nil {
		return false, err
	}
	if created {
		utils.GetCache().Delete(leaderboardCacheKey)
		s.notifyAward(userID, *badge)
	}
	return created, nil
}

// UserBadges 用户的全部徽章
func (s *RecognitionService) UserBadges(ctx context.Context, userID uint) ([]models.UserBadge, error) {
	return s.badges.ListByUser(ctx, userID)
}

// LeaderboardRow 排行榜条目
type LeaderboardRow struct {
	UserID       uint             `json:"user_id"`
	Username     string           `json:"username"`
	BadgeCount   int              `json:"badge_count"`
	BestTier     models.BadgeTier `json:"best_tier"`
	FirstAwardAt time.Time        `json:"first_award_at"`
}

// Leaderboard 按徽章总数排名；同分先比最高档位，再比最早获得时间
func (s *RecognitionService) Leaderboard(ctx context.Context, limit int) ([]LeaderboardRow, error) {
	if cached := utils.GetCache().Get(leaderboardCacheKey); cached != nil {
		if rows, ok := cached.([]LeaderboardRow); ok {
			return truncate(rows, limit), nil
		}
	}

	awards, err := s.badges.AllAwards(ctx)
	if err != nil {
		return nil, err
	}

	byUser := make(map[uint]*LeaderboardRow)
	for _, a := range awards {
		row, ok := byUser[a.UserID]
		if !ok {
			row = &LeaderboardRow{
				UserID:       a.UserID,
				Username:     a.User.Username,
				BestTier:     a.Badge.Tier,
				FirstAwardAt: a.AwardedAt,
			}
			byUser[a.UserID] = row
		}
		row.BadgeCount++
		if a.Badge.Tier.Rank() > row.BestTier.Rank() {
			row.BestTier = a.Badge.Tier
		}
		if a.AwardedAt.Before(row.FirstAwardAt) {
			row.FirstAwardAt = a.AwardedAt
		}
	}

	rows := make([]LeaderboardRow, 0, len(byUser))
	for _, row := range byUser {
		rows = append(rows, *row)
	}
	RankLeaderboard(rows)

	utils.GetCache().Set(leaderboardCacheKey, rows, 1*time.Minute)
	return truncate(rows, limit), nil
}

// RankLeaderboard 排行榜排序：徽章数降序 → 最高档位降序 → 最早获得时间升序
func RankLeaderboard(rows []LeaderboardRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].BadgeCount != rows[j].BadgeCount {
			return rows[i].BadgeCount > rows[j].BadgeCount
		}
		if rows[i].BestTier.Rank() != rows[j].BestTier.Rank() {
			return rows[i].BestTier.Rank() > rows[j].BestTier.Rank()
		}
		return rows[i].FirstAwardAt.Before(rows[j].FirstAwardAt)
	})
}

func (s *RecognitionService) notifyAward(userID uint, badge models.Badge) {
	if s.notes == nil {
		return
	}
	go func() {
		n := &models.Notification{
			UserID: userID,
			Type:   models.NotificationTypeBadge,
			Reason: fmt.Sprintf("恭喜获得「%s」徽章！", badge.Name),
		}
		if err := s.notes.Create(context.Background(), n); err != nil {
			s.log.WithError(err).Warn("徽章通知写入失败")
		}
	}()
}

func truncate(rows []LeaderboardRow, limit int) []LeaderboardRow {
	if limit > 0 && len(rows) > limit {
		return rows[:limit]
	}
	return rows
}
