package services

import (
	"context"
	"strconv"
	"strings"

	"songlin/internal/models"

	"github.com/sirupsen/logrus"
)

// DenylistCandidate 一次提交的待核对信息
type DenylistCandidate struct {
	Body   string
	Email  string
	IP     string
	UserID uint
}

// DenylistService 封禁规则引擎。规则按类型匹配正文、邮箱、来源地址、账号，
// 任意一条命中即把提交判为 spam。
type DenylistService struct {
	store DenylistStore
	log   *logrus.Logger
}

func NewDenylistService(store DenylistStore, log *logrus.Logger) *DenylistService {
	return &DenylistService{store: store, log: log}
}

// NormalizeValue 规则值入库前的归一化
func NormalizeValue(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// Add 新增规则。(type, value) 已存在时只累加命中数。
func (s *DenylistService) Add(ctx context.Context, typ models.DenylistType, value, reason string) (*models.DenylistEntry, error) {
	if !typ.Valid() {
		return nil, &ValidationError{Field: "type", Msg: "未知的规则类型"}
	}
	value = NormalizeValue(value)
	if value == "" {
		return nil, &ValidationError{Field: "value", Msg: "规则值不能为空"}
	}
	entry := &models.DenylistEntry{Type: typ, Value: value, Reason: reason}
	if err := s.store.Upsert(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Remove 删除规则
func (s *DenylistService) Remove(ctx context.Context, id uint) error {
	return s.store.Delete(ctx, id)
}

// List 全部规则
func (s *DenylistService) List(ctx context.Context) ([]models.DenylistEntry, error) {
	return s.store.List(ctx)
}

// Evaluate 核对一次提交，返回第一条命中的规则（无命中返回 nil）。
// 命中规则的 hit_count 在这里加一，每次提交最多加一次。
func (s *DenylistService) Evaluate(ctx context.Context, cand DenylistCandidate) (*models.DenylistEntry, error) {
	entries, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	match := matchCandidate(entries, cand)
	if match == nil {
		return nil, nil
	}

	if err := s.store.IncrHit(ctx, match.ID); err != nil {
		// 计数失败不影响拦截结论
		s.log.WithFields(logrus.Fields{"entry_id": match.ID}).
			WithError(err).Warn("封禁规则命中数更新失败")
	}
	s.log.WithFields(logrus.Fields{
		"entry_id": match.ID,
		"type":     match.Type,
		"user_id":  cand.UserID,
	}).Info("提交命中封禁规则")
	return match, nil
}

// matchCandidate 固定按账号、地址、邮箱、域名、正文词的顺序核对，保证结果确定
func matchCandidate(entries []models.DenylistEntry, cand DenylistCandidate) *models.DenylistEntry {
	body := strings.ToLower(cand.Body)
	email := NormalizeValue(cand.Email)
	ip := NormalizeValue(cand.IP)
	userID := strconv.FormatUint(uint64(cand.UserID), 10)
	domain := ""
	if at := strings.LastIndex(email, "@"); at >= 0 {
		domain = email[at+1:]
	}

	order := []models.DenylistType{
		models.DenyUserID, models.DenyIP, models.DenyEmail, models.DenyDomain, models.DenyWord,
	}
	for _, typ := range order {
		for i := range entries {
			e := &entries[i]
			if e.Type != typ {
				continue
			}
			switch typ {
			case models.DenyUserID:
				if cand.UserID != 0 && e.Value == userID {
					return e
				}
			case models.DenyIP:
				if ip != "" && e.Value == ip {
					return e
				}
			case models.DenyEmail:
				if email != "" && e.Value == email {
					return e
				}
			case models.DenyDomain:
				if domain != "" && (domain == e.Value || strings.HasSuffix(domain, "."+e.Value)) {
					return e
				}
			case models.DenyWord:
				if body != "" && strings.Contains(body, e.Value) {
					return e
				}
			}
		}
	}
	return nil
}
