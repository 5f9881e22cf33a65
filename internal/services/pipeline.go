package services

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"songlin/internal/config"
	"songlin/internal/models"
	"songlin/internal/utils"

	"github.com/sirupsen/logrus"
)

// SubmissionInput 一次评论提交。作者侧字段（邮箱、信任等级、账号天数）
// 由身份系统提供，管道自己不查证身份。
type SubmissionInput struct {
	AuthorID      uint
	AuthorEmail   string
	AuthorTrust   int
	AuthorAgeDays int
	SubjectID     uint
	ParentID      *uint
	Body          string
	IP            string
}

// SubmissionPipeline 提交管道，按固定顺序做出初始判定：
// 基础校验 → 词库分类 → 封禁规则 → 启发式评分 → 落库。
// 外部依赖（封禁库、活跃窗口）超时会重试一次，仍失败则兜底判 pending，
// 绝不因为依赖故障把未审内容放行为 approved。
type SubmissionPipeline struct {
	cfg      *config.Config
	lexicon  *LexiconFilter
	denylist *DenylistService
	comments CommentStore
	activity ActivityWindow
	log      *logrus.Logger
}

func NewSubmissionPipeline(
	cfg *config.Config,
	lexicon *LexiconFilter,
	denylist *DenylistService,
	comments CommentStore,
	activity ActivityWindow,
	log *logrus.Logger,
) *SubmissionPipeline {
	return &SubmissionPipeline{
		cfg:      cfg,
		lexicon:  lexicon,
		denylist: denylist,
		comments: comments,
		activity: activity,
		log:      log,
	}
}

// Submit 处理一次提交。校验不通过返回 ValidationError 且不落库；
// 其余情况评论以 pending / approved / spam 之一入库。
func (p *SubmissionPipeline) Submit(ctx context.Context, input SubmissionInput) (*models.Comment, error) {
	// 第一步：基础校验
	body := strings.TrimSpace(input.Body)
	if body == "" {
		return nil, &ValidationError{Field: "body", Msg: "评论内容不能为空"}
	}
	if len([]rune(body)) > p.cfg.MaxBodyLength {
		return nil, &ValidationError{Field: "body", Msg: fmt.Sprintf("评论长度超过 %d 字上限", p.cfg.MaxBodyLength)}
	}
	if input.AuthorTrust < p.cfg.MinTrustLevel {
		return nil, &ValidationError{Field: "author", Msg: "当前账号信任等级不足，暂时无法发言"}
	}

	// 第二步：词库分类
	forcePending := false
	cls := p.lexicon.Classify(body)
	switch cls.Severity {
	case SeverityHigh:
		return nil, &ValidationError{Field: "body", Msg: "评论包含禁用词，请修改后重新提交"}
	case SeverityMedium:
		// 不拒绝，转人工复核
		forcePending = true
	case SeverityLow:
		if cls.Censored != "" {
			body = cls.Censored
		}
	}

	// 回复只保留一层：父评论本身是回复时挂到它的顶层评论上
	parentID, err := p.resolveParent(ctx, input)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Cid:       utils.RandString(8),
		SubjectID: input.SubjectID,
		UserID:    input.AuthorID,
		ParentID:  parentID,
		Body:      body,
	}

	// 第三步：封禁规则。命中直接判 spam，不再计算启发式分。
	var matched *models.DenylistEntry
	err = p.withRetry(ctx, func(ctx context.Context) error {
		var evalErr error
		matched, evalErr = p.denylist.Evaluate(ctx, DenylistCandidate{
			Body:   body,
			Email:  input.AuthorEmail,
			IP:     input.IP,
			UserID: input.AuthorID,
		})
		return evalErr
	})
	if err != nil {
		// 依赖故障：前两步已通过，兜底进待审队列
		p.log.WithFields(logrus.Fields{"user_id": input.AuthorID}).
			WithError(err).Warn("封禁库不可用，提交兜底为 pending")
		comment.Status = models.StatusPending
		return comment, p.persist(ctx, comment)
	}
	if matched != nil {
		comment.Status = models.StatusSpam
		return comment, p.persist(ctx, comment)
	}

	// 第四步：启发式评分（词库强制待审时跳过）
	if forcePending {
		comment.Status = models.StatusPending
		return comment, p.persist(ctx, comment)
	}

	score, err := p.spamScore(ctx, input, body)
	if err != nil {
		p.log.WithFields(logrus.Fields{"user_id": input.AuthorID}).
			WithError(err).Warn("活跃窗口不可用，提交兜底为 pending")
		comment.Status = models.StatusPending
		return comment, p.persist(ctx, comment)
	}
	comment.SpamScore = score
	switch {
	case score >= p.cfg.SpamThreshold:
		comment.Status = models.StatusSpam
	case score >= p.cfg.PendingThreshold:
		comment.Status = models.StatusPending
	default:
		comment.Status = models.StatusApproved
	}

	// 第五步：落库
	return comment, p.persist(ctx, comment)
}

func (p *SubmissionPipeline) resolveParent(ctx context.Context, input SubmissionInput) (*uint, error) {
	if input.ParentID == nil {
		return nil, nil
	}
	parent, err := p.comments.GetByID(ctx, *input.ParentID)
	if err != nil {
		if err == ErrNotFound {
			return nil, &ValidationError{Field: "parent_id", Msg: "被回复的评论不存在"}
		}
		return nil, err
	}
	if parent.SubjectID != input.SubjectID {
		return nil, &ValidationError{Field: "parent_id", Msg: "被回复的评论不属于当前内容"}
	}
	if parent.ParentID != nil {
		// 回复的回复拍平到顶层评论
		return parent.ParentID, nil
	}
	id := parent.ID
	return &id, nil
}

// spamScore 轻量启发式：短窗口重复内容、链接密度、账号太新
func (p *SubmissionPipeline) spamScore(ctx context.Context, input SubmissionInput, body string) (float64, error) {
	var seen bool
	err := p.withRetry(ctx, func(ctx context.Context) error {
		var seenErr error
		seen, seenErr = p.activity.SeenRecently(ctx, input.AuthorID, Fingerprint(body))
		return seenErr
	})
	if err != nil {
		return 0, err
	}

	score := 0.0
	if seen {
		score += p.cfg.DuplicateScore
	}
	if linkDensity(body) > p.cfg.LinkDensityMax {
		score += p.cfg.LinkScore
	}
	if input.AuthorAgeDays < p.cfg.NewAccountDays {
		score += p.cfg.NewAccountScore
	}
	if score > 1 {
		score = 1
	}
	return score, nil
}

func (p *SubmissionPipeline) persist(ctx context.Context, comment *models.Comment) error {
	if err := p.comments.Create(ctx, comment); err != nil {
		return err
	}
	p.log.WithFields(logrus.Fields{
		"cid":        comment.Cid,
		"user_id":    comment.UserID,
		"subject_id": comment.SubjectID,
		"status":     comment.Status,
		"spam_score": comment.SpamScore,
	}).Info("评论已入库")
	return nil
}

// withRetry 给外部依赖调用加超时预算，失败后小退避重试一次
func (p *SubmissionPipeline) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	attempt := func() error {
		tctx, cancel := context.WithTimeout(ctx, p.cfg.DependencyTimeout)
		defer cancel()
		return fn(tctx)
	}
	if err := attempt(); err == nil {
		return nil
	}
	time.Sleep(p.cfg.RetryBackoff)
	if err := attempt(); err != nil {
		return fmt.Errorf("%w: %v", ErrDependencyTimeout, err)
	}
	return nil
}

// Fingerprint 重复内容指纹：空白折叠、小写后取 SHA-1
func Fingerprint(body string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(body)), " ")
	sum := sha1.Sum([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// linkDensity 链接数占词数的比例
func linkDensity(body string) float64 {
	words := strings.Fields(body)
	if len(words) == 0 {
		return 0
	}
	links := 0
	for _, w := range words {
		lw := strings.ToLower(w)
		if strings.Contains(lw, "http://") || strings.Contains(lw, "https://") || strings.HasPrefix(lw, "www.") {
			links++
		}
	}
	return float64(links) / float64(len(words))
}
