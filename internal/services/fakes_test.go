package services

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"songlin/internal/models"

	"github.com/sirupsen/logrus"
)

// 各仓储接口的内存实现，只给本包测试用

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// ---- CommentStore ----

type fakeComments struct {
	mu       sync.Mutex
	seq      uint
	rows     map[uint]*models.Comment
	afterGet func() // GetByCid 之后的钩子，用来模拟并发修改
}

func newFakeComments() *fakeComments {
	return &fakeComments{rows: make(map[uint]*models.Comment)}
}

var fakeEpoch = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func (f *fakeComments) Create(_ context.Context, c *models.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	c.ID = f.seq
	if c.CreatedAt.IsZero() {
		c.CreatedAt = fakeEpoch.Add(time.Duration(f.seq) * time.Second)
	}
	clone := *c
	f.rows[c.ID] = &clone
	return nil
}

func (f *fakeComments) GetByID(_ context.Context, id uint) (*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *row
	return &clone, nil
}

func (f *fakeComments) GetByCid(_ context.Context, cid string) (*models.Comment, error) {
	f.mu.Lock()
	var found *models.Comment
	for _, row := range f.rows {
		if row.Cid == cid {
			clone := *row
			found = &clone
			break
		}
	}
	f.mu.Unlock()
	if found == nil {
		return nil, ErrNotFound
	}
	if f.afterGet != nil {
		f.afterGet()
	}
	return found, nil
}

func (f *fakeComments) ListBySubject(_ context.Context, subjectID uint, statuses []models.CommentStatus) ([]models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	allowed := make(map[models.CommentStatus]bool)
	for _, s := range statuses {
		allowed[s] = true
	}
	var out []models.Comment
	for _, row := range f.rows {
		if row.SubjectID == subjectID && allowed[row.Status] {
			out = append(out, *row)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakeComments) ListByStatus(_ context.Context, status models.CommentStatus, limit int) ([]models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Comment
	for _, row := range f.rows {
		if row.Status == status {
			out = append(out, *row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeComments) UpdateStatus(_ context.Context, id uint, from, to models.CommentStatus, moderatorID uint, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok || row.Status != from {
		return false, nil
	}
	row.Status = to
	row.ModeratedBy = &moderatorID
	row.ModeratedAt = &at
	return true, nil
}

func (f *fakeComments) IncrLikeCount(_ context.Context, id uint, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if row, ok := f.rows[id]; ok {
		row.LikeCount += delta
	}
	return nil
}

func (f *fakeComments) Delete(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeComments) countByStatus(status models.CommentStatus) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, row := range f.rows {
		if row.Status == status {
			n++
		}
	}
	return n
}

// ---- SubjectStore ----

type fakeSubjects struct {
	mu       sync.Mutex
	subjects map[uint]*models.Subject
	counts   map[uint]int
}

func newFakeSubjects() *fakeSubjects {
	return &fakeSubjects{
		subjects: make(map[uint]*models.Subject),
		counts:   make(map[uint]int),
	}
}

func (f *fakeSubjects) GetByPid(_ context.Context, pid string) (*models.Subject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.subjects {
		if s.Pid == pid {
			clone := *s
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeSubjects) IncrCommentCount(_ context.Context, subjectID uint, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[subjectID] += delta
	return nil
}

// ---- DenylistStore ----

type fakeDenylist struct {
	mu        sync.Mutex
	seq       uint
	entries   []models.DenylistEntry
	listErr   error
	listCalls int
}

func newFakeDenylist() *fakeDenylist {
	return &fakeDenylist{}
}

func (f *fakeDenylist) List(_ context.Context) ([]models.DenylistEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.DenylistEntry, len(f.entries))
	copy(out, f.entries)
	return out, nil
}

func (f *fakeDenylist) Upsert(_ context.Context, entry *models.DenylistEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.entries {
		if f.entries[i].Type == entry.Type && f.entries[i].Value == entry.Value {
			f.entries[i].HitCount++
			*entry = f.entries[i]
			return nil
		}
	}
	f.seq++
	entry.ID = f.seq
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeDenylist) IncrHit(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.entries {
		if f.entries[i].ID == id {
			f.entries[i].HitCount++
			return nil
		}
	}
	return ErrNotFound
}

func (f *fakeDenylist) Delete(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.entries {
		if f.entries[i].ID == id {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (f *fakeDenylist) hitCount(id uint) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.entries {
		if f.entries[i].ID == id {
			return f.entries[i].HitCount
		}
	}
	return -1
}

// ---- ActivityWindow ----

type fakeActivity struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func newFakeActivity() *fakeActivity {
	return &fakeActivity{seen: make(map[string]bool)}
}

func (f *fakeActivity) SeenRecently(_ context.Context, userID uint, fingerprint string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	key := fmt.Sprintf("%d:%s", userID, fingerprint)
	was := f.seen[key]
	f.seen[key] = true
	return was, nil
}

// ---- LikeStore ----

type fakeLikes struct {
	mu  sync.Mutex
	set map[[2]uint]bool // (userID, commentID)
}

func newFakeLikes() *fakeLikes {
	return &fakeLikes{set: make(map[[2]uint]bool)}
}

func (f *fakeLikes) Add(_ context.Context, userID, commentID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := [2]uint{userID, commentID}
	if f.set[key] {
		return false, nil
	}
	f.set[key] = true
	return true, nil
}

func (f *fakeLikes) Remove(_ context.Context, userID, commentID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := [2]uint{userID, commentID}
	if !f.set[key] {
		return false, nil
	}
	delete(f.set, key)
	return true, nil
}

func (f *fakeLikes) LikedSet(_ context.Context, userID uint, commentIDs []uint) (map[uint]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	liked := make(map[uint]bool)
	for _, id := range commentIDs {
		if f.set[[2]uint{userID, id}] {
			liked[id] = true
		}
	}
	return liked, nil
}

// ---- BadgeStore ----

type fakeBadges struct {
	mu       sync.Mutex
	seq      uint
	badges   []models.Badge
	awards   map[[2]uint]*models.UserBadge // (userID, badgeID)
	criteria map[uint]map[string]int       // userID -> criteriaType -> 当前值
	users    map[uint]string               // userID -> username（排行榜展示用）
	nextAt   time.Time
}

func newFakeBadges() *fakeBadges {
	return &fakeBadges{
		awards:   make(map[[2]uint]*models.UserBadge),
		criteria: make(map[uint]map[string]int),
		users:    make(map[uint]string),
		nextAt:   fakeEpoch,
	}
}

func (f *fakeBadges) addBadge(b models.Badge) models.Badge {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	b.ID = f.seq
	f.badges = append(f.badges, b)
	return b
}

func (f *fakeBadges) setCriteria(userID uint, criteriaType string, value int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.criteria[userID] == nil {
		f.criteria[userID] = make(map[string]int)
	}
	f.criteria[userID][criteriaType] = value
}

func (f *fakeBadges) ListAuto(_ context.Context) ([]models.Badge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Badge
	for _, b := range f.badges {
		if b.AutoAward {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBadges) GetBySlug(_ context.Context, slug string) (*models.Badge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.badges {
		if b.Slug == slug {
			clone := b
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeBadges) Award(_ context.Context, award *models.UserBadge) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := [2]uint{award.UserID, award.BadgeID}
	if _, held := f.awards[key]; held {
		return false, nil
	}
	if award.AwardedAt.IsZero() {
		f.nextAt = f.nextAt.Add(time.Minute)
		award.AwardedAt = f.nextAt
	}
	clone := *award
	f.awards[key] = &clone
	return true, nil
}

func (f *fakeBadges) CriteriaCount(_ context.Context, userID uint, criteriaType string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.criteria[userID][criteriaType], nil
}

func (f *fakeBadges) ListByUser(_ context.Context, userID uint) ([]models.UserBadge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.UserBadge
	for _, a := range f.awards {
		if a.UserID == userID {
			out = append(out, f.withRelations(*a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AwardedAt.Before(out[j].AwardedAt) })
	return out, nil
}

func (f *fakeBadges) AllAwards(_ context.Context) ([]models.UserBadge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.UserBadge
	for _, a := range f.awards {
		out = append(out, f.withRelations(*a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AwardedAt.Before(out[j].AwardedAt) })
	return out, nil
}

func (f *fakeBadges) withRelations(a models.UserBadge) models.UserBadge {
	for _, b := range f.badges {
		if b.ID == a.BadgeID {
			a.Badge = b
			break
		}
	}
	a.User = models.User{ID: a.UserID, Username: f.users[a.UserID]}
	return a
}

func (f *fakeBadges) awardCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.awards)
}

// ---- NotificationStore ----

type fakeNotes struct {
	mu   sync.Mutex
	rows []models.Notification
}

func (f *fakeNotes) Create(_ context.Context, n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, *n)
	return nil
}

// ---- ApprovalListener ----

type recordListener struct {
	mu       sync.Mutex
	approved []uint
}

func (l *recordListener) CommentApproved(userID uint) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.approved = append(l.approved, userID)
}

func (l *recordListener) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.approved)
}
