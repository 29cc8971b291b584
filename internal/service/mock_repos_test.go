package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"ruralwork/internal/model"
	"ruralwork/internal/repository"
	pkgerrors "ruralwork/pkg/errors"
	"ruralwork/pkg/mq"
)

// 所有 mock 均以 map 存储副本，模拟数据库的值语义；加锁以支持并发用例

// ── Mock UserRepository ──

type mockUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
	order []string
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Phone == user.Phone {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.ID == "" {
		user.ID = "u-" + user.Phone
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	cp := *user
	m.users[user.ID] = &cp
	m.order = append(m.order, user.ID)
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByPhone(_ context.Context, phone string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Phone == phone {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.users[user.ID]
	if !ok || cur.Version != user.Version {
		return pkgerrors.ErrOptimisticLock
	}
	score := cur.TotalScore
	cp := *user
	cp.TotalScore = score
	cp.Version++
	user.Version++
	m.users[user.ID] = &cp
	return nil
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) Find(ctx context.Context, q repository.Query) ([]model.User, int64, error) {
	all, _ := m.ListAll(ctx)
	var result []model.User
	for _, u := range all {
		if v, ok := q.Filters["role"]; ok && string(u.Role) != fmt.Sprint(v) {
			continue
		}
		if v, ok := q.Filters["department"]; ok && u.Department != fmt.Sprint(v) {
			continue
		}
		if v, ok := q.Filters["is_active"]; ok && u.IsActive != v.(bool) {
			continue
		}
		result = append(result, u)
	}
	return page(result, q), int64(len(result)), nil
}

func (m *mockUserRepo) ListAll(_ context.Context) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.User
	for _, id := range m.order {
		if u, ok := m.users[id]; ok {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (m *mockUserRepo) CountByRole(ctx context.Context) ([]repository.RoleCount, error) {
	all, _ := m.ListAll(ctx)
	counts := make(map[model.Role]int64)
	for _, u := range all {
		counts[u.Role]++
	}
	var result []repository.RoleCount
	for r, n := range counts {
		result = append(result, repository.RoleCount{Role: r, Count: n})
	}
	return result, nil
}

func (m *mockUserRepo) DeductScore(_ context.Context, id string, amount float64) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	u.TotalScore = max(0, u.TotalScore-amount)
	return u.TotalScore, nil
}

// score 直接读取当前分数
func (m *mockUserRepo) score(id string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id].TotalScore
}

func page[T any](list []T, q repository.Query) []T {
	if q.Limit <= 0 {
		return list
	}
	if q.Offset >= len(list) {
		return []T{}
	}
	end := min(q.Offset+q.Limit, len(list))
	return list[q.Offset:end]
}

// ── Mock EvaluationRepository ──

type mockEvaluationRepo struct {
	mu    sync.Mutex
	evals map[string]*model.Evaluation
	order []string
	seq   int

	// afterGetByKey 在 GetByKey 返回前调用（锁外），用于模拟读写之间的并发写入
	afterGetByKey func()
}

func newMockEvaluationRepo() *mockEvaluationRepo {
	return &mockEvaluationRepo{evals: make(map[string]*model.Evaluation)}
}

func (m *mockEvaluationRepo) Create(_ context.Context, e *model.Evaluation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.evals {
		if x.EvaluatorID == e.EvaluatorID && x.EvaluateeID == e.EvaluateeID && x.EvaluationYear == e.EvaluationYear {
			return gorm.ErrDuplicatedKey
		}
	}
	m.seq++
	e.ID = fmt.Sprintf("e-%d", m.seq)
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	cp := *e
	m.evals[e.ID] = &cp
	m.order = append(m.order, e.ID)
	return nil
}

func (m *mockEvaluationRepo) Update(_ context.Context, e *model.Evaluation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.evals[e.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if cur.IsCompleted && !e.IsCompleted {
		return pkgerrors.ErrOptimisticLock
	}
	cp := *e
	m.evals[e.ID] = &cp
	return nil
}

func (m *mockEvaluationRepo) GetByID(_ context.Context, id string) (*model.Evaluation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.evals[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEvaluationRepo) GetByKey(_ context.Context, evaluatorID, evaluateeID, year string) (*model.Evaluation, error) {
	e, err := m.getByKey(evaluatorID, evaluateeID, year)
	if m.afterGetByKey != nil {
		m.afterGetByKey()
	}
	return e, err
}

func (m *mockEvaluationRepo) getByKey(evaluatorID, evaluateeID, year string) (*model.Evaluation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.evals {
		if e.EvaluatorID == evaluatorID && e.EvaluateeID == evaluateeID && e.EvaluationYear == year {
			cp := *e
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEvaluationRepo) list(keep func(*model.Evaluation) bool) []model.Evaluation {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Evaluation
	for _, id := range m.order {
		if e, ok := m.evals[id]; ok && keep(e) {
			result = append(result, *e)
		}
	}
	return result
}

func (m *mockEvaluationRepo) ListByEvaluator(_ context.Context, evaluatorID, year string) ([]model.Evaluation, error) {
	return m.list(func(e *model.Evaluation) bool {
		return e.EvaluatorID == evaluatorID && e.EvaluationYear == year
	}), nil
}

func (m *mockEvaluationRepo) ListCompleted(_ context.Context, year string) ([]model.Evaluation, error) {
	return m.list(func(e *model.Evaluation) bool {
		return e.IsCompleted && (year == "" || e.EvaluationYear == year)
	}), nil
}

func (m *mockEvaluationRepo) Find(_ context.Context, q repository.Query) ([]model.Evaluation, int64, error) {
	result := m.list(func(e *model.Evaluation) bool {
		if v, ok := q.Filters["evaluation_year"]; ok && e.EvaluationYear != v {
			return false
		}
		if v, ok := q.Filters["evaluator_id"]; ok && e.EvaluatorID != v {
			return false
		}
		if v, ok := q.Filters["is_completed"]; ok && e.IsCompleted != v {
			return false
		}
		return true
	})
	return page(result, q), int64(len(result)), nil
}

// ── Mock VoteRepository ──

type mockVoteRepo struct {
	mu    sync.Mutex
	votes map[string]*model.Vote
	order []string
	seq   int
}

func newMockVoteRepo() *mockVoteRepo {
	return &mockVoteRepo{votes: make(map[string]*model.Vote)}
}

func (m *mockVoteRepo) Create(_ context.Context, v *model.Vote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v.ID == "" {
		m.seq++
		v.ID = fmt.Sprintf("v-%d", m.seq)
	}
	cp := *v
	m.votes[v.ID] = &cp
	m.order = append(m.order, v.ID)
	return nil
}

func (m *mockVoteRepo) GetByID(_ context.Context, id string) (*model.Vote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.votes[id]; ok {
		cp := *v
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockVoteRepo) Update(_ context.Context, v *model.Vote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.votes[v.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *v
	m.votes[v.ID] = &cp
	return nil
}

func (m *mockVoteRepo) UpdateStatus(_ context.Context, id string, status model.VoteStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.votes[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	v.Status = status
	return nil
}

func (m *mockVoteRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.votes[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.votes, id)
	return nil
}

func (m *mockVoteRepo) Find(ctx context.Context, q repository.Query) ([]model.Vote, int64, error) {
	all, _ := m.ListAll(ctx)
	var result []model.Vote
	for _, v := range all {
		if s, ok := q.Filters["status"]; ok && string(v.Status) != fmt.Sprint(s) {
			continue
		}
		result = append(result, v)
	}
	return page(result, q), int64(len(result)), nil
}

func (m *mockVoteRepo) ListAll(_ context.Context) ([]model.Vote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Vote
	for _, id := range m.order {
		if v, ok := m.votes[id]; ok {
			result = append(result, *v)
		}
	}
	return result, nil
}

func (m *mockVoteRepo) ListExpiredActive(ctx context.Context, now time.Time) ([]model.Vote, error) {
	all, _ := m.ListAll(ctx)
	var result []model.Vote
	for _, v := range all {
		if v.Status == model.VoteStatusActive && !v.EndTime.After(now) {
			result = append(result, v)
		}
	}
	return result, nil
}

// ── Mock VoteRecordRepository ──

type mockVoteRecordRepo struct {
	mu      sync.Mutex
	records []model.VoteRecord
	err     error // 非空时 Count 返回该错误
}

func newMockVoteRecordRepo() *mockVoteRecordRepo {
	return &mockVoteRecordRepo{}
}

func (m *mockVoteRecordRepo) Create(_ context.Context, rec *model.VoteRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.VoteID == rec.VoteID && r.VoterID == rec.VoterID {
			return gorm.ErrDuplicatedKey
		}
	}
	rec.ID = fmt.Sprintf("r-%d", len(m.records)+1)
	m.records = append(m.records, *rec)
	return nil
}

func (m *mockVoteRecordRepo) GetByVoter(_ context.Context, voteID, voterID string) (*model.VoteRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.VoteID == voteID && r.VoterID == voterID {
			cp := r
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockVoteRecordRepo) ListByVote(_ context.Context, voteID string) ([]model.VoteRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.VoteRecord
	for _, r := range m.records {
		if r.VoteID == voteID {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *mockVoteRecordRepo) ListByVoter(_ context.Context, voterID string) ([]model.VoteRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.VoteRecord
	for _, r := range m.records {
		if r.VoterID == voterID {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *mockVoteRecordRepo) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	return int64(len(m.records)), nil
}

// ── Mock LeaveRepository ──

type mockLeaveRepo struct {
	mu     sync.Mutex
	leaves map[string]*model.LeaveRequest
	order  []string
	seq    int
}

func newMockLeaveRepo() *mockLeaveRepo {
	return &mockLeaveRepo{leaves: make(map[string]*model.LeaveRequest)}
}

func (m *mockLeaveRepo) Create(_ context.Context, l *model.LeaveRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l.ID == "" {
		m.seq++
		l.ID = fmt.Sprintf("l-%d", m.seq)
	}
	cp := *l
	m.leaves[l.ID] = &cp
	m.order = append(m.order, l.ID)
	return nil
}

func (m *mockLeaveRepo) GetByID(_ context.Context, id string) (*model.LeaveRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.leaves[id]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLeaveRepo) Review(_ context.Context, l *model.LeaveRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.leaves[l.ID]
	if !ok || cur.Status != model.LeaveStatusPending {
		return pkgerrors.ErrOptimisticLock
	}
	cp := *l
	m.leaves[l.ID] = &cp
	return nil
}

func (m *mockLeaveRepo) Find(ctx context.Context, q repository.Query) ([]model.LeaveRequest, int64, error) {
	all, _ := m.ListAll(ctx)
	var result []model.LeaveRequest
	for _, l := range all {
		if v, ok := q.Filters["user_id"]; ok && l.UserID != v {
			continue
		}
		if v, ok := q.Filters["status"]; ok && string(l.Status) != fmt.Sprint(v) {
			continue
		}
		result = append(result, l)
	}
	return page(result, q), int64(len(result)), nil
}

func (m *mockLeaveRepo) ListAll(_ context.Context) ([]model.LeaveRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.LeaveRequest
	for _, id := range m.order {
		result = append(result, *m.leaves[id])
	}
	return result, nil
}

// ── Mock DeductionRepository ──

type mockDeductionRepo struct {
	mu         sync.Mutex
	deductions []model.ScoreDeduction
}

func newMockDeductionRepo() *mockDeductionRepo {
	return &mockDeductionRepo{}
}

func (m *mockDeductionRepo) Create(_ context.Context, d *model.ScoreDeduction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.deductions {
		if x.IdempotencyKey == d.IdempotencyKey {
			return gorm.ErrDuplicatedKey
		}
	}
	d.ID = fmt.Sprintf("d-%d", len(m.deductions)+1)
	d.CreatedAt = time.Now()
	m.deductions = append(m.deductions, *d)
	return nil
}

func (m *mockDeductionRepo) GetByIdempotencyKey(_ context.Context, key string) (*model.ScoreDeduction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.deductions {
		if d.IdempotencyKey == key {
			cp := d
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDeductionRepo) ListByUser(_ context.Context, userID string) ([]model.ScoreDeduction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.ScoreDeduction
	for _, d := range m.deductions {
		if d.UserID == userID {
			result = append(result, d)
		}
	}
	return result, nil
}

func (m *mockDeductionRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.deductions)
}

// ── Mock WorkTeamRepository ──

type mockWorkTeamRepo struct {
	teams map[string]*model.WorkTeam
	order []string
}

func newMockWorkTeamRepo() *mockWorkTeamRepo {
	return &mockWorkTeamRepo{teams: make(map[string]*model.WorkTeam)}
}

func (m *mockWorkTeamRepo) Create(_ context.Context, t *model.WorkTeam) error {
	if t.ID == "" {
		t.ID = "t-" + t.TeamName
	}
	cp := *t
	m.teams[t.ID] = &cp
	m.order = append(m.order, t.ID)
	return nil
}

func (m *mockWorkTeamRepo) GetByID(_ context.Context, id string) (*model.WorkTeam, error) {
	if t, ok := m.teams[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWorkTeamRepo) Update(_ context.Context, t *model.WorkTeam) error {
	if _, ok := m.teams[t.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *t
	m.teams[t.ID] = &cp
	return nil
}

func (m *mockWorkTeamRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.teams[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.teams, id)
	return nil
}

func (m *mockWorkTeamRepo) ListAll(_ context.Context, activeOnly bool) ([]model.WorkTeam, error) {
	var result []model.WorkTeam
	for _, id := range m.order {
		t, ok := m.teams[id]
		if !ok || (activeOnly && !t.IsActive) {
			continue
		}
		result = append(result, *t)
	}
	return result, nil
}

// ── Mock TeamActivityRepository ──

type mockTeamActivityRepo struct {
	activities map[string]*model.TeamEvaluationActivity
}

func newMockTeamActivityRepo() *mockTeamActivityRepo {
	return &mockTeamActivityRepo{activities: make(map[string]*model.TeamEvaluationActivity)}
}

func (m *mockTeamActivityRepo) Create(_ context.Context, a *model.TeamEvaluationActivity) error {
	if a.ID == "" {
		a.ID = fmt.Sprintf("a-%d", len(m.activities)+1)
	}
	cp := *a
	m.activities[a.ID] = &cp
	return nil
}

func (m *mockTeamActivityRepo) GetByID(_ context.Context, id string) (*model.TeamEvaluationActivity, error) {
	if a, ok := m.activities[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeamActivityRepo) Update(_ context.Context, a *model.TeamEvaluationActivity) error {
	if _, ok := m.activities[a.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *a
	m.activities[a.ID] = &cp
	return nil
}

func (m *mockTeamActivityRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.activities[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.activities, id)
	return nil
}

func (m *mockTeamActivityRepo) Find(_ context.Context, q repository.Query) ([]model.TeamEvaluationActivity, int64, error) {
	var result []model.TeamEvaluationActivity
	for _, a := range m.activities {
		if s, ok := q.Filters["status"]; ok && string(a.Status) != fmt.Sprint(s) {
			continue
		}
		result = append(result, *a)
	}
	return page(result, q), int64(len(result)), nil
}

// ── Mock TeamEvaluationRepository ──

type mockTeamEvaluationRepo struct {
	evals []model.WorkTeamEvaluation
}

func newMockTeamEvaluationRepo() *mockTeamEvaluationRepo {
	return &mockTeamEvaluationRepo{}
}

func (m *mockTeamEvaluationRepo) Create(_ context.Context, e *model.WorkTeamEvaluation) error {
	for _, x := range m.evals {
		if x.ActivityID == e.ActivityID && x.TeamID == e.TeamID && x.EvaluatorID == e.EvaluatorID {
			return gorm.ErrDuplicatedKey
		}
	}
	e.ID = fmt.Sprintf("te-%d", len(m.evals)+1)
	m.evals = append(m.evals, *e)
	return nil
}

func (m *mockTeamEvaluationRepo) Update(_ context.Context, e *model.WorkTeamEvaluation) error {
	for i := range m.evals {
		if m.evals[i].ID == e.ID {
			m.evals[i] = *e
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockTeamEvaluationRepo) GetByKey(_ context.Context, activityID, teamID, evaluatorID string) (*model.WorkTeamEvaluation, error) {
	for _, e := range m.evals {
		if e.ActivityID == activityID && e.TeamID == teamID && e.EvaluatorID == evaluatorID {
			cp := e
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeamEvaluationRepo) ListByActivity(_ context.Context, activityID string) ([]model.WorkTeamEvaluation, error) {
	var result []model.WorkTeamEvaluation
	for _, e := range m.evals {
		if e.ActivityID == activityID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *mockTeamEvaluationRepo) ListByEvaluator(_ context.Context, activityID, evaluatorID string) ([]model.WorkTeamEvaluation, error) {
	var result []model.WorkTeamEvaluation
	for _, e := range m.evals {
		if e.ActivityID == activityID && e.EvaluatorID == evaluatorID {
			result = append(result, e)
		}
	}
	return result, nil
}

// ── Mock SystemLogRepository ──

type mockSystemLogRepo struct {
	mu   sync.Mutex
	logs []model.SystemLog
	err  error
}

func newMockSystemLogRepo() *mockSystemLogRepo {
	return &mockSystemLogRepo{}
}

func (m *mockSystemLogRepo) Create(_ context.Context, l *model.SystemLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.logs = append(m.logs, *l)
	return nil
}

func (m *mockSystemLogRepo) Find(_ context.Context, q repository.Query) ([]model.SystemLog, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.SystemLog
	for _, l := range m.logs {
		if a, ok := q.Filters["action"]; ok && l.Action != a {
			continue
		}
		result = append(result, l)
	}
	return page(result, q), int64(len(result)), nil
}

func (m *mockSystemLogRepo) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.logs))
	for _, l := range m.logs {
		out = append(out, l.Action)
	}
	return out
}

// ── 组装 ──

type mocks struct {
	user           *mockUserRepo
	evaluation     *mockEvaluationRepo
	vote           *mockVoteRepo
	voteRecord     *mockVoteRecordRepo
	leave          *mockLeaveRepo
	deduction      *mockDeductionRepo
	workTeam       *mockWorkTeamRepo
	teamActivity   *mockTeamActivityRepo
	teamEvaluation *mockTeamEvaluationRepo
	systemLog      *mockSystemLogRepo
}

// newTestRepo 返回未绑定数据库的 Repository；Transaction/Snapshot 直接执行回调
func newTestRepo() (*repository.Repository, *mocks) {
	m := &mocks{
		user:           newMockUserRepo(),
		evaluation:     newMockEvaluationRepo(),
		vote:           newMockVoteRepo(),
		voteRecord:     newMockVoteRecordRepo(),
		leave:          newMockLeaveRepo(),
		deduction:      newMockDeductionRepo(),
		workTeam:       newMockWorkTeamRepo(),
		teamActivity:   newMockTeamActivityRepo(),
		teamEvaluation: newMockTeamEvaluationRepo(),
		systemLog:      newMockSystemLogRepo(),
	}
	repo := &repository.Repository{
		User:           m.user,
		Evaluation:     m.evaluation,
		Vote:           m.vote,
		VoteRecord:     m.voteRecord,
		Leave:          m.leave,
		Deduction:      m.deduction,
		WorkTeam:       m.workTeam,
		TeamActivity:   m.teamActivity,
		TeamEvaluation: m.teamEvaluation,
		SystemLog:      m.systemLog,
	}
	return repo, m
}

// seedUser 直接写入一个用户
func (m *mocks) seedUser(id, phone, dept string, role model.Role, score float64) *model.User {
	u := &model.User{
		ID:         id,
		Phone:      phone,
		Name:       "用户" + id,
		Department: dept,
		Role:       role,
		TotalScore: score,
		IsActive:   true,
	}
	_ = m.user.Create(context.Background(), u)
	return u
}

// ── Mock Publisher ──

type mockPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *mockPublisher) Publish(_ context.Context, evt mq.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt.Type)
	return nil
}

func (p *mockPublisher) Close() error { return nil }

func (p *mockPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}
