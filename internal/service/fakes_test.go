package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Harshitk-cp/askdesk/internal/domain"
	"github.com/Harshitk-cp/askdesk/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// mockCompanyStore implements domain.CompanyStore for testing.
type mockCompanyStore struct {
	companies map[uuid.UUID]*domain.Company
	// createErr, when set, is returned by Create.
	createErr error
}

func newMockCompanyStore() *mockCompanyStore {
	return &mockCompanyStore{companies: make(map[uuid.UUID]*domain.Company)}
}

func (m *mockCompanyStore) Create(ctx context.Context, c *domain.Company) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.companies {
		if existing.Name == c.Name {
			return store.ErrConflict
		}
	}
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	m.companies[c.ID] = c
	return nil
}

func (m *mockCompanyStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Company, error) {
	c, ok := m.companies[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return c, nil
}

func (m *mockCompanyStore) GetByName(ctx context.Context, name string) (*domain.Company, error) {
	for _, c := range m.companies {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, store.ErrNotFound
}

// mockUserStore implements domain.UserStore for testing.
type mockUserStore struct {
	users map[uuid.UUID]*domain.User
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: make(map[uuid.UUID]*domain.User)}
}

func (m *mockUserStore) Create(ctx context.Context, u *domain.User) error {
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return store.ErrConflict
		}
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	m.users[u.ID] = u
	return nil
}

func (m *mockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

// mockRefreshTokenStore implements domain.RefreshTokenStore for testing. It
// is safe for concurrent use so rotation races can be exercised.
type mockRefreshTokenStore struct {
	mu     sync.Mutex
	tokens map[string]*domain.RefreshToken
	// deleteErr, when set, is returned by Delete.
	deleteErr error
}

func newMockRefreshTokenStore() *mockRefreshTokenStore {
	return &mockRefreshTokenStore{tokens: make(map[string]*domain.RefreshToken)}
}

func (m *mockRefreshTokenStore) Create(ctx context.Context, t *domain.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tokens[t.Token]; ok {
		return store.ErrConflict
	}
	cp := *t
	m.tokens[t.Token] = &cp
	return nil
}

func (m *mockRefreshTokenStore) Consume(ctx context.Context, token string) (*domain.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[token]
	if !ok {
		return nil, store.ErrNotFound
	}
	delete(m.tokens, token)
	return t, nil
}

func (m *mockRefreshTokenStore) Delete(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.tokens, token)
	return nil
}

func (m *mockRefreshTokenStore) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, t := range m.tokens {
		if t.ExpiresAt.Before(before) {
			delete(m.tokens, k)
			n++
		}
	}
	return n, nil
}

func (m *mockRefreshTokenStore) get(token string) (*domain.RefreshToken, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[token]
	return t, ok
}

func (m *mockRefreshTokenStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tokens)
}

// mockQuestionStore implements domain.QuestionStore for testing. Author
// profiles are resolved from users when set.
type mockQuestionStore struct {
	questions []*domain.Question
	users     *mockUserStore
	clock     time.Time
	similar   []domain.QuestionWithScore
	createErr error
}

func newMockQuestionStore(users *mockUserStore) *mockQuestionStore {
	return &mockQuestionStore{
		users: users,
		clock: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (m *mockQuestionStore) Create(ctx context.Context, q *domain.Question) error {
	if m.createErr != nil {
		return m.createErr
	}
	// Each insert is one second after the previous so ordering is stable.
	m.clock = m.clock.Add(time.Second)
	q.ID = uuid.New()
	q.CreatedAt = m.clock
	cp := *q
	m.questions = append(m.questions, &cp)
	return nil
}

func (m *mockQuestionStore) withAuthor(q *domain.Question) domain.Question {
	cp := *q
	if m.users != nil {
		if u, ok := m.users.users[q.UserID]; ok {
			cp.User = &domain.QuestionAuthor{ID: u.ID, Name: u.Name, Email: u.Email}
		}
	}
	return cp
}

func (m *mockQuestionStore) GetByID(ctx context.Context, id uuid.UUID, companyID uuid.UUID) (*domain.Question, error) {
	for _, q := range m.questions {
		if q.ID == id && q.CompanyID == companyID {
			cp := m.withAuthor(q)
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockQuestionStore) filter(keep func(*domain.Question) bool) []*domain.Question {
	var out []*domain.Question
	for _, q := range m.questions {
		if keep(q) {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *mockQuestionStore) page(qs []*domain.Question, params domain.PageParams) []domain.Question {
	start := params.Offset()
	if start >= len(qs) {
		return nil
	}
	end := start + params.Limit
	if end > len(qs) {
		end = len(qs)
	}
	out := make([]domain.Question, 0, end-start)
	for _, q := range qs[start:end] {
		out = append(out, m.withAuthor(q))
	}
	return out
}

func (m *mockQuestionStore) ListByUser(ctx context.Context, userID uuid.UUID, companyID uuid.UUID, params domain.PageParams) ([]domain.Question, error) {
	return m.page(m.filter(func(q *domain.Question) bool {
		return q.UserID == userID && q.CompanyID == companyID
	}), params), nil
}

func (m *mockQuestionStore) CountByUser(ctx context.Context, userID uuid.UUID, companyID uuid.UUID) (int, error) {
	return len(m.filter(func(q *domain.Question) bool {
		return q.UserID == userID && q.CompanyID == companyID
	})), nil
}

func (m *mockQuestionStore) ListByCompany(ctx context.Context, companyID uuid.UUID, params domain.PageParams) ([]domain.Question, error) {
	return m.page(m.filter(func(q *domain.Question) bool {
		return q.CompanyID == companyID
	}), params), nil
}

func (m *mockQuestionStore) CountByCompany(ctx context.Context, companyID uuid.UUID) (int, error) {
	return len(m.filter(func(q *domain.Question) bool {
		return q.CompanyID == companyID
	})), nil
}

func (m *mockQuestionStore) FindSimilar(ctx context.Context, id uuid.UUID, companyID uuid.UUID, limit int) ([]domain.QuestionWithScore, error) {
	out := m.similar
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockQuestionStore) DailyCounts(ctx context.Context, companyID uuid.UUID, since time.Time) ([]domain.QuestionStat, error) {
	counts := map[string]int{}
	for _, q := range m.questions {
		if q.CompanyID == companyID && !q.CreatedAt.Before(since) {
			counts[q.CreatedAt.Format(time.DateOnly)]++
		}
	}
	out := make([]domain.QuestionStat, 0, len(counts))
	for d, c := range counts {
		out = append(out, domain.QuestionStat{Date: d, Count: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (m *mockQuestionStore) TopUsers(ctx context.Context, companyID uuid.UUID, limit int) ([]domain.UserStat, error) {
	if m.users == nil {
		return nil, errors.New("no user store")
	}
	var out []domain.UserStat
	for _, u := range m.users.users {
		if u.CompanyID != companyID {
			continue
		}
		n := 0
		for _, q := range m.questions {
			if q.UserID == u.ID && q.CompanyID == companyID {
				n++
			}
		}
		out = append(out, domain.UserStat{UserID: u.ID, UserName: u.Name, QuestionCount: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].QuestionCount != out[j].QuestionCount {
			return out[i].QuestionCount > out[j].QuestionCount
		}
		return out[i].UserName < out[j].UserName
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// passthroughTx runs fn directly; the map stores have no transactions.
type passthroughTx struct{}

func (passthroughTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// stubAnswerer returns a fixed completion.
type stubAnswerer struct {
	completion domain.Completion
	calls      int
}

func (a *stubAnswerer) Answer(ctx context.Context, question string) domain.Completion {
	a.calls++
	return a.completion
}

type stubEmbedder struct {
	vec []float32
	err error
}

func (e *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.vec, e.err
}

var testTokenConfig = TokenConfig{
	AccessSecret:  []byte("access-secret-for-tests"),
	RefreshSecret: []byte("refresh-secret-for-tests"),
	AccessTTL:     15 * time.Minute,
	RefreshTTL:    7 * 24 * time.Hour,
}

type testEnv struct {
	companies *mockCompanyStore
	users     *mockUserStore
	refresh   *mockRefreshTokenStore
	questions *mockQuestionStore
	tokens    *TokenService
	identity  *IdentityService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		companies: newMockCompanyStore(),
		users:     newMockUserStore(),
		refresh:   newMockRefreshTokenStore(),
	}
	env.questions = newMockQuestionStore(env.users)
	env.tokens = NewTokenService(testTokenConfig, env.refresh, env.users)
	env.identity = NewIdentityService(env.users, env.companies, passthroughTx{}, env.tokens, zap.NewNop(), nil)
	return env
}
