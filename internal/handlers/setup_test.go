package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"policymatcher/internal/auth"
	"policymatcher/internal/config"
	"policymatcher/internal/errs"
	"policymatcher/internal/middleware"
	"policymatcher/internal/models"
	"policymatcher/internal/repository"
	"policymatcher/internal/security"
	"policymatcher/internal/service"
	"policymatcher/internal/web"
)

const cookieName = "pm_session"

var fastArgon = security.Argon2Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

type memPrograms struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]models.Program
	err    error
}

func (m *memPrograms) List(_ context.Context, f models.ProgramFilter) ([]models.Program, int, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	all, _ := m.ListAll(context.Background())
	var matched []models.Program
	for i := len(all) - 1; i >= 0; i-- {
		if f.Keyword == "" || strings.Contains(all[i].Title, f.Keyword) {
			matched = append(matched, all[i])
		}
	}
	start := f.Offset()
	if start >= len(matched) {
		return []models.Program{}, len(matched), nil
	}
	end := start + f.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], len(matched), nil
}

func (m *memPrograms) ListAll(context.Context) ([]models.Program, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Program, 0, len(m.rows))
	for _, p := range m.rows {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memPrograms) Get(_ context.Context, id int64) (models.Program, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok {
		return models.Program{}, errs.ErrNotFound
	}
	return p, nil
}

func (m *memPrograms) Create(_ context.Context, f models.ProgramFields) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	m.nextID++
	m.rows[m.nextID] = models.Program{ID: m.nextID, Title: f.Title, Description: f.Description, Category: f.Category, Deadline: f.Deadline, Period: f.Period, Link: f.Link}
	return m.nextID, nil
}

func (m *memPrograms) Update(_ context.Context, id int64, f models.ProgramFields) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return errs.ErrNotFound
	}
	m.rows[id] = models.Program{ID: id, Title: f.Title, Description: f.Description, Category: f.Category, Deadline: f.Deadline, Period: f.Period, Link: f.Link}
	return nil
}

func (m *memPrograms) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return errs.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memPrograms) Count(context.Context) (int, error) { return len(m.rows), nil }

func (m *memPrograms) CountByCategory(context.Context) ([]models.CategoryCount, error) {
	return []models.CategoryCount{{Category: "기타", Count: len(m.rows)}}, nil
}

type memUsers struct {
	nextID int64
	rows   map[string]models.User
}

func (m *memUsers) Create(_ context.Context, u models.User) (int64, error) {
	if _, ok := m.rows[u.Email]; ok {
		return 0, errs.ErrAlreadyExists
	}
	m.nextID++
	u.ID = m.nextID
	m.rows[u.Email] = u
	return u.ID, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (models.User, error) {
	u, ok := m.rows[email]
	if !ok {
		return models.User{}, errs.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) SetAdmin(context.Context, int64, bool) error { return nil }

func (m *memUsers) Count(context.Context) (int, error) { return len(m.rows), nil }

type memNotifications struct {
	rows []models.Notification
}

func (m *memNotifications) Create(_ context.Context, n models.Notification) (bool, error) {
	for _, r := range m.rows {
		if r.UserID == n.UserID && r.ProgramID == n.ProgramID {
			return false, nil
		}
	}
	m.rows = append(m.rows, n)
	return true, nil
}

func (m *memNotifications) ListByUser(_ context.Context, userID int64) ([]models.NotificationDetail, error) {
	var out []models.NotificationDetail
	for i, r := range m.rows {
		if r.UserID == userID {
			out = append(out, models.NotificationDetail{ID: int64(i + 1), UserID: r.UserID, ProgramID: r.ProgramID, ProgramTitle: "program", NotifyAt: r.NotifyAt})
		}
	}
	return out, nil
}

func (m *memNotifications) ListDue(context.Context, time.Time, int) ([]models.NotificationDetail, error) {
	return nil, nil
}

func (m *memNotifications) MarkSent(context.Context, []int64, time.Time) error { return nil }

func (m *memNotifications) Count(context.Context) (int, error) { return len(m.rows), nil }

type memKV struct {
	mu   sync.Mutex
	data map[string]string
}

func (m *memKV) Get(_ context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *memKV) Set(_ context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := value.([]byte); ok {
		m.data[key] = string(b)
	}
	return redis.NewStatusResult("OK", nil)
}

func (m *memKV) Del(_ context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type cachePinger struct{ err error }

func (p cachePinger) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", p.err)
}

type testApp struct {
	engine   *gin.Engine
	programs *memPrograms
	users    *memUsers
	notes    *memNotifications
	db       *pinger
}

func newTestApp(t *testing.T, policy auth.Policy) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := zerolog.Nop()
	app := &testApp{
		programs: &memPrograms{rows: map[int64]models.Program{}},
		users:    &memUsers{rows: map[string]models.User{}},
		notes:    &memNotifications{},
		db:       &pinger{},
	}

	gate := auth.NewGate(policy)
	store := repository.NewSessionStore(&memKV{data: map[string]string{}}, time.Hour)
	sessions := middleware.NewSessionManager(store, config.SecurityConfig{
		SessionSecret: "test-secret",
		SessionCookie: cookieName,
	}, log)

	h := NewHandlerSet(Dependencies{
		Log:         log,
		Environment: config.EnvDevelopment,
		Gate:        gate,
		Sessions:    sessions,
		Programs:    service.NewProgramService(app.programs, gate, 10, log),
		Accounts:    service.NewAuthService(app.users, fixedNickname{}, "root@example.org", log),
		Notify:      service.NewNotifyService(app.notes, app.programs, gate, log),
		Dashboard:   service.NewDashboardService(app.programs, app.users, app.notes),
		Presenter:   web.NewPresenter("https://example.org"),
		DB:          app.db,
		Cache:       cachePinger{},
	})

	tmpl, err := web.Templates()
	require.NoError(t, err)

	engine := gin.New()
	engine.SetHTMLTemplate(tmpl)
	engine.Use(middleware.RequestID(), middleware.Recovery(log), sessions.Middleware())
	h.Register(&engine.RouterGroup)
	app.engine = engine
	return app
}

type fixedNickname struct{}

func (fixedNickname) Next() string { return "다정한수달07" }

func (a *testApp) addUser(t *testing.T, email, password string, isAdmin bool) {
	t.Helper()
	hash, err := security.HashPasswordWithParams(password, fastArgon)
	require.NoError(t, err)
	_, err = a.users.Create(context.Background(), models.User{Email: email, PasswordHash: hash, Nickname: "n", IsAdmin: isAdmin})
	require.NoError(t, err)
}

func (a *testApp) addProgram(t *testing.T, title string) int64 {
	t.Helper()
	id, err := a.programs.Create(context.Background(), models.ProgramFields{Title: title})
	require.NoError(t, err)
	return id
}

func (a *testApp) do(method, target string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	a.engine.ServeHTTP(rec, req)
	return rec
}

// sessionCookie returns the last session cookie the response set.
func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	var found *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName {
			found = c
		}
	}
	return found
}

func (a *testApp) login(t *testing.T, email, password string) *http.Cookie {
	t.Helper()
	rec := a.do(http.MethodPost, "/auth/login", url.Values{"email": {email}, "password": {password}}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	return cookie
}

var errDown = errors.New("connection refused")
