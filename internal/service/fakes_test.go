package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"policymatcher/internal/errs"
	"policymatcher/internal/models"
)

type memoryPrograms struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]models.Program
	listed []models.ProgramFilter
}

func newMemoryPrograms() *memoryPrograms {
	return &memoryPrograms{rows: map[int64]models.Program{}}
}

func (m *memoryPrograms) List(_ context.Context, f models.ProgramFilter) ([]models.Program, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listed = append(m.listed, f)

	var matched []models.Program
	for _, p := range m.rows {
		if f.Keyword == "" || strings.Contains(strings.ToLower(p.Title+" "+p.Description), strings.ToLower(f.Keyword)) {
			matched = append(matched, p)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

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

func (m *memoryPrograms) ListAll(context.Context) ([]models.Program, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Program, 0, len(m.rows))
	for _, p := range m.rows {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryPrograms) Get(_ context.Context, id int64) (models.Program, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok {
		return models.Program{}, errs.ErrNotFound
	}
	return p, nil
}

func (m *memoryPrograms) Create(_ context.Context, f models.ProgramFields) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.rows[m.nextID] = programFromFields(m.nextID, f)
	return m.nextID, nil
}

func (m *memoryPrograms) Update(_ context.Context, id int64, f models.ProgramFields) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return errs.ErrNotFound
	}
	m.rows[id] = programFromFields(id, f)
	return nil
}

func (m *memoryPrograms) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return errs.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memoryPrograms) Count(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows), nil
}

func (m *memoryPrograms) CountByCategory(context.Context) ([]models.CategoryCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[string]int{}
	for _, p := range m.rows {
		c := p.Category
		if c == "" {
			c = "기타"
		}
		counts[c]++
	}
	out := make([]models.CategoryCount, 0, len(counts))
	for c, n := range counts {
		out = append(out, models.CategoryCount{Category: c, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

func programFromFields(id int64, f models.ProgramFields) models.Program {
	return models.Program{
		ID:          id,
		Title:       f.Title,
		Description: f.Description,
		Category:    f.Category,
		SupportType: f.SupportType,
		Agency:      f.Agency,
		Deadline:    f.Deadline,
		Period:      f.Period,
		Link:        f.Link,
	}
}

type memoryUsers struct {
	nextID int64
	byMail map[string]models.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byMail: map[string]models.User{}}
}

func (m *memoryUsers) Create(_ context.Context, u models.User) (int64, error) {
	if _, ok := m.byMail[u.Email]; ok {
		return 0, errs.ErrAlreadyExists
	}
	m.nextID++
	u.ID = m.nextID
	m.byMail[u.Email] = u
	return u.ID, nil
}

func (m *memoryUsers) FindByEmail(_ context.Context, email string) (models.User, error) {
	u, ok := m.byMail[email]
	if !ok {
		return models.User{}, errs.ErrNotFound
	}
	return u, nil
}

func (m *memoryUsers) SetAdmin(_ context.Context, id int64, isAdmin bool) error {
	for k, u := range m.byMail {
		if u.ID == id {
			u.IsAdmin = isAdmin
			m.byMail[k] = u
			return nil
		}
	}
	return errs.ErrNotFound
}

func (m *memoryUsers) Count(context.Context) (int, error) {
	return len(m.byMail), nil
}

type memoryNotifications struct {
	rows    []models.NotificationDetail
	created []models.Notification
	sent    []int64
}

func (m *memoryNotifications) Create(_ context.Context, n models.Notification) (bool, error) {
	for _, c := range m.created {
		if c.UserID == n.UserID && c.ProgramID == n.ProgramID {
			return false, nil
		}
	}
	m.created = append(m.created, n)
	return true, nil
}

func (m *memoryNotifications) ListByUser(_ context.Context, userID int64) ([]models.NotificationDetail, error) {
	var out []models.NotificationDetail
	for _, r := range m.rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memoryNotifications) ListDue(_ context.Context, now time.Time, limit int) ([]models.NotificationDetail, error) {
	var out []models.NotificationDetail
	for _, r := range m.rows {
		if r.SentAt == nil && r.NotifyAt != nil && !r.NotifyAt.After(now) {
			out = append(out, r)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (m *memoryNotifications) MarkSent(_ context.Context, ids []int64, at time.Time) error {
	for i := range m.rows {
		for _, id := range ids {
			if m.rows[i].ID == id {
				sentAt := at
				m.rows[i].SentAt = &sentAt
			}
		}
	}
	m.sent = append(m.sent, ids...)
	return nil
}

func (m *memoryNotifications) Count(context.Context) (int, error) {
	return len(m.created), nil
}

type fixedNicknames string

func (f fixedNicknames) Next() string { return string(f) }
