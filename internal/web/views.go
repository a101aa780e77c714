// Package web turns domain records into the values the HTML templates render.
package web

import (
	"net/url"
	"strconv"
	"strings"

	"policymatcher/internal/models"
	"policymatcher/internal/service"
)

const (
	DescriptionPlaceholder = "요약 정보가 없습니다."
	OpenPeriod             = "상시"
)

type ProgramView struct {
	ID          int64
	Title       string
	Description string
	Category    string
	SupportType string
	Agency      string
	Deadline    string
	Period      string
	Link        string
}

type PageView struct {
	Items      []ProgramView
	Page       int
	TotalPages int
	Total      int
	Keyword    string
	PrevURL    string
	NextURL    string
}

type NotificationView struct {
	ProgramID    int64
	ProgramTitle string
	Deadline     string
	NotifyAt     string
	Sent         bool
}

// FormView backs the create and edit forms.
type FormView struct {
	Action string
	Edit   bool
	Input  service.ProgramInput
	Errors map[string]string
}

// Page is the root value handed to every template.
type Page struct {
	Title     string
	Principal *models.Principal
	Flashes   []models.Flash
	CanWrite  bool
	Data      any
}

type Presenter struct {
	baseOrigin string
}

func NewPresenter(baseOrigin string) *Presenter {
	return &Presenter{baseOrigin: strings.TrimRight(baseOrigin, "/")}
}

// NormalizeForDisplay fills placeholders and makes relative links absolute
// against the source site.
func (p *Presenter) NormalizeForDisplay(program models.Program) ProgramView {
	view := ProgramView{
		ID:          program.ID,
		Title:       program.Title,
		Description: program.Description,
		Category:    program.Category,
		SupportType: program.SupportType,
		Agency:      program.Agency,
		Period:      program.Period,
		Link:        p.absoluteLink(program.Link),
	}
	if strings.TrimSpace(view.Description) == "" {
		view.Description = DescriptionPlaceholder
	}
	if strings.TrimSpace(view.Period) == "" {
		view.Period = OpenPeriod
	}
	if program.Deadline != nil {
		view.Deadline = program.Deadline.Format(service.DateLayout)
	}
	return view
}

func (p *Presenter) absoluteLink(link string) string {
	link = strings.TrimSpace(link)
	if strings.HasPrefix(link, "/") && !strings.HasPrefix(link, "//") {
		return p.baseOrigin + link
	}
	return link
}

func (p *Presenter) Programs(programs []models.Program) []ProgramView {
	out := make([]ProgramView, 0, len(programs))
	for _, program := range programs {
		out = append(out, p.NormalizeForDisplay(program))
	}
	return out
}

func (p *Presenter) ProgramPage(page service.ProgramPage) PageView {
	view := PageView{
		Items:      p.Programs(page.Items),
		Page:       page.Page,
		TotalPages: page.TotalPages,
		Total:      page.Total,
		Keyword:    page.Keyword,
	}
	if page.HasPrev() {
		view.PrevURL = listURL(page.Page-1, page.Keyword)
	}
	if page.HasNext() {
		view.NextURL = listURL(page.Page+1, page.Keyword)
	}
	return view
}

func (p *Presenter) Notifications(rows []models.NotificationDetail) []NotificationView {
	out := make([]NotificationView, 0, len(rows))
	for _, n := range rows {
		v := NotificationView{
			ProgramID:    n.ProgramID,
			ProgramTitle: n.ProgramTitle,
			Sent:         n.SentAt != nil,
		}
		if n.Deadline != nil {
			v.Deadline = n.Deadline.Format(service.DateLayout)
		}
		if n.NotifyAt != nil {
			v.NotifyAt = n.NotifyAt.Format(service.DateLayout)
		}
		out = append(out, v)
	}
	return out
}

func listURL(page int, keyword string) string {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	if keyword != "" {
		q.Set("q", keyword)
	}
	return "/programs?" + q.Encode()
}

type LoginView struct {
	Email string
	Error string
}

type RegisterView struct {
	Email  string
	Errors map[string]string
}
