package service

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"policymatcher/internal/auth"
	"policymatcher/internal/errs"
	"policymatcher/internal/models"
)

const DateLayout = "2006-01-02"

type ProgramStore interface {
	List(ctx context.Context, filter models.ProgramFilter) ([]models.Program, int, error)
	ListAll(ctx context.Context) ([]models.Program, error)
	Get(ctx context.Context, id int64) (models.Program, error)
	Create(ctx context.Context, fields models.ProgramFields) (int64, error)
	Update(ctx context.Context, id int64, fields models.ProgramFields) error
	Delete(ctx context.Context, id int64) error
}

// ProgramInput is a bound program form submission.
type ProgramInput struct {
	Title       string
	Description string
	Category    string
	SupportType string
	Agency      string
	Deadline    string
	Period      string
	Link        string
}

// InputFromProgram pre-fills an edit form.
func InputFromProgram(p models.Program) ProgramInput {
	in := ProgramInput{
		Title:       p.Title,
		Description: p.Description,
		Category:    p.Category,
		SupportType: p.SupportType,
		Agency:      p.Agency,
		Period:      p.Period,
		Link:        p.Link,
	}
	if p.Deadline != nil {
		in.Deadline = p.Deadline.Format(DateLayout)
	}
	return in
}

// Validate converts the input into storable fields or returns a
// *errs.ValidationError keyed by form field.
func (in ProgramInput) Validate() (models.ProgramFields, error) {
	verr := errs.NewValidationError()

	fields := models.ProgramFields{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Category:    strings.TrimSpace(in.Category),
		SupportType: strings.TrimSpace(in.SupportType),
		Agency:      strings.TrimSpace(in.Agency),
		Period:      strings.TrimSpace(in.Period),
		Link:        strings.TrimSpace(in.Link),
	}

	if fields.Title == "" {
		verr.Add("title", "제목을 입력해 주세요.")
	}

	if d := strings.TrimSpace(in.Deadline); d != "" {
		deadline, err := time.Parse(DateLayout, d)
		if err != nil {
			verr.Add("deadline", "마감일은 YYYY-MM-DD 형식이어야 합니다.")
		} else {
			fields.Deadline = &deadline
		}
	}

	if fields.Link != "" && !validLink(fields.Link) {
		verr.Add("link", "링크는 http(s) 주소이거나 /로 시작해야 합니다.")
	}

	if err := verr.OrNil(); err != nil {
		return models.ProgramFields{}, err
	}
	return fields, nil
}

func validLink(link string) bool {
	if strings.HasPrefix(link, "/") {
		return !strings.HasPrefix(link, "//")
	}
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ParsePage turns the page query parameter into a page number. Anything that
// is not a positive integer means the first page.
func ParsePage(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

type ProgramPage struct {
	Items      []models.Program
	Page       int
	PageSize   int
	Total      int
	TotalPages int
	Keyword    string
}

func (p ProgramPage) HasPrev() bool { return p.Page > 1 }
func (p ProgramPage) HasNext() bool { return p.Page < p.TotalPages }

type ProgramService struct {
	store    ProgramStore
	gate     *auth.Gate
	pageSize int
	log      zerolog.Logger
}

func NewProgramService(store ProgramStore, gate *auth.Gate, pageSize int, log zerolog.Logger) *ProgramService {
	return &ProgramService{
		store:    store,
		gate:     gate,
		pageSize: pageSize,
		log:      log,
	}
}

// ListPrograms returns one page, newest first. A non-empty keyword filters
// by case-insensitive substring. Pages past the end come back empty.
func (s *ProgramService) ListPrograms(ctx context.Context, page int, keyword string) (ProgramPage, error) {
	if page < 1 {
		page = 1
	}
	keyword = strings.TrimSpace(keyword)

	items, total, err := s.store.List(ctx, models.ProgramFilter{
		Page:     page,
		PageSize: s.pageSize,
		Keyword:  keyword,
	})
	if err != nil {
		return ProgramPage{}, err
	}

	totalPages := (total + s.pageSize - 1) / s.pageSize
	return ProgramPage{
		Items:      items,
		Page:       page,
		PageSize:   s.pageSize,
		Total:      total,
		TotalPages: totalPages,
		Keyword:    keyword,
	}, nil
}

// AllPrograms backs the liked page, which filters client side.
func (s *ProgramService) AllPrograms(ctx context.Context) ([]models.Program, error) {
	return s.store.ListAll(ctx)
}

func (s *ProgramService) GetProgram(ctx context.Context, id int64) (models.Program, error) {
	return s.store.Get(ctx, id)
}

func (s *ProgramService) CreateProgram(ctx context.Context, in ProgramInput, principal *models.Principal) (int64, error) {
	actor, err := s.gate.RequireWriter(principal)
	if err != nil {
		return 0, err
	}

	fields, err := in.Validate()
	if err != nil {
		return 0, err
	}

	id, err := s.store.Create(ctx, fields)
	if err != nil {
		return 0, err
	}

	s.log.Info().Int64("program_id", id).Int64("user_id", actor.UserID).Msg("program created")
	return id, nil
}

// UpdateProgram replaces every editable field of the program.
func (s *ProgramService) UpdateProgram(ctx context.Context, id int64, in ProgramInput, principal *models.Principal) error {
	actor, err := s.gate.RequireWriter(principal)
	if err != nil {
		return err
	}

	fields, err := in.Validate()
	if err != nil {
		return err
	}

	if err := s.store.Update(ctx, id, fields); err != nil {
		return err
	}

	s.log.Info().Int64("program_id", id).Int64("user_id", actor.UserID).Msg("program updated")
	return nil
}

func (s *ProgramService) DeleteProgram(ctx context.Context, id int64, principal *models.Principal) error {
	actor, err := s.gate.RequireWriter(principal)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info().Int64("program_id", id).Int64("user_id", actor.UserID).Msg("program deleted")
	return nil
}
