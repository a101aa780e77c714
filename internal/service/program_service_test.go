package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policymatcher/internal/auth"
	"policymatcher/internal/errs"
	"policymatcher/internal/models"
)

var (
	admin  = &models.Principal{UserID: 1, Email: "admin@example.org", IsAdmin: true}
	member = &models.Principal{UserID: 2, Email: "member@example.org"}
)

func newProgramService(policy auth.Policy) (*ProgramService, *memoryPrograms) {
	store := newMemoryPrograms()
	return NewProgramService(store, auth.NewGate(policy), 10, zerolog.Nop()), store
}

func seed(t *testing.T, store *memoryPrograms, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		_, err := store.Create(context.Background(), models.ProgramFields{Title: fmt.Sprintf("program %d", i)})
		require.NoError(t, err)
	}
}

func TestListPrograms_Pagination(t *testing.T) {
	svc, store := newProgramService(auth.PolicyAdmin)
	seed(t, store, 25)
	ctx := context.Background()

	first, err := svc.ListPrograms(ctx, 1, "")
	require.NoError(t, err)
	require.Len(t, first.Items, 10)
	assert.Equal(t, int64(25), first.Items[0].ID)
	assert.Equal(t, int64(16), first.Items[9].ID)
	assert.Equal(t, 3, first.TotalPages)
	assert.False(t, first.HasPrev())
	assert.True(t, first.HasNext())

	last, err := svc.ListPrograms(ctx, 3, "")
	require.NoError(t, err)
	assert.Len(t, last.Items, 5)
	assert.False(t, last.HasNext())

	beyond, err := svc.ListPrograms(ctx, 9, "")
	require.NoError(t, err)
	assert.Empty(t, beyond.Items)
	assert.Equal(t, 25, beyond.Total)
}

func TestListPrograms_ClampsPage(t *testing.T) {
	svc, store := newProgramService(auth.PolicyAdmin)
	seed(t, store, 3)

	page, err := svc.ListPrograms(context.Background(), -4, "")
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 1, store.listed[0].Page)
	assert.Len(t, page.Items, 3)
}

func TestListPrograms_HugePageIsEmpty(t *testing.T) {
	svc, store := newProgramService(auth.PolicyAdmin)
	seed(t, store, 3)

	page, err := svc.ListPrograms(context.Background(), ParsePage(strconv.Itoa(math.MaxInt)), "")
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 3, page.Total)
	assert.False(t, page.HasNext())
	assert.GreaterOrEqual(t, store.listed[0].Offset(), 0)
}

func TestListPrograms_Search(t *testing.T) {
	svc, store := newProgramService(auth.PolicyAdmin)
	ctx := context.Background()
	_, _ = store.Create(ctx, models.ProgramFields{Title: "청년 창업 지원"})
	_, _ = store.Create(ctx, models.ProgramFields{Title: "수출 바우처"})

	page, err := svc.ListPrograms(ctx, 1, "  창업 ")
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "창업", page.Keyword)
	assert.Equal(t, "청년 창업 지원", page.Items[0].Title)
}

func TestParsePage(t *testing.T) {
	assert.Equal(t, 1, ParsePage(""))
	assert.Equal(t, 1, ParsePage("abc"))
	assert.Equal(t, 1, ParsePage("0"))
	assert.Equal(t, 1, ParsePage("-2"))
	assert.Equal(t, 4, ParsePage("4"))
}

func TestProgramInputValidate(t *testing.T) {
	fields, err := ProgramInput{Title: "ok", Deadline: "2025-06-30", Link: "/view/42"}.Validate()
	require.NoError(t, err)
	require.NotNil(t, fields.Deadline)
	assert.Equal(t, "2025-06-30", fields.Deadline.Format(DateLayout))

	_, err = ProgramInput{Title: "  ", Deadline: "30/06/2025", Link: "javascript:alert(1)"}.Validate()
	require.ErrorIs(t, err, errs.ErrValidation)
	var verr *errs.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "title")
	assert.Contains(t, verr.Fields, "deadline")
	assert.Contains(t, verr.Fields, "link")
}

func TestCreateProgram_Guard(t *testing.T) {
	ctx := context.Background()
	in := ProgramInput{Title: "guarded"}

	svc, store := newProgramService(auth.PolicyAdmin)
	_, err := svc.CreateProgram(ctx, in, nil)
	require.ErrorIs(t, err, errs.ErrUnauthorized)
	_, err = svc.CreateProgram(ctx, in, member)
	require.ErrorIs(t, err, errs.ErrForbidden)
	assert.Empty(t, store.rows)

	id, err := svc.CreateProgram(ctx, in, admin)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	open, _ := newProgramService(auth.PolicyAuthenticated)
	_, err = open.CreateProgram(ctx, in, member)
	require.NoError(t, err)
}

func TestCreateThenGetRoundTrip(t *testing.T) {
	svc, _ := newProgramService(auth.PolicyAdmin)
	ctx := context.Background()

	in := ProgramInput{
		Title:       "스마트공장 보급",
		Description: "제조 혁신",
		Category:    "제조",
		SupportType: "보조금",
		Agency:      "중소벤처기업부",
		Deadline:    "2025-09-01",
		Period:      "2025.06 ~ 2025.09",
		Link:        "https://example.org/p/1",
	}
	id, err := svc.CreateProgram(ctx, in, admin)
	require.NoError(t, err)

	got, err := svc.GetProgram(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, in, InputFromProgram(got))
}

func TestUpdateProgram(t *testing.T) {
	svc, store := newProgramService(auth.PolicyAdmin)
	ctx := context.Background()
	seed(t, store, 1)

	err := svc.UpdateProgram(ctx, 1, ProgramInput{Title: "renamed"}, admin)
	require.NoError(t, err)
	got, _ := svc.GetProgram(ctx, 1)
	assert.Equal(t, "renamed", got.Title)

	err = svc.UpdateProgram(ctx, 404, ProgramInput{Title: "x"}, admin)
	require.ErrorIs(t, err, errs.ErrNotFound)

	err = svc.UpdateProgram(ctx, 1, ProgramInput{Title: ""}, admin)
	require.ErrorIs(t, err, errs.ErrValidation)
	got, _ = svc.GetProgram(ctx, 1)
	assert.Equal(t, "renamed", got.Title)
}

func TestDeleteProgramTwice(t *testing.T) {
	svc, store := newProgramService(auth.PolicyAdmin)
	ctx := context.Background()
	seed(t, store, 1)

	require.ErrorIs(t, svc.DeleteProgram(ctx, 1, member), errs.ErrForbidden)
	require.NoError(t, svc.DeleteProgram(ctx, 1, admin))
	require.ErrorIs(t, svc.DeleteProgram(ctx, 1, admin), errs.ErrNotFound)

	_, err := svc.GetProgram(ctx, 1)
	require.ErrorIs(t, err, errs.ErrNotFound)
}
