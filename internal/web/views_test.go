package web

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policymatcher/internal/models"
	"policymatcher/internal/service"
)

func TestNormalizeForDisplay(t *testing.T) {
	p := NewPresenter("https://example.org/")
	deadline := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

	view := p.NormalizeForDisplay(models.Program{ID: 42, Title: "t", Link: "/view/42", Deadline: &deadline})
	assert.Equal(t, "https://example.org/view/42", view.Link)
	assert.Equal(t, DescriptionPlaceholder, view.Description)
	assert.Equal(t, OpenPeriod, view.Period)
	assert.Equal(t, "2025-06-30", view.Deadline)

	view = p.NormalizeForDisplay(models.Program{Title: "t", Description: "요약", Period: "2025.01~", Link: "https://other.org/x"})
	assert.Equal(t, "https://other.org/x", view.Link)
	assert.Equal(t, "요약", view.Description)
	assert.Equal(t, "2025.01~", view.Period)
	assert.Empty(t, view.Deadline)

	assert.Empty(t, p.NormalizeForDisplay(models.Program{Title: "t"}).Link)
	assert.Equal(t, "//evil.example/x", p.NormalizeForDisplay(models.Program{Link: "//evil.example/x"}).Link)
}

func TestProgramPageLinks(t *testing.T) {
	p := NewPresenter("https://example.org")

	view := p.ProgramPage(service.ProgramPage{Page: 2, TotalPages: 3, Keyword: "청년 창업"})
	assert.Equal(t, "/programs?page=1&q=%EC%B2%AD%EB%85%84+%EC%B0%BD%EC%97%85", view.PrevURL)
	assert.Equal(t, "/programs?page=3&q=%EC%B2%AD%EB%85%84+%EC%B0%BD%EC%97%85", view.NextURL)

	view = p.ProgramPage(service.ProgramPage{Page: 1, TotalPages: 1})
	assert.Empty(t, view.PrevURL)
	assert.Empty(t, view.NextURL)
}

func TestTemplatesEscapeUserText(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	var buf bytes.Buffer
	err = tmpl.ExecuteTemplate(&buf, "programs/detail", Page{
		Title: "detail",
		Data:  ProgramView{ID: 1, Title: `<script>alert("x")</script>`, Period: OpenPeriod, Description: DescriptionPlaceholder},
	})
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), `<script>alert`)
	assert.Contains(t, buf.String(), "&lt;script&gt;")
}

func TestEveryPageRenders(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	pages := map[string]any{
		"programs/list":     PageView{Page: 1},
		"programs/form":     FormView{Action: "/programs/create"},
		"programs/liked":    []ProgramView{{ID: 1, Title: "a"}},
		"programs/analysis": []ProgramView{{ID: 1, Title: "a", Category: "창업"}},
		"auth/login":        LoginView{Error: "x"},
		"auth/register":     RegisterView{Errors: map[string]string{"email": "bad"}},
		"notifications/my":  []NotificationView{{ProgramID: 1, ProgramTitle: "a"}},
		"admin/dashboard":   service.DashboardStats{Programs: 1},
		"error":             "페이지를 찾을 수 없습니다.",
	}
	for name, data := range pages {
		var buf bytes.Buffer
		err := tmpl.ExecuteTemplate(&buf, name, Page{Title: name, Data: data, Principal: &models.Principal{Nickname: "n", IsAdmin: true}})
		require.NoError(t, err, name)
	}
}

func TestStaticAssetsEmbedded(t *testing.T) {
	f, err := Static().Open("app.js")
	require.NoError(t, err)
	defer f.Close()
}
