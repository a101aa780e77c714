package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"policymatcher/internal/middleware"
	"policymatcher/internal/models"
	"policymatcher/internal/service"
	"policymatcher/internal/web"
)

func (h HandlerSet) ListPrograms(c *gin.Context) {
	page, err := h.programs.ListPrograms(c.Request.Context(), service.ParsePage(c.Query("page")), c.Query("q"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "programs/list", "지원사업 목록", h.presenter.ProgramPage(page))
}

func (h HandlerSet) ShowProgram(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	program, err := h.programs.GetProgram(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	view := h.presenter.NormalizeForDisplay(program)
	h.render(c, http.StatusOK, "programs/detail", view.Title, view)
}

func (h HandlerSet) NewProgramForm(c *gin.Context) {
	h.render(c, http.StatusOK, "programs/form", "새 지원사업", web.FormView{Action: "/programs/create"})
}

func (h HandlerSet) CreateProgram(c *gin.Context) {
	view := web.FormView{Action: "/programs/create"}
	input, ok := h.bindProgram(c, "새 지원사업", view)
	if !ok {
		return
	}
	id, err := h.programs.CreateProgram(c.Request.Context(), input, middleware.CurrentPrincipal(c))
	if fields, ok := validationFields(err); ok {
		view.Input, view.Errors = input, fields
		h.render(c, http.StatusUnprocessableEntity, "programs/form", "새 지원사업", view)
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	redirect(c, fmt.Sprintf("/programs/%d", id), models.FlashSuccess, "지원사업이 등록되었습니다.")
}

func (h HandlerSet) EditProgramForm(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	program, err := h.programs.GetProgram(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "programs/form", "지원사업 수정", web.FormView{
		Action: fmt.Sprintf("/programs/%d/edit", id),
		Edit:   true,
		Input:  service.InputFromProgram(program),
	})
}

func (h HandlerSet) UpdateProgram(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}

	view := web.FormView{Action: fmt.Sprintf("/programs/%d/edit", id), Edit: true}
	input, ok := h.bindProgram(c, "지원사업 수정", view)
	if !ok {
		return
	}
	err = h.programs.UpdateProgram(c.Request.Context(), id, input, middleware.CurrentPrincipal(c))
	if fields, ok := validationFields(err); ok {
		view.Input, view.Errors = input, fields
		h.render(c, http.StatusUnprocessableEntity, "programs/form", "지원사업 수정", view)
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	redirect(c, fmt.Sprintf("/programs/%d", id), models.FlashSuccess, "지원사업이 수정되었습니다.")
}

func (h HandlerSet) DeleteProgram(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.programs.DeleteProgram(c.Request.Context(), id, middleware.CurrentPrincipal(c)); err != nil {
		h.fail(c, err)
		return
	}
	redirect(c, "/programs", models.FlashSuccess, "지원사업이 삭제되었습니다.")
}

func (h HandlerSet) Liked(c *gin.Context) {
	programs, err := h.programs.AllPrograms(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "programs/liked", "관심 목록", h.presenter.Programs(programs))
}

// Analysis ships every program's category. The browser tallies its own likes.
func (h HandlerSet) Analysis(c *gin.Context) {
	programs, err := h.programs.AllPrograms(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "programs/analysis", "관심 분야 분석", h.presenter.Programs(programs))
}

// bindProgram reads the program form. When binding fails it renders the form
// with every field error, including the date and link checks, and reports false.
func (h HandlerSet) bindProgram(c *gin.Context, title string, view web.FormView) (service.ProgramInput, bool) {
	var req programRequest
	err := c.ShouldBind(&req)
	if err == nil {
		return req.input(), true
	}

	fields, ok := bindingFields(err)
	if !ok {
		h.badRequest(c, err)
		return service.ProgramInput{}, false
	}
	input := req.input()
	if _, verr := input.Validate(); verr != nil {
		if extra, ok := validationFields(verr); ok {
			fields = mergeFields(fields, extra)
		}
	}
	view.Input, view.Errors = input, fields
	h.render(c, http.StatusUnprocessableEntity, "programs/form", title, view)
	return input, false
}
