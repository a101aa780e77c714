package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"policymatcher/internal/errs"
	"policymatcher/internal/middleware"
	"policymatcher/internal/models"
	"policymatcher/internal/web"
)

const (
	msgLoginRequired = "로그인이 필요합니다."
	msgForbidden     = "이 작업을 수행할 권한이 없습니다."
	msgNotFound      = "요청한 페이지를 찾을 수 없습니다."
	msgInternal      = "일시적인 오류가 발생했습니다. 잠시 후 다시 시도해 주세요."
)

func (h HandlerSet) render(c *gin.Context, status int, name, title string, data any) {
	principal := middleware.CurrentPrincipal(c)
	_, writeErr := h.gate.RequireWriter(principal)

	c.HTML(status, name, web.Page{
		Title:     title,
		Principal: principal,
		Flashes:   middleware.PopFlashes(c),
		CanWrite:  writeErr == nil,
		Data:      data,
	})
}

// redirect answers a successful POST. 303 makes the browser follow up with GET.
func redirect(c *gin.Context, location string, category models.FlashCategory, message string) {
	if message != "" {
		middleware.AddFlash(c, category, message)
	}
	c.Redirect(http.StatusSeeOther, location)
}

// fail maps an error to a page. Validation errors are handled by the form
// handlers themselves and never reach here.
func (h HandlerSet) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrUnauthorized):
		redirect(c, "/auth/login", models.FlashError, msgLoginRequired)
	case errors.Is(err, errs.ErrForbidden):
		h.render(c, http.StatusForbidden, "error", "권한 없음", msgForbidden)
	case errors.Is(err, errs.ErrNotFound):
		h.render(c, http.StatusNotFound, "error", "찾을 수 없음", msgNotFound)
	default:
		_ = c.Error(err)
		h.log.Error().
			Err(err).
			Str("path", c.Request.URL.Path).
			Str("request_id", middleware.RequestIDFrom(c)).
			Msg("request failed")
		h.render(c, http.StatusInternalServerError, "error", "오류", msgInternal)
	}
}

// pathID parses a numeric path parameter. Anything else is a missing page.
func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		return 0, errs.ErrNotFound
	}
	return id, nil
}

func validationFields(err error) (map[string]string, bool) {
	var verr *errs.ValidationError
	if errors.As(err, &verr) {
		return verr.Fields, true
	}
	return nil, false
}
