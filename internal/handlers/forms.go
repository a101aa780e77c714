package handlers

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"policymatcher/internal/middleware"
	"policymatcher/internal/service"
)

const (
	msgBadRequest   = "요청을 처리할 수 없습니다."
	msgInvalidField = "입력값을 확인해 주세요."
)

// fieldMessages is keyed by form field, or by "field.tag" when one field
// fails differently per rule.
var fieldMessages = map[string]string{
	"email":            "올바른 이메일 주소를 입력해 주세요.",
	"password":         "비밀번호는 8자 이상이어야 합니다.",
	"password_confirm": "비밀번호가 일치하지 않습니다.",
	"title":            "제목을 입력해 주세요.",
	"title.max":        "제목은 200자 이내로 입력해 주세요.",
}

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(formFieldName)
	}
}

// formFieldName makes FieldError.Field report the form key instead of the Go
// field name.
func formFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

// Only the fields below are read from a submission. Anything else in the
// body, such as id or is_admin, is dropped by the binder.

type loginRequest struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required"`
}

type registerRequest struct {
	Email           string `form:"email" binding:"required,email"`
	Password        string `form:"password" binding:"required,min=8"`
	PasswordConfirm string `form:"password_confirm" binding:"required,eqfield=Password"`
}

type programRequest struct {
	Title       string `form:"title" binding:"required,max=200"`
	Description string `form:"description"`
	Category    string `form:"category"`
	SupportType string `form:"support_type"`
	Agency      string `form:"agency"`
	Deadline    string `form:"deadline"`
	Period      string `form:"period"`
	Link        string `form:"link"`
}

func (r programRequest) input() service.ProgramInput {
	return service.ProgramInput{
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		SupportType: r.SupportType,
		Agency:      r.Agency,
		Deadline:    r.Deadline,
		Period:      r.Period,
		Link:        r.Link,
	}
}

// bindingFields turns validator failures into per-field messages. ok is false
// when the body could not be decoded at all.
func bindingFields(err error) (map[string]string, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		if _, seen := fields[name]; seen {
			continue
		}
		msg, found := fieldMessages[name+"."+fe.Tag()]
		if !found {
			msg, found = fieldMessages[name]
		}
		if !found {
			msg = msgInvalidField
		}
		fields[name] = msg
	}
	return fields, true
}

// mergeFields adds messages from extra for fields that have none yet.
func mergeFields(fields, extra map[string]string) map[string]string {
	for k, v := range extra {
		if _, exists := fields[k]; !exists {
			fields[k] = v
		}
	}
	return fields
}

func (h HandlerSet) badRequest(c *gin.Context, err error) {
	h.log.Warn().
		Err(err).
		Str("path", c.Request.URL.Path).
		Str("request_id", middleware.RequestIDFrom(c)).
		Msg("undecodable form")
	h.render(c, http.StatusBadRequest, "error", "잘못된 요청", msgBadRequest)
}
