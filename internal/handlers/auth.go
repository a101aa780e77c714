package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"policymatcher/internal/errs"
	"policymatcher/internal/models"
	"policymatcher/internal/service"
	"policymatcher/internal/web"
)

const msgBadCredentials = "이메일 또는 비밀번호가 잘못되었습니다."

func (h HandlerSet) LoginForm(c *gin.Context) {
	h.render(c, http.StatusOK, "auth/login", "로그인", web.LoginView{})
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		if _, ok := bindingFields(err); !ok {
			h.badRequest(c, err)
			return
		}
		h.render(c, http.StatusUnauthorized, "auth/login", "로그인", web.LoginView{Email: req.Email, Error: msgBadCredentials})
		return
	}

	principal, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, errs.ErrInvalidCredentials) {
		h.render(c, http.StatusUnauthorized, "auth/login", "로그인", web.LoginView{Email: req.Email, Error: msgBadCredentials})
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	h.sessions.SignIn(c, principal)
	redirect(c, "/programs", models.FlashSuccess, principal.Nickname+"님, 환영합니다.")
}

func (h HandlerSet) RegisterForm(c *gin.Context) {
	h.render(c, http.StatusOK, "auth/register", "회원가입", web.RegisterView{})
}

func (h HandlerSet) RegisterAccount(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		fields, ok := bindingFields(err)
		if !ok {
			h.badRequest(c, err)
			return
		}
		h.render(c, http.StatusUnprocessableEntity, "auth/register", "회원가입", web.RegisterView{Email: req.Email, Errors: fields})
		return
	}

	_, err := h.accounts.Register(c.Request.Context(), service.RegisterInput{Email: req.Email, Password: req.Password})
	if fields, ok := validationFields(err); ok {
		h.render(c, http.StatusUnprocessableEntity, "auth/register", "회원가입", web.RegisterView{Email: req.Email, Errors: fields})
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	redirect(c, "/auth/login", models.FlashSuccess, "회원가입이 완료되었습니다. 로그인해 주세요.")
}

func (h HandlerSet) Logout(c *gin.Context) {
	h.sessions.SignOut(c)
	redirect(c, "/auth/login", models.FlashInfo, "로그아웃되었습니다.")
}
