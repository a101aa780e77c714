package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"policymatcher/internal/middleware"
	"policymatcher/internal/models"
)

func (h HandlerSet) Subscribe(c *gin.Context) {
	programID, err := pathID(c, "programId")
	if err != nil {
		h.fail(c, err)
		return
	}

	created, err := h.notify.Subscribe(c.Request.Context(), middleware.CurrentPrincipal(c), programID)
	if err != nil {
		h.fail(c, err)
		return
	}

	back := fmt.Sprintf("/programs/%d", programID)
	if created {
		redirect(c, back, models.FlashSuccess, "마감 알림을 신청했습니다.")
		return
	}
	redirect(c, back, models.FlashInfo, "이미 알림을 신청한 지원사업입니다.")
}

func (h HandlerSet) MyNotifications(c *gin.Context) {
	rows, err := h.notify.ListMine(c.Request.Context(), middleware.CurrentPrincipal(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "notifications/my", "마감 알림", h.presenter.Notifications(rows))
}
