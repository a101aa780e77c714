package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type healthResponse struct {
	Status      string `json:"status"`
	Database    string `json:"database"`
	Cache       string `json:"cache"`
	Environment string `json:"environment"`
}

// Health reports 503 when the database is unreachable. A redis outage only
// degrades sessions, so it is reported but keeps the status 200.
func (h HandlerSet) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{Status: "ok", Database: "ok", Cache: "ok", Environment: h.environment}
	status := http.StatusOK

	if err := h.db.Ping(ctx); err != nil {
		resp.Database = "error"
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
		h.log.Error().Err(err).Msg("database ping failed")
	}

	if h.cache == nil {
		resp.Cache = "disabled"
	} else if err := h.cache.Ping(ctx).Err(); err != nil {
		resp.Cache = "error"
		resp.Status = "degraded"
		h.log.Error().Err(err).Msg("redis ping failed")
	}

	c.JSON(status, resp)
}
