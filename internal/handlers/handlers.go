package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"policymatcher/internal/auth"
	"policymatcher/internal/middleware"
	"policymatcher/internal/service"
	"policymatcher/internal/web"
)

type DBPinger interface {
	Ping(ctx context.Context) error
}

type CachePinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

type Dependencies struct {
	Log         zerolog.Logger
	Environment string
	Gate        *auth.Gate
	Sessions    *middleware.SessionManager
	Programs    *service.ProgramService
	Accounts    *service.AuthService
	Notify      *service.NotifyService
	Dashboard   *service.DashboardService
	Presenter   *web.Presenter
	DB          DBPinger
	Cache       CachePinger
}

type HandlerSet struct {
	log         zerolog.Logger
	environment string
	gate        *auth.Gate
	sessions    *middleware.SessionManager
	programs    *service.ProgramService
	accounts    *service.AuthService
	notify      *service.NotifyService
	dashboard   *service.DashboardService
	presenter   *web.Presenter
	db          DBPinger
	cache       CachePinger
}

func NewHandlerSet(deps Dependencies) HandlerSet {
	return HandlerSet{
		log:         deps.Log,
		environment: deps.Environment,
		gate:        deps.Gate,
		sessions:    deps.Sessions,
		programs:    deps.Programs,
		accounts:    deps.Accounts,
		notify:      deps.Notify,
		dashboard:   deps.Dashboard,
		presenter:   deps.Presenter,
		db:          deps.DB,
		cache:       deps.Cache,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)
	router.StaticFS("/static", web.Static())

	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/programs")
	})

	writer := middleware.RequireWriter(h.gate, h.fail)
	member := middleware.RequireAuthenticated(h.gate, h.fail)
	admin := middleware.RequireAdmin(h.gate, h.fail)

	programs := router.Group("/programs")
	{
		programs.GET("", h.ListPrograms)
		programs.GET("/create", writer, h.NewProgramForm)
		programs.POST("/create", writer, h.CreateProgram)
		programs.GET("/:id", h.ShowProgram)
		programs.GET("/:id/edit", writer, h.EditProgramForm)
		programs.POST("/:id/edit", writer, h.UpdateProgram)
		programs.POST("/:id/delete", writer, h.DeleteProgram)
	}
	router.GET("/liked", h.Liked)
	router.GET("/analysis", h.Analysis)

	authGroup := router.Group("/auth")
	{
		authGroup.GET("/login", h.LoginForm)
		authGroup.POST("/login", h.Login)
		authGroup.GET("/register", h.RegisterForm)
		authGroup.POST("/register", h.RegisterAccount)
		authGroup.GET("/logout", h.Logout)
		authGroup.POST("/logout", h.Logout)
	}

	notifications := router.Group("/notifications", member)
	{
		notifications.GET("/my", h.MyNotifications)
		notifications.POST("/:programId", h.Subscribe)
	}

	router.GET("/admin/dashboard", admin, h.Dashboard)
}
