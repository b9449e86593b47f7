package web

import (
	"fmt"

	"homepanel/auth"
	"homepanel/internal/db"
	"homepanel/internal/engine"
	"homepanel/internal/scheduler"
	"homepanel/internal/taskqueue"
	"homepanel/internal/web/api"
	"homepanel/internal/web/events"
	"homepanel/internal/web/middleware"

	"github.com/gin-gonic/gin"
)

type WebServer struct {
	router *gin.Engine
}

// Deps collects everything the HTTP surface needs
type Deps struct {
	DB        *db.DB
	Auth      *auth.AuthModule
	Publisher engine.CommandPublisher
	Queue     *taskqueue.Queue
	Scheduler *scheduler.Scheduler
	Engine    api.EngineNotifier
	Hub       *events.Hub
}

func NewWebServer(deps Deps) *WebServer {
	router := gin.Default()

	middlewareManager := middleware.NewMiddlewareManager(deps.Auth)

	api.RegisterAuthRoutes(router, deps.Auth)
	api.RegisterUserRoutes(router, middlewareManager, deps.DB.Pool(), deps.Auth)
	api.RegisterRoomRoutes(router, middlewareManager, deps.DB)
	api.RegisterDeviceRoutes(router, middlewareManager, deps.DB, deps.Publisher)
	api.RegisterSceneRoutes(router, middlewareManager, deps.DB, deps.Queue)
	api.RegisterScheduleRoutes(router, middlewareManager, deps.DB, deps.Scheduler)
	api.RegisterRuleRoutes(router, middlewareManager, deps.DB, deps.Engine)

	eventsGroup := router.Group("/events")
	eventsGroup.Use(middlewareManager.RequireAuth())
	eventsGroup.GET("", func(c *gin.Context) {
		deps.Hub.HandleConnection(c.Writer, c.Request)
	})

	return &WebServer{router: router}
}

func (ws *WebServer) Start(port int) error {
	return ws.router.Run(fmt.Sprintf(":%d", port))
}
