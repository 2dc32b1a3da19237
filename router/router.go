package router

import (
	"github.com/labstack/echo/v4"

	authCtrl "github.com/ego5g/turizm/pkg/auth/controller"
	forumCtrl "github.com/ego5g/turizm/pkg/forum/controller"
	itineraryCtrl "github.com/ego5g/turizm/pkg/itinerary/controller"
	"github.com/ego5g/turizm/pkg/metrics"
	"github.com/ego5g/turizm/pkg/middleware"
	planCtrl "github.com/ego5g/turizm/pkg/plan/controller"
)

// New registers every API route on e. rateLimit is the per-visitor budget of
// generation requests per minute; 0 disables it.
func New(
	e *echo.Echo,
	m *metrics.Metrics,
	rateLimit int,
	itinerary itineraryCtrl.ItineraryController,
	plans planCtrl.PlanController,
	forum forumCtrl.ForumController,
	auth authCtrl.AuthController,
	healthCtrl interface{ Health(echo.Context) error },
) *echo.Echo {
	e.Use(middleware.Visitor())

	e.GET("/health", healthCtrl.Health)
	e.GET("/metrics", echo.WrapHandler(m.Handler()))

	api := e.Group("/api")
	api.GET("/whoami", auth.WhoAmI)

	limit := middleware.RateLimit(rateLimit, m)
	api.POST("/generate", itinerary.Generate, limit)

	p := api.Group("/plans")
	p.GET("", plans.List)
	p.POST("", plans.Create, limit)
	p.DELETE("", plans.Clear)
	p.GET("/:id", plans.Get)
	p.DELETE("/:id", plans.Delete)
	p.POST("/:id/edit", plans.Edit)
	p.POST("/:id/cancel", plans.Cancel)
	p.GET("/:id/export", plans.Export)

	f := api.Group("/forum")
	f.GET("/categories", forum.Categories)
	f.GET("/topics", forum.ListTopics)
	f.POST("/topics", forum.CreateTopic)
	f.GET("/topics/:id", forum.GetTopic)
	f.POST("/topics/:id/replies", forum.CreateReply)
	return e
}
