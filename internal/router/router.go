package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/prepnexus/prepnexus-api/internal/config"
	"github.com/prepnexus/prepnexus-api/internal/handler"
	"github.com/prepnexus/prepnexus-api/internal/middleware"
	"github.com/prepnexus/prepnexus-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler         *handler.AuthHandler
	AssessmentHandler   *handler.AssessmentHandler
	ResumeHandler       *handler.ResumeHandler
	LearningPathHandler *handler.LearningPathHandler
	MessageHandler      *handler.MessageHandler
	AnalyticsHandler    *handler.AnalyticsHandler
	PlacementHandler    *handler.PlacementHandler
	CareerChatHandler   *handler.CareerChatHandler
	JWTMiddleware       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		auth := api.Group("/auth", middleware.RateLimit("login", 20, time.Minute))
		deps.AuthHandler.Register(auth)
	}

	if deps.AssessmentHandler != nil {
		assessments := api.Group("/assessments", jwtMiddleware,
			middleware.RateLimit("assessments", 30, time.Minute))
		deps.AssessmentHandler.Register(assessments)
	}

	if deps.ResumeHandler != nil {
		resume := api.Group("/resume", jwtMiddleware,
			middleware.RateLimit("resume", 10, time.Minute))
		deps.ResumeHandler.Register(resume)
	}

	if deps.LearningPathHandler != nil {
		paths := api.Group("/learning-path", jwtMiddleware)
		deps.LearningPathHandler.Register(paths)
	}

	if deps.MessageHandler != nil {
		messages := api.Group("/messages", jwtMiddleware)
		deps.MessageHandler.Register(messages)
	}

	if deps.CareerChatHandler != nil {
		chat := api.Group("/career-chat", jwtMiddleware,
			middleware.RateLimit("career_chat", 15, time.Minute))
		deps.CareerChatHandler.Register(chat)
	}

	if deps.PlacementHandler != nil {
		placements := api.Group("/placements", jwtMiddleware)
		deps.PlacementHandler.RegisterShared(placements)

		tpo := placements.Group("", middleware.RequireRole(middleware.RoleTPO))
		deps.PlacementHandler.RegisterTPO(tpo)
	}

	if deps.AnalyticsHandler != nil {
		analytics := api.Group("/analytics", jwtMiddleware, middleware.RequireRole(middleware.RoleTPO))
		deps.AnalyticsHandler.Register(analytics)
	}
}
