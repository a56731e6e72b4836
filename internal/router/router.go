package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/quiz-api/internal/config"
	"github.com/noah-isme/quiz-api/internal/handler"
	"github.com/noah-isme/quiz-api/internal/middleware"
	"github.com/noah-isme/quiz-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	QuizHandler            *handler.QuizHandler
	AdminQuizHandler       *handler.AdminQuizHandler
	AdminSubmissionHandler *handler.AdminSubmissionHandler
	AdminActivityHandler   *handler.AdminActivityHandler
	HealthProbes           []handler.HealthProbe
	JWTMiddleware          fiber.Handler
	SubmitLimiter          fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthProbes...))

	if deps.QuizHandler != nil {
		guards := make([]fiber.Handler, 0, 1)
		if deps.SubmitLimiter != nil {
			guards = append(guards, deps.SubmitLimiter)
		}
		deps.QuizHandler.Register(api.Group("/quizzes"), guards...)
	}

	// Admin routes always require a token; without a configured verifier every request is refused.
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
	}

	admin := app.Group("/api/admin", jwtMiddleware, middleware.RequireRole(middleware.RoleAdmin, middleware.RoleTeacher))
	if deps.AdminQuizHandler != nil {
		deps.AdminQuizHandler.Register(admin)
	}
	if deps.AdminSubmissionHandler != nil {
		deps.AdminSubmissionHandler.Register(admin)
	}
	if deps.AdminActivityHandler != nil {
		deps.AdminActivityHandler.Register(admin.Group("/audit"))
	}
}
