package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/kenshokan/dojang-api/internal/config"
	"github.com/kenshokan/dojang-api/internal/handler"
	"github.com/kenshokan/dojang-api/internal/middleware"
	"github.com/kenshokan/dojang-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ExamHandler        *handler.ExamHandler
	AttemptHandler     *handler.AttemptHandler
	GradingHandler     *handler.GradingHandler
	PracticalHandler   *handler.PracticalHandler
	ResultHandler      *handler.ResultHandler
	CertificateHandler *handler.CertificateHandler
	ProgressHandler    *handler.ProgressHandler
	ActivityHandler    *handler.ActivityHandler
	JWTMiddleware      fiber.Handler
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

	// Exam administration
	if deps.ExamHandler != nil {
		exams := api.Group("/exams", jwtMiddleware, middleware.RequireRole("admin"))
		deps.ExamHandler.Register(exams)
	}

	// Theory attempt sessions
	if deps.AttemptHandler != nil {
		attempts := api.Group("/attempts",
			jwtMiddleware,
			middleware.RequireRole("student"),
			middleware.RateLimit("attempts", 30, time.Minute),
		)
		deps.AttemptHandler.Register(attempts)
	}

	// Essay grading
	if deps.GradingHandler != nil {
		grading := api.Group("/grading", jwtMiddleware, middleware.RequireRole("grader", "admin"))
		deps.GradingHandler.Register(grading)
	}

	// Practical evaluations
	if deps.PracticalHandler != nil {
		practicals := api.Group("/practicals", jwtMiddleware, middleware.RequireRole("coach", "admin"))
		deps.PracticalHandler.Register(practicals)
	}

	// Final results
	if deps.ResultHandler != nil {
		results := api.Group("/results", jwtMiddleware, middleware.RequireRole("grader", "coach", "admin"))
		deps.ResultHandler.Register(results)
	}

	// Certificates
	if deps.CertificateHandler != nil {
		certificates := api.Group("/certificates", jwtMiddleware, middleware.RequireRole("admin"))
		deps.CertificateHandler.Register(certificates)
	}

	// Student progress
	if deps.ProgressHandler != nil {
		progress := api.Group("/progress", jwtMiddleware)
		deps.ProgressHandler.Register(progress)
	}

	// Audit trail
	if deps.ActivityHandler != nil {
		activity := api.Group("/activity", jwtMiddleware, middleware.RequireRole("admin"))
		deps.ActivityHandler.Register(activity)
	}
}
