// Package main is the entry point for the dealer automation platform server.
// It wires the database, Redis flow cache, workflow engine, and HTTP routes.
package main

import (
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/automation"
	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/cache"
	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/database"
	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/handlers"
	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/middleware"
	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/models"
	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/repository"
	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/workflow"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	if err := database.Connect(nil); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer database.Close()

	if err := database.RunMigrations(); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Redis is optional; without it flow definitions hydrate from Postgres
	// on every request.
	var flowCache *cache.FlowCache
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		flowCache = cache.NewFlowCache(client, log.Logger)
		log.Info().Str("addr", addr).Msg("flow cache enabled")
	}

	store := repository.NewStore(flowCache)
	historyRepo := repository.NewHistoryRepository(log.Logger)
	engine := workflow.NewEngine(store, historyRepo, log.Logger)

	// Fire-and-forget push of approved submissions to the external job
	// automation service. Disabled when AUTOMATION_URL is unset.
	autoClient := automation.NewClient(os.Getenv("AUTOMATION_URL"), log.Logger)

	app := fiber.New(fiber.Config{
		AppName: "dealer-automation-platform",
	})
	app.Use(recover.New())
	app.Use(requestLogger())

	sessions := session.New(session.Config{
		Expiration:     8 * time.Hour,
		CookieSecure:   os.Getenv("ENV") == "production",
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		CookieName:     "session_id",
	})

	authHandler := handlers.NewAuthHandler(sessions, log.Logger)
	formHandler := handlers.NewFormHandler(engine, store, historyRepo, autoClient, log.Logger)
	adminHandler := handlers.NewAdminHandler(engine, log.Logger)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		if !database.IsConnected() {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Post("/login", authHandler.Login)
	app.Post("/logout", authHandler.Logout)

	api := app.Group("/api", middleware.AuthRequired(sessions))

	// Flow catalog
	api.Get("/flows", formHandler.ListFlows)
	api.Get("/flows/:id", formHandler.GetFlow)

	// Submission lifecycle
	api.Post("/submissions", formHandler.CreateSubmission)
	api.Get("/submissions/mine", formHandler.MySubmissions)
	api.Get("/submissions/:id", formHandler.GetSubmission)
	api.Put("/submissions/:id/tabs/:tab", formHandler.SaveTab)
	api.Post("/submissions/:id/submit", formHandler.Submit)
	api.Get("/submissions/:id/approvals", formHandler.Approvals)
	api.Get("/submissions/:id/history", formHandler.History)

	// Approval gates
	approvals := api.Group("", middleware.RoleRequired(
		models.RoleManager, models.RoleInsuranceExecutive))
	approvals.Get("/approvals/pending", formHandler.PendingApprovals)
	approvals.Post("/submissions/:id/approve", formHandler.Approve)
	approvals.Post("/submissions/:id/reject", formHandler.Reject)

	// Administration and reporting
	admin := api.Group("/admin", middleware.RoleRequired(models.RoleManager))
	admin.Get("/records", adminHandler.Records)
	admin.Get("/stats", adminHandler.Stats)
	admin.Get("/export", adminHandler.Export)

	api.Delete("/submissions/:id",
		middleware.RoleRequired(models.RoleSuperadmin),
		adminHandler.DeleteSubmission)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Info().Str("port", port).Msg("server starting")
	if err := app.Listen(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

// requestLogger logs method, path, status, and latency for every request.
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		log.Info().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("latency", time.Since(start)).
			Str("ip", c.IP()).
			Msg("request")
		return err
	}
}
