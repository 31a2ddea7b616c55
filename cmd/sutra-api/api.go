// Package main provides the Sutra API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/sutraflow/sutra/pkg/eventbus"
	"github.com/sutraflow/sutra/pkg/generation"
	"github.com/sutraflow/sutra/pkg/persistence"
	"github.com/sutraflow/sutra/pkg/registry"
	"github.com/sutraflow/sutra/pkg/web"
	"github.com/sutraflow/sutra/pkg/workflow"
	"go.opentelemetry.io/otel/trace"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	registry    *registry.Registry
	eventBus    eventbus.EventBus
	validate    *validator.Validate
	tracer      trace.Tracer
}

func NewAPI(
	logger *slog.Logger,
	store persistence.Persistence,
	reg *registry.Registry,
	eventBus eventbus.EventBus,
) *API {
	return &API{
		logger:      logger,
		persistence: store,
		registry:    reg,
		eventBus:    eventBus,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	engineOpts := []workflow.Option{}
	if a.eventBus != nil {
		engineOpts = append(engineOpts, workflow.WithEventBus(a.eventBus))
	}

	if a.tracer != nil {
		engineOpts = append(engineOpts, workflow.WithTracer(a.tracer))
	}

	engine := workflow.NewEngine(a.logger, a.registry, engineOpts...)
	generator := generation.NewLLMGenerator(a.logger, a.registry.ListTypes())

	handlers := web.NewAPIHandlers(a.logger, engine, a.registry, a.persistence, generator, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Sutra API")
	})

	w := app.Group("/workflows")
	w.Get("/", handlers.GetWorkflows)
	w.Post("/", handlers.CreateWorkflow)
	w.Post("/execute", handlers.ExecuteWorkflow)
	w.Post("/generate", handlers.GenerateWorkflow)
	w.Get("/:id", handlers.GetWorkflow)
	w.Delete("/:id", handlers.DeleteWorkflow)

	e := app.Group("/executions")
	e.Get("/", handlers.ListExecutions)
	e.Get("/:id", handlers.GetExecution)
	e.Delete("/:id", handlers.CancelExecution)

	n := app.Group("/node-types")
	n.Get("/", handlers.ListNodeTypes)
	n.Get("/:type", handlers.GetNodeType)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	return a.App().Listen(":" + strconv.Itoa(port))
}
