package server

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/leadflow/leadflow/internal/controllers"
	"github.com/leadflow/leadflow/internal/version"
)

type HTTPServerDependencies struct {
	AgentController      *controllers.AgentController
	ConnectionController *controllers.ConnectionController
}

func NewHTTPServer(deps HTTPServerDependencies) *fiber.App {
	router := fiber.New(fiber.Config{
		AppName: "leadflow",
	})

	router.Use(cors.New())
	router.Use(logger.New())

	router.Get("/health", func(c fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":    "healthy",
			"service":   "leadflow",
			"version":   version.GetVersion(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	v1 := router.Group("/v1")

	agent := v1.Group("/agent")
	agent.Post("/requests", deps.AgentController.HandleRequest)
	agent.Get("/sessions", deps.AgentController.ListSessions)

	connections := v1.Group("/connections")
	connections.Post("/", deps.ConnectionController.CreateConnection)
	connections.Get("/", deps.ConnectionController.ListConnections)
	connections.Delete("/:provider", deps.ConnectionController.DeleteConnection)

	return router
}
