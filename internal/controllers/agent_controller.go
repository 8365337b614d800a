package controllers

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/leadflow/leadflow/pkg/domain"
)

// AgentService is the orchestration entry point the controller fronts.
type AgentService interface {
	ProcessRequest(ctx context.Context, request domain.AgentRequest) domain.AgentResponse
}

// AgentController handles inbound automation requests.
type AgentController struct {
	agentService   AgentService
	sessionService domain.SessionService
}

type AgentControllerDependencies struct {
	AgentService   AgentService
	SessionService domain.SessionService
}

func NewAgentController(deps AgentControllerDependencies) *AgentController {
	return &AgentController{
		agentService:   deps.AgentService,
		sessionService: deps.SessionService,
	}
}

// HandleRequest processes one natural-language automation request.
func (c *AgentController) HandleRequest(ctx fiber.Ctx) error {
	var req domain.AgentRequest

	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	req.UserID = strings.TrimSpace(req.UserID)
	req.Message = strings.TrimSpace(req.Message)

	if req.UserID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "user_id is required")
	}

	if req.Message == "" {
		return fiber.NewError(fiber.StatusBadRequest, "message is required")
	}

	log.Info().Str("user_id", req.UserID).Msg("Processing agent request")

	response := c.agentService.ProcessRequest(ctx.RequestCtx(), req)

	return ctx.JSON(response)
}

// ListSessions returns the user's planner sessions.
func (c *AgentController) ListSessions(ctx fiber.Ctx) error {
	userID := ctx.Query("user_id")
	if userID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "user_id is required")
	}

	sessions, err := c.sessionService.ListSessions(ctx.RequestCtx(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list sessions")
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to list sessions")
	}

	type sessionItem struct {
		ID        string `json:"id"`
		CreatedAt string `json:"created_at"`
	}

	items := make([]sessionItem, 0, len(sessions))
	for _, session := range sessions {
		items = append(items, sessionItem{
			ID:        session.ID,
			CreatedAt: session.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	return ctx.JSON(fiber.Map{"sessions": items})
}
