package controllers

import (
	"errors"
	"slices"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/leadflow/leadflow/pkg/domain"
)

// ConnectionController manages stored OAuth connections. The OAuth consent
// dance happens in the frontend; this API receives the resulting token pair and
// owns it from there.
type ConnectionController struct {
	connectionStore domain.ConnectionStore
}

type ConnectionControllerDependencies struct {
	ConnectionStore domain.ConnectionStore
}

func NewConnectionController(deps ConnectionControllerDependencies) *ConnectionController {
	return &ConnectionController{
		connectionStore: deps.ConnectionStore,
	}
}

type createConnectionRequest struct {
	UserID        string `json:"user_id"`
	Provider      string `json:"provider"`
	ProviderEmail string `json:"provider_email,omitempty"`
	AccessToken   string `json:"access_token"`
	RefreshToken  string `json:"refresh_token"`
	ExpiresIn     int64  `json:"expires_in,omitempty"`
}

type connectionItem struct {
	Provider      string `json:"provider"`
	ProviderEmail string `json:"provider_email,omitempty"`
	ExpiresAt     string `json:"expires_at"`
	Connected     bool   `json:"connected"`
}

// CreateConnection stores a freshly authorized token pair, replacing any prior
// connection for the same user and provider.
func (c *ConnectionController) CreateConnection(ctx fiber.Ctx) error {
	var req createConnectionRequest

	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if req.UserID == "" || req.AccessToken == "" {
		return fiber.NewError(fiber.StatusBadRequest, "user_id and access_token are required")
	}

	provider := domain.Provider(req.Provider)
	if !slices.Contains(domain.OAuthProviders, provider) {
		return fiber.NewError(fiber.StatusBadRequest, "unsupported provider")
	}

	expiresIn := req.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = 3600
	}

	now := time.Now()

	conn := domain.OAuthConnection{
		UserID:         req.UserID,
		Provider:       provider,
		ProviderEmail:  req.ProviderEmail,
		AccessToken:    req.AccessToken,
		RefreshToken:   req.RefreshToken,
		TokenExpiresAt: now.Add(time.Duration(expiresIn) * time.Second),
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := c.connectionStore.PutConnection(ctx.RequestCtx(), conn); err != nil {
		log.Error().Err(err).Str("user_id", req.UserID).Str("provider", req.Provider).Msg("Failed to store connection")
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to store connection")
	}

	log.Info().Str("user_id", req.UserID).Str("provider", req.Provider).Msg("Connection stored")

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"provider":  req.Provider,
		"connected": true,
	})
}

// ListConnections reports the user's active connections without exposing tokens.
func (c *ConnectionController) ListConnections(ctx fiber.Ctx) error {
	userID := ctx.Query("user_id")
	if userID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "user_id is required")
	}

	connections, err := c.connectionStore.GetConnections(ctx.RequestCtx(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list connections")
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to list connections")
	}

	items := make([]connectionItem, 0, len(connections))
	for _, conn := range connections {
		items = append(items, connectionItem{
			Provider:      string(conn.Provider),
			ProviderEmail: conn.ProviderEmail,
			ExpiresAt:     conn.TokenExpiresAt.UTC().Format(time.RFC3339),
			Connected:     true,
		})
	}

	return ctx.JSON(fiber.Map{"connections": items})
}

// DeleteConnection deactivates the user's connection for the provider.
func (c *ConnectionController) DeleteConnection(ctx fiber.Ctx) error {
	userID := ctx.Query("user_id")
	if userID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "user_id is required")
	}

	provider := domain.Provider(ctx.Params("provider"))
	if !slices.Contains(domain.OAuthProviders, provider) {
		return fiber.NewError(fiber.StatusBadRequest, "unsupported provider")
	}

	if err := c.connectionStore.DeactivateConnection(ctx.RequestCtx(), userID, provider); err != nil {
		if errors.Is(err, domain.ErrNotConnected) {
			return fiber.NewError(fiber.StatusNotFound, "No active connection for provider")
		}

		log.Error().Err(err).Str("user_id", userID).Str("provider", string(provider)).Msg("Failed to deactivate connection")
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to deactivate connection")
	}

	return ctx.JSON(fiber.Map{
		"provider":  string(provider),
		"connected": false,
	})
}
