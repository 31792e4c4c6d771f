package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	custommw "github.com/meetsync-team/meetsync/internal/infrastructure/http/middleware"
	"github.com/meetsync-team/meetsync/pkg/config"
	"github.com/meetsync-team/meetsync/pkg/jwt"
)

// Router holds all handlers
type Router struct {
	cfg            *config.Config
	webhookHandler *Webhook
	adminHandler   *Admin
	jwtManager     *jwt.Manager
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, webhookHandler *Webhook, adminHandler *Admin, jwtManager *jwt.Manager) *Router {
	return &Router{
		cfg:            cfg,
		webhookHandler: webhookHandler,
		adminHandler:   adminHandler,
		jwtManager:     jwtManager,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", rt.healthCheck)

	// API v1 group
	v1 := e.Group("/v1")

	rt.setupWebhookRoutes(v1)
	rt.setupAdminRoutes(v1)
}

// setupWebhookRoutes configures the unauthenticated ingestion endpoint; the
// per-user token in the path plus the optional secret are its auth.
func (rt *Router) setupWebhookRoutes(g *echo.Group) {
	g.POST("/hooks/meeting/:token", rt.webhookHandler.HandleEvent)
}

// setupAdminRoutes configures the JWT-guarded management surface
func (rt *Router) setupAdminRoutes(g *echo.Group) {
	auth := custommw.EchoAuth(rt.jwtManager)

	integration := g.Group("/integrations/meeting-webhook", auth)
	integration.GET("", rt.adminHandler.GetWebhookConfig)
	integration.POST("/regenerate-token", rt.adminHandler.RegenerateToken)
	integration.POST("/regenerate-secret", rt.adminHandler.RegenerateSecret)
	integration.PATCH("/active", rt.adminHandler.SetWebhookActive)
	integration.PUT("/events", rt.adminHandler.UpdateEnabledEvents)

	mappings := g.Group("/speaker-mappings", auth)
	mappings.POST("", rt.adminHandler.CreateSpeakerMapping)
	mappings.GET("", rt.adminHandler.ListSpeakerMappings)
	mappings.DELETE("/:id", rt.adminHandler.DeactivateSpeakerMapping)

	transcripts := g.Group("/transcripts", auth)
	transcripts.GET("", rt.adminHandler.ListTranscripts)
	transcripts.GET("/stats", rt.adminHandler.TranscriptStats)
	transcripts.POST("/:id/assign-project", rt.adminHandler.AssignProject)
	transcripts.POST("/:id/retry", rt.adminHandler.RetryTranscript)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"time":        time.Now().Format(time.RFC3339),
		"environment": rt.cfg.Server.Environment,
	})
}
