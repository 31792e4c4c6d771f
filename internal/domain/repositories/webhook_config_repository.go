package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/meetsync-team/meetsync/internal/domain/entities"
)

// WebhookConfigRepository defines persistence operations for webhook configs
type WebhookConfigRepository interface {
	Create(ctx context.Context, config *entities.WebhookConfig) error
	Update(ctx context.Context, config *entities.WebhookConfig) error

	// GetByToken returns (nil, nil) when no config carries the token
	GetByToken(ctx context.Context, token string) (*entities.WebhookConfig, error)

	// GetByUser returns (nil, nil) when the user has no config yet
	GetByUser(ctx context.Context, userID uuid.UUID) (*entities.WebhookConfig, error)

	// RecordEvent bumps last_event_at and the received-event counter
	RecordEvent(ctx context.Context, id uuid.UUID) error
}
