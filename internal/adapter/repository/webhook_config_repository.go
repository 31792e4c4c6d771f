package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/meetsync-team/meetsync/internal/domain/entities"
)

// WebhookConfigRepository handles webhook configuration data operations
type WebhookConfigRepository struct {
	db *gorm.DB
}

// NewWebhookConfigRepository creates a new webhook config repository
func NewWebhookConfigRepository(db *gorm.DB) *WebhookConfigRepository {
	return &WebhookConfigRepository{db: db}
}

// Create inserts a new webhook config
func (r *WebhookConfigRepository) Create(ctx context.Context, config *entities.WebhookConfig) error {
	if config == nil {
		return errors.New("config cannot be nil")
	}
	return r.db.WithContext(ctx).Create(config).Error
}

// Update saves changes to an existing webhook config
func (r *WebhookConfigRepository) Update(ctx context.Context, config *entities.WebhookConfig) error {
	if config == nil {
		return errors.New("config cannot be nil")
	}
	config.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(config).Error
}

// GetByToken retrieves a webhook config by its ingestion token
func (r *WebhookConfigRepository) GetByToken(ctx context.Context, token string) (*entities.WebhookConfig, error) {
	var config entities.WebhookConfig
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&config).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &config, nil
}

// GetByUser retrieves the webhook config owned by a user
func (r *WebhookConfigRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*entities.WebhookConfig, error) {
	var config entities.WebhookConfig
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&config).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &config, nil
}

// RecordEvent bumps the received counter and last event timestamp
func (r *WebhookConfigRepository) RecordEvent(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&entities.WebhookConfig{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"events_received": gorm.Expr("events_received + 1"),
			"last_event_at":   now,
			"updated_at":      now,
		}).Error
}
