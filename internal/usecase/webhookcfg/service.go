package webhookcfg

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/meetsync-team/meetsync/internal/domain/entities"
	"github.com/meetsync-team/meetsync/internal/domain/repositories"
)

// Service manages the per-user webhook configuration the ingestion gateway
// reads: the token-scoped URL, the shared secret, and the enabled-events set.
type Service struct {
	configRepo repositories.WebhookConfigRepository
	logger     *zap.Logger
}

// NewService creates a new webhook configuration service
func NewService(configRepo repositories.WebhookConfigRepository, logger *zap.Logger) *Service {
	return &Service{configRepo: configRepo, logger: logger}
}

// GetOrCreate returns the user's webhook config, creating one with a fresh
// token and every event kind enabled on first access.
func (s *Service) GetOrCreate(ctx context.Context, userID uuid.UUID) (*entities.WebhookConfig, error) {
	config, err := s.configRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if config != nil {
		return config, nil
	}

	enabled := make([]string, 0, len(entities.KnownEventKinds))
	for _, kind := range entities.KnownEventKinds {
		enabled = append(enabled, string(kind))
	}
	config = &entities.WebhookConfig{
		UserID:        userID,
		Token:         newToken(),
		Active:        true,
		EnabledEvents: enabled,
	}
	if err := s.configRepo.Create(ctx, config); err != nil {
		return nil, err
	}
	if s.logger != nil {
		s.logger.Info("🔗 Webhook config created", zap.String("user_id", userID.String()))
	}
	return config, nil
}

// RegenerateToken replaces the ingestion token, invalidating the old URL.
func (s *Service) RegenerateToken(ctx context.Context, userID uuid.UUID) (*entities.WebhookConfig, error) {
	config, err := s.mustGet(ctx, userID)
	if err != nil {
		return nil, err
	}
	config.Token = newToken()
	if err := s.configRepo.Update(ctx, config); err != nil {
		return nil, err
	}
	if s.logger != nil {
		s.logger.Info("🔑 Webhook token regenerated", zap.String("user_id", userID.String()))
	}
	return config, nil
}

// RegenerateSecret replaces the shared secret with a fresh random value.
func (s *Service) RegenerateSecret(ctx context.Context, userID uuid.UUID) (*entities.WebhookConfig, error) {
	config, err := s.mustGet(ctx, userID)
	if err != nil {
		return nil, err
	}
	secret, err := newSecret()
	if err != nil {
		return nil, err
	}
	config.Secret = &secret
	if err := s.configRepo.Update(ctx, config); err != nil {
		return nil, err
	}
	if s.logger != nil {
		s.logger.Info("🔑 Webhook secret regenerated", zap.String("user_id", userID.String()))
	}
	return config, nil
}

// SetActive toggles whether the gateway accepts events for this webhook.
func (s *Service) SetActive(ctx context.Context, userID uuid.UUID, active bool) (*entities.WebhookConfig, error) {
	config, err := s.mustGet(ctx, userID)
	if err != nil {
		return nil, err
	}
	config.Active = active
	if err := s.configRepo.Update(ctx, config); err != nil {
		return nil, err
	}
	return config, nil
}

// UpdateEnabledEvents replaces the enabled-events set. Unknown kinds are
// rejected so the gateway never has to parse an event it cannot.
func (s *Service) UpdateEnabledEvents(ctx context.Context, userID uuid.UUID, kinds []string) (*entities.WebhookConfig, error) {
	for _, kind := range kinds {
		if !entities.IsKnownEventKind(entities.EventKind(kind)) {
			return nil, fmt.Errorf("%w: %s", entities.ErrUnknownEventKind, kind)
		}
	}

	config, err := s.mustGet(ctx, userID)
	if err != nil {
		return nil, err
	}
	config.EnabledEvents = kinds
	if err := s.configRepo.Update(ctx, config); err != nil {
		return nil, err
	}
	return config, nil
}

func (s *Service) mustGet(ctx context.Context, userID uuid.UUID) (*entities.WebhookConfig, error) {
	config, err := s.configRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if config == nil {
		return nil, entities.ErrWebhookConfigNotFound
	}
	return config, nil
}

func newToken() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

func newSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
