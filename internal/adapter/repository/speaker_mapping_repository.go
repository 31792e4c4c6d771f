package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/meetsync-team/meetsync/internal/domain/entities"
)

// SpeakerMappingRepository handles speaker mapping data operations
type SpeakerMappingRepository struct {
	db *gorm.DB
}

// NewSpeakerMappingRepository creates a new speaker mapping repository
func NewSpeakerMappingRepository(db *gorm.DB) *SpeakerMappingRepository {
	return &SpeakerMappingRepository{db: db}
}

// Create inserts a new speaker mapping
func (r *SpeakerMappingRepository) Create(ctx context.Context, mapping *entities.SpeakerMapping) error {
	if mapping == nil {
		return errors.New("mapping cannot be nil")
	}
	return r.db.WithContext(ctx).Create(mapping).Error
}

// GetByID retrieves a speaker mapping by ID
func (r *SpeakerMappingRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.SpeakerMapping, error) {
	var mapping entities.SpeakerMapping
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&mapping).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &mapping, nil
}

// ListByUser retrieves all mappings owned by a user
func (r *SpeakerMappingRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]entities.SpeakerMapping, error) {
	var mappings []entities.SpeakerMapping
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&mappings).Error; err != nil {
		return nil, err
	}
	return mappings, nil
}

// Deactivate marks a mapping as inactive; the user filter keeps one tenant
// from touching another tenant's rows
func (r *SpeakerMappingRepository) Deactivate(ctx context.Context, id, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&entities.SpeakerMapping{}).
		Where("id = ? AND user_id = ? AND active = ?", id, userID, true).
		Updates(map[string]interface{}{
			"active":     false,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entities.ErrMappingNotFound
	}
	return nil
}

// FindActiveProjectScoped returns the highest-confidence active mapping for a
// label scoped to one of the given projects
func (r *SpeakerMappingRepository) FindActiveProjectScoped(ctx context.Context, userID uuid.UUID, label string, projectIDs []uuid.UUID) (*entities.SpeakerMapping, error) {
	if len(projectIDs) == 0 {
		return nil, nil
	}
	var mapping entities.SpeakerMapping
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND speaker_label = ? AND active = ?", userID, entities.NormalizeSpeakerLabel(label), true).
		Where("project_id IN ?", projectIDs).
		Order("confidence DESC").
		First(&mapping).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &mapping, nil
}

// FindActiveGlobal returns the highest-confidence active user-global mapping
func (r *SpeakerMappingRepository) FindActiveGlobal(ctx context.Context, userID uuid.UUID, label string) (*entities.SpeakerMapping, error) {
	var mapping entities.SpeakerMapping
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND speaker_label = ? AND active = ?", userID, entities.NormalizeSpeakerLabel(label), true).
		Where("project_id IS NULL").
		Order("confidence DESC").
		First(&mapping).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &mapping, nil
}

// HasMappingForLabel reports whether any active mapping covers the label,
// either project-scoped within the given set or user-global
func (r *SpeakerMappingRepository) HasMappingForLabel(ctx context.Context, userID uuid.UUID, label string, projectIDs []uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&entities.SpeakerMapping{}).
		Where("user_id = ? AND speaker_label = ? AND active = ?", userID, entities.NormalizeSpeakerLabel(label), true)
	if len(projectIDs) > 0 {
		query = query.Where("project_id IS NULL OR project_id IN ?", projectIDs)
	} else {
		query = query.Where("project_id IS NULL")
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
