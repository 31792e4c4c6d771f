package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/meetsync-team/meetsync/internal/domain/entities"
)

// ContactRepository handles contact data operations
type ContactRepository struct {
	db *gorm.DB
}

// NewContactRepository creates a new contact repository
func NewContactRepository(db *gorm.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

// GetByID retrieves a contact by ID
func (r *ContactRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Contact, error) {
	var contact entities.Contact
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&contact).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &contact, nil
}

// GetByNameInProjects retrieves a contact whose name matches exactly
// (case-insensitive) within the given projects
func (r *ContactRepository) GetByNameInProjects(ctx context.Context, projectIDs []uuid.UUID, name string) (*entities.Contact, error) {
	if len(projectIDs) == 0 {
		return nil, nil
	}
	var contact entities.Contact
	if err := r.db.WithContext(ctx).
		Where("project_id IN ?", projectIDs).
		Where("LOWER(name) = LOWER(?)", name).
		First(&contact).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &contact, nil
}

// ListByProjects retrieves all contacts in the given projects. Alias and
// partial-name matching happens in memory over this set.
func (r *ContactRepository) ListByProjects(ctx context.Context, projectIDs []uuid.UUID) ([]entities.Contact, error) {
	if len(projectIDs) == 0 {
		return nil, nil
	}
	var contacts []entities.Contact
	if err := r.db.WithContext(ctx).
		Where("project_id IN ?", projectIDs).
		Order("name ASC").
		Find(&contacts).Error; err != nil {
		return nil, err
	}
	return contacts, nil
}
