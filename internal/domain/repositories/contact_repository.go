package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/meetsync-team/meetsync/internal/domain/entities"
)

// ContactRepository defines read access to project contacts
type ContactRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Contact, error)

	// GetByNameInProjects finds a contact whose name equals the label
	// case-insensitively within any of the given projects, or (nil, nil).
	GetByNameInProjects(ctx context.Context, projectIDs []uuid.UUID, name string) (*entities.Contact, error)

	// ListByProjects returns all contacts of the given projects; the alias
	// and partial-name resolution tiers scan this list in memory.
	ListByProjects(ctx context.Context, projectIDs []uuid.UUID) ([]entities.Contact, error)
}
