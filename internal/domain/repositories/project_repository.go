package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/meetsync-team/meetsync/internal/domain/entities"
)

// ProjectRepository defines read access to projects and memberships
type ProjectRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Project, error)

	// ListProjectIDsByUser returns the user's accessible project set (any role)
	ListProjectIDsByUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}
