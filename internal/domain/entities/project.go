package entities

import (
	"time"

	"github.com/google/uuid"
)

// Project is an internal project meetings are attached to
type Project struct {
	ID   uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name string    `json:"name" gorm:"type:varchar(255);not null"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Project) TableName() string {
	return "projects"
}

// ProjectRole is the member's role inside a project
type ProjectRole string

const (
	ProjectRoleOwner  ProjectRole = "owner"
	ProjectRoleMember ProjectRole = "member"
	ProjectRoleViewer ProjectRole = "viewer"
)

// ProjectMembership links a user to a project. Any role grants the project a
// place in the user's accessible set for vote counting.
type ProjectMembership struct {
	ID        uuid.UUID   `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ProjectID uuid.UUID   `json:"project_id" gorm:"type:uuid;not null;index"`
	UserID    uuid.UUID   `json:"user_id" gorm:"type:uuid;not null;index"`
	Role      ProjectRole `json:"role" gorm:"type:varchar(20);not null;default:'member'"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (ProjectMembership) TableName() string {
	return "project_memberships"
}
