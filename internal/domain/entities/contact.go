package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Contact is a known person attached to a project
type Contact struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ProjectID uuid.UUID `json:"project_id" gorm:"type:uuid;not null;index"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null;index"`
	Email     *string   `json:"email,omitempty" gorm:"type:varchar(255)"`
	Aliases   []string  `json:"aliases,omitempty" gorm:"type:jsonb;serializer:json"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Contact) TableName() string {
	return "contacts"
}

// MatchesAlias reports whether label equals one of the contact's aliases, case-insensitively
func (c *Contact) MatchesAlias(label string) bool {
	needle := strings.ToLower(strings.TrimSpace(label))
	for _, alias := range c.Aliases {
		if strings.ToLower(strings.TrimSpace(alias)) == needle {
			return true
		}
	}
	return false
}

// MatchesPartialName reports whether label contains, or is contained by, the contact name
func (c *Contact) MatchesPartialName(label string) bool {
	needle := strings.ToLower(strings.TrimSpace(label))
	name := strings.ToLower(strings.TrimSpace(c.Name))
	if needle == "" || name == "" {
		return false
	}
	return strings.Contains(name, needle) || strings.Contains(needle, name)
}
