package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MappingSource records how a speaker mapping came to exist
type MappingSource string

const (
	MappingSourceManual   MappingSource = "manual"   // Declared by a user
	MappingSourceInferred MappingSource = "inferred" // Learned by automation
)

// SpeakerMapping associates a normalized speaker label with a contact.
// ProjectID nil means the mapping is global across all of the user's projects.
// Within a scope only the highest-confidence active mapping is consulted.
type SpeakerMapping struct {
	ID           uuid.UUID     `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID       uuid.UUID     `json:"user_id" gorm:"type:uuid;not null;index"`
	ProjectID    *uuid.UUID    `json:"project_id,omitempty" gorm:"type:uuid;index"`
	SpeakerLabel string        `json:"speaker_label" gorm:"type:varchar(255);not null;index"`
	ContactID    uuid.UUID     `json:"contact_id" gorm:"type:uuid;not null;index"`
	Confidence   float64       `json:"confidence" gorm:"type:numeric;default:0.95"`
	Source       MappingSource `json:"source" gorm:"type:varchar(20);not null;default:'manual'"`
	Active       bool          `json:"active" gorm:"default:true"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (SpeakerMapping) TableName() string {
	return "speaker_mappings"
}

// NormalizeSpeakerLabel lowercases and trims a label for case-insensitive lookup
func NormalizeSpeakerLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

// NewSpeakerMapping creates a manual mapping; the stored label is normalized
func NewSpeakerMapping(userID uuid.UUID, projectID *uuid.UUID, label string, contactID uuid.UUID, confidence float64) *SpeakerMapping {
	return &SpeakerMapping{
		ID:           uuid.New(),
		UserID:       userID,
		ProjectID:    projectID,
		SpeakerLabel: NormalizeSpeakerLabel(label),
		ContactID:    contactID,
		Confidence:   confidence,
		Source:       MappingSourceManual,
		Active:       true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

// IsGlobal reports whether the mapping applies across all projects
func (m *SpeakerMapping) IsGlobal() bool {
	return m.ProjectID == nil
}
