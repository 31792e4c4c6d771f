package webhook

import (
	"time"

	"github.com/google/uuid"
)

// EventResponse is the webhook caller's view of an accepted event.
type EventResponse struct {
	Status       string     `json:"status"`
	TranscriptID *uuid.UUID `json:"transcript_id,omitempty"`
}

// ConfigResponse is the admin view of a webhook configuration. The secret is
// only revealed on regeneration.
type ConfigResponse struct {
	ID             uuid.UUID  `json:"id"`
	Token          string     `json:"token"`
	Secret         *string    `json:"secret,omitempty"`
	Active         bool       `json:"active"`
	EnabledEvents  []string   `json:"enabled_events"`
	LastEventAt    *time.Time `json:"last_event_at,omitempty"`
	EventsReceived int64      `json:"events_received"`
}

// SetActiveRequest toggles whether the gateway accepts events.
type SetActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// UpdateEventsRequest replaces the enabled-events set.
type UpdateEventsRequest struct {
	EnabledEvents []string `json:"enabled_events" validate:"required,dive,event_kind"`
}

// CreateMappingRequest declares a speaker-label-to-contact association.
type CreateMappingRequest struct {
	SpeakerLabel string     `json:"speaker_label" validate:"required,min=1,max=255"`
	ContactID    uuid.UUID  `json:"contact_id" validate:"required"`
	ProjectID    *uuid.UUID `json:"project_id,omitempty"`
	Confidence   *float64   `json:"confidence,omitempty" validate:"omitempty,gte=0,lte=1"`
}

// AssignProjectRequest manually sets the project on an ambiguous record.
type AssignProjectRequest struct {
	ProjectID uuid.UUID `json:"project_id" validate:"required"`
}
