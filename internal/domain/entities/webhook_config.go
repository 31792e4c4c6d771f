package entities

import (
	"time"

	"github.com/google/uuid"
)

// WebhookConfig is the per-user configuration the ingestion gateway validates
// inbound events against. Token identifies the user-scoped URL; Secret, when
// set, must match the Authorization header exactly.
type WebhookConfig struct {
	ID            uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID        uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;uniqueIndex"`
	Token         string     `json:"token" gorm:"type:varchar(64);not null;uniqueIndex"`
	Secret        *string    `json:"-" gorm:"type:varchar(128)"`
	Active        bool       `json:"active" gorm:"default:true"`
	EnabledEvents []string   `json:"enabled_events" gorm:"type:jsonb;serializer:json"`
	LastEventAt   *time.Time `json:"last_event_at,omitempty" gorm:"type:timestamp"`
	EventsReceived int64     `json:"events_received" gorm:"type:bigint;default:0"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (WebhookConfig) TableName() string {
	return "webhook_configs"
}

// EventEnabled reports whether the owner subscribed to the given event kind
func (w *WebhookConfig) EventEnabled(kind EventKind) bool {
	for _, e := range w.EnabledEvents {
		if EventKind(e) == kind {
			return true
		}
	}
	return false
}
