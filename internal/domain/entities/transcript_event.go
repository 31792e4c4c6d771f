package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// TranscriptStatus represents the lifecycle state of an ingested transcript event
type TranscriptStatus string

const (
	TranscriptStatusPending      TranscriptStatus = "pending"       // All speakers identified, waiting for pipeline
	TranscriptStatusQuarantine   TranscriptStatus = "quarantine"    // Unidentified speakers or no project signal, retried later
	TranscriptStatusAmbiguous    TranscriptStatus = "ambiguous"     // Speakers resolved but no dominant project vote
	TranscriptStatusMatched      TranscriptStatus = "matched"       // Project inferred, pipeline invoked
	TranscriptStatusProcessed    TranscriptStatus = "processed"     // Downstream pipeline completed
	TranscriptStatusExpiredRetry TranscriptStatus = "expired_retry" // Reported for records stuck at the retry cap
)

// EventKind identifies the inbound integration event type
type EventKind string

const (
	EventKindTranscriptCreated EventKind = "transcript.created"
	EventKindNotesGenerated    EventKind = "notes.generated"
	EventKindTranscriptShared  EventKind = "transcript.shared"
)

// KnownEventKinds lists every event kind the gateway can parse
var KnownEventKinds = []EventKind{
	EventKindTranscriptCreated,
	EventKindNotesGenerated,
	EventKindTranscriptShared,
}

// IsKnownEventKind reports whether k is a parseable event kind
func IsKnownEventKind(k EventKind) bool {
	for _, known := range KnownEventKinds {
		if k == known {
			return true
		}
	}
	return false
}

// Status reasons recorded alongside non-terminal statuses
const (
	ReasonUnidentifiedSpeakers = "unidentified_speakers"
	ReasonNoProjectMatch       = "no_project_match"
	ReasonAmbiguousProject     = "ambiguous_project_vote"
	ReasonLowConfidenceVote    = "low_confidence_vote"
	ReasonPipelineFailed       = "pipeline_invocation_failed"
	ReasonManualAssignment     = "manual_project_assignment"
)

// TranscriptEvent is one ingested meeting-assistant event.
// Uniqueness on (user_id, external_meeting_id, event_kind) is enforced by the
// database so a replayed webhook can never create a second record.
type TranscriptEvent struct {
	ID                uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID            uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_transcript_events_dedup"`
	ExternalMeetingID string    `json:"external_meeting_id" gorm:"type:varchar(255);not null;uniqueIndex:idx_transcript_events_dedup"`
	EventKind         EventKind `json:"event_kind" gorm:"type:varchar(50);not null;uniqueIndex:idx_transcript_events_dedup"`

	Title           string     `json:"title" gorm:"type:varchar(500)"`
	MeetingDate     *time.Time `json:"meeting_date,omitempty" gorm:"type:timestamp"`
	DurationSeconds int        `json:"duration_seconds" gorm:"type:integer;default:0"`

	Speakers       []string `json:"speakers" gorm:"type:jsonb;serializer:json"`
	TranscriptText *string  `json:"transcript_text,omitempty" gorm:"type:text"`
	Notes          *string  `json:"notes,omitempty" gorm:"type:text"`
	ActionItems    []string `json:"action_items,omitempty" gorm:"type:jsonb;serializer:json"`
	KeyPoints      []string `json:"key_points,omitempty" gorm:"type:jsonb;serializer:json"`
	RecordingURL   *string  `json:"recording_url,omitempty" gorm:"type:text"`

	// RawPayload keeps the inbound webhook body verbatim for re-parsing
	// after a payload-format change.
	RawPayload datatypes.JSON `json:"raw_payload,omitempty" gorm:"type:jsonb"`

	HasUnidentifiedSpeakers bool             `json:"has_unidentified_speakers" gorm:"default:false"`
	Status                  TranscriptStatus `json:"status" gorm:"type:varchar(50);not null;index;default:'pending'"`
	StatusReason            *string          `json:"status_reason,omitempty" gorm:"type:text"`
	MatchedProjectID        *uuid.UUID       `json:"matched_project_id,omitempty" gorm:"type:uuid;index"`

	RetryCount  int        `json:"retry_count" gorm:"type:integer;default:0"`
	LastRetryAt *time.Time `json:"last_retry_at,omitempty" gorm:"type:timestamp"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (TranscriptEvent) TableName() string {
	return "transcript_events"
}

// NewTranscriptEvent creates a new transcript event record
func NewTranscriptEvent(userID uuid.UUID, externalMeetingID string, kind EventKind) *TranscriptEvent {
	return &TranscriptEvent{
		ID:                uuid.New(),
		UserID:            userID,
		ExternalMeetingID: externalMeetingID,
		EventKind:         kind,
		Status:            TranscriptStatusPending,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
}

// MarkQuarantined puts the record into quarantine with a reason
func (t *TranscriptEvent) MarkQuarantined(reason string) {
	t.Status = TranscriptStatusQuarantine
	t.StatusReason = &reason
	t.UpdatedAt = time.Now()
}

// MarkAmbiguous records an inconclusive project vote
func (t *TranscriptEvent) MarkAmbiguous(reason string) {
	t.Status = TranscriptStatusAmbiguous
	t.StatusReason = &reason
	t.UpdatedAt = time.Now()
}

// MarkMatched records the winning project
func (t *TranscriptEvent) MarkMatched(projectID uuid.UUID) {
	t.Status = TranscriptStatusMatched
	t.MatchedProjectID = &projectID
	t.StatusReason = nil
	t.UpdatedAt = time.Now()
}

// MarkProcessed marks the downstream pipeline as completed
func (t *TranscriptEvent) MarkProcessed() {
	t.Status = TranscriptStatusProcessed
	t.StatusReason = nil
	t.UpdatedAt = time.Now()
}

// IsRetryable reports whether the scheduler may still pick this record up,
// either through the quarantine/ambiguous retry path or the stalled sweep.
func (t *TranscriptEvent) IsRetryable(maxRetries int) bool {
	switch t.Status {
	case TranscriptStatusQuarantine, TranscriptStatusAmbiguous,
		TranscriptStatusPending, TranscriptStatusMatched:
		return t.RetryCount < maxRetries
	default:
		return false
	}
}

// RetryDue reports whether enough time has passed since the last retry
func (t *TranscriptEvent) RetryDue(interval time.Duration, now time.Time) bool {
	if t.LastRetryAt == nil {
		return true
	}
	return t.LastRetryAt.Add(interval).Before(now)
}
