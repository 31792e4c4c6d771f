package ingest

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/meetsync-team/meetsync/internal/domain/entities"
)

// ParsedEvent is the canonical shape every event kind parses into.
type ParsedEvent struct {
	Kind              entities.EventKind
	ExternalMeetingID string
	Title             string
	MeetingDate       *time.Time
	DurationSeconds   int
	Speakers          []string
	TranscriptText    *string
	Notes             *string
	ActionItems       []string
	KeyPoints         []string
	RecordingURL      *string
}

// eventEnvelope carries only the event kind discriminator.
type eventEnvelope struct {
	Event string `json:"event"`
}

// transcriptPayload is the body shape for transcript.created and
// transcript.shared events.
type transcriptPayload struct {
	MeetingID       string   `json:"meeting_id"`
	Title           string   `json:"title"`
	Date            string   `json:"date"`
	DurationSeconds int      `json:"duration_seconds"`
	Speakers        []string `json:"speakers"`
	Transcript      *string  `json:"transcript"`
	ActionItems     []string `json:"action_items"`
	KeyPoints       []string `json:"key_points"`
	RecordingURL    *string  `json:"recording_url"`
}

// notesPayload is the body shape for notes.generated events.
type notesPayload struct {
	MeetingID   string   `json:"meeting_id"`
	Title       string   `json:"title"`
	Date        string   `json:"date"`
	Speakers    []string `json:"speakers"`
	Notes       *string  `json:"notes"`
	ActionItems []string `json:"action_items"`
	KeyPoints   []string `json:"key_points"`
}

// ExtractEventKind reads the event discriminator from the raw body.
func ExtractEventKind(body []byte) (entities.EventKind, error) {
	var env eventEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", entities.ErrUnknownEventKind
	}
	kind := entities.EventKind(strings.TrimSpace(env.Event))
	if kind == "" {
		return "", entities.ErrUnknownEventKind
	}
	return kind, nil
}

// ParseEvent parses the raw body with the strict parser for its event kind.
// Each kind owns its field extraction; there are no cross-kind fallbacks.
func ParseEvent(kind entities.EventKind, body []byte) (*ParsedEvent, error) {
	switch kind {
	case entities.EventKindTranscriptCreated, entities.EventKindTranscriptShared:
		return parseTranscriptEvent(kind, body)
	case entities.EventKindNotesGenerated:
		return parseNotesEvent(body)
	default:
		return nil, entities.ErrUnknownEventKind
	}
}

func parseTranscriptEvent(kind entities.EventKind, body []byte) (*ParsedEvent, error) {
	var p transcriptPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, err
	}
	parsed := &ParsedEvent{
		Kind:              kind,
		ExternalMeetingID: strings.TrimSpace(p.MeetingID),
		Title:             p.Title,
		MeetingDate:       parseMeetingDate(p.Date),
		DurationSeconds:   p.DurationSeconds,
		Speakers:          p.Speakers,
		TranscriptText:    p.Transcript,
		ActionItems:       p.ActionItems,
		KeyPoints:         p.KeyPoints,
		RecordingURL:      p.RecordingURL,
	}
	return parsed, nil
}

func parseNotesEvent(body []byte) (*ParsedEvent, error) {
	var p notesPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, err
	}
	parsed := &ParsedEvent{
		Kind:              entities.EventKindNotesGenerated,
		ExternalMeetingID: strings.TrimSpace(p.MeetingID),
		Title:             p.Title,
		MeetingDate:       parseMeetingDate(p.Date),
		Speakers:          p.Speakers,
		Notes:             p.Notes,
		ActionItems:       p.ActionItems,
		KeyPoints:         p.KeyPoints,
	}
	return parsed, nil
}

func parseMeetingDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return &ts
	}
	if ts, err := time.Parse("2006-01-02", raw); err == nil {
		return &ts
	}
	return nil
}
