package entities

import "github.com/google/uuid"

// MatchAction names the resolution tier that produced a candidate
type MatchAction string

const (
	MatchActionUnidentified   MatchAction = "unidentified"
	MatchActionProjectMapping MatchAction = "matched_by_project_mapping"
	MatchActionGlobalMapping  MatchAction = "matched_by_global_mapping"
	MatchActionExactName      MatchAction = "matched_by_exact_name"
	MatchActionAlias          MatchAction = "matched_by_alias"
	MatchActionPartialName    MatchAction = "matched_by_partial_name"
	MatchActionNoMatch        MatchAction = "no_match"
)

// ContactCandidate is the resolution-time result for one speaker label.
// It is produced by the identity resolver and consumed immediately by the
// project voting resolver; it is never persisted.
type ContactCandidate struct {
	SpeakerLabel     string      `json:"speaker_label"`
	ContactID        *uuid.UUID  `json:"contact_id,omitempty"`
	ContactProjectID *uuid.UUID  `json:"contact_project_id,omitempty"`
	Action           MatchAction `json:"action"`
	Confidence       float64     `json:"confidence"`
}

// Matched reports whether the candidate resolved to a contact
func (c ContactCandidate) Matched() bool {
	return c.ContactID != nil
}

// ResolveSummary aggregates identity resolution across all speakers of one event
type ResolveSummary struct {
	Candidates      []ContactCandidate `json:"candidates"`
	HasUnidentified bool               `json:"has_unidentified"`
	AllMatched      bool               `json:"all_matched"`
	MatchedCount    int                `json:"matched_count"`
}

// VoteStatus is the outcome of the project inference vote
type VoteStatus string

const (
	VoteStatusMatched       VoteStatus = "matched"
	VoteStatusAmbiguous     VoteStatus = "ambiguous"
	VoteStatusLowConfidence VoteStatus = "low_confidence"
	VoteStatusNoProject     VoteStatus = "no_project"
)

// ProjectVoteCandidate is one project's standing in the vote
type ProjectVoteCandidate struct {
	ProjectID uuid.UUID `json:"project_id"`
	Votes     int       `json:"votes"`
	Share     float64   `json:"share"`
}

// ProjectVoteResult is the outcome of inferring a meeting's project from its
// resolved speakers. Only Status and ProjectID are folded back into the
// transcript record.
type ProjectVoteResult struct {
	Status       VoteStatus             `json:"status"`
	ProjectID    *uuid.UUID             `json:"project_id,omitempty"`
	Confidence   float64                `json:"confidence"`
	Votes        int                    `json:"votes"`
	TotalMatched int                    `json:"total_matched"`
	Candidates   []ProjectVoteCandidate `json:"candidates,omitempty"`
}
