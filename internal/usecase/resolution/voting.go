package resolution

import (
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/meetsync-team/meetsync/internal/domain/entities"
	"github.com/meetsync-team/meetsync/pkg/config"
)

// ProjectVoter infers the meeting's project from resolved speaker identities
// by majority vote. Each matched contact with a project affiliation casts one
// vote; the winning share must clear the configured threshold.
type ProjectVoter struct {
	cfg    *config.ResolverConfig
	logger *zap.Logger
}

// NewProjectVoter creates a new project voter
func NewProjectVoter(cfg *config.ResolverConfig, logger *zap.Logger) *ProjectVoter {
	return &ProjectVoter{cfg: cfg, logger: logger}
}

// InferProject tallies project votes over resolved candidates.
func (v *ProjectVoter) InferProject(candidates []entities.ContactCandidate) *entities.ProjectVoteResult {
	votes := make(map[uuid.UUID]int)
	totalMatched := 0
	for _, c := range candidates {
		if !c.Matched() {
			continue
		}
		totalMatched++
		if c.ContactProjectID != nil {
			votes[*c.ContactProjectID]++
		}
	}

	result := &entities.ProjectVoteResult{TotalMatched: totalMatched}
	if len(votes) == 0 {
		result.Status = entities.VoteStatusNoProject
		return result
	}

	for projectID, count := range votes {
		share := float64(count) / float64(totalMatched)
		result.Candidates = append(result.Candidates, entities.ProjectVoteCandidate{
			ProjectID: projectID,
			Votes:     count,
			Share:     share,
		})
	}
	sort.Slice(result.Candidates, func(i, j int) bool {
		if result.Candidates[i].Votes != result.Candidates[j].Votes {
			return result.Candidates[i].Votes > result.Candidates[j].Votes
		}
		return result.Candidates[i].ProjectID.String() < result.Candidates[j].ProjectID.String()
	})

	winner := result.Candidates[0]
	result.Votes = winner.Votes
	result.Confidence = winner.Share

	// A second candidate with the same vote count means there is no winner.
	if len(result.Candidates) > 1 && result.Candidates[1].Votes == winner.Votes {
		result.Status = entities.VoteStatusAmbiguous
		if v.logger != nil {
			v.logger.Info("🗳️ Project vote tied",
				zap.Int("votes", winner.Votes),
				zap.Int("candidates", len(result.Candidates)))
		}
		return result
	}

	// The threshold comparison is boundary-inclusive: a share exactly at the
	// threshold passes despite float rounding.
	if winner.Share >= v.cfg.VoteThreshold-v.cfg.VoteEpsilon {
		result.Status = entities.VoteStatusMatched
		result.ProjectID = &winner.ProjectID
		return result
	}

	result.Status = entities.VoteStatusLowConfidence
	result.ProjectID = &winner.ProjectID
	if v.logger != nil {
		v.logger.Info("🗳️ Project vote below threshold",
			zap.String("project_id", winner.ProjectID.String()),
			zap.Float64("share", winner.Share),
			zap.Float64("threshold", v.cfg.VoteThreshold))
	}
	return result
}
