package resolution

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/meetsync-team/meetsync/internal/domain/entities"
	"github.com/meetsync-team/meetsync/internal/domain/repositories"
	"github.com/meetsync-team/meetsync/pkg/config"
)

// Scope bounds a resolution run to one user and the projects they can see.
type Scope struct {
	UserID     uuid.UUID
	ProjectIDs []uuid.UUID
}

// IdentityResolver maps speaker labels to contacts through a fixed cascade:
// explicit mappings first (project-scoped before user-global), then contact
// name matching (exact, alias, partial). A storage error in one tier is a
// miss for that tier; resolution only fails when every storage-backed tier
// errored.
type IdentityResolver struct {
	mappingRepo repositories.SpeakerMappingRepository
	contactRepo repositories.ContactRepository
	cfg         *config.ResolverConfig
	logger      *zap.Logger
}

// NewIdentityResolver creates a new identity resolver
func NewIdentityResolver(
	mappingRepo repositories.SpeakerMappingRepository,
	contactRepo repositories.ContactRepository,
	cfg *config.ResolverConfig,
	logger *zap.Logger,
) *IdentityResolver {
	return &IdentityResolver{
		mappingRepo: mappingRepo,
		contactRepo: contactRepo,
		cfg:         cfg,
		logger:      logger,
	}
}

// Resolve runs the cascade for a single speaker label.
func (r *IdentityResolver) Resolve(ctx context.Context, label string, scope Scope) (entities.ContactCandidate, error) {
	candidate := entities.ContactCandidate{SpeakerLabel: label}

	storageErrors := 0
	storageTiers := 0

	// Tier: project-scoped explicit mapping
	storageTiers++
	mapping, err := r.mappingRepo.FindActiveProjectScoped(ctx, scope.UserID, label, scope.ProjectIDs)
	if err != nil {
		storageErrors++
		if r.logger != nil {
			r.logger.Warn("⚠️ Project mapping lookup failed", zap.String("label", label), zap.Error(err))
		}
	} else if mapping != nil {
		candidate.ContactID = &mapping.ContactID
		candidate.ContactProjectID = mapping.ProjectID
		candidate.Action = entities.MatchActionProjectMapping
		candidate.Confidence = mapping.Confidence
		return candidate, nil
	}

	// Tier: user-global explicit mapping
	storageTiers++
	mapping, err = r.mappingRepo.FindActiveGlobal(ctx, scope.UserID, label)
	if err != nil {
		storageErrors++
		if r.logger != nil {
			r.logger.Warn("⚠️ Global mapping lookup failed", zap.String("label", label), zap.Error(err))
		}
	} else if mapping != nil {
		candidate.ContactID = &mapping.ContactID
		candidate.Action = entities.MatchActionGlobalMapping
		candidate.Confidence = mapping.Confidence
		// A global mapping carries no project scope; the contact's own
		// project supplies the vote, if it is one the user can see.
		if contact, cerr := r.contactRepo.GetByID(ctx, mapping.ContactID); cerr == nil && contact != nil {
			for _, pid := range scope.ProjectIDs {
				if pid == contact.ProjectID {
					candidate.ContactProjectID = &contact.ProjectID
					break
				}
			}
		}
		return candidate, nil
	}

	// Generic labels resolve only through an explicit mapping: a mapping for
	// "Speaker 1" is the user declaring who that label is. Without one the
	// label stays unidentified; name matching against a diarization artifact
	// would be meaningless.
	if IsGenericSpeaker(label) {
		if storageErrors == storageTiers {
			return candidate, entities.ErrResolutionUnavailable
		}
		candidate.Action = entities.MatchActionUnidentified
		return candidate, nil
	}

	// Tier: exact contact name
	storageTiers++
	contact, err := r.contactRepo.GetByNameInProjects(ctx, scope.ProjectIDs, label)
	if err != nil {
		storageErrors++
		if r.logger != nil {
			r.logger.Warn("⚠️ Exact name lookup failed", zap.String("label", label), zap.Error(err))
		}
	} else if contact != nil {
		candidate.ContactID = &contact.ID
		candidate.ContactProjectID = &contact.ProjectID
		candidate.Action = entities.MatchActionExactName
		candidate.Confidence = r.cfg.ExactNameConfidence
		return candidate, nil
	}

	// Tiers: alias and partial name share one contact fetch. A fetch error
	// counts as a miss for both.
	storageTiers++
	contacts, err := r.contactRepo.ListByProjects(ctx, scope.ProjectIDs)
	if err != nil {
		storageErrors++
		if r.logger != nil {
			r.logger.Warn("⚠️ Contact list fetch failed", zap.String("label", label), zap.Error(err))
		}
	} else {
		for i := range contacts {
			if contacts[i].MatchesAlias(label) {
				candidate.ContactID = &contacts[i].ID
				candidate.ContactProjectID = &contacts[i].ProjectID
				candidate.Action = entities.MatchActionAlias
				candidate.Confidence = r.cfg.AliasConfidence
				return candidate, nil
			}
		}
		for i := range contacts {
			if contacts[i].MatchesPartialName(label) {
				candidate.ContactID = &contacts[i].ID
				candidate.ContactProjectID = &contacts[i].ProjectID
				candidate.Action = entities.MatchActionPartialName
				candidate.Confidence = r.cfg.PartialNameConfidence
				return candidate, nil
			}
		}
	}

	if storageErrors == storageTiers {
		return candidate, entities.ErrResolutionUnavailable
	}

	candidate.Action = entities.MatchActionNoMatch
	return candidate, nil
}

// ResolveAll runs the cascade for every speaker label and aggregates the
// outcome.
func (r *IdentityResolver) ResolveAll(ctx context.Context, labels []string, scope Scope) (*entities.ResolveSummary, error) {
	summary := &entities.ResolveSummary{
		Candidates: make([]entities.ContactCandidate, 0, len(labels)),
		AllMatched: true,
	}

	for _, label := range labels {
		candidate, err := r.Resolve(ctx, label, scope)
		if err != nil {
			return nil, err
		}
		summary.Candidates = append(summary.Candidates, candidate)
		if candidate.Action == entities.MatchActionUnidentified {
			summary.HasUnidentified = true
		}
		if candidate.Matched() {
			summary.MatchedCount++
		} else {
			summary.AllMatched = false
		}
	}

	return summary, nil
}
