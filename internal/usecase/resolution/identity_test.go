package resolution

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetsync-team/meetsync/internal/domain/entities"
	"github.com/meetsync-team/meetsync/pkg/config"
)

type fakeMappingRepo struct {
	projectScoped map[string]*entities.SpeakerMapping
	global        map[string]*entities.SpeakerMapping
	err           error
}

func (f *fakeMappingRepo) Create(ctx context.Context, m *entities.SpeakerMapping) error { return nil }
func (f *fakeMappingRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.SpeakerMapping, error) {
	return nil, nil
}
func (f *fakeMappingRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]entities.SpeakerMapping, error) {
	return nil, nil
}
func (f *fakeMappingRepo) Deactivate(ctx context.Context, id, userID uuid.UUID) error { return nil }

func (f *fakeMappingRepo) FindActiveProjectScoped(ctx context.Context, userID uuid.UUID, label string, projectIDs []uuid.UUID) (*entities.SpeakerMapping, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.projectScoped[entities.NormalizeSpeakerLabel(label)], nil
}

func (f *fakeMappingRepo) FindActiveGlobal(ctx context.Context, userID uuid.UUID, label string) (*entities.SpeakerMapping, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.global[entities.NormalizeSpeakerLabel(label)], nil
}

func (f *fakeMappingRepo) HasMappingForLabel(ctx context.Context, userID uuid.UUID, label string, projectIDs []uuid.UUID) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	normalized := entities.NormalizeSpeakerLabel(label)
	_, scoped := f.projectScoped[normalized]
	_, global := f.global[normalized]
	return scoped || global, nil
}

type fakeContactRepo struct {
	contacts []entities.Contact
	err      error
}

func (f *fakeContactRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.Contact, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.contacts {
		if f.contacts[i].ID == id {
			return &f.contacts[i], nil
		}
	}
	return nil, nil
}

func (f *fakeContactRepo) GetByNameInProjects(ctx context.Context, projectIDs []uuid.UUID, name string) (*entities.Contact, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.contacts {
		if entities.NormalizeSpeakerLabel(f.contacts[i].Name) == entities.NormalizeSpeakerLabel(name) {
			return &f.contacts[i], nil
		}
	}
	return nil, nil
}

func (f *fakeContactRepo) ListByProjects(ctx context.Context, projectIDs []uuid.UUID) ([]entities.Contact, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.contacts, nil
}

func resolverConfig() *config.ResolverConfig {
	return &config.ResolverConfig{
		ProjectMappingConfidence: 0.95,
		GlobalMappingConfidence:  0.90,
		ExactNameConfidence:      0.85,
		AliasConfidence:          0.85,
		PartialNameConfidence:    0.60,
		VoteThreshold:            0.70,
		VoteEpsilon:              1e-9,
	}
}

func newTestResolver(mappings *fakeMappingRepo, contacts *fakeContactRepo) *IdentityResolver {
	return NewIdentityResolver(mappings, contacts, resolverConfig(), nil)
}

func TestResolveGenericLabelWithoutMappingStaysUnidentified(t *testing.T) {
	projectID := uuid.New()
	// A contact literally named "Speaker 1" must not match; name tiers never
	// apply to diarization artifacts.
	contacts := &fakeContactRepo{contacts: []entities.Contact{
		{ID: uuid.New(), ProjectID: projectID, Name: "Speaker 1"},
	}}
	resolver := newTestResolver(&fakeMappingRepo{}, contacts)

	candidate, err := resolver.Resolve(context.Background(), "Speaker 1", Scope{
		UserID:     uuid.New(),
		ProjectIDs: []uuid.UUID{projectID},
	})
	require.NoError(t, err)
	assert.Equal(t, entities.MatchActionUnidentified, candidate.Action)
	assert.Nil(t, candidate.ContactID)
	assert.Zero(t, candidate.Confidence)
}

func TestResolveGenericLabelResolvesThroughExplicitMapping(t *testing.T) {
	projectID := uuid.New()
	contactID := uuid.New()
	mappings := &fakeMappingRepo{
		projectScoped: map[string]*entities.SpeakerMapping{
			"speaker 1": {ContactID: contactID, ProjectID: &projectID, Confidence: 0.95},
		},
	}
	resolver := newTestResolver(mappings, &fakeContactRepo{})

	// The mapping is the user declaring who "Speaker 1" is.
	candidate, err := resolver.Resolve(context.Background(), "Speaker 1", Scope{
		UserID:     uuid.New(),
		ProjectIDs: []uuid.UUID{projectID},
	})
	require.NoError(t, err)
	assert.Equal(t, entities.MatchActionProjectMapping, candidate.Action)
	assert.Equal(t, &contactID, candidate.ContactID)
	assert.Equal(t, 0.95, candidate.Confidence)
}

func TestResolveGenericLabelGlobalMapping(t *testing.T) {
	projectID := uuid.New()
	contact := entities.Contact{ID: uuid.New(), ProjectID: projectID, Name: "Alice Nguyen"}
	mappings := &fakeMappingRepo{
		global: map[string]*entities.SpeakerMapping{
			"speaker 2": {ContactID: contact.ID, Confidence: 0.90},
		},
	}
	resolver := newTestResolver(mappings, &fakeContactRepo{contacts: []entities.Contact{contact}})

	candidate, err := resolver.Resolve(context.Background(), "Speaker 2", Scope{
		UserID:     uuid.New(),
		ProjectIDs: []uuid.UUID{projectID},
	})
	require.NoError(t, err)
	assert.Equal(t, entities.MatchActionGlobalMapping, candidate.Action)
	require.NotNil(t, candidate.ContactProjectID)
	assert.Equal(t, projectID, *candidate.ContactProjectID)
}

func TestResolveGenericLabelMappingOutageSurfacesError(t *testing.T) {
	mappings := &fakeMappingRepo{err: errors.New("connection refused")}
	resolver := newTestResolver(mappings, &fakeContactRepo{})

	// Both mapping tiers errored; without them an unmapped generic label
	// cannot be distinguished from a mapped one.
	_, err := resolver.Resolve(context.Background(), "Speaker 1", Scope{UserID: uuid.New()})
	assert.ErrorIs(t, err, entities.ErrResolutionUnavailable)
}

func TestResolveProjectMappingBeatsGlobal(t *testing.T) {
	projectID := uuid.New()
	projectContact := uuid.New()
	globalContact := uuid.New()
	mappings := &fakeMappingRepo{
		projectScoped: map[string]*entities.SpeakerMapping{
			"alice": {ContactID: projectContact, ProjectID: &projectID, Confidence: 0.80},
		},
		global: map[string]*entities.SpeakerMapping{
			"alice": {ContactID: globalContact, Confidence: 0.99},
		},
	}
	resolver := newTestResolver(mappings, &fakeContactRepo{})

	candidate, err := resolver.Resolve(context.Background(), "Alice", Scope{
		UserID:     uuid.New(),
		ProjectIDs: []uuid.UUID{projectID},
	})
	require.NoError(t, err)
	assert.Equal(t, entities.MatchActionProjectMapping, candidate.Action)
	assert.Equal(t, &projectContact, candidate.ContactID)
	// Stored mapping confidence wins over the tier default.
	assert.Equal(t, 0.80, candidate.Confidence)
}

func TestResolveGlobalMappingCarriesContactProject(t *testing.T) {
	projectID := uuid.New()
	contact := entities.Contact{ID: uuid.New(), ProjectID: projectID, Name: "Alice Nguyen"}
	mappings := &fakeMappingRepo{
		global: map[string]*entities.SpeakerMapping{
			"alice": {ContactID: contact.ID, Confidence: 0.90},
		},
	}
	resolver := newTestResolver(mappings, &fakeContactRepo{contacts: []entities.Contact{contact}})

	candidate, err := resolver.Resolve(context.Background(), "Alice", Scope{
		UserID:     uuid.New(),
		ProjectIDs: []uuid.UUID{projectID},
	})
	require.NoError(t, err)
	assert.Equal(t, entities.MatchActionGlobalMapping, candidate.Action)
	require.NotNil(t, candidate.ContactProjectID)
	assert.Equal(t, projectID, *candidate.ContactProjectID)
}

func TestResolveNameTiers(t *testing.T) {
	projectID := uuid.New()
	contacts := &fakeContactRepo{contacts: []entities.Contact{
		{ID: uuid.New(), ProjectID: projectID, Name: "Alice Nguyen", Aliases: []string{"Ali"}},
		{ID: uuid.New(), ProjectID: projectID, Name: "Bob Tran"},
	}}
	resolver := newTestResolver(&fakeMappingRepo{}, contacts)
	scope := Scope{UserID: uuid.New(), ProjectIDs: []uuid.UUID{projectID}}

	exact, err := resolver.Resolve(context.Background(), "alice nguyen", scope)
	require.NoError(t, err)
	assert.Equal(t, entities.MatchActionExactName, exact.Action)
	assert.Equal(t, 0.85, exact.Confidence)

	alias, err := resolver.Resolve(context.Background(), "Ali", scope)
	require.NoError(t, err)
	assert.Equal(t, entities.MatchActionAlias, alias.Action)
	assert.Equal(t, 0.85, alias.Confidence)

	partial, err := resolver.Resolve(context.Background(), "Bob", scope)
	require.NoError(t, err)
	assert.Equal(t, entities.MatchActionPartialName, partial.Action)
	assert.Equal(t, 0.60, partial.Confidence)

	miss, err := resolver.Resolve(context.Background(), "Charlie", scope)
	require.NoError(t, err)
	assert.Equal(t, entities.MatchActionNoMatch, miss.Action)
	assert.Nil(t, miss.ContactID)
}

func TestResolveStorageErrorAtOneTierFallsThrough(t *testing.T) {
	projectID := uuid.New()
	mappings := &fakeMappingRepo{err: errors.New("connection refused")}
	contacts := &fakeContactRepo{contacts: []entities.Contact{
		{ID: uuid.New(), ProjectID: projectID, Name: "Alice Nguyen"},
	}}
	resolver := newTestResolver(mappings, contacts)

	candidate, err := resolver.Resolve(context.Background(), "Alice Nguyen", Scope{
		UserID:     uuid.New(),
		ProjectIDs: []uuid.UUID{projectID},
	})
	require.NoError(t, err)
	assert.Equal(t, entities.MatchActionExactName, candidate.Action)
}

func TestResolveTotalOutageSurfacesError(t *testing.T) {
	mappings := &fakeMappingRepo{err: errors.New("connection refused")}
	contacts := &fakeContactRepo{err: errors.New("connection refused")}
	resolver := newTestResolver(mappings, contacts)

	_, err := resolver.Resolve(context.Background(), "Alice", Scope{UserID: uuid.New()})
	assert.ErrorIs(t, err, entities.ErrResolutionUnavailable)
}

func TestResolveAllAggregates(t *testing.T) {
	projectID := uuid.New()
	contacts := &fakeContactRepo{contacts: []entities.Contact{
		{ID: uuid.New(), ProjectID: projectID, Name: "Alice Nguyen"},
	}}
	resolver := newTestResolver(&fakeMappingRepo{}, contacts)

	summary, err := resolver.ResolveAll(context.Background(),
		[]string{"Alice Nguyen", "Speaker 2", "Charlie"},
		Scope{UserID: uuid.New(), ProjectIDs: []uuid.UUID{projectID}})
	require.NoError(t, err)

	assert.Len(t, summary.Candidates, 3)
	assert.True(t, summary.HasUnidentified)
	assert.False(t, summary.AllMatched)
	assert.Equal(t, 1, summary.MatchedCount)
}
