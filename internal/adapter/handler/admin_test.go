package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetsync-team/meetsync/internal/domain/entities"
	"github.com/meetsync-team/meetsync/internal/infrastructure/http/middleware"
	"github.com/meetsync-team/meetsync/internal/usecase/scheduler"
	"github.com/meetsync-team/meetsync/pkg/config"
	pkgvalidator "github.com/meetsync-team/meetsync/pkg/validator"
)

type fakeMappingStore struct {
	mappings map[uuid.UUID]*entities.SpeakerMapping
}

func (f *fakeMappingStore) Create(ctx context.Context, m *entities.SpeakerMapping) error {
	f.mappings[m.ID] = m
	return nil
}

func (f *fakeMappingStore) GetByID(ctx context.Context, id uuid.UUID) (*entities.SpeakerMapping, error) {
	return f.mappings[id], nil
}

func (f *fakeMappingStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]entities.SpeakerMapping, error) {
	var out []entities.SpeakerMapping
	for _, m := range f.mappings {
		if m.UserID == userID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeMappingStore) Deactivate(ctx context.Context, id, userID uuid.UUID) error {
	m := f.mappings[id]
	if m == nil || m.UserID != userID || !m.Active {
		return entities.ErrMappingNotFound
	}
	m.Active = false
	return nil
}

func (f *fakeMappingStore) FindActiveProjectScoped(ctx context.Context, userID uuid.UUID, label string, projectIDs []uuid.UUID) (*entities.SpeakerMapping, error) {
	return nil, nil
}

func (f *fakeMappingStore) FindActiveGlobal(ctx context.Context, userID uuid.UUID, label string) (*entities.SpeakerMapping, error) {
	return nil, nil
}

func (f *fakeMappingStore) HasMappingForLabel(ctx context.Context, userID uuid.UUID, label string, projectIDs []uuid.UUID) (bool, error) {
	return false, nil
}

type fakeProjectStore struct{}

func (fakeProjectStore) GetByID(ctx context.Context, id uuid.UUID) (*entities.Project, error) {
	return nil, nil
}

func (fakeProjectStore) ListProjectIDsByUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return []uuid.UUID{uuid.New()}, nil
}

type fakeRetryDriver struct {
	pendingCalls  []uuid.UUID
	assignedCalls []uuid.UUID
}

func (f *fakeRetryDriver) ProcessPending(ctx context.Context, id uuid.UUID, force bool) error {
	f.pendingCalls = append(f.pendingCalls, id)
	return nil
}

func (f *fakeRetryDriver) ProcessAssigned(ctx context.Context, id uuid.UUID) error {
	f.assignedCalls = append(f.assignedCalls, id)
	return nil
}

type adminFixture struct {
	handler  *Admin
	store    *fakeTranscriptStore
	mappings *fakeMappingStore
	driver   *fakeRetryDriver
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()

	store := &fakeTranscriptStore{events: make(map[string]*entities.TranscriptEvent)}
	mappings := &fakeMappingStore{mappings: make(map[uuid.UUID]*entities.SpeakerMapping)}
	driver := &fakeRetryDriver{}
	schedCfg := &config.SchedulerConfig{Interval: time.Hour, MaxRetries: 10, BatchSize: 50}
	resolverCfg := &config.ResolverConfig{ProjectMappingConfidence: 0.95, GlobalMappingConfidence: 0.90}
	retries := scheduler.NewScheduler(store, mappings, fakeProjectStore{}, driver, nil, schedCfg, nil)

	return &adminFixture{
		handler:  NewAdmin(nil, mappings, store, retries, resolverCfg, schedCfg, nil),
		store:    store,
		mappings: mappings,
		driver:   driver,
	}
}

func adminContext(method, target, body string, userID uuid.UUID) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = pkgvalidator.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.UserIDContextKey, userID)
	return c, rec
}

func quarantinedFor(userID uuid.UUID, meetingID string, speakers ...string) *entities.TranscriptEvent {
	e := entities.NewTranscriptEvent(userID, meetingID, entities.EventKindTranscriptCreated)
	e.Speakers = speakers
	e.MarkQuarantined(entities.ReasonUnidentifiedSpeakers)
	return e
}

func TestListTranscriptsReturnsOnlyCallersRecords(t *testing.T) {
	fx := newAdminFixture(t)
	caller, other := uuid.New(), uuid.New()

	mine := quarantinedFor(caller, "ext-mine", "Speaker 1")
	theirs := quarantinedFor(other, "ext-theirs", "Speaker 2")
	require.NoError(t, fx.store.Create(context.Background(), mine))
	require.NoError(t, fx.store.Create(context.Background(), theirs))

	c, rec := adminContext(http.MethodGet, "/v1/transcripts?status=quarantine", "", caller)
	require.NoError(t, fx.handler.ListTranscripts(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data []entities.TranscriptEvent `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, mine.ID, body.Data[0].ID)
}

func TestAssignProjectRejectsOtherUsersTranscript(t *testing.T) {
	fx := newAdminFixture(t)
	caller, owner := uuid.New(), uuid.New()

	event := entities.NewTranscriptEvent(owner, "ext-1", entities.EventKindTranscriptCreated)
	event.Speakers = []string{"Alice Nguyen"}
	event.MarkAmbiguous(entities.ReasonAmbiguousProject)
	require.NoError(t, fx.store.Create(context.Background(), event))

	projectID := uuid.New()
	reqBody := `{"project_id":"` + projectID.String() + `"}`

	c, rec := adminContext(http.MethodPost, "/v1/transcripts/"+event.ID.String()+"/assign-project", reqBody, caller)
	c.SetParamNames("id")
	c.SetParamValues(event.ID.String())
	require.NoError(t, fx.handler.AssignProject(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Nil(t, event.MatchedProjectID)

	// The owner can assign.
	c, rec = adminContext(http.MethodPost, "/v1/transcripts/"+event.ID.String()+"/assign-project", reqBody, owner)
	c.SetParamNames("id")
	c.SetParamValues(event.ID.String())
	require.NoError(t, fx.handler.AssignProject(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, event.MatchedProjectID)
	assert.Equal(t, projectID, *event.MatchedProjectID)
}

func TestRetryTranscriptRejectsOtherUsersTranscript(t *testing.T) {
	fx := newAdminFixture(t)
	caller, owner := uuid.New(), uuid.New()

	event := quarantinedFor(owner, "ext-1", "Alice Nguyen")
	require.NoError(t, fx.store.Create(context.Background(), event))

	c, rec := adminContext(http.MethodPost, "/v1/transcripts/"+event.ID.String()+"/retry", "", caller)
	c.SetParamNames("id")
	c.SetParamValues(event.ID.String())
	require.NoError(t, fx.handler.RetryTranscript(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Zero(t, event.RetryCount)
	assert.Empty(t, fx.driver.pendingCalls)

	c, rec = adminContext(http.MethodPost, "/v1/transcripts/"+event.ID.String()+"/retry", "", owner)
	c.SetParamNames("id")
	c.SetParamValues(event.ID.String())
	require.NoError(t, fx.handler.RetryTranscript(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, event.RetryCount)
	require.Len(t, fx.driver.pendingCalls, 1)
	assert.Equal(t, event.ID, fx.driver.pendingCalls[0])
}

func TestDeactivateSpeakerMappingScopedToCaller(t *testing.T) {
	fx := newAdminFixture(t)
	caller, owner := uuid.New(), uuid.New()

	mapping := entities.NewSpeakerMapping(owner, nil, "Speaker 1", uuid.New(), 0.9)
	fx.mappings.mappings[mapping.ID] = mapping

	c, rec := adminContext(http.MethodDelete, "/v1/speaker-mappings/"+mapping.ID.String(), "", caller)
	c.SetParamNames("id")
	c.SetParamValues(mapping.ID.String())
	require.NoError(t, fx.handler.DeactivateSpeakerMapping(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.True(t, mapping.Active)

	c, rec = adminContext(http.MethodDelete, "/v1/speaker-mappings/"+mapping.ID.String(), "", owner)
	c.SetParamNames("id")
	c.SetParamValues(mapping.ID.String())
	require.NoError(t, fx.handler.DeactivateSpeakerMapping(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, mapping.Active)
}
