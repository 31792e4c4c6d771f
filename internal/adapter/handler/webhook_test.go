package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetsync-team/meetsync/internal/domain/entities"
	"github.com/meetsync-team/meetsync/internal/infrastructure/cache"
	"github.com/meetsync-team/meetsync/internal/usecase/ingest"
)

type fakeWebhookConfigRepo struct {
	configs map[string]*entities.WebhookConfig
}

func (f *fakeWebhookConfigRepo) Create(ctx context.Context, config *entities.WebhookConfig) error {
	f.configs[config.Token] = config
	return nil
}

func (f *fakeWebhookConfigRepo) Update(ctx context.Context, config *entities.WebhookConfig) error {
	return nil
}

func (f *fakeWebhookConfigRepo) GetByToken(ctx context.Context, token string) (*entities.WebhookConfig, error) {
	return f.configs[token], nil
}

func (f *fakeWebhookConfigRepo) GetByUser(ctx context.Context, userID uuid.UUID) (*entities.WebhookConfig, error) {
	for _, cfg := range f.configs {
		if cfg.UserID == userID {
			return cfg, nil
		}
	}
	return nil, nil
}

func (f *fakeWebhookConfigRepo) RecordEvent(ctx context.Context, id uuid.UUID) error { return nil }

type fakeTranscriptStore struct {
	mu     sync.Mutex
	events map[string]*entities.TranscriptEvent
}

func tripleKey(userID uuid.UUID, meetingID string, kind entities.EventKind) string {
	return userID.String() + "|" + meetingID + "|" + string(kind)
}

func (f *fakeTranscriptStore) Create(ctx context.Context, e *entities.TranscriptEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events[tripleKey(e.UserID, e.ExternalMeetingID, e.EventKind)] = e
	return nil
}

func (f *fakeTranscriptStore) GetByID(ctx context.Context, id uuid.UUID) (*entities.TranscriptEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.events {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, nil
}

func (f *fakeTranscriptStore) FindByDedupKey(ctx context.Context, userID uuid.UUID, meetingID string, kind entities.EventKind) (*entities.TranscriptEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.events[tripleKey(userID, meetingID, kind)], nil
}

func (f *fakeTranscriptStore) ListByStatus(ctx context.Context, userID uuid.UUID, status entities.TranscriptStatus, limit int) ([]entities.TranscriptEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entities.TranscriptEvent
	for _, e := range f.events {
		if e.UserID == userID && e.Status == status {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeTranscriptStore) ListStalled(ctx context.Context, maxRetries int, cutoff time.Time, limit int) ([]entities.TranscriptEvent, error) {
	return nil, nil
}

func (f *fakeTranscriptStore) ListRetryable(ctx context.Context, statuses []entities.TranscriptStatus, maxRetries int, cutoff time.Time, limit int) ([]entities.TranscriptEvent, error) {
	return nil, nil
}

func (f *fakeTranscriptStore) StampRetry(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.events {
		if e.ID == id {
			now := time.Now()
			e.RetryCount++
			e.LastRetryAt = &now
			e.UpdatedAt = now
		}
	}
	return nil
}

func (f *fakeTranscriptStore) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.TranscriptStatus, reason *string) error {
	return nil
}

func (f *fakeTranscriptStore) UpdateResolution(ctx context.Context, id uuid.UUID, status entities.TranscriptStatus, reason *string, projectID *uuid.UUID) error {
	return nil
}

func (f *fakeTranscriptStore) AssignProject(ctx context.Context, id uuid.UUID, projectID uuid.UUID, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.events {
		if e.ID == id {
			e.MatchedProjectID = &projectID
			e.StatusReason = &reason
		}
	}
	return nil
}

func (f *fakeTranscriptStore) CountByStatus(ctx context.Context) (map[entities.TranscriptStatus]int64, error) {
	return nil, nil
}

func (f *fakeTranscriptStore) CountRetryExhausted(ctx context.Context, maxRetries int) (int64, error) {
	return 0, nil
}

type noopPipeline struct{}

func (noopPipeline) ProcessPending(ctx context.Context, transcriptID uuid.UUID, force bool) error {
	return nil
}

type webhookFixture struct {
	handler    *Webhook
	dispatcher *ingest.Dispatcher
	store      *fakeTranscriptStore
}

func newWebhookFixture(t *testing.T, configs ...*entities.WebhookConfig) *webhookFixture {
	t.Helper()

	configRepo := &fakeWebhookConfigRepo{configs: make(map[string]*entities.WebhookConfig)}
	for _, cfg := range configs {
		configRepo.configs[cfg.Token] = cfg
	}
	store := &fakeTranscriptStore{events: make(map[string]*entities.TranscriptEvent)}
	dispatcher := ingest.NewDispatcher(1, 8, nil)
	gateway := ingest.NewService(configRepo, store, noopPipeline{}, dispatcher, cache.NewMemoryStore(), nil, nil)

	return &webhookFixture{
		handler:    NewWebhook(gateway, nil),
		dispatcher: dispatcher,
		store:      store,
	}
}

func activeConfig(token string) *entities.WebhookConfig {
	return &entities.WebhookConfig{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		Token:         token,
		Active:        true,
		EnabledEvents: []string{string(entities.EventKindTranscriptCreated)},
	}
}

func postEvent(t *testing.T, fx *webhookFixture, token, authHeader, body string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/hooks/meeting/"+token, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/hooks/meeting/:token")
	c.SetParamNames("token")
	c.SetParamValues(token)

	require.NoError(t, fx.handler.HandleEvent(c))
	return rec
}

type eventEnvelopeBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Status       string     `json:"status"`
		TranscriptID *uuid.UUID `json:"transcript_id"`
	} `json:"data"`
}

const transcriptCreatedBody = `{
	"event": "transcript.created",
	"meeting_id": "ext-meeting-1",
	"title": "Sprint planning",
	"speakers": ["Alice Nguyen", "Bob Tran"],
	"transcript": "Alice: let's start."
}`

func TestHandleEventQueuesNewTranscript(t *testing.T) {
	cfg := activeConfig("tok-queue")
	fx := newWebhookFixture(t, cfg)
	defer fx.dispatcher.Stop()

	rec := postEvent(t, fx, cfg.Token, "", transcriptCreatedBody)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var body eventEnvelopeBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(ingest.OutcomeQueued), body.Data.Status)
	require.NotNil(t, body.Data.TranscriptID)

	stored, err := fx.store.FindByDedupKey(context.Background(), cfg.UserID, "ext-meeting-1", entities.EventKindTranscriptCreated)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, *body.Data.TranscriptID, stored.ID)
}

func TestHandleEventDuplicateReturnsOK(t *testing.T) {
	cfg := activeConfig("tok-dup")
	fx := newWebhookFixture(t, cfg)
	defer fx.dispatcher.Stop()

	first := postEvent(t, fx, cfg.Token, "", transcriptCreatedBody)
	assert.Equal(t, http.StatusCreated, first.Code)

	second := postEvent(t, fx, cfg.Token, "", transcriptCreatedBody)
	assert.Equal(t, http.StatusOK, second.Code)

	var firstBody, secondBody eventEnvelopeBody
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &firstBody))
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &secondBody))
	assert.Equal(t, string(ingest.OutcomeDuplicate), secondBody.Data.Status)
	assert.Equal(t, firstBody.Data.TranscriptID, secondBody.Data.TranscriptID)
}

func TestHandleEventGenericSpeakersQuarantined(t *testing.T) {
	cfg := activeConfig("tok-generic")
	fx := newWebhookFixture(t, cfg)
	defer fx.dispatcher.Stop()

	body := `{"event":"transcript.created","meeting_id":"ext-2","speakers":["Speaker 1","Alice Nguyen"]}`
	rec := postEvent(t, fx, cfg.Token, "", body)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var resp eventEnvelopeBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(ingest.OutcomeQuarantined), resp.Data.Status)
}

func TestHandleEventUnknownToken(t *testing.T) {
	fx := newWebhookFixture(t)
	defer fx.dispatcher.Stop()

	rec := postEvent(t, fx, "nope", "", transcriptCreatedBody)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["message"])
}

func TestHandleEventSecretEnforced(t *testing.T) {
	cfg := activeConfig("tok-secret")
	secret := "s3cr3t"
	cfg.Secret = &secret
	fx := newWebhookFixture(t, cfg)
	defer fx.dispatcher.Stop()

	rec := postEvent(t, fx, cfg.Token, "wrong", transcriptCreatedBody)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = postEvent(t, fx, cfg.Token, secret, transcriptCreatedBody)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestHandleEventMissingEventKind(t *testing.T) {
	cfg := activeConfig("tok-kind")
	fx := newWebhookFixture(t, cfg)
	defer fx.dispatcher.Stop()

	rec := postEvent(t, fx, cfg.Token, "", `{"meeting_id":"ext-3"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleEventDisabledKindIgnored(t *testing.T) {
	cfg := activeConfig("tok-ignored")
	fx := newWebhookFixture(t, cfg)
	defer fx.dispatcher.Stop()

	body := `{"event":"notes.generated","meeting_id":"ext-4","notes":"hello"}`
	rec := postEvent(t, fx, cfg.Token, "", body)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp eventEnvelopeBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(ingest.OutcomeIgnored), resp.Data.Status)
	assert.Nil(t, resp.Data.TranscriptID)
}
