package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirelink/messaging-api/internal/config"
	"github.com/hirelink/messaging-api/internal/domain/messaging"
	"github.com/hirelink/messaging-api/internal/infrastructure/auth"
	"github.com/hirelink/messaging-api/internal/infrastructure/inmemory"
	"github.com/hirelink/messaging-api/internal/infrastructure/lock"
	"github.com/hirelink/messaging-api/internal/interfaces/httpserver"
	"github.com/hirelink/messaging-api/internal/utils/platformerrors"
)

type testServer struct {
	handler  http.Handler
	evidence *inmemory.Evidence
}

func newTestServer(t *testing.T, ready httpserver.ReadinessCheck) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		ServiceName:        "messaging-api-test",
		Environment:        "test",
		CORSAllowedOrigins: []string{"https://app.example"},
		StorageBackend:     config.StorageBackendMemory,
	}
	log := zerolog.Nop()
	now := func() time.Time { return time.Now().UTC() }

	evidence := inmemory.NewEvidence()
	conversations := inmemory.NewConversationStore()
	messages := inmemory.NewMessageStore()

	policy := messaging.NewAccessPolicy(evidence)
	resolver := messaging.NewContextResolver(evidence, now)
	messageService := messaging.NewMessageService(conversations, messages, inmemory.Transactor{}, log, now)
	projector := messaging.NewConversationListProjector(conversations, messages, evidence, evidence, log)
	service := messaging.NewService(conversations, evidence, evidence, policy, resolver, messageService, projector, lock.NoopPairLocker{}, log, now)

	validator, err := auth.NewValidator(context.Background(), cfg, log)
	require.NoError(t, err)

	server := httpserver.New(cfg, log, service, validator, ready)
	return &testServer{handler: server.Handler(), evidence: evidence}
}

func (s *testServer) do(t *testing.T, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(auth.UserIDHeader, userID)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestCoreRoutes(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	rec = srv.do(t, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	failing := newTestServer(t, func(context.Context) error { return errors.New("db down") })
	rec = failing.do(t, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/v1/conversations", nil)
	req.Header.Set("Origin", "https://app.example")
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestV1RequiresCaller(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.do(t, http.MethodGet, "/v1/conversations", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestConversationFlow(t *testing.T) {
	srv := newTestServer(t, nil)
	candidate := srv.evidence.AddCandidate("cand", "Lan Nguyen", "")
	recruiter := srv.evidence.AddRecruiter("rec", "Minh Tran", messaging.Company{Name: "Acme"})
	srv.evidence.AddJob(recruiter.ID, "job-1", "Backend Engineer")
	srv.evidence.AddApplication(candidate.ID, "job-1", messaging.ApplicationStatusReviewing, time.Now().UTC().Add(-time.Hour))

	rec := srv.do(t, http.MethodGet, "/v1/access/cand", "rec", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decision := decode[messaging.AccessDecision](t, rec)
	assert.True(t, decision.CanMessage)
	assert.Equal(t, messaging.ReasonHasApplication, decision.Reason)

	rec = srv.do(t, http.MethodPost, "/v1/conversations", "rec", map[string]string{"userId": "cand"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	conv := decode[messaging.Conversation](t, rec)
	require.NotNil(t, conv.Context)
	assert.Equal(t, messaging.ContextTypeApplication, conv.Context.Type)
	assert.Equal(t, "Backend Engineer", conv.Context.Title)

	rec = srv.do(t, http.MethodPost, "/v1/conversations", "cand", map[string]string{"userId": "rec"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, conv.ID, decode[messaging.Conversation](t, rec).ID)

	rec = srv.do(t, http.MethodPost, "/v1/conversations/"+conv.ID+"/messages", "rec", map[string]string{"content": "  Hello Lan  "})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	msg := decode[messaging.Message](t, rec)
	assert.Equal(t, "Hello Lan", msg.Content)
	assert.Equal(t, "cand", msg.RecipientID)

	rec = srv.do(t, http.MethodGet, "/v1/conversations", "cand", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[messaging.ConversationPage](t, rec)
	require.Len(t, page.Items, 1)
	assert.Equal(t, int64(1), page.Items[0].UnreadCount)
	assert.Equal(t, "Acme", page.Items[0].OtherParticipant.Name)

	rec = srv.do(t, http.MethodPost, "/v1/conversations/"+conv.ID+"/read", "cand", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"updated":1}`, rec.Body.String())

	rec = srv.do(t, http.MethodGet, "/v1/conversations/"+conv.ID+"/messages?limit=10", "cand", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodGet, "/v1/conversations/"+conv.ID, "outsider", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestOpenConversationErrors(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.evidence.AddCandidate("cand", "Lan Nguyen", "")
	srv.evidence.AddRecruiter("rec", "Minh Tran", messaging.Company{Name: "Acme"})

	rec := srv.do(t, http.MethodPost, "/v1/conversations", "rec", map[string]string{"userId": "cand"})
	require.Equal(t, http.StatusForbidden, rec.Code)
	body := decode[platformerrors.HTTPErrorResponse](t, rec)
	require.NotNil(t, body.Error)
	assert.Equal(t, string(messaging.ReasonNoAccess), body.Error.Reason)

	rec = srv.do(t, http.MethodPost, "/v1/conversations", "rec", map[string]string{"userId": "rec"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = srv.do(t, http.MethodPost, "/v1/conversations", "rec", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodGet, "/v1/conversations?page=0", "rec", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
