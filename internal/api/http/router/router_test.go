package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/talkwell/federation/internal/api/http/handler"
	"github.com/talkwell/federation/internal/api/http/middleware"
	"github.com/talkwell/federation/internal/mocks"
	"github.com/talkwell/federation/internal/testutil"
)

type routerMocks struct {
	activities *mocks.ActivityHandler
	sender     *mocks.Sender
	keys       *mocks.PublicKeyProvider
	verifier   *mocks.RequestVerifier
	db         *mocks.Pinger
}

func newTestRouter(t *testing.T) (http.Handler, *routerMocks) {
	t.Helper()

	m := &routerMocks{
		activities: &mocks.ActivityHandler{},
		sender:     &mocks.Sender{},
		keys:       &mocks.PublicKeyProvider{},
		verifier:   &mocks.RequestVerifier{},
		db:         &mocks.Pinger{},
	}

	log := testutil.MakeNoopLogger()
	r := New(
		handler.NewInbox(m.activities, log),
		handler.NewOutbox(m.sender, log),
		handler.NewActor(m.keys, "https://local.example", log),
		middleware.NewSignature(m.verifier, log),
		middleware.NewLogging(log),
		m.db,
		log,
	)

	return r.Register(), m
}

func TestRouter_InboxRequiresSignature(t *testing.T) {
	h, m := newTestRouter(t)
	m.verifier.On("Verify", mock.Anything, mock.Anything).Return(false).Once()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/inbox", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	m.activities.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
}

func TestRouter_VerifiedInboxReachesHandler(t *testing.T) {
	h, m := newTestRouter(t)
	m.verifier.On("Verify", mock.Anything, mock.Anything).Return(true).Once()
	m.activities.On("Handle", mock.Anything, mock.Anything).Return(nil).Once()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/inbox", strings.NewReader(`{"type":"Create"}`)))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	m.activities.AssertExpectations(t)
}

func TestRouter_OutboxRequiresSignature(t *testing.T) {
	h, m := newTestRouter(t)
	m.verifier.On("Verify", mock.Anything, mock.Anything).Return(false).Once()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/outbox/42", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	m.sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRouter_KeyDocumentsAreUnauthenticated(t *testing.T) {
	h, m := newTestRouter(t)
	m.keys.On("GetPublicKey", mock.Anything, mock.Anything).Return("pem", nil).Twice()

	for _, path := range []string{"/actor", "/uid/7"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, "path %s", path)
	}
	m.verifier.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
}

func TestRouter_Healthz(t *testing.T) {
	h, m := newTestRouter(t)
	m.db.On("Ping", mock.Anything).Return(nil).Once()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_HealthzUnhealthy(t *testing.T) {
	h, m := newTestRouter(t)
	m.db.On("Ping", mock.Anything).Return(assert.AnError).Once()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRouter_Metrics(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}
