// ABOUTME: Tests for the REST families against an httptest backend
// ABOUTME: Verifies paths, verbs, lastUpdated stamping and error normalization
package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/keyaccounts/crmerr"
	"github.com/harperreed/keyaccounts/models"
)

type recordedRequest struct {
	Method    string
	Path      string
	Body      map[string]any
	RequestID string
	Auth      string
}

type fakeBackend struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   int
	response string
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	rec := recordedRequest{
		Method:    r.Method,
		Path:      r.URL.Path,
		RequestID: r.Header.Get(RequestIDHeader),
		Auth:      r.Header.Get("Authorization"),
	}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &rec.Body)
	}

	f.mu.Lock()
	f.requests = append(f.requests, rec)
	status, response := f.status, f.response
	f.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, response)
}

func (f *fakeBackend) last(t *testing.T) recordedRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests)
	return f.requests[len(f.requests)-1]
}

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestClient(t *testing.T, backend *fakeBackend, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	c, err := NewClient(srv.URL+"/api", opts...)
	require.NoError(t, err)
	return c
}

func TestNewClientDefaultsAndRejectsRelativeURL(t *testing.T) {
	c, err := NewClient("")
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.BaseURL())

	_, err = NewClient("not a url")
	require.Error(t, err)
	assert.True(t, crmerr.Is(err, crmerr.KindConfiguration))
	assert.Equal(t, crmerr.MsgConfiguration, err.Error())
}

func TestContactsGetAllSendsRequestID(t *testing.T) {
	backend := &fakeBackend{response: `[{"id":"c1","name":"Ada","title":"CTO","email":"ada@example.com","role":"Decision Maker"}]`}
	c := newTestClient(t, backend)

	contacts, err := c.Contacts().GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, models.RoleDecisionMaker, contacts[0].Role)

	req := backend.last(t)
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/api/contacts", req.Path)
	assert.NotEmpty(t, req.RequestID)
}

func TestBearerToken(t *testing.T) {
	backend := &fakeBackend{response: `[]`}
	c := newTestClient(t, backend, WithToken("s3cret"))

	_, err := c.Initiatives().GetAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer s3cret", backend.last(t).Auth)
}

func TestOpportunityUpdateSendsOnlyPatchAndStamp(t *testing.T) {
	backend := &fakeBackend{response: `{"id":"o1","name":"Deal","stage":"Proposal","status":"Active","probability":40}`}
	c := newTestClient(t, backend)

	stage := models.StageProposal
	opp, err := c.Opportunities().Update(context.Background(), "o1", models.OpportunityPatch{Stage: &stage})
	require.NoError(t, err)
	assert.Equal(t, models.StageProposal, opp.Stage)

	req := backend.last(t)
	assert.Equal(t, http.MethodPatch, req.Method)
	assert.Equal(t, "/api/opportunities/o1", req.Path)
	assert.Equal(t, "Proposal", req.Body["stage"])
	assert.Equal(t, fixedNow.Format(time.RFC3339), req.Body["lastUpdated"])
	assert.Len(t, req.Body, 2)
}

func TestOpportunityUpdateSendsClearedLists(t *testing.T) {
	backend := &fakeBackend{response: `{"id":"o1","name":"Deal","stage":"Proposal","status":"Active","products":[]}`}
	c := newTestClient(t, backend)

	account := "a2"
	_, err := c.Opportunities().Update(context.Background(), "o1", models.OpportunityPatch{
		Products:  []string{},
		AccountID: &account,
	})
	require.NoError(t, err)

	req := backend.last(t)
	require.Contains(t, req.Body, "products")
	assert.Equal(t, []any{}, req.Body["products"])
	assert.Equal(t, "a2", req.Body["accountId"])
	assert.NotContains(t, req.Body, "contactIds", "nil lists are left out")
	assert.NotContains(t, req.Body, "initiativeIds")
	assert.Len(t, req.Body, 3)
}

func TestOpportunityCreateStampsAndClamps(t *testing.T) {
	backend := &fakeBackend{response: `{"id":"o9","name":"Deal","stage":"Discovery","status":"Active","probability":100}`}
	c := newTestClient(t, backend)

	_, err := c.Opportunities().Create(context.Background(), models.Opportunity{
		Name:        "Deal",
		Stage:       models.StageDiscovery,
		Status:      models.OpportunityActive,
		Probability: 150,
		AccountID:   "a1",
	})
	require.NoError(t, err)

	req := backend.last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/api/opportunities", req.Path)
	assert.EqualValues(t, 100, req.Body["probability"])
	assert.Equal(t, fixedNow.Format(time.RFC3339), req.Body["lastUpdated"])
	assert.NotContains(t, req.Body, "id")
}

func TestRelationshipEndpoints(t *testing.T) {
	backend := &fakeBackend{}
	c := newTestClient(t, backend)
	ctx := context.Background()
	api := c.Initiatives()

	tests := []struct {
		name   string
		call   func() error
		method string
		path   string
	}{
		{"add contact", func() error { return api.AddContact(ctx, "i1", "c1") }, http.MethodPost, "/api/initiatives/i1/contacts/c1"},
		{"remove contact", func() error { return api.RemoveContact(ctx, "i1", "c1") }, http.MethodDelete, "/api/initiatives/i1/contacts/c1"},
		{"add opportunity", func() error { return api.AddOpportunity(ctx, "i1", "o1") }, http.MethodPost, "/api/initiatives/i1/opportunities/o1"},
		{"remove opportunity", func() error { return api.RemoveOpportunity(ctx, "i1", "o1") }, http.MethodDelete, "/api/initiatives/i1/opportunities/o1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.call())
			req := backend.last(t)
			assert.Equal(t, tt.method, req.Method)
			assert.Equal(t, tt.path, req.Path)
		})
	}
}

func TestGetByAccountPath(t *testing.T) {
	backend := &fakeBackend{response: `[]`}
	c := newTestClient(t, backend)

	_, err := c.Initiatives().GetByAccount(context.Background(), "a 1")
	require.NoError(t, err)
	assert.Equal(t, "/api/accounts/a 1/initiatives", backend.last(t).Path)
}

func TestServerErrorMessages(t *testing.T) {
	backend := &fakeBackend{status: http.StatusBadRequest, response: `{"message":"name is taken"}`}
	c := newTestClient(t, backend)

	_, err := c.Contacts().GetByID(context.Background(), "c1")
	require.Error(t, err)
	assert.Equal(t, "name is taken", err.Error())
	var cerr *crmerr.Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, crmerr.KindServer, cerr.Kind)
	assert.Equal(t, http.StatusBadRequest, cerr.Status)

	backend.status, backend.response = http.StatusInternalServerError, ``
	err = c.Contacts().Delete(context.Background(), "c1")
	assert.Equal(t, crmerr.MsgServerDefault, err.Error())

	backend.status, backend.response = http.StatusNotFound, `{"message":"no such contact"}`
	_, err = c.Contacts().GetByID(context.Background(), "nope")
	assert.True(t, crmerr.IsNotFound(err))
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := NewClient(base)
	require.NoError(t, err)

	_, err = c.Opportunities().GetAll(context.Background())
	require.Error(t, err)
	assert.True(t, crmerr.Is(err, crmerr.KindNetwork))
	assert.Equal(t, crmerr.MsgNetwork, err.Error())
}

func TestCorruptEnumInResponse(t *testing.T) {
	backend := &fakeBackend{response: `[{"id":"o1","stage":"Daydreaming"}]`}
	c := newTestClient(t, backend)

	_, err := c.Opportunities().GetAll(context.Background())
	require.Error(t, err)
	assert.True(t, crmerr.Is(err, crmerr.KindValidation))
}
