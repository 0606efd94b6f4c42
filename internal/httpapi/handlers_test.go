package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hrdesk/leave-assistant/internal/models"
)

// mockBot echoes requests back so handlers can be tested in isolation
type mockBot struct {
	lastUserID int
	lastText   string
	history    []models.Exchange
	clearOK    bool
}

func (m *mockBot) ProcessMessage(userID int, text string) string {
	m.lastUserID = userID
	m.lastText = text
	return "reply to: " + text
}

func (m *mockBot) History(userID int) ([]models.Exchange, error) {
	return m.history, nil
}

func (m *mockBot) ClearHistory(userID int) bool {
	return m.clearOK
}

// mockLedger implements Store with canned data
type mockLedger struct {
	balance     *models.Balance
	requests    []models.LeaveRequest
	pending     []models.LeaveRequest
	updated     []string
	updateErr   error
	approved    int
	totalOnBulk int
}

func (m *mockLedger) Balance(userID int) (*models.Balance, error) {
	return m.balance, nil
}

func (m *mockLedger) RequestsFor(userID int) ([]models.LeaveRequest, error) {
	return m.requests, nil
}

func (m *mockLedger) PendingFor(adminID int) ([]models.LeaveRequest, error) {
	return m.pending, nil
}

func (m *mockLedger) UpdateStatus(userID int, date time.Time, status models.Status) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updated = append(m.updated, fmt.Sprintf("%d/%s/%s", userID, date.Format(models.DayLayout), status))
	return nil
}

func (m *mockLedger) ApproveAll(adminID int) (int, int, error) {
	return m.approved, m.totalOnBulk, nil
}

func newTestServer(bot *mockBot, store *mockLedger) *Server {
	return NewServer(DefaultServerConfig(), bot, store, zap.NewNop())
}

func doJSON(t *testing.T, srv *Server, method, path string, body interface{}) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(&mockBot{}, &mockLedger{})

	w, resp := doJSON(t, srv, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
}

func TestChatEndpoint(t *testing.T) {
	bot := &mockBot{}
	srv := newTestServer(bot, &mockLedger{})

	w, resp := doJSON(t, srv, http.MethodPost, "/api/chat", ChatRequest{
		UserID:  1002,
		Message: "apply cl for tomorrow",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, 1002, bot.lastUserID)
	assert.Equal(t, "apply cl for tomorrow", bot.lastText)
}

func TestChatEndpointRejectsMissingFields(t *testing.T) {
	srv := newTestServer(&mockBot{}, &mockLedger{})

	w, resp := doJSON(t, srv, http.MethodPost, "/api/chat", map[string]string{"message": "hi"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, resp.Success)
}

func TestBalanceEndpoint(t *testing.T) {
	store := &mockLedger{balance: &models.Balance{
		UserID: 1002, EL: 1, SL: 1, CL: 2, TL: 4, AdminID: 5000,
	}}
	srv := newTestServer(&mockBot{}, store)

	w, resp := doJSON(t, srv, http.MethodGet, "/api/users/1002/balance", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var b BalanceResponse
	require.NoError(t, json.Unmarshal(data, &b))
	assert.Equal(t, 2, b.CL)
	assert.Equal(t, 4, b.Total)
}

func TestBalanceEndpointUnknownUser(t *testing.T) {
	srv := newTestServer(&mockBot{}, &mockLedger{})

	w, resp := doJSON(t, srv, http.MethodGet, "/api/users/9999/balance", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, resp.Success)
}

func TestInvalidPathID(t *testing.T) {
	srv := newTestServer(&mockBot{}, &mockLedger{})

	w, resp := doJSON(t, srv, http.MethodGet, "/api/users/abc/balance", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, resp.Success)
}

func TestHistoryEndpoints(t *testing.T) {
	bot := &mockBot{
		history: []models.Exchange{{User: "hi", Assistant: "hello"}},
		clearOK: true,
	}
	srv := newTestServer(bot, &mockLedger{})

	w, resp := doJSON(t, srv, http.MethodGet, "/api/users/1002/history", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)

	w, resp = doJSON(t, srv, http.MethodDelete, "/api/users/1002/history", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
}

func TestPendingEndpoint(t *testing.T) {
	store := &mockLedger{pending: []models.LeaveRequest{{
		AdminID:   5000,
		UserID:    1002,
		LeaveDate: time.Date(2025, time.September, 10, 0, 0, 0, 0, time.Local),
		Status:    models.StatusPending,
		LeaveType: models.LeaveCasual,
	}}}
	srv := newTestServer(&mockBot{}, store)

	w, resp := doJSON(t, srv, http.MethodGet, "/api/admins/5000/pending", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
}

func TestDecisionEndpoint(t *testing.T) {
	store := &mockLedger{}
	srv := newTestServer(&mockBot{}, store)

	w, resp := doJSON(t, srv, http.MethodPost, "/api/admins/5000/decisions", DecisionRequest{
		UserID: 1002,
		Date:   "2025-09-10",
		Status: "Approved",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	require.Len(t, store.updated, 1)
	assert.Equal(t, "1002/2025-09-10/Approved", store.updated[0])
}

func TestDecisionEndpointRejectsBadStatus(t *testing.T) {
	srv := newTestServer(&mockBot{}, &mockLedger{})

	w, resp := doJSON(t, srv, http.MethodPost, "/api/admins/5000/decisions", DecisionRequest{
		UserID: 1002,
		Date:   "2025-09-10",
		Status: "Pending",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, resp.Success)
}

func TestDecisionEndpointConflict(t *testing.T) {
	store := &mockLedger{updateErr: fmt.Errorf("no request for user 1002")}
	srv := newTestServer(&mockBot{}, store)

	w, resp := doJSON(t, srv, http.MethodPost, "/api/admins/5000/decisions", DecisionRequest{
		UserID: 1002,
		Date:   "2025-09-10",
		Status: "Rejected",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.False(t, resp.Success)
}

func TestApproveAllEndpoint(t *testing.T) {
	store := &mockLedger{approved: 2, totalOnBulk: 3}
	srv := newTestServer(&mockBot{}, store)

	w, resp := doJSON(t, srv, http.MethodPost, "/api/admins/5000/approve-all", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var out ApproveAllResponse
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, 2, out.Approved)
	assert.Equal(t, 3, out.Total)
}
