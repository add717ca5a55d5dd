package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"expensed/internal/auth"
	applog "expensed/internal/log"
	"expensed/internal/services"
	"expensed/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	repo, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	authSvc := auth.NewService(repo, bcrypt.MinCost)
	ledger := services.NewLedgerService(repo, nil)
	logger := applog.New(applog.DefaultConfig())

	srv := NewServer(":0", authSvc, ledger, repo, logger, []string{"*"})
	t.Cleanup(func() { srv.rateLimiter.stop() })

	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, ts *httptest.Server, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, ts.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var payload map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	return resp, payload
}

func registerUser(t *testing.T, ts *httptest.Server, username string) int64 {
	t.Helper()
	resp, payload := doJSON(t, ts, http.MethodPost, "/register",
		map[string]string{"username": username, "password": "s3cret"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return int64(payload["user_id"].(float64))
}

func errorCode(t *testing.T, payload map[string]any) string {
	t.Helper()
	errObj, ok := payload["error"].(map[string]any)
	require.True(t, ok, "expected error envelope, got %v", payload)
	return errObj["code"].(string)
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t)

	userID := registerUser(t, ts, "alice")
	assert.Positive(t, userID)

	resp, payload := doJSON(t, ts, http.MethodPost, "/login",
		map[string]string{"username": "alice", "password": "s3cret"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(userID), payload["user_id"])
	assert.Equal(t, "Login successful!", payload["message"])
}

func TestRegisterDuplicate(t *testing.T) {
	ts := newTestServer(t)
	registerUser(t, ts, "alice")

	resp, payload := doJSON(t, ts, http.MethodPost, "/register",
		map[string]string{"username": "alice", "password": "other"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "duplicate_username", errorCode(t, payload))
}

func TestRegisterMissingFieldsListsAll(t *testing.T) {
	ts := newTestServer(t)

	resp, payload := doJSON(t, ts, http.MethodPost, "/register", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "missing_fields", errorCode(t, payload))

	msg := payload["error"].(map[string]any)["message"].(string)
	assert.Contains(t, msg, "username")
	assert.Contains(t, msg, "password")
}

func TestLoginFailuresAreUniform(t *testing.T) {
	ts := newTestServer(t)
	registerUser(t, ts, "alice")

	respWrongPass, p1 := doJSON(t, ts, http.MethodPost, "/login",
		map[string]string{"username": "alice", "password": "nope"})
	respNoUser, p2 := doJSON(t, ts, http.MethodPost, "/login",
		map[string]string{"username": "nobody", "password": "s3cret"})

	assert.Equal(t, http.StatusUnauthorized, respWrongPass.StatusCode)
	assert.Equal(t, http.StatusUnauthorized, respNoUser.StatusCode)
	assert.Equal(t, p1["error"], p2["error"],
		"unknown username and wrong password must be indistinguishable")
}

func TestAddListDeleteExpense(t *testing.T) {
	ts := newTestServer(t)
	userID := registerUser(t, ts, "alice")

	resp, payload := doJSON(t, ts, http.MethodPost, "/expenses", map[string]any{
		"user_id":     userID,
		"date":        "01-06-2024",
		"description": "Coffee",
		"amount":      4.50,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	expenseID := int64(payload["expense_id"].(float64))

	// List renders wire-safe views with the default category.
	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/expenses/%d", ts.URL, userID), nil)
	require.NoError(t, err)
	listResp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer listResp.Body.Close()
	require.Equal(t, http.StatusOK, listResp.StatusCode)

	var views []map[string]any
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&views))
	require.Len(t, views, 1)
	assert.Equal(t, "01-06-2024", views[0]["date"])
	assert.Equal(t, 4.5, views[0]["amount"])
	assert.Equal(t, "General", views[0]["category"])
	assert.Equal(t, float64(userID), views[0]["user_id"])

	resp, payload = doJSON(t, ts, http.MethodDelete,
		fmt.Sprintf("/expenses/%d/%d", userID, expenseID), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Deleted!", payload["message"])

	resp, payload = doJSON(t, ts, http.MethodDelete,
		fmt.Sprintf("/expenses/%d/%d", userID, expenseID), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", errorCode(t, payload))
}

func TestDeleteOtherUsersExpense(t *testing.T) {
	ts := newTestServer(t)
	alice := registerUser(t, ts, "alice")
	mallory := registerUser(t, ts, "mallory")

	_, payload := doJSON(t, ts, http.MethodPost, "/expenses", map[string]any{
		"user_id":     alice,
		"date":        "01-06-2024",
		"description": "Coffee",
		"amount":      "4.50",
	})
	expenseID := int64(payload["expense_id"].(float64))

	resp, payload := doJSON(t, ts, http.MethodDelete,
		fmt.Sprintf("/expenses/%d/%d", mallory, expenseID), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", errorCode(t, payload))
}

func TestAddExpenseValidationErrors(t *testing.T) {
	ts := newTestServer(t)
	userID := registerUser(t, ts, "alice")

	cases := []struct {
		name     string
		body     map[string]any
		wantCode string
	}{
		{
			name:     "invalid date",
			body:     map[string]any{"user_id": userID, "date": "31-02-2024", "description": "x", "amount": "1"},
			wantCode: "invalid_date",
		},
		{
			name:     "invalid amount",
			body:     map[string]any{"user_id": userID, "date": "01-06-2024", "description": "x", "amount": "abc"},
			wantCode: "invalid_amount",
		},
		{
			name:     "missing fields",
			body:     map[string]any{"user_id": userID},
			wantCode: "missing_fields",
		},
		{
			name:     "unknown owner",
			body:     map[string]any{"user_id": 9999, "date": "01-06-2024", "description": "x", "amount": "1"},
			wantCode: "owner_not_found",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, payload := doJSON(t, ts, http.MethodPost, "/expenses", tc.body)
			assert.Equal(t, tc.wantCode, errorCode(t, payload))
			assert.GreaterOrEqual(t, resp.StatusCode, 400)
			assert.Less(t, resp.StatusCode, 500)
		})
	}
}

func TestTotals(t *testing.T) {
	ts := newTestServer(t)
	userID := registerUser(t, ts, "owner2")

	for _, e := range []struct {
		date   string
		amount string
	}{
		{"10-01-2024", "100"},
		{"20-01-2024", "50"},
	} {
		resp, _ := doJSON(t, ts, http.MethodPost, "/expenses", map[string]any{
			"user_id": userID, "date": e.date, "description": "item", "amount": e.amount,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, payload := doJSON(t, ts, http.MethodGet,
		fmt.Sprintf("/expenses/total/%d", userID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 150.0, payload["total"])

	resp, payload = doJSON(t, ts, http.MethodPost,
		fmt.Sprintf("/expenses/total_between/%d", userID),
		map[string]string{"start": "01-01-2024", "end": "15-01-2024"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 100.0, payload["total"])

	resp, payload = doJSON(t, ts, http.MethodPost,
		fmt.Sprintf("/expenses/total_between/%d", userID),
		map[string]string{"start": "bad", "end": "15-01-2024"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_date", errorCode(t, payload))

	// A user with no expenses totals zero, not null.
	other := registerUser(t, ts, "empty")
	resp, payload = doJSON(t, ts, http.MethodGet,
		fmt.Sprintf("/expenses/total/%d", other), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0.0, payload["total"])
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = ts.Client().Get(ts.URL + "/readyz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
