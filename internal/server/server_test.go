// ABOUTME: HTTP-level tests over the full stack with a temporary SQLite store
// ABOUTME: Covers the register/login/send/read/acknowledge flows and their failure statuses

package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/courier/internal/accounts"
	"github.com/2389/courier/internal/auth"
	"github.com/2389/courier/internal/messenger"
	"github.com/2389/courier/internal/store"
)

func setupServer(t *testing.T) http.Handler {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := store.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	tokens := auth.NewTokenService([]byte("test-secret-key-for-jwt-signing"))
	srv := New(
		accounts.NewService(st, tokens),
		messenger.NewService(st),
		tokens,
		slog.Default(),
	)
	return srv.Routes()
}

// do issues a JSON request against the handler, optionally authenticated.
func do(t *testing.T, handler http.Handler, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, path, reqBody)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded),
			"response body is not JSON: %s", rec.Body.String())
	}
	return rec, decoded
}

func registerUser(t *testing.T, handler http.Handler, username string) string {
	t.Helper()
	rec, body := do(t, handler, http.MethodPost, "/auth/register", "", map[string]string{
		"username":   username,
		"password":   "hunter2",
		"first_name": "Test",
		"last_name":  "User",
		"phone":      "+15555550100",
	})
	require.Equal(t, http.StatusCreated, rec.Code, "register %s: %v", username, body)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestHealth(t *testing.T) {
	handler := setupServer(t)

	rec, body := do(t, handler, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestRegister_And_Login(t *testing.T) {
	handler := setupServer(t)

	registerUser(t, handler, "alice")

	rec, body := do(t, handler, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "alice",
		"password": "hunter2",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, body["token"])
}

func TestRegister_Duplicate(t *testing.T) {
	handler := setupServer(t)

	token := registerUser(t, handler, "alice")

	rec, body := do(t, handler, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "alice",
		"password": "different",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "username already taken", body["error"])

	// The first registration's token still works
	rec, _ = do(t, handler, http.MethodGet, "/users/alice", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogin_UniformRejection(t *testing.T) {
	handler := setupServer(t)

	registerUser(t, handler, "alice")

	recWrong, bodyWrong := do(t, handler, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "alice",
		"password": "wrong",
	})
	recUnknown, bodyUnknown := do(t, handler, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "nobody",
		"password": "hunter2",
	})

	// No observable distinction between wrong password and unknown user
	assert.Equal(t, http.StatusBadRequest, recWrong.Code)
	assert.Equal(t, recWrong.Code, recUnknown.Code)
	assert.Equal(t, bodyWrong["error"], bodyUnknown["error"])
}

func TestProtectedRoutes_RequireAuth(t *testing.T) {
	handler := setupServer(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/users"},
		{http.MethodGet, "/users/alice"},
		{http.MethodGet, "/users/alice/to"},
		{http.MethodGet, "/users/alice/from"},
		{http.MethodGet, "/messages/some-id"},
		{http.MethodPost, "/messages"},
		{http.MethodPost, "/messages/some-id/read"},
	}

	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			rec, _ := do(t, handler, p.method, p.path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)

			rec, _ = do(t, handler, p.method, p.path, "garbage-token", nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestGetUser_SelfOnly(t *testing.T) {
	handler := setupServer(t)

	aliceToken := registerUser(t, handler, "alice")
	registerUser(t, handler, "bob")

	rec, body := do(t, handler, http.MethodGet, "/users/alice", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	user := body["user"].(map[string]any)
	assert.Equal(t, "alice", user["username"])
	assert.NotEmpty(t, user["join_at"])
	assert.NotEmpty(t, user["last_login_at"])

	rec, _ = do(t, handler, http.MethodGet, "/users/bob", aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListUsers_AnyAuthenticated(t *testing.T) {
	handler := setupServer(t)

	aliceToken := registerUser(t, handler, "alice")
	registerUser(t, handler, "bob")

	rec, body := do(t, handler, http.MethodGet, "/users", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	users := body["users"].([]any)
	assert.Len(t, users, 2)

	// Password material never crosses the boundary
	for _, u := range users {
		_, leaked := u.(map[string]any)["password_hash"]
		assert.False(t, leaked, "password hash serialized in /users")
	}
}

func TestMessageScenario(t *testing.T) {
	handler := setupServer(t)

	aliceToken := registerUser(t, handler, "alice")
	bobToken := registerUser(t, handler, "bob")
	malloryToken := registerUser(t, handler, "mallory")

	// alice sends a message to bob
	rec, body := do(t, handler, http.MethodPost, "/messages", aliceToken, map[string]string{
		"to_username": "bob",
		"body":        "hello bob",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	sent := body["message"].(map[string]any)
	msgID := sent["id"].(string)
	require.NotEmpty(t, msgID)
	assert.Nil(t, sent["read_at"])

	// both parties can read it, a third party cannot
	rec, _ = do(t, handler, http.MethodGet, "/messages/"+msgID, aliceToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, body = do(t, handler, http.MethodGet, "/messages/"+msgID, bobToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	msg := body["message"].(map[string]any)
	assert.Equal(t, "alice", msg["from_user"].(map[string]any)["username"])
	assert.Equal(t, "bob", msg["to_user"].(map[string]any)["username"])
	rec, _ = do(t, handler, http.MethodGet, "/messages/"+msgID, malloryToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// only the recipient may mark it read
	rec, _ = do(t, handler, http.MethodPost, "/messages/"+msgID+"/read", aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, body = do(t, handler, http.MethodPost, "/messages/"+msgID+"/read", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	readMsg := body["message"].(map[string]any)
	firstReadAt := readMsg["read_at"].(string)
	assert.NotEmpty(t, firstReadAt)

	// re-marking succeeds and preserves the first stamp
	rec, body = do(t, handler, http.MethodPost, "/messages/"+msgID+"/read", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, firstReadAt, body["message"].(map[string]any)["read_at"])

	// listings are visible to their subject only
	rec, body = do(t, handler, http.MethodGet, "/users/bob/to", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	inbox := body["messages"].([]any)
	require.Len(t, inbox, 1)
	assert.Equal(t, "alice", inbox[0].(map[string]any)["from_user"].(map[string]any)["username"])

	rec, body = do(t, handler, http.MethodGet, "/users/alice/from", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	outbox := body["messages"].([]any)
	require.Len(t, outbox, 1)
	assert.Equal(t, "bob", outbox[0].(map[string]any)["to_user"].(map[string]any)["username"])

	rec, _ = do(t, handler, http.MethodGet, "/users/bob/to", aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSendMessage_UnknownRecipient(t *testing.T) {
	handler := setupServer(t)

	aliceToken := registerUser(t, handler, "alice")

	rec, body := do(t, handler, http.MethodPost, "/messages", aliceToken, map[string]string{
		"to_username": "nobody",
		"body":        "hello?",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not found", body["error"])
}

func TestGetMessage_NotFound(t *testing.T) {
	handler := setupServer(t)

	aliceToken := registerUser(t, handler, "alice")

	rec, _ := do(t, handler, http.MethodGet, "/messages/nonexistent", aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMalformedBody(t *testing.T) {
	handler := setupServer(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestErrorBodies_CarryNoInternalDetail(t *testing.T) {
	handler := setupServer(t)

	aliceToken := registerUser(t, handler, "alice")

	rec, body := do(t, handler, http.MethodGet, "/messages/nonexistent", aliceToken, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	// Only the error kind's safe message crosses the boundary
	require.Len(t, body, 1)
	assert.NotContains(t, fmt.Sprint(body["error"]), "sql")
}
