package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"chirp/engagement"
	"chirp/handlers"
	"chirp/push"
	"chirp/routes"
	"chirp/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAPI(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := store.NewMemoryUserStore()
	posts := store.NewMemoryPostStore()
	notifications := store.NewMemoryNotificationStore()
	subs := store.NewMemorySubscriptionStore()

	coordinator := engagement.New(users, posts, notifications, nil)
	handlers.Init(coordinator, users, subs, push.NewSender(subs))
	return routes.SetupRouter()
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
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
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var parsed map[string]interface{}
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &parsed); err != nil {
			parsed = nil
		}
	}
	return w, parsed
}

func signup(t *testing.T, router *gin.Engine, username string) (token, userID string) {
	t.Helper()
	w, body := doJSON(t, router, http.MethodPost, "/api/auth/signup", "", gin.H{
		"username": username,
		"fullName": username,
		"email":    username + "@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	token, _ = body["token"].(string)
	require.NotEmpty(t, token)
	user, _ := body["user"].(map[string]interface{})
	require.NotNil(t, user)
	userID, _ = user["id"].(string)
	require.NotEmpty(t, userID)
	return token, userID
}

func TestSignupAndLogin(t *testing.T) {
	router := setupAPI(t)

	token, _ := signup(t, router, "alice")

	// Duplicate username is a conflict.
	w, _ := doJSON(t, router, http.MethodPost, "/api/auth/signup", "", gin.H{
		"username": "alice",
		"fullName": "Alice Again",
		"email":    "other@example.com",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Short password is rejected by binding.
	w, _ = doJSON(t, router, http.MethodPost, "/api/auth/signup", "", gin.H{
		"username": "bob",
		"fullName": "Bob",
		"email":    "bob@example.com",
		"password": "123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "alice",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, body["token"])

	w, _ = doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "alice",
		"password": "wrongpass",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, body = doJSON(t, router, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", body["username"])
}

func TestAuthRequired(t *testing.T) {
	router := setupAPI(t)

	w, _ := doJSON(t, router, http.MethodGet, "/api/posts/all", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = doJSON(t, router, http.MethodGet, "/api/posts/all", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPostEngagementFlow(t *testing.T) {
	router := setupAPI(t)
	aliceToken, aliceID := signup(t, router, "alice")
	bobToken, _ := signup(t, router, "bob")

	// Alice posts.
	w, body := doJSON(t, router, http.MethodPost, "/api/posts/create", aliceToken, gin.H{"text": "hello world"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	post, _ := body["post"].(map[string]interface{})
	require.NotNil(t, post)
	postID, _ := post["id"].(string)
	require.NotEmpty(t, postID)

	// Empty post is rejected.
	w, body = doJSON(t, router, http.MethodPost, "/api/posts/create", aliceToken, gin.H{"text": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])

	// Bob likes, comments, reposts and follows.
	w, body = doJSON(t, router, http.MethodPost, "/api/posts/like/"+postID, bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	likes, _ := body["likes"].([]interface{})
	assert.Len(t, likes, 1)

	w, _ = doJSON(t, router, http.MethodPost, "/api/posts/comment/"+postID, bobToken, gin.H{"text": "nice"})
	require.Equal(t, http.StatusCreated, w.Code)

	w, _ = doJSON(t, router, http.MethodPost, "/api/posts/"+postID+"/repost", bobToken, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w, body = doJSON(t, router, http.MethodPost, "/api/users/follow/"+aliceID, bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["following"])

	// Alice sees one notification per engagement.
	w, body = doJSON(t, router, http.MethodGet, "/api/notifications", aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	notifications, _ := body["notifications"].([]interface{})
	assert.Len(t, notifications, 4)

	// Bob cannot delete Alice's post.
	w, body = doJSON(t, router, http.MethodDelete, "/api/posts/"+postID, bobToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", body["code"])

	w, _ = doJSON(t, router, http.MethodDelete, "/api/posts/"+postID, aliceToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, body = doJSON(t, router, http.MethodGet, "/api/posts/"+postID, aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", body["code"])
}

func TestSelfFollowRejected(t *testing.T) {
	router := setupAPI(t)
	token, userID := signup(t, router, "alice")

	w, body := doJSON(t, router, http.MethodPost, "/api/users/follow/"+userID, token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_OPERATION", body["code"])
}

func TestPublicProfile(t *testing.T) {
	router := setupAPI(t)
	signup(t, router, "alice")

	w, body := doJSON(t, router, http.MethodGet, "/api/users/profile/alice", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", body["username"])
	_, hasPassword := body["password"]
	assert.False(t, hasPassword)

	w, _ = doJSON(t, router, http.MethodGet, "/api/users/profile/ghost", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnknownAPIRoute(t *testing.T) {
	router := setupAPI(t)

	w, _ := doJSON(t, router, http.MethodGet, "/api/does-not-exist", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
