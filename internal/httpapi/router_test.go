package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gormsqlite "github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/amiral-e/esp-back-sub001/internal/auth"
	"github.com/amiral-e/esp-back-sub001/internal/config"
	"github.com/amiral-e/esp-back-sub001/internal/db"
	"github.com/amiral-e/esp-back-sub001/internal/logging"
	"github.com/amiral-e/esp-back-sub001/internal/models"
)

const testSecret = "router-test-secret"

var dbSeq atomic.Int64

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
}

// newTestEnv stands up the full router over sqlite with fake auth, chat and
// docs backends. The fake auth service echoes the access token back as the
// user id, so a token-pair credential for user U is simply "Bearer U".
func newTestEnv(t *testing.T, chatHandler http.HandlerFunc) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:httpapi%d?mode=memory&cache=shared", dbSeq.Add(1))
	gdb, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	authSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			AccessToken string `json:"access_token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if req.AccessToken == "bad" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"user_id": req.AccessToken})
	}))
	t.Cleanup(authSrv.Close)

	if chatHandler == nil {
		chatHandler = func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]string{"content": "assistant says hi"})
		}
	}
	chatSrv := httptest.NewServer(chatHandler)
	t.Cleanup(chatSrv.Close)

	docsSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"collections": []string{"notes"}})
	}))
	t.Cleanup(docsSrv.Close)

	cfg := config.Config{
		JWTSecret:      testSecret,
		AuthServiceURL: authSrv.URL,
		ChatServiceURL: chatSrv.URL,
		DocsServiceURL: docsSrv.URL,
	}

	return &testEnv{
		router: NewRouter(gdb, cfg, logging.Nop(), nil),
		db:     gdb,
	}
}

func (e *testEnv) seedUser(t *testing.T, id string, admin bool) {
	t.Helper()
	require.NoError(t, e.db.Create(&models.User{ID: id, Email: id + "@example.com", Username: id}).Error)
	if admin {
		require.NoError(t, e.db.Create(&models.Admin{UserID: id}).Error)
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func pairHeaders(userID string) map[string]string {
	return map[string]string{
		"Authorization":   "Bearer " + userID,
		"X-Refresh-Token": "refresh",
	}
}

func jwtHeaders(t *testing.T, userID string) map[string]string {
	t.Helper()
	tok, err := auth.SignJWT(userID, testSecret, time.Hour)
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + tok}
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestMissingCredential_AllRoutes(t *testing.T) {
	env := newTestEnv(t, nil)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/conversations"},
		{http.MethodGet, "/me"},
		{http.MethodGet, "/collections"},
		{http.MethodGet, "/categories"},
		{http.MethodGet, "/prices"},
		{http.MethodGet, "/admins"},
	} {
		w := env.do(t, route.method, route.path, nil, nil)
		require.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", route.method, route.path)
		require.Equal(t, "Missing credential", decodeBody(t, w)["error"], "%s %s", route.method, route.path)
	}
}

func TestNonAdminOnAdminRoute_Forbidden(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seedUser(t, "plain-user", false)

	w := env.do(t, http.MethodGet, "/admins", nil, jwtHeaders(t, "plain-user"))
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestUnknownUser_Unauthorized(t *testing.T) {
	env := newTestEnv(t, nil)

	// valid signature, but no such user in the store: 401, never 403
	w := env.do(t, http.MethodGet, "/admins", nil, jwtHeaders(t, "ghost"))
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "Unknown user", decodeBody(t, w)["error"])
}

func TestInvalidTokenPair_Unauthorized(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodGet, "/conversations", nil, pairHeaders("bad"))
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "Invalid credential", decodeBody(t, w)["error"])
}

func TestConversationRoundTrip(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seedUser(t, "conv-user", false)
	hdr := pairHeaders("conv-user")

	w := env.do(t, http.MethodPost, "/conversations", gin.H{"name": "my topic"}, hdr)
	require.Equal(t, http.StatusOK, w.Code)
	created := decodeBody(t, w)
	convID, _ := created["id"].(string)
	require.NotEmpty(t, convID)

	w = env.do(t, http.MethodGet, "/conversations/"+convID, nil, hdr)
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeBody(t, w)
	require.Equal(t, "my topic", got["name"])
	require.Empty(t, got["history"])
}

func TestDeleteMissingConversation_NotFound(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seedUser(t, "del-user", false)

	w := env.do(t, http.MethodDelete, "/conversations/01NOSUCHID0000000000000000", nil, pairHeaders("del-user"))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestSendMessage_SentinelCreatesConversation(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seedUser(t, "msg-user", false)

	w := env.do(t, http.MethodPost, "/conversations/0/messages", gin.H{"message": "hello there"}, pairHeaders("msg-user"))
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	require.Equal(t, "assistant says hi", body["content"])
	convID, _ := body["conv_id"].(string)
	require.NotEmpty(t, convID)
	require.NotEqual(t, "0", convID)
}

func TestSendMessage_UpstreamFailureKeepsHistory(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	})
	env.seedUser(t, "fail-user", false)
	hdr := pairHeaders("fail-user")

	w := env.do(t, http.MethodPost, "/conversations", gin.H{"name": "stable"}, hdr)
	require.Equal(t, http.StatusOK, w.Code)
	convID := decodeBody(t, w)["id"].(string)

	w = env.do(t, http.MethodPost, "/conversations/"+convID+"/messages", gin.H{"message": "anyone?"}, hdr)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	// no orphan user turn was persisted
	w = env.do(t, http.MethodGet, "/conversations/"+convID, nil, hdr)
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, decodeBody(t, w)["history"])
}

func TestAddAdmin_OK(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seedUser(t, "admin-u1", true)
	env.seedUser(t, "user-u2", false)

	w := env.do(t, http.MethodPost, "/admins", gin.H{"user_id": "user-u2"}, jwtHeaders(t, "admin-u1"))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, decodeBody(t, w)["message"], "user-u2")
}

func TestAddAdmin_SelfRejected(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seedUser(t, "admin-self", true)

	w := env.do(t, http.MethodPost, "/admins", gin.H{"user_id": "admin-self"}, jwtHeaders(t, "admin-self"))
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "You can't add yourself as admin", decodeBody(t, w)["error"])
}

func TestAddAdmin_CallerNotAdmin(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seedUser(t, "nobody", false)
	env.seedUser(t, "target", false)

	w := env.do(t, http.MethodPost, "/admins", gin.H{"user_id": "target"}, jwtHeaders(t, "nobody"))
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestAddAdmin_TargetMissing(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seedUser(t, "admin-m", true)

	w := env.do(t, http.MethodPost, "/admins", gin.H{"user_id": "no-such-user"}, jwtHeaders(t, "admin-m"))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddAdmin_AlreadyAdmin(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seedUser(t, "admin-a", true)
	env.seedUser(t, "admin-b", true)

	w := env.do(t, http.MethodPost, "/admins", gin.H{"user_id": "admin-b"}, jwtHeaders(t, "admin-a"))
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "User is already admin", decodeBody(t, w)["error"])
}

func TestUpdateMissingPrice_NotFound(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seedUser(t, "admin-p", true)

	w := env.do(t, http.MethodPut, "/prices/no-such-price", gin.H{"credits": 5.0}, jwtHeaders(t, "admin-p"))
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "No price found", decodeBody(t, w)["error"])
}

func TestPriceLifecycle(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seedUser(t, "admin-price", true)
	hdr := jwtHeaders(t, "admin-price")

	w := env.do(t, http.MethodPost, "/prices", gin.H{"name": "starter", "credits": 10.0}, hdr)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPut, "/prices/starter", gin.H{"credits": 20.0}, hdr)
	require.Equal(t, http.StatusOK, w.Code)

	// writing the current value back matches a row and must not be a 404
	w = env.do(t, http.MethodPut, "/prices/starter", gin.H{"credits": 20.0}, hdr)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/prices/starter", nil, hdr)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 20.0, decodeBody(t, w)["credits"])
}

func TestListCollections_ReturnsFetchedList(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seedUser(t, "col-user", false)

	w := env.do(t, http.MethodGet, "/collections", nil, pairHeaders("col-user"))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []any{"notes"}, decodeBody(t, w)["collections"])
}
