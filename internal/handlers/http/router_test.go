package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"mediahub/internal/core/domain"
	"mediahub/internal/core/services"
	"mediahub/internal/infrastructure/middleware"
	"mediahub/internal/infrastructure/monitoring"
	"mediahub/internal/infrastructure/repositories/memory"
	"mediahub/internal/infrastructure/repositories/relational"
	"mediahub/pkg/config"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
}

// resetOutbox keeps the last code handed out per user name.
type resetOutbox struct {
	mu    sync.Mutex
	codes map[string]string
}

func (o *resetOutbox) NotifyReset(ctx context.Context, user *domain.User, code string, expiresAt time.Time) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.codes[user.Name] = code
	return nil
}

func (o *resetOutbox) code(name string) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.codes[name]
}

type testServer struct {
	router   *gin.Engine
	outbox   *resetOutbox
	registry *prometheus.Registry
}

func newTestServer(t *testing.T, tune ...func(*config.Config)) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	log := zap.NewNop()
	sugar := log.Sugar()

	cfg := config.DefaultConfig()
	cfg.RateLimiting.Auth.RequestsPerSecond = 1000
	cfg.RateLimiting.Auth.Burst = 1000
	for _, f := range tune {
		f(cfg)
	}

	db, err := relational.Open(relational.Options{Driver: "sqlite", DSN: ":memory:", MaxOpenConns: 1, MaxIdleConns: 1}, sugar)
	require.NoError(t, err)
	t.Cleanup(func() { _ = relational.Close(db) })

	users := relational.NewUserRepository(db)
	roles := relational.NewRoleRepository(db)
	comments := relational.NewCommentRepository(db)
	messages := memory.NewMemoryMessageRepository()

	require.NoError(t, services.Bootstrap(ctx, services.BootstrapConfig{
		AdminName:     "root",
		AdminPassword: "rootpass1",
		BcryptCost:    bcrypt.MinCost,
	}, users, roles, sugar))

	outbox := &resetOutbox{codes: map[string]string{}}
	auth := services.NewAuthService(services.AuthConfig{
		JWTSecret:  "test-secret",
		TokenTTL:   time.Hour,
		ResetTTL:   time.Minute,
		BcryptCost: bcrypt.MinCost,
	}, users, roles, relational.NewTokenRepository(db), relational.NewPasswordResetRepository(db), outbox, sugar)
	access := services.NewAccessService(users, roles, sugar)

	registry := prometheus.NewRegistry()
	collector := monitoring.NewPrometheusCollector(registry)
	interceptor := middleware.NewInterceptor(auth, access,
		middleware.NewMultiAuditRecorder(middleware.NewLogAuditRecorder(log), collector), sugar)

	health := monitoring.NewHealthChecker()
	health.AddDatabaseCheck(db, time.Second)

	router := NewRouter(Dependencies{
		Config:      cfg,
		Logger:      log,
		Interceptor: interceptor,
		Health:      health,
		Metrics:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Auth:        auth,
		Users:       services.NewUserService(users, roles, relational.NewBindingRepository(db), access, sugar),
		Roles:       services.NewRoleService(roles, sugar),
		Media:       services.NewMediaService(services.MediaConfig{ApprovalPoints: 10, MaxTags: 4}, messages, comments, users, sugar),
		Comments:    services.NewCommentService(comments, messages, access, sugar),
	})
	return &testServer{router: router, outbox: outbox, registry: registry}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "192.0.2.10:4000"
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" && bytes.HasPrefix(w.Body.Bytes(), []byte("{")) {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (s *testServer) login(t *testing.T, name, password string) string {
	t.Helper()
	w, env := s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"name": name, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out LoginResponse
	require.NoError(t, json.Unmarshal(env.Data, &out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

func (s *testServer) registerAndLogin(t *testing.T, name string) string {
	t.Helper()
	w, _ := s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{"name": name, "password": "password1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return s.login(t, name, "password1")
}

func textUpload(content string, tags ...string) gin.H {
	return gin.H{
		"type":    "text",
		"content": gin.H{"type": "text", "content": content},
		"tags":    tags,
	}
}

func decodeInto(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, v))
}

func TestHealthAndReady(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	w, env = s.do(t, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var status monitoring.HealthStatus
	decodeInto(t, env, &status)
	assert.Equal(t, monitoring.StatusHealthy, status.Checks["database"])
}

func TestMetricsExposeGuardedCalls(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "root", "rootpass1")
	s.do(t, http.MethodGet, "/api/roles", token, nil)

	w, _ := s.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `mediahub_guarded_calls_total{operation="roles.list",outcome="allowed",status="200"} 1`)
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{"name": "alice", "password": "password1"})
	require.Equal(t, http.StatusCreated, w.Code)
	var user domain.User
	decodeInto(t, env, &user)
	assert.Equal(t, "alice", user.Name)
	assert.NotContains(t, string(env.Data), "password")

	w, env = s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{"name": "alice", "password": "password1"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CONFLICT", env.Code)

	w, env = s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{"name": "bob", "password": "short"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)

	w, env = s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"name": "alice", "password": "wrong-pass1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "authentication required", env.Message)

	token := s.login(t, "alice", "password1")

	w, env = s.do(t, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var profile domain.UserProfile
	decodeInto(t, env, &profile)
	assert.Equal(t, "alice", profile.User.Name)
	assert.Contains(t, profile.Permissions, "message:upload")
	assert.NotContains(t, profile.Permissions, "user:view")

	w, _ = s.do(t, http.MethodPost, "/api/auth/logout", token, gin.H{})
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(t, http.MethodGet, "/api/users/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "AUTHENTICATION_REQUIRED", env.Code)
}

func TestPasswordReset(t *testing.T) {
	s := newTestServer(t)
	s.registerAndLogin(t, "alice")

	w, env := s.do(t, http.MethodPost, "/api/auth/forgetPassword", "", gin.H{"name": "nobody"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", env.Code)

	w, _ = s.do(t, http.MethodPost, "/api/auth/forgetPassword", "", gin.H{"name": "alice"})
	require.Equal(t, http.StatusOK, w.Code)
	code := s.outbox.code("alice")
	require.NotEmpty(t, code)

	w, _ = s.do(t, http.MethodPost, "/api/auth/resetPassword", "", gin.H{"code": "not-a-code", "password": "newpassword2"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = s.do(t, http.MethodPost, "/api/auth/resetPassword", "", gin.H{"code": code, "password": "weak"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(t, http.MethodPost, "/api/auth/resetPassword", "", gin.H{"code": code, "password": "newpassword2"})
	require.Equal(t, http.StatusOK, w.Code)
	s.login(t, "alice", "newpassword2")

	w, _ = s.do(t, http.MethodPost, "/api/auth/resetPassword", "", gin.H{"code": code, "password": "another3pass"})
	assert.Equal(t, http.StatusNotFound, w.Code, "codes are single use")
}

func TestLoginRateLimited(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) {
		cfg.RateLimiting.Auth.RequestsPerSecond = 0.001
		cfg.RateLimiting.Auth.Burst = 2
	})

	body := gin.H{"name": "root", "password": "bad-password1"}
	for i := 0; i < 2; i++ {
		w, _ := s.do(t, http.MethodPost, "/api/auth/login", "", body)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
	w, env := s.do(t, http.MethodPost, "/api/auth/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", env.Code)

	w, _ = s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{"name": "carol", "password": "password1"})
	assert.Equal(t, http.StatusCreated, w.Code, "register is not behind the auth limiter")
}

func TestGuardedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)
	for _, route := range [][2]string{
		{http.MethodGet, "/api/users"},
		{http.MethodGet, "/api/users/me"},
		{http.MethodGet, "/api/roles"},
		{http.MethodGet, "/api/permissions"},
		{http.MethodPost, "/api/messages"},
		{http.MethodGet, "/api/messages/pending"},
		{http.MethodDelete, "/api/comments/1"},
		{http.MethodPost, "/api/auth/logout"},
	} {
		w, env := s.do(t, route[0], route[1], "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, route[1])
		assert.Equal(t, "AUTHENTICATION_REQUIRED", env.Code, route[1])
	}
}

func TestAdministrationRoutes(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "root", "rootpass1")
	alice := s.registerAndLogin(t, "alice")

	w, env := s.do(t, http.MethodGet, "/api/users", alice, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "permission denied", env.Message)

	w, env = s.do(t, http.MethodGet, "/api/permissions", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var catalog []map[string]interface{}
	decodeInto(t, env, &catalog)
	assert.Len(t, catalog, 15)

	w, env = s.do(t, http.MethodPost, "/api/roles", admin, gin.H{"name": "tagger", "description": "edits tags"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var role domain.Role
	decodeInto(t, env, &role)
	assert.Contains(t, role.Permissions, "tag:view")

	w, env = s.do(t, http.MethodPost, fmt.Sprintf("/api/roles/%d/permissions", role.ID), admin, gin.H{"code": "tag:edit"})
	require.Equal(t, http.StatusOK, w.Code)
	decodeInto(t, env, &role)
	assert.Contains(t, role.Permissions, "tag:edit")

	w, env = s.do(t, http.MethodPost, fmt.Sprintf("/api/roles/%d/permissions", role.ID), admin, gin.H{"code": "tag:burn"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)

	var users []domain.User
	w, env = s.do(t, http.MethodGet, "/api/users", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeInto(t, env, &users)
	require.Len(t, users, 2)
	aliceID := users[1].ID
	assert.Equal(t, "alice", users[1].Name)

	w, _ = s.do(t, http.MethodPost, fmt.Sprintf("/api/users/%d/roles", aliceID), admin, gin.H{"roleId": role.ID})
	require.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(t, http.MethodDelete, fmt.Sprintf("/api/roles/%d", role.ID), admin, nil)
	assert.Equal(t, http.StatusConflict, w.Code, "role still assigned")
	assert.Equal(t, "CONFLICT", env.Code)

	w, env = s.do(t, http.MethodPost, fmt.Sprintf("/api/users/%d/points", aliceID), admin, gin.H{"delta": 7})
	require.Equal(t, http.StatusOK, w.Code)
	var user domain.User
	decodeInto(t, env, &user)
	assert.Equal(t, int64(7), user.Points)

	w, _ = s.do(t, http.MethodDelete, fmt.Sprintf("/api/users/%d/roles/%d", aliceID, role.ID), admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(t, http.MethodDelete, fmt.Sprintf("/api/roles/%d", role.ID), admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(t, http.MethodGet, "/api/users/abc", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)

	w, _ = s.do(t, http.MethodGet, "/api/users/999", admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBindingRoutes(t *testing.T) {
	s := newTestServer(t)
	alice := s.registerAndLogin(t, "alice")

	w, env := s.do(t, http.MethodPost, "/api/users/me/bindings", alice, gin.H{"platform": "qq", "externalId": "12345"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var binding domain.Binding
	decodeInto(t, env, &binding)
	assert.Equal(t, domain.PlatformQQ, binding.Platform)

	w, env = s.do(t, http.MethodPost, "/api/users/me/bindings", alice, gin.H{"platform": "fax", "externalId": "1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)

	w, env = s.do(t, http.MethodGet, "/api/users/me/bindings", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var bindings []domain.Binding
	decodeInto(t, env, &bindings)
	assert.Len(t, bindings, 1)

	w, _ = s.do(t, http.MethodDelete, fmt.Sprintf("/api/users/me/bindings/%d", binding.ID), alice, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMessageRoutes(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "root", "rootpass1")
	alice := s.registerAndLogin(t, "alice")

	w, env := s.do(t, http.MethodPost, "/api/messages", alice, textUpload("hello world", "Greeting"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var info domain.MessageInfo
	decodeInto(t, env, &info)
	assert.Equal(t, domain.StatePending, info.State)
	assert.Equal(t, []string{"greeting"}, info.Tags)
	require.Len(t, info.Metas.Uploaders(), 1)

	w, env = s.do(t, http.MethodPost, "/api/messages", alice, textUpload("hello world", "other"))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"id":%q}`, info.ID), string(env.Data))

	w, env = s.do(t, http.MethodPost, "/api/messages", alice, gin.H{
		"type":    "text",
		"content": gin.H{"type": "video", "url": "x"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "UNKNOWN_VARIANT", env.Code)

	w, env = s.do(t, http.MethodPost, "/api/messages", alice, gin.H{
		"type":    "text",
		"content": gin.H{"type": "text", "content": "meta"},
		"metas":   []gin.H{{"type": "unknown-kind"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "UNKNOWN_VARIANT", env.Code)

	w, _ = s.do(t, http.MethodPost, "/api/messages", alice, `{"type":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(t, http.MethodGet, "/api/messages/"+info.ID+"/texts", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var texts TextsResponse
	decodeInto(t, env, &texts)
	assert.Equal(t, []string{"hello world"}, texts.Texts)

	w, env = s.do(t, http.MethodGet, "/api/messages?tag=GREETING", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var byTag []domain.MessageInfo
	decodeInto(t, env, &byTag)
	assert.Len(t, byTag, 1)

	w, _ = s.do(t, http.MethodGet, "/api/messages", alice, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(t, http.MethodGet, "/api/messages/mine", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine []domain.MessageInfo
	decodeInto(t, env, &mine)
	assert.Len(t, mine, 1)

	// Tag edits and review need permissions beyond the defaults.
	w, _ = s.do(t, http.MethodPost, "/api/messages/"+info.ID+"/tags", alice, gin.H{"tags": []string{"x"}})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = s.do(t, http.MethodGet, "/api/messages/pending", alice, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env = s.do(t, http.MethodPost, "/api/messages/"+info.ID+"/tags", admin, gin.H{"tags": []string{"Funny"}})
	require.Equal(t, http.StatusOK, w.Code)
	decodeInto(t, env, &info)
	assert.ElementsMatch(t, []string{"greeting", "funny"}, info.Tags)

	w, _ = s.do(t, http.MethodDelete, "/api/messages/"+info.ID+"/tags/funny", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(t, http.MethodDelete, "/api/messages/"+info.ID+"/tags/funny", admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = s.do(t, http.MethodGet, "/api/messages/pending", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var pending []domain.MessageInfo
	decodeInto(t, env, &pending)
	assert.Len(t, pending, 1)

	w, _ = s.do(t, http.MethodPost, "/api/messages/"+info.ID+"/review", admin, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code, "approved is required")

	w, env = s.do(t, http.MethodPost, "/api/messages/"+info.ID+"/review", admin, gin.H{"approved": true})
	require.Equal(t, http.StatusOK, w.Code)
	decodeInto(t, env, &info)
	assert.Equal(t, domain.StateApproved, info.State)

	w, env = s.do(t, http.MethodGet, "/api/users/me", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var profile domain.UserProfile
	decodeInto(t, env, &profile)
	assert.Equal(t, int64(10), profile.User.Points)

	w, _ = s.do(t, http.MethodDelete, "/api/messages/"+info.ID, alice, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = s.do(t, http.MethodDelete, "/api/messages/"+info.ID, admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(t, http.MethodGet, "/api/messages/"+info.ID, alice, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDiscussUpload(t *testing.T) {
	s := newTestServer(t)
	alice := s.registerAndLogin(t, "alice")

	w, env := s.do(t, http.MethodPost, "/api/messages", alice, gin.H{
		"type": "discuss",
		"content": gin.H{"type": "discuss", "items": []gin.H{
			{"speaker": "a", "content": gin.H{"type": "text", "content": "first"}},
			{"speaker": "b", "content": gin.H{"type": "text", "content": "second"}},
		}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var info domain.MessageInfo
	decodeInto(t, env, &info)

	w, env = s.do(t, http.MethodGet, "/api/messages/"+info.ID+"/texts", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var texts TextsResponse
	decodeInto(t, env, &texts)
	assert.Equal(t, []string{"first", "second"}, texts.Texts)
}

func TestCommentRoutes(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "root", "rootpass1")
	alice := s.registerAndLogin(t, "alice")
	bob := s.registerAndLogin(t, "bob")

	w, env := s.do(t, http.MethodPost, "/api/messages", alice, textUpload("commented"))
	require.Equal(t, http.StatusCreated, w.Code)
	var info domain.MessageInfo
	decodeInto(t, env, &info)
	path := "/api/messages/" + info.ID + "/comments"

	w, _ = s.do(t, http.MethodPost, "/api/messages/missing/comments", bob, gin.H{"content": "hi"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	ids := make([]uint64, 0, 2)
	for _, body := range []string{"first!", "second"} {
		w, env = s.do(t, http.MethodPost, path, bob, gin.H{"content": body})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var comment domain.Comment
		decodeInto(t, env, &comment)
		ids = append(ids, comment.ID)
	}

	w, env = s.do(t, http.MethodGet, path, alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var comments []domain.Comment
	decodeInto(t, env, &comments)
	require.Len(t, comments, 2)
	assert.Equal(t, "first!", comments[0].Content)

	w, env = s.do(t, http.MethodDelete, fmt.Sprintf("/api/comments/%d", ids[0]), alice, nil)
	assert.Equal(t, http.StatusForbidden, w.Code, "alice is neither author nor moderator")
	assert.Equal(t, "PERMISSION_DENIED", env.Code)

	w, _ = s.do(t, http.MethodDelete, fmt.Sprintf("/api/comments/%d", ids[0]), bob, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(t, http.MethodDelete, fmt.Sprintf("/api/comments/%d", ids[1]), admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(t, http.MethodGet, path, alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(env.Data))
}
