package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/api/http/handlers"
	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/observability"
	"github.com/spec-kit/complaint-service/internal/repository"
	"github.com/spec-kit/complaint-service/internal/service"
)

type testServer struct {
	app     *fiber.App
	authSvc *service.AuthService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := config.Config{
		App:  config.AppConfig{Name: "complaint-service", Version: "test"},
		Auth: config.AuthConfig{JWTSecret: "router-secret", BcryptCost: 4},
	}
	store := repository.NewMemoryStore()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger, time.Second)
	t.Cleanup(func() { _ = dispatcher.Wait(context.Background()) })

	authSvc := service.NewAuthService(cfg, service.AuthDependencies{UserRepo: store.Users()})
	complaintSvc := service.NewComplaintService(service.ComplaintDependencies{
		ComplaintRepo: store.Complaints(),
		Dispatcher:    dispatcher,
	})
	tokens := authSvc.TokenManager()

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:     handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{"store": store}),
		Users:      handlers.NewUsersHandler(authSvc, handlers.CookieOptions{}),
		Complaints: handlers.NewComplaintsHandler(complaintSvc),
		Pages:      handlers.NewPagesHandler(cfg.App.Name),
		Guard:      auth.NewGuard(tokens.FullVerifier()),
		Redirector: auth.NewEdgeRedirector(tokens.FullVerifier(), auth.DefaultRedirectorConfig(), logger),
		RateLimit:  RateLimit(nil, 10, time.Minute, logger),
		Metrics:    metrics.Handler(),
	})
	return &testServer{app: app, authSvc: authSvc}
}

type result struct {
	status int
	body   map[string]any
	header func(string) string
	cookie string
}

func (s *testServer) do(t *testing.T, method, path, token string, payload any) result {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderCookie, auth.CookieName+"="+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := result{status: resp.StatusCode, header: resp.Header.Get}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) && len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out.body))
	}
	for _, c := range resp.Cookies() {
		if c.Name == auth.CookieName {
			out.cookie = c.Value
		}
	}
	return out
}

func errorCode(r result) string {
	errBody, _ := r.body["error"].(map[string]any)
	code, _ := errBody["code"].(string)
	return code
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	r := s.do(t, "POST", "/api/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, fiber.StatusOK, r.status)
	require.NotEmpty(t, r.cookie)
	return r.cookie
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)

	r := s.do(t, "POST", "/api/auth/register", "", map[string]string{"name": "Ann", "email": "Ann@Example.com", "password": "secret1"})
	require.Equal(t, fiber.StatusCreated, r.status)
	user := r.body["data"].(map[string]any)["user"].(map[string]any)
	assert.Equal(t, "ann@example.com", user["email"])
	assert.Equal(t, "user", user["role"])
	assert.NotContains(t, user, "password")
	assert.NotContains(t, user, "passwordHash")

	r = s.do(t, "POST", "/api/auth/register", "", map[string]string{"name": "Ann", "email": "ann@example.com", "password": "secret1"})
	assert.Equal(t, fiber.StatusConflict, r.status)
	assert.Equal(t, "CONFLICT", errorCode(r))

	r = s.do(t, "POST", "/api/auth/register", "", map[string]string{"name": "Eve", "email": "eve@example.com", "password": "secret1", "role": "admin"})
	assert.Equal(t, fiber.StatusBadRequest, r.status)

	r = s.do(t, "POST", "/api/auth/register", "", map[string]string{"email": "x@example.com"})
	assert.Equal(t, fiber.StatusBadRequest, r.status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(r))

	r = s.do(t, "POST", "/api/auth/login", "", map[string]string{"email": "ann@example.com", "password": "wrong-password"})
	assert.Equal(t, fiber.StatusUnauthorized, r.status)

	token := s.login(t, "ann@example.com", "secret1")

	r = s.do(t, "GET", "/api/auth/me", token, nil)
	require.Equal(t, fiber.StatusOK, r.status)
	me := r.body["data"].(map[string]any)["user"].(map[string]any)
	assert.Equal(t, "Ann", me["name"])

	r = s.do(t, "GET", "/api/auth/me", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, r.status)

	r = s.do(t, "POST", "/api/auth/logout", token, nil)
	assert.Equal(t, fiber.StatusOK, r.status)
	assert.Empty(t, r.cookie)
	assert.Contains(t, r.header(fiber.HeaderSetCookie), auth.CookieName+"=;")
}

func TestLoginCookieAttributes(t *testing.T) {
	s := newTestServer(t)
	_, err := s.authSvc.Register(context.Background(), service.RegisterInput{Name: "Ann", Email: "ann@example.com", Password: "secret1"})
	require.NoError(t, err)

	r := s.do(t, "POST", "/api/auth/login", "", map[string]string{"email": "ann@example.com", "password": "secret1"})
	require.Equal(t, fiber.StatusOK, r.status)
	setCookie := strings.ToLower(r.header(fiber.HeaderSetCookie))
	assert.Contains(t, setCookie, "httponly")
	assert.Contains(t, setCookie, "samesite=lax")
	assert.Contains(t, setCookie, "path=/")
	assert.Contains(t, setCookie, "max-age=")
}

func TestComplaintLifecycle(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	ann, err := s.authSvc.Register(ctx, service.RegisterInput{Name: "Ann", Email: "ann@example.com", Password: "secret1"})
	require.NoError(t, err)
	_, err = s.authSvc.CreateAdmin(ctx, "Root", "root@example.com", "secret1")
	require.NoError(t, err)
	userToken := s.login(t, "ann@example.com", "secret1")
	adminToken := s.login(t, "root@example.com", "secret1")

	payload := map[string]string{"title": "Late", "description": "Two weeks late", "category": "Service", "priority": "High"}

	r := s.do(t, "POST", "/api/complaints", "", payload)
	assert.Equal(t, fiber.StatusUnauthorized, r.status)

	r = s.do(t, "POST", "/api/complaints", userToken, map[string]string{"title": "Late"})
	assert.Equal(t, fiber.StatusBadRequest, r.status)

	r = s.do(t, "POST", "/api/complaints", userToken, payload)
	require.Equal(t, fiber.StatusCreated, r.status)
	created := r.body["data"].(map[string]any)
	id := created["id"].(string)
	assert.Equal(t, "Pending", created["status"])
	assert.Equal(t, ann.ID, created["userId"])
	assert.Equal(t, "ann@example.com", created["userEmail"])

	spoofed := map[string]string{
		"title": "X", "description": "Y", "category": "Support", "priority": "High",
		"userId": "evil", "userEmail": "evil@x.com",
	}
	r = s.do(t, "POST", "/api/complaints", userToken, spoofed)
	require.Equal(t, fiber.StatusCreated, r.status)
	attributed := r.body["data"].(map[string]any)
	assert.Equal(t, ann.ID, attributed["userId"])
	assert.Equal(t, "ann@example.com", attributed["userEmail"])
	r = s.do(t, "DELETE", "/api/complaints/"+attributed["id"].(string), adminToken, nil)
	require.Equal(t, fiber.StatusOK, r.status)

	r = s.do(t, "GET", "/api/complaints", userToken, nil)
	assert.Equal(t, fiber.StatusForbidden, r.status)
	assert.Equal(t, "FORBIDDEN", errorCode(r))

	r = s.do(t, "GET", "/api/complaints?status=all&priority=High", adminToken, nil)
	require.Equal(t, fiber.StatusOK, r.status)
	assert.Len(t, r.body["data"], 1)

	r = s.do(t, "GET", "/api/complaints?status=Resolved", adminToken, nil)
	require.Equal(t, fiber.StatusOK, r.status)
	assert.Len(t, r.body["data"], 0)

	r = s.do(t, "GET", "/api/complaints?status=Bogus", adminToken, nil)
	assert.Equal(t, fiber.StatusBadRequest, r.status)

	r = s.do(t, "PATCH", "/api/complaints/"+id, userToken, map[string]string{"status": "Resolved"})
	assert.Equal(t, fiber.StatusForbidden, r.status)

	r = s.do(t, "PATCH", "/api/complaints/"+id, adminToken, map[string]string{"status": "Closed"})
	assert.Equal(t, fiber.StatusBadRequest, r.status)

	r = s.do(t, "PATCH", "/api/complaints/"+id, adminToken, map[string]string{"status": "Resolved"})
	require.Equal(t, fiber.StatusOK, r.status)
	assert.Equal(t, "Resolved", r.body["data"].(map[string]any)["status"])

	r = s.do(t, "PATCH", "/api/complaints/does-not-exist", adminToken, map[string]string{"status": "Resolved"})
	assert.Equal(t, fiber.StatusNotFound, r.status)

	r = s.do(t, "DELETE", "/api/complaints/"+id, adminToken, nil)
	assert.Equal(t, fiber.StatusOK, r.status)

	r = s.do(t, "DELETE", "/api/complaints/"+id, adminToken, nil)
	assert.Equal(t, fiber.StatusNotFound, r.status)
	assert.Equal(t, "NOT_FOUND", errorCode(r))
}

func TestPageRedirects(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	_, err := s.authSvc.Register(ctx, service.RegisterInput{Name: "Ann", Email: "ann@example.com", Password: "secret1"})
	require.NoError(t, err)
	_, err = s.authSvc.CreateAdmin(ctx, "Root", "root@example.com", "secret1")
	require.NoError(t, err)
	userToken := s.login(t, "ann@example.com", "secret1")
	adminToken := s.login(t, "root@example.com", "secret1")

	cases := []struct {
		path     string
		token    string
		status   int
		location string
	}{
		{"/", "", fiber.StatusTemporaryRedirect, "/login"},
		{"/admin", "", fiber.StatusTemporaryRedirect, "/login"},
		{"/admin/complaints", userToken, fiber.StatusTemporaryRedirect, "/"},
		{"/admin", "garbage", fiber.StatusTemporaryRedirect, "/"},
		{"/", "garbage", fiber.StatusTemporaryRedirect, "/login"},
		{"/admin", adminToken, fiber.StatusOK, ""},
		{"/", userToken, fiber.StatusOK, ""},
		{"/login", "", fiber.StatusOK, ""},
		{"/register", "", fiber.StatusOK, ""},
		{"/login", userToken, fiber.StatusTemporaryRedirect, "/"},
		{"/register", adminToken, fiber.StatusTemporaryRedirect, "/admin"},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			r := s.do(t, "GET", tc.path, tc.token, nil)
			assert.Equal(t, tc.status, r.status)
			if tc.location != "" {
				assert.Equal(t, tc.location, r.header(fiber.HeaderLocation))
			}
		})
	}
}

func TestAPIIsNotRedirected(t *testing.T) {
	s := newTestServer(t)
	r := s.do(t, "GET", "/api/complaints", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, r.status)
	assert.Empty(t, r.header(fiber.HeaderLocation))
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	s := newTestServer(t)
	r := s.do(t, "GET", "/api/nope", "", nil)
	assert.Equal(t, fiber.StatusNotFound, r.status)
	assert.Equal(t, "NOT_FOUND", errorCode(r))
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	r := s.do(t, "GET", "/health/live", "", nil)
	assert.Equal(t, fiber.StatusOK, r.status)
	assert.Equal(t, "alive", r.body["status"])

	r = s.do(t, "GET", "/health/ready", "", nil)
	assert.Equal(t, fiber.StatusOK, r.status)
	assert.Equal(t, "ready", r.body["status"])

	r = s.do(t, "GET", "/metrics", "", nil)
	assert.Equal(t, fiber.StatusOK, r.status)
	assert.NotEmpty(t, r.header("X-Request-Id"))
}

func TestRateLimitFailsOpen(t *testing.T) {
	unreachable := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer unreachable.Close()

	for name, client := range map[string]*redis.Client{"disabled": nil, "unreachable": unreachable} {
		t.Run(name, func(t *testing.T) {
			assertNeverLimited(t, client)
		})
	}
}

func assertNeverLimited(t *testing.T, client *redis.Client) {
	t.Helper()
	app := fiber.New()
	app.Use(errorHandlingMiddleware(zap.NewNop(), nil))
	app.Get("/limited", RateLimit(client, 1, time.Minute, zap.NewNop()), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/limited", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
}
