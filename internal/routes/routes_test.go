package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/questchain/questchain-api/internal/apps"
	"github.com/questchain/questchain-api/internal/apps/notes"
	"github.com/questchain/questchain-api/internal/apps/notifications"
	"github.com/questchain/questchain-api/internal/apps/quests"
	"github.com/questchain/questchain-api/internal/config"
	"github.com/questchain/questchain-api/internal/handlers"
	"github.com/questchain/questchain-api/internal/middleware"
	"github.com/questchain/questchain-api/internal/models"
	"github.com/questchain/questchain-api/internal/services"
	"github.com/questchain/questchain-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cronSecret = "cron-secret"

type routeEnv struct {
	app        *fiber.App
	userToken  string
	adminToken string
}

func newRouteEnv(t *testing.T) *routeEnv {
	t.Helper()

	plugins := []apps.Plugin{quests.New(), notes.New(), notifications.New()}
	var featureModels []interface{}
	for _, p := range plugins {
		featureModels = append(featureModels, p.Models()...)
	}
	db := testutil.NewDB(t, featureModels...)

	cfg := &config.Config{
		JWTSecret:     "routes-secret",
		JWTExpiry:     time.Hour,
		CronSecretKey: cronSecret,
	}
	authService := services.NewAuthService(db, cfg, services.DisabledMailer{})
	userService := services.NewUserService(db, services.DisabledPhotoStore{}, apps.Cleaners(plugins, db, cfg)...)

	app := fiber.New()
	Setup(app, cfg, db,
		handlers.NewAuthHandler(authService),
		handlers.NewUserHandler(userService),
		handlers.NewHealthHandler(func() error { return nil }),
		plugins,
	)

	user := testutil.CreateUser(t, db, "walker")
	admin := testutil.CreateUser(t, db, "keeper")
	require.NoError(t, db.Model(admin).Update("role", models.RoleAdmin).Error)

	userToken, err := authService.GenerateToken(user)
	require.NoError(t, err)
	adminToken, err := authService.GenerateToken(admin)
	require.NoError(t, err)

	return &routeEnv{app: app, userToken: userToken, adminToken: adminToken}
}

func (e *routeEnv) do(t *testing.T, method, path string, body interface{}, headers map[string]string) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func bearer(token string) map[string]string {
	return map[string]string{fiber.HeaderAuthorization: "Bearer " + token}
}

func TestPublicRoutes(t *testing.T) {
	env := newRouteEnv(t)

	status, _ := env.do(t, fiber.MethodGet, "/api/health", nil, nil)
	assert.Equal(t, fiber.StatusOK, status)

	status, body := env.do(t, fiber.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body), "# HELP")
}

func TestPluginGroupsRequireToken(t *testing.T) {
	env := newRouteEnv(t)

	for _, path := range []string{"/api/quests/activity-heatmap", "/api/notes", "/api/notifications", "/api/users/me"} {
		status, _ := env.do(t, fiber.MethodGet, path, nil, nil)
		assert.Equal(t, fiber.StatusUnauthorized, status, path)
	}

	create := quests.CreateQuestRequest{
		Name: "Read", Goal: 10, PenaltyPoints: 5, Type: quests.TypeGoal,
		StartDate: "2024-01-01", NumberOfDays: 2,
	}
	status, _ := env.do(t, fiber.MethodPost, "/api/quests", create, bearer(env.userToken))
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = env.do(t, fiber.MethodGet, "/api/quests/activity-heatmap", nil, bearer(env.userToken))
	assert.Equal(t, fiber.StatusOK, status)
}

func TestNamedQuestRoutesWinOverDate(t *testing.T) {
	env := newRouteEnv(t)

	status, body := env.do(t, fiber.MethodGet, "/api/quests/regularity", nil, bearer(env.userToken))
	require.Equal(t, fiber.StatusOK, status, string(body))

	var resp quests.RegularityResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, 0, resp.TotalDays)
}

func TestCronRoutesUseKeyNotToken(t *testing.T) {
	env := newRouteEnv(t)
	key := map[string]string{middleware.CronKeyHeader: cronSecret}

	status, _ := env.do(t, fiber.MethodGet, "/api/cron/send-daily-summary", nil, key)
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = env.do(t, fiber.MethodPost, "/api/cron/send-evening-reminders", nil, key)
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = env.do(t, fiber.MethodPost, "/api/cron/send-evening-reminders", nil, bearer(env.userToken))
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestBroadcastIsAdminOnly(t *testing.T) {
	env := newRouteEnv(t)
	req := notifications.BroadcastRequest{Title: "Heads up", Message: "Maintenance tonight"}

	status, _ := env.do(t, fiber.MethodPost, "/api/admin/notifications/broadcast", req, nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = env.do(t, fiber.MethodPost, "/api/admin/notifications/broadcast", req, bearer(env.userToken))
	assert.Equal(t, fiber.StatusForbidden, status)

	status, body := env.do(t, fiber.MethodPost, "/api/admin/notifications/broadcast", req, bearer(env.adminToken))
	require.Equal(t, fiber.StatusOK, status, string(body))
	var resp notifications.BroadcastResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, 2, resp.Recipients)
}
