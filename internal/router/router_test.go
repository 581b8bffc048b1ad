package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/astacala/gateway/internal/config"
	"github.com/astacala/gateway/internal/database"
	"github.com/astacala/gateway/internal/events"
	"github.com/astacala/gateway/internal/model"
	"github.com/astacala/gateway/internal/repository"
	"github.com/astacala/gateway/internal/surface"
	"github.com/astacala/gateway/internal/utils"
)

type app struct {
	e      *echo.Echo
	db     *sqlx.DB
	events *events.Recorder
	users  *repository.UserRepo
}

func newApp(t *testing.T) *app {
	t.Helper()
	db, err := database.Open(database.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.EnsureSchema(context.Background(), db))

	rec := &events.Recorder{}
	e, err := New(Deps{
		Config: config.Config{
			BcryptCost:         bcrypt.MinCost,
			LegacyLoginDomain:  "admin.astacala.local",
			BroadcastSecret:    "test-secret",
			BroadcastTicketTTL: time.Minute,
			StoreTimeout:       5 * time.Second,
			MetricsEnabled:     true,
		},
		DB:     db,
		Events: rec,
		Log:    zap.NewNop(),
	})
	require.NoError(t, err)
	return &app{e: e, db: db, events: rec, users: repository.NewUserRepo(db)}
}

func (a *app) seed(t *testing.T, email, role string, active bool) uint64 {
	t.Helper()
	hash, err := utils.HashPassword("password123", bcrypt.MinCost)
	require.NoError(t, err)
	id, err := a.users.Create(context.Background(), model.User{
		Email: email, Name: "User " + email, PasswordHash: hash, Role: role, IsActive: active,
	})
	require.NoError(t, err)
	return id
}

func (a *app) call(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), rec.Body.String())
	return m
}

func (a *app) mobileLogin(t *testing.T, email string) string {
	t.Helper()
	rec := a.call(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": email, "password": "password123"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body struct {
		Data struct {
			Tokens surface.MobileTokens `json:"tokens"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Data.Tokens.AccessToken)
	return body.Data.Tokens.AccessToken
}

func TestAdminLoginAccessAndLogout(t *testing.T) {
	a := newApp(t)
	a.seed(t, "admin@test.com", "ADMIN", true)

	token := a.mobileLogin(t, "admin@test.com")

	rec := a.call(http.MethodGet, "/api/v1/admin/users", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	users := decodeMap(t, rec)["data"].([]any)
	assert.Len(t, users, 1)

	rec = a.call(http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = a.call(http.MethodGet, "/api/v1/admin/users", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	assert.Len(t, a.events.Named(events.UserLoggedIn), 1)
}

func TestLoginFailuresShareOneShape(t *testing.T) {
	a := newApp(t)
	a.seed(t, "admin@test.com", "ADMIN", true)
	a.seed(t, "inactive@test.com", "VOLUNTEER", false)

	wrong := a.call(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "admin@test.com", "password": "nope"})
	missing := a.call(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "ghost@test.com", "password": "password123"})
	inactive := a.call(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "inactive@test.com", "password": "password123"})

	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, wrong.Code, missing.Code)
	assert.Equal(t, wrong.Code, inactive.Code)
	assert.Equal(t, wrong.Body.String(), missing.Body.String())
	assert.Equal(t, wrong.Body.String(), inactive.Body.String())
}

func TestLoginValidationNamesCanonicalFields(t *testing.T) {
	a := newApp(t)
	rec := a.call(http.MethodPost, "/api/gibran/auth/login", "", map[string]string{"password": "x"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	errs := decodeMap(t, rec)["errors"].(map[string]any)
	assert.Contains(t, errs, "identifier")
	assert.NotContains(t, errs, "username")

	rec = a.call(http.MethodPost, "/api/v1/auth/login", "", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestLegacyLoginByUsername(t *testing.T) {
	a := newApp(t)
	a.seed(t, "budi@admin.astacala.local", "admin", true)

	rec := a.call(http.MethodPost, "/api/gibran/auth/login", "", map[string]string{"username": "Budi", "password": "password123"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeMap(t, rec)
	assert.Equal(t, "success", body["status"])
	token, _ := body["access_token"].(string)
	require.NotEmpty(t, token)
	user := body["user"].(map[string]any)
	assert.Equal(t, "ADMIN", user["role"])
	assert.Contains(t, user, "nama")
	assert.NotContains(t, body, "data")

	rec = a.call(http.MethodGet, "/api/gibran/profil", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	profil := decodeMap(t, rec)["data"].(map[string]any)
	assert.Equal(t, "budi@admin.astacala.local", profil["email"])

	rec = a.call(http.MethodGet, "/api/gibran/admin/pengguna", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoleGates(t *testing.T) {
	a := newApp(t)
	a.seed(t, "vol@test.com", "relawan", true)
	a.seed(t, "root@test.com", "superadmin", true)

	vol := a.mobileLogin(t, "vol@test.com")
	root := a.mobileLogin(t, "root@test.com")

	assert.Equal(t, http.StatusForbidden, a.call(http.MethodGet, "/api/v1/admin/users", vol, nil).Code)
	assert.Equal(t, http.StatusOK, a.call(http.MethodGet, "/api/v1/admin/users", root, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, a.call(http.MethodGet, "/api/v1/admin/users", "", nil).Code)
	assert.Equal(t, http.StatusOK, a.call(http.MethodGet, "/api/v1/auth/me", vol, nil).Code)
}

func TestLegacyReportSubmission(t *testing.T) {
	a := newApp(t)
	a.seed(t, "vol@test.com", "VOLUNTEER", true)
	token := a.mobileLogin(t, "vol@test.com")

	rec := a.call(http.MethodPost, "/api/gibran/pelaporans", token, map[string]any{
		"judul_laporan":     "Banjir",
		"jenis_bencana":     "FLOOD",
		"deskripsi":         "Air setinggi lutut",
		"lokasi":            "Bekasi",
		"tingkat_keparahan": "HIGH",
		"foto_lokasi":       "x.jpg",
	})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	data := decodeMap(t, rec)["data"].(map[string]any)
	assert.Equal(t, "Banjir", data["judul_laporan"])
	assert.NotEmpty(t, data["id"])

	published := a.events.Named(events.ReportSubmitted)
	require.Len(t, published, 1)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(published[0].Payload, &payload))
	assert.Equal(t, data["id"], payload["report_id"])
	assert.Equal(t, "Banjir", payload["report"].(map[string]any)["title"])

	rec = a.call(http.MethodPost, "/api/gibran/pelaporans", token, map[string]any{"judul_laporan": "x"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	errs := decodeMap(t, rec)["errors"].(map[string]any)
	assert.Contains(t, errs, "disaster_type")
	assert.Contains(t, errs, "location_name")
}

func TestScopedTokenCannotSubmitReports(t *testing.T) {
	a := newApp(t)
	a.seed(t, "vol@test.com", "VOLUNTEER", true)
	full := a.mobileLogin(t, "vol@test.com")

	rec := a.call(http.MethodPost, "/api/v1/auth/tokens", full, map[string]any{"label": "forum token", "abilities": []string{"forum:read"}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	scoped := decodeMap(t, rec)["data"].(map[string]any)["access_token"].(string)

	report := map[string]any{"title": "Gempa", "disaster_type": "EARTHQUAKE", "description": "d", "location_name": "Cianjur"}
	assert.Equal(t, http.StatusForbidden, a.call(http.MethodPost, "/api/v1/reports", scoped, report).Code)
	assert.Equal(t, http.StatusAccepted, a.call(http.MethodPost, "/api/v1/reports", full, report).Code)

	rec = a.call(http.MethodPost, "/api/v1/auth/tokens", scoped, map[string]any{"abilities": []string{"*"}})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.call(http.MethodGet, "/api/v1/auth/tokens", full, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeMap(t, rec)["data"].([]any), 2)
}

func TestDeactivationRevokesTokens(t *testing.T) {
	a := newApp(t)
	volID := a.seed(t, "vol@test.com", "VOLUNTEER", true)
	a.seed(t, "root@test.com", "SUPER_ADMIN", true)
	vol := a.mobileLogin(t, "vol@test.com")
	root := a.mobileLogin(t, "root@test.com")

	path := fmt.Sprintf("/api/v1/admin/users/%d/status", volID)
	rec := a.call(http.MethodPatch, path, root, map[string]any{"is_active": false})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, false, decodeMap(t, rec)["data"].(map[string]any)["is_active"])

	assert.Equal(t, http.StatusUnauthorized, a.call(http.MethodGet, "/api/v1/auth/me", vol, nil).Code)
	assert.Len(t, a.events.Named(events.UserDeactivated), 1)

	rec = a.call(http.MethodPatch, "/api/v1/admin/users/9999/status", root, map[string]any{"is_active": true})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRoleChangeCanonicalizes(t *testing.T) {
	a := newApp(t)
	volID := a.seed(t, "vol@test.com", "VOLUNTEER", true)
	a.seed(t, "root@test.com", "SUPER_ADMIN", true)
	root := a.mobileLogin(t, "root@test.com")

	path := fmt.Sprintf("/api/v1/admin/users/%d/role", volID)
	rec := a.call(http.MethodPatch, path, root, map[string]any{"role": "administrator"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "ADMIN", decodeMap(t, rec)["data"].(map[string]any)["role"])

	rec = a.call(http.MethodPatch, path, root, map[string]any{"role": "owner"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestBroadcastTickets(t *testing.T) {
	a := newApp(t)
	id := a.seed(t, "vol@test.com", "VOLUNTEER", true)
	vol := a.mobileLogin(t, "vol@test.com")

	rec := a.call(http.MethodPost, "/api/v1/broadcasting/auth", vol, map[string]any{"channel_name": fmt.Sprintf("private-user.%d", id)})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, decodeMap(t, rec)["data"].(map[string]any)["auth"])

	rec = a.call(http.MethodPost, "/api/v1/broadcasting/auth", vol, map[string]any{"channel_name": "private-admin"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestProfileUpdateLegacy(t *testing.T) {
	a := newApp(t)
	a.seed(t, "vol@test.com", "VOLUNTEER", true)
	token := a.mobileLogin(t, "vol@test.com")

	rec := a.call(http.MethodPut, "/api/gibran/profil", token, map[string]any{"nama": "Siti", "organisasi": "Astacala"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := decodeMap(t, rec)["data"].(map[string]any)
	assert.Equal(t, "Siti", data["nama"])
	assert.Equal(t, "Astacala", data["organisasi"])

	rec = a.call(http.MethodGet, "/api/v1/users/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Siti", decodeMap(t, rec)["data"].(map[string]any)["name"])
}

func TestBuildPolicyCoversProtectedEndpoints(t *testing.T) {
	policy, err := BuildPolicy()
	require.NoError(t, err)
	for _, s := range surface.Surfaces {
		for _, ep := range Endpoints(s) {
			_, ok := policy.FindRolePolicy(ep.ID)
			assert.Equal(t, ep.Protected(), ok, ep.ID)
		}
	}
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	a := newApp(t)
	rec := a.call(http.MethodGet, "/api/gibran/tidak-ada", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "error", decodeMap(t, rec)["status"])

	assert.Equal(t, http.StatusOK, a.call(http.MethodGet, "/healthz", "", nil).Code)
	assert.Equal(t, http.StatusOK, a.call(http.MethodGet, "/readyz", "", nil).Code)
}
