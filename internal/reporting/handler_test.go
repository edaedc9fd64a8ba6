package reporting

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roster-backend/internal/platform/auth"
)

var secret = []byte("reporting-secret")

func newTestRouter(t *testing.T) (*gin.Engine, *fixture, string, string) {
	t.Helper()
	f := newFixture(t)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterAdminRoutes(r.Group("/api/v1", auth.RequireAuth(secret), auth.RequireRole(auth.RoleAdmin)), f.svc)

	issuer := auth.NewService(f.conn, secret, time.Hour)
	adminTok, err := issuer.IssueToken(admin)
	require.NoError(t, err)
	trainerTok, err := issuer.IssueToken(trainer)
	require.NoError(t, err)
	return r, f, adminTok, trainerTok
}

func get(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandlerAttendances(t *testing.T) {
	r, f, adminTok, trainerTok := newTestRouter(t)
	f.addInterval(t, time.Date(2024, 6, 5, 9, 0, 0, 0, tokyo), nil)

	w := get(r, "/api/v1/admin/attendances?from=2024-06-05&to=2024-06-05", adminTok)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "佐藤", rows[0]["trainer_name"])
	assert.Nil(t, rows[0]["clock_out_time"])

	w = get(r, "/api/v1/admin/attendances?from=2024-06-05", adminTok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = get(r, "/api/v1/admin/attendances", trainerTok)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = get(r, "/api/v1/admin/attendances", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandlerExport(t *testing.T) {
	r, f, adminTok, _ := newTestRouter(t)
	f.addInterval(t, time.Date(2024, 6, 5, 9, 0, 0, 0, tokyo), nil)

	w := get(r, "/api/v1/admin/attendances/export?format=csv", adminTok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attendances_20240610_120000.csv")
	assert.NotEmpty(t, w.Body.Bytes())

	w = get(r, "/api/v1/admin/attendances/export?format=pdf", adminTok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlerShiftHistory(t *testing.T) {
	r, _, adminTok, _ := newTestRouter(t)

	w := get(r, "/api/v1/admin/shifts/history?status=pending", adminTok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}
