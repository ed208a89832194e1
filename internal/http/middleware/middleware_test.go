package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/bloom-backend/internal/observability"
	"github.com/yungbote/bloom-backend/internal/platform/ctxutil"
	"github.com/yungbote/bloom-backend/internal/platform/logger"
	"github.com/yungbote/bloom-backend/internal/platform/session"
)

func newSessions(t *testing.T) *session.Manager {
	t.Helper()
	m, err := session.NewManager("test-secret", time.Hour)
	require.NoError(t, err)
	return m
}

func authRouter(am *AuthMiddleware, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{am.RequireAuth()}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		rd := ctxutil.GetRequestData(c.Request.Context())
		c.String(http.StatusOK, rd.UserID.String()+"|"+rd.Role)
	})
	r.GET("/api/me", handlers...)
	return r
}

func TestRequireAuth(t *testing.T) {
	sessions := newSessions(t)
	am := NewAuthMiddleware(logger.Nop(), sessions)
	userID, companyID := uuid.New(), uuid.New()
	value, err := sessions.Issue(userID, companyID, "member")
	require.NoError(t, err)

	tests := []struct {
		name   string
		setup  func(*http.Request)
		status int
	}{
		{name: "missing", setup: func(*http.Request) {}, status: http.StatusUnauthorized},
		{name: "garbage", setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, status: http.StatusUnauthorized},
		{name: "cookie", setup: func(r *http.Request) { r.AddCookie(&http.Cookie{Name: session.CookieName, Value: value}) }, status: http.StatusOK},
		{name: "bearer", setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+value) }, status: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()
			authRouter(am).ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, userID.String()+"|member", rec.Body.String())
			} else {
				assert.Contains(t, rec.Body.String(), `"code":"unauthorized"`)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	sessions := newSessions(t)
	am := NewAuthMiddleware(logger.Nop(), sessions)

	for role, want := range map[string]int{"member": http.StatusForbidden, "admin": http.StatusOK} {
		value, err := sessions.Issue(uuid.New(), uuid.New(), role)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.Header.Set("Authorization", "Bearer "+value)
		rec := httptest.NewRecorder()
		authRouter(am, am.RequireAdmin()).ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, role)
	}
}

func TestAttachTraceContextEchoesIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/x", func(c *gin.Context) {
		c.String(http.StatusOK, ctxutil.TraceID(c.Request.Context()))
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(headerTraceID, "abc123")
	req.Header.Set(headerRequestID, "req-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "abc123", rec.Body.String())
	assert.Equal(t, "abc123", rec.Header().Get(headerTraceID))
	assert.Equal(t, "req-1", rec.Header().Get(headerRequestID))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Len(t, rec.Body.String(), 32)
	assert.False(t, strings.Contains(rec.Body.String(), "-"))
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := observability.NewMetrics(time.Minute)
	r := gin.New()
	r.Use(Metrics(m), RequestLogger(logger.Nop()))
	r.GET("/api/surveys/:id/analytics", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/surveys/"+uuid.NewString()+"/analytics", nil))
		require.Equal(t, http.StatusNoContent, rec.Code)
	}

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	var found bool
	for _, mf := range families {
		if mf.GetName() != "bloom_api_requests_total" {
			continue
		}
		require.Len(t, mf.GetMetric(), 1)
		series := mf.GetMetric()[0]
		labels := map[string]string{}
		for _, lp := range series.GetLabel() {
			labels[lp.GetName()] = lp.GetValue()
		}
		assert.Equal(t, "/api/surveys/:id/analytics", labels["route"])
		assert.Equal(t, "204", labels["status"])
		assert.Equal(t, 2.0, series.GetCounter().GetValue())
		found = true
	}
	assert.True(t, found)
	n, err := testutil.GatherAndCount(m.Registry(), "bloom_api_inflight_requests")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
