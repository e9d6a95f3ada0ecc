package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medhq/hospital-api/internal/middleware"
	"github.com/medhq/hospital-api/internal/model"
)

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(mw...)
	engine.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return engine
}

func get(engine *gin.Engine, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestRequestIDGenerated(t *testing.T) {
	engine := newEngine(middleware.RequestID())

	rec := get(engine, nil)
	assert.NotEmpty(t, rec.Header().Get(middleware.HeaderXRequestID))
}

func TestRequestIDPropagated(t *testing.T) {
	engine := newEngine(middleware.RequestID())

	rec := get(engine, map[string]string{middleware.HeaderXRequestID: "req-123"})
	assert.Equal(t, "req-123", rec.Header().Get(middleware.HeaderXRequestID))
}

func TestRateLimiterRejectsBurstOverflow(t *testing.T) {
	rl := middleware.NewRateLimiter(middleware.RateLimiterConfig{RPS: 1, Burst: 2})
	engine := newEngine(rl.RateLimit())

	assert.Equal(t, http.StatusOK, get(engine, nil).Code)
	assert.Equal(t, http.StatusOK, get(engine, nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, get(engine, nil).Code)
}

func TestCORSPreflight(t *testing.T) {
	engine := newEngine(middleware.CORS(middleware.DefaultCORSConfig()))

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Methods"))
}

func TestCORSDisallowedOrigin(t *testing.T) {
	cfg := middleware.DefaultCORSConfig()
	cfg.AllowOrigins = []string{"https://app.example.com"}
	engine := newEngine(middleware.CORS(cfg))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	mw := middleware.NewAuthMiddleware(nil)
	inject := func(role model.Role) gin.HandlerFunc {
		return func(c *gin.Context) {
			c.Set(middleware.ContextActor, model.NewActor(uuid.New(), role, "x@example.com"))
		}
	}

	engine.GET("/admin-only", inject(model.RolePatient), mw.RequireRole(model.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	engine.GET("/admin-ok", inject(model.RoleAdmin), mw.RequireRole(model.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	engine.GET("/no-actor", mw.RequireRole(model.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := func(path string) int {
		r := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, r)
		return rec.Code
	}

	assert.Equal(t, http.StatusForbidden, req("/admin-only"))
	assert.Equal(t, http.StatusOK, req("/admin-ok"))
	assert.Equal(t, http.StatusUnauthorized, req("/no-actor"))
}

func TestTimeoutAttachesDeadline(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(middleware.Timeout(middleware.TimeoutConfig{Duration: 5 * time.Second}))
	engine.GET("/ping", func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		require.True(t, ok)
		c.Status(http.StatusOK)
	})

	rec := get(engine, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
