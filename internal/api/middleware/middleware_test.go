package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ruralwork/config"
	"ruralwork/internal/model"
	"ruralwork/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestManager() *jwt.Manager {
	return jwt.NewManager(&config.AuthConfig{
		JWTSecret:               "test-secret-key-for-unit-testing-2026",
		AccessTokenTTL:          15 * time.Minute,
		RefreshTokenTTLDefault:  24 * time.Hour,
		RefreshTokenTTLRemember: 7 * 24 * time.Hour,
	})
}

type fakeBlacklist struct {
	revoked map[string]bool
	err     error
}

func (f *fakeBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	return f.revoked[jti], f.err
}

type fakeLimiter struct {
	calls int
	limit int
}

func (f *fakeLimiter) CheckRateLimit(_ context.Context, _ string, _ int, _ time.Duration) (bool, error) {
	f.calls++
	return f.calls <= f.limit, nil
}

func authedEngine(mgr *jwt.Manager, bl TokenBlacklist, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append([]gin.HandlerFunc{JWTAuth(mgr, bl)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("user_id"), "role": c.GetString("role")})
	})
	r.GET("/p", handlers...)
	return r
}

func doGet(r *gin.Engine, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/p", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	mgr := newTestManager()
	access, err := mgr.GenerateAccessToken("u1", "town_staff", "党政办")
	require.NoError(t, err)
	refresh, err := mgr.GenerateRefreshToken("u1", "town_staff", "党政办", false)
	require.NoError(t, err)

	t.Run("Valid", func(t *testing.T) {
		w := doGet(authedEngine(mgr, nil), access)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"user_id":"u1"`)
	})
	t.Run("MissingHeader", func(t *testing.T) {
		w := doGet(authedEngine(mgr, nil), "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
	t.Run("RefreshTokenRejected", func(t *testing.T) {
		w := doGet(authedEngine(mgr, nil), refresh)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
	t.Run("Garbage", func(t *testing.T) {
		w := doGet(authedEngine(mgr, nil), "not-a-token")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestJWTAuth_Blacklist(t *testing.T) {
	mgr := newTestManager()
	access, err := mgr.GenerateAccessToken("u1", "admin", "")
	require.NoError(t, err)
	claims, err := mgr.ParseToken(access)
	require.NoError(t, err)

	bl := &fakeBlacklist{revoked: map[string]bool{claims.ID: true}}
	w := doGet(authedEngine(mgr, bl), access)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "11003")

	// 黑名单查询出错时放行
	w = doGet(authedEngine(mgr, &fakeBlacklist{err: errors.New("redis down")}), access)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireCapability(t *testing.T) {
	mgr := newTestManager()

	tests := []struct {
		role string
		cap  model.Capability
		want int
	}{
		{"admin", model.CapAdmin, http.StatusOK},
		{"town_staff", model.CapAdmin, http.StatusForbidden},
		{"town_staff", model.CapTeamEvaluate, http.StatusForbidden},
		{"station_staff", model.CapTeamEvaluate, http.StatusOK},
		{"work_team", model.CapVote, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.role+"/"+string(tt.cap), func(t *testing.T) {
			token, err := mgr.GenerateAccessToken("u1", tt.role, "")
			require.NoError(t, err)

			w := doGet(authedEngine(mgr, nil, RequireCapability(tt.cap)), token)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRateLimit(t *testing.T) {
	limiter := &fakeLimiter{limit: 2}
	r := gin.New()
	r.POST("/login", RateLimit(limiter, 2, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("POST", "/login", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	// 未配置限流器时放行
	r = gin.New()
	r.POST("/login", RateLimit(nil, 1, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/login", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBodyLimit_DeclaredLength(t *testing.T) {
	r := gin.New()
	r.Use(BodyLimit(8))
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/x", strings.NewReader("0123456789")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(requestIDKey)) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/x", nil)
	req.Header.Set(requestIDHeader, "abc")
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get(requestIDHeader))
	assert.Equal(t, "abc", w.Body.String())

	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/x", nil)
	req.Header.Set(requestIDHeader, strings.Repeat("x", 100))
	r.ServeHTTP(w, req)
	assert.Len(t, w.Header().Get(requestIDHeader), 36)
}
