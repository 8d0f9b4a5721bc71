package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/amalthea/finance-api/internal/auth"
	"github.com/amalthea/finance-api/internal/config"
	"github.com/amalthea/finance-api/internal/http/middleware"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func hit(h http.Handler, path, ip string, user *auth.UserContext) int {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = ip + ":4242"
	if user != nil {
		req = req.WithContext(auth.WithUserContext(req.Context(), user))
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimiter_ByIP(t *testing.T) {
	rl := middleware.NewRateLimiter(&config.RateLimitConfig{
		Enabled:               true,
		RequestsPerMinute:     2,
		RequestsPerMinuteAuth: 100,
		WhitelistIPs:          []string{"10.0.0.9"},
		WhitelistPaths:        []string{"/health", "/swagger/*"},
	}, zap.NewNop())
	h := rl.LimitByIP(okHandler)

	assert.Equal(t, http.StatusOK, hit(h, "/api/v1/projects", "203.0.113.7", nil))
	assert.Equal(t, http.StatusOK, hit(h, "/api/v1/projects", "203.0.113.7", nil))
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "/api/v1/projects", "203.0.113.7", nil))

	// another client has its own budget
	assert.Equal(t, http.StatusOK, hit(h, "/api/v1/projects", "203.0.113.8", nil))

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, hit(h, "/health", "203.0.113.7", nil))
		assert.Equal(t, http.StatusOK, hit(h, "/swagger/index.html", "203.0.113.7", nil))
		assert.Equal(t, http.StatusOK, hit(h, "/api/v1/projects", "10.0.0.9", nil))
	}
}

func TestRateLimiter_ByUser(t *testing.T) {
	rl := middleware.NewRateLimiter(&config.RateLimitConfig{
		Enabled:               true,
		RequestsPerMinute:     100,
		RequestsPerMinuteAuth: 1,
	}, zap.NewNop())
	h := rl.LimitByUser(okHandler)

	alice := &auth.UserContext{UserID: uuid.New(), OrgID: uuid.New()}
	bob := &auth.UserContext{UserID: uuid.New(), OrgID: alice.OrgID}

	assert.Equal(t, http.StatusOK, hit(h, "/api/v1/projects", "198.51.100.1", alice))
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "/api/v1/projects", "198.51.100.2", alice))
	assert.Equal(t, http.StatusOK, hit(h, "/api/v1/projects", "198.51.100.1", bob))
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := middleware.NewRateLimiter(&config.RateLimitConfig{RequestsPerMinute: 1}, zap.NewNop())
	h := rl.LimitByIP(okHandler)
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, hit(h, "/api/v1/projects", "203.0.113.7", nil))
	}
}
