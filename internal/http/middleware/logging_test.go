package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/amalthea/finance-api/internal/auth"
	"github.com/amalthea/finance-api/internal/http/middleware"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogging_RecordsAuthenticatedUser(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	user := &auth.UserContext{UserID: uuid.New(), OrgID: uuid.New()}

	// stands in for the auth middleware
	authenticate := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithUserContext(r.Context(), user)))
		})
	}
	h := chimw.RequestID(middleware.Logging(zap.New(core))(authenticate(middleware.CaptureUser(okHandler))))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	fields := entry.ContextMap()
	assert.Equal(t, zapcore.InfoLevel, entry.Level)
	assert.Equal(t, int64(http.StatusOK), fields["status_code"])
	assert.Equal(t, user.UserID.String(), fields["user_id"])
	assert.Equal(t, user.OrgID.String(), fields["org_id"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestLogging_LevelFollowsStatus(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	notFound := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) })

	middleware.Logging(zap.New(core))(notFound).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
	assert.NotContains(t, logs.All()[0].ContextMap(), "user_id")
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	panics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { panic("nil map write") })

	w := httptest.NewRecorder()
	middleware.Recovery(zap.New(core))(panics).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/documents/expenses", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal_error")
	require.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}
