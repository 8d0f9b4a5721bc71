package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/amalthea/finance-api/internal/auth"
	"github.com/amalthea/finance-api/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// captureUser returns a handler that records the authenticated user
func captureUser(dst **auth.UserContext) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _ := auth.FromContext(r.Context())
		*dst = user
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware_APIKey(t *testing.T) {
	m := auth.NewMiddleware(testAuthConfig(), zap.NewNop())
	orgID := uuid.New()

	tests := []struct {
		name   string
		key    string
		org    string
		status int
	}{
		{"valid key and org", "service-key", orgID.String(), http.StatusOK},
		{"missing org", "service-key", "", http.StatusBadRequest},
		{"malformed org", "service-key", "acme", http.StatusBadRequest},
		{"wrong key", "guess", orgID.String(), http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var user *auth.UserContext
			req := httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil)
			req.Header.Set(auth.APIKeyHeader, tt.key)
			if tt.org != "" {
				req.Header.Set(auth.OrgHeader, tt.org)
			}
			rr := httptest.NewRecorder()
			m.Authenticate(captureUser(&user)).ServeHTTP(rr, req)

			require.Equal(t, tt.status, rr.Code)
			if tt.status == http.StatusOK {
				require.NotNil(t, user)
				assert.Equal(t, orgID, user.OrgID)
				assert.True(t, user.HasRole(domain.RoleAPIService))
				assert.False(t, user.HasPermission(domain.PermissionDocumentsApprove))
			}
		})
	}
}

func TestMiddleware_BearerToken(t *testing.T) {
	cfg := testAuthConfig()
	m := auth.NewMiddleware(cfg, zap.NewNop())
	issued := &auth.UserContext{
		UserID: uuid.New(),
		Roles:  []domain.UserRoleType{domain.RoleEmployee},
		OrgID:  uuid.New(),
	}
	token, err := auth.NewJWTValidator(cfg).IssueToken(issued)
	require.NoError(t, err)

	var user *auth.UserContext
	req := httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	m.Authenticate(captureUser(&user)).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, issued.UserID, user.UserID)
	assert.Equal(t, issued.OrgID, user.Actor().OrgID)

	for _, header := range []string{"", "Bearer", "Basic dXNlcjpwYXNz", "Bearer not-a-jwt"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rr := httptest.NewRecorder()
		m.Authenticate(captureUser(&user)).ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, header)
	}
}

func TestMiddleware_RequirePermission(t *testing.T) {
	m := auth.NewMiddleware(testAuthConfig(), zap.NewNop())
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	guarded := m.RequirePermission(domain.PermissionSequencesAdmin)(ok)

	tests := []struct {
		name   string
		user   *auth.UserContext
		status int
	}{
		{"org admin", &auth.UserContext{Roles: []domain.UserRoleType{domain.RoleOrgAdmin}}, http.StatusOK},
		{"super admin", &auth.UserContext{Roles: []domain.UserRoleType{domain.RoleSuperAdmin}}, http.StatusOK},
		{"manager", &auth.UserContext{Roles: []domain.UserRoleType{domain.RoleManager}}, http.StatusForbidden},
		{"anonymous", nil, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/api/v1/sequences/SO", nil)
			if tt.user != nil {
				req = req.WithContext(auth.WithUserContext(req.Context(), tt.user))
			}
			rr := httptest.NewRecorder()
			guarded.ServeHTTP(rr, req)
			assert.Equal(t, tt.status, rr.Code)
		})
	}
}

func TestMiddleware_RequireRole(t *testing.T) {
	m := auth.NewMiddleware(testAuthConfig(), zap.NewNop())
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	guarded := m.RequireRole(domain.RoleFinance, domain.RoleOrgAdmin)(ok)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(auth.WithUserContext(req.Context(), &auth.UserContext{Roles: []domain.UserRoleType{domain.RoleFinance}}))
	rr := httptest.NewRecorder()
	guarded.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(auth.WithUserContext(req.Context(), &auth.UserContext{Roles: []domain.UserRoleType{domain.RoleEmployee}}))
	rr = httptest.NewRecorder()
	guarded.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}
