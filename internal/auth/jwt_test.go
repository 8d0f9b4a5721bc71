package auth_test

import (
	"testing"
	"time"

	"github.com/amalthea/finance-api/internal/auth"
	"github.com/amalthea/finance-api/internal/config"
	"github.com/amalthea/finance-api/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-signing-secret-with-enough-bytes"

func testAuthConfig() *config.AuthConfig {
	return &config.AuthConfig{
		JWTSecret: testSecret,
		Issuer:    "finance-api",
		Audience:  "finance-api",
		TokenTTL:  60,
		APIKey:    "service-key",
	}
}

func signClaims(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestJWTValidator_RoundTrip(t *testing.T) {
	v := auth.NewJWTValidator(testAuthConfig())
	user := &auth.UserContext{
		UserID:      uuid.New(),
		DisplayName: "Priya Nair",
		Email:       "priya@example.com",
		Roles:       []domain.UserRoleType{domain.RoleManager, domain.RoleFinance},
		OrgID:       uuid.New(),
	}

	token, err := v.IssueToken(user)
	require.NoError(t, err)

	got, err := v.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.UserID, got.UserID)
	assert.Equal(t, user.OrgID, got.OrgID)
	assert.Equal(t, user.DisplayName, got.DisplayName)
	assert.Equal(t, user.Roles, got.Roles)
}

func TestJWTValidator_Rejects(t *testing.T) {
	cfg := testAuthConfig()
	v := auth.NewJWTValidator(cfg)
	now := time.Now()
	base := func() jwt.MapClaims {
		return jwt.MapClaims{
			"sub":         uuid.NewString(),
			"iss":         cfg.Issuer,
			"aud":         cfg.Audience,
			"exp":         now.Add(time.Hour).Unix(),
			auth.OrgClaim: uuid.NewString(),
			"roles":       []string{"employee"},
		}
	}

	t.Run("expired", func(t *testing.T) {
		claims := base()
		claims["exp"] = now.Add(-time.Minute).Unix()
		_, err := v.ValidateToken(signClaims(t, claims, testSecret))
		assert.ErrorIs(t, err, auth.ErrExpiredToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, err := v.ValidateToken(signClaims(t, base(), "another-secret"))
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		claims := base()
		claims["iss"] = "someone-else"
		_, err := v.ValidateToken(signClaims(t, claims, testSecret))
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("no organization", func(t *testing.T) {
		claims := base()
		delete(claims, auth.OrgClaim)
		_, err := v.ValidateToken(signClaims(t, claims, testSecret))
		assert.ErrorIs(t, err, auth.ErrMissingOrg)
	})

	t.Run("no expiry", func(t *testing.T) {
		claims := base()
		delete(claims, "exp")
		_, err := v.ValidateToken(signClaims(t, claims, testSecret))
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("unsigned", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, base()).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = v.ValidateToken(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("not configured", func(t *testing.T) {
		_, err := auth.NewJWTValidator(&config.AuthConfig{}).ValidateToken(signClaims(t, base(), testSecret))
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})
}

func TestJWTValidator_SubjectFallsBackToEmail(t *testing.T) {
	cfg := testAuthConfig()
	v := auth.NewJWTValidator(cfg)
	claims := jwt.MapClaims{
		"sub":         "external|12345",
		"email":       "ops@example.com",
		"iss":         cfg.Issuer,
		"aud":         cfg.Audience,
		"exp":         time.Now().Add(time.Hour).Unix(),
		auth.OrgClaim: uuid.NewString(),
	}

	first, err := v.ValidateToken(signClaims(t, claims, testSecret))
	require.NoError(t, err)
	second, err := v.ValidateToken(signClaims(t, claims, testSecret))
	require.NoError(t, err)
	assert.Equal(t, first.UserID, second.UserID)
	assert.NotEqual(t, uuid.Nil, first.UserID)
}

func TestExtractRoles(t *testing.T) {
	tests := []struct {
		name   string
		claims jwt.MapClaims
		want   []domain.UserRoleType
	}{
		{"array", jwt.MapClaims{"roles": []interface{}{"manager", "finance"}}, []domain.UserRoleType{domain.RoleManager, domain.RoleFinance}},
		{"single", jwt.MapClaims{"role": "viewer"}, []domain.UserRoleType{domain.RoleViewer}},
		{"unknown dropped", jwt.MapClaims{"roles": []interface{}{"wizard", " employee "}}, []domain.UserRoleType{domain.RoleEmployee}},
		{"none", jwt.MapClaims{}, []domain.UserRoleType{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, auth.ExtractRoles(tt.claims))
		})
	}
}
