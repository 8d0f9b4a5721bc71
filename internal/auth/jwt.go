package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amalthea/finance-api/internal/config"
	"github.com/amalthea/finance-api/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrMissingOrg   = errors.New("token missing organization")
)

// OrgClaim carries the organization id of the token subject
const OrgClaim = "org_id"

// JWTValidator validates HMAC-signed access tokens
type JWTValidator struct {
	config *config.AuthConfig
	now    func() time.Time
}

// NewJWTValidator creates a new JWT validator
func NewJWTValidator(cfg *config.AuthConfig) *JWTValidator {
	return &JWTValidator{config: cfg, now: time.Now}
}

// ValidateToken validates a JWT token and returns user context
func (v *JWTValidator) ValidateToken(tokenString string) (*UserContext, error) {
	if v.config.JWTSecret == "" {
		return nil, fmt.Errorf("%w: token validation is not configured", ErrInvalidToken)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.now),
		jwt.WithExpirationRequired(),
	}
	if v.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.config.Issuer))
	}
	if v.config.Audience != "" {
		opts = append(opts, jwt.WithAudience(v.config.Audience))
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(v.config.JWTSecret), nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	user := &UserContext{
		DisplayName: extractString(claims, "name", "preferred_username"),
		Email:       extractString(claims, "email", "upn"),
		Roles:       ExtractRoles(claims),
	}

	sub, _ := claims.GetSubject()
	if uid, err := uuid.Parse(sub); err == nil {
		user.UserID = uid
	} else if user.Email != "" {
		user.UserID = uuid.NewSHA1(uuid.NameSpaceOID, []byte(user.Email))
	} else {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	orgID, err := uuid.Parse(extractString(claims, OrgClaim))
	if err != nil || orgID == uuid.Nil {
		return nil, ErrMissingOrg
	}
	user.OrgID = orgID

	return user, nil
}

// IssueToken signs an access token for user. It is used by tooling and tests;
// production tokens are expected from the identity provider.
func (v *JWTValidator) IssueToken(user *UserContext) (string, error) {
	if v.config.JWTSecret == "" {
		return "", fmt.Errorf("jwt secret is not configured")
	}
	now := v.now()
	ttl := v.config.TokenTTLDuration()
	if ttl <= 0 {
		ttl = time.Hour
	}

	claims := jwt.MapClaims{
		"sub":    user.UserID.String(),
		"name":   user.DisplayName,
		"email":  user.Email,
		"roles":  user.RolesAsStrings(),
		OrgClaim: user.OrgID.String(),
		"iat":    now.Unix(),
		"exp":    now.Add(ttl).Unix(),
	}
	if v.config.Issuer != "" {
		claims["iss"] = v.config.Issuer
	}
	if v.config.Audience != "" {
		claims["aud"] = v.config.Audience
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(v.config.JWTSecret))
}

func extractString(claims jwt.MapClaims, keys ...string) string {
	for _, key := range keys {
		if str, ok := claims[key].(string); ok && str != "" {
			return str
		}
	}
	return ""
}

// ExtractRoles extracts known roles from the "roles" or "role" claim.
// Unknown role names are dropped.
func ExtractRoles(claims jwt.MapClaims) []domain.UserRoleType {
	roles := []domain.UserRoleType{}
	add := func(s string) {
		s = strings.TrimSpace(s)
		if domain.IsValidRole(s) {
			roles = append(roles, domain.UserRoleType(s))
		}
	}

	for _, key := range []string{"roles", "role"} {
		switch val := claims[key].(type) {
		case []interface{}:
			for _, r := range val {
				if str, ok := r.(string); ok {
					add(str)
				}
			}
		case []string:
			for _, str := range val {
				add(str)
			}
		case string:
			add(val)
		}
	}
	return roles
}
