package auth

import (
	"context"

	"github.com/amalthea/finance-api/internal/domain"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// UserContext holds authenticated user information
type UserContext struct {
	UserID      uuid.UUID
	DisplayName string
	Email       string
	Roles       []domain.UserRoleType
	// OrgID is the organization every request of this user is scoped to
	OrgID uuid.UUID
}

type contextKey string

const userContextKey contextKey = "userContext"

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok && user != nil
}

// MustFromContext extracts user context or panics
func MustFromContext(ctx context.Context) *UserContext {
	user, ok := FromContext(ctx)
	if !ok {
		panic("user context not found in context")
	}
	return user
}

// HasRole checks if user has a specific role
func (u *UserContext) HasRole(role domain.UserRoleType) bool {
	return lo.Contains(u.Roles, role)
}

// HasAnyRole checks if user has any of the specified roles
func (u *UserContext) HasAnyRole(roles ...domain.UserRoleType) bool {
	return lo.SomeBy(roles, u.HasRole)
}

// HasPermission checks if any of the user's roles grants permission
func (u *UserContext) HasPermission(permission domain.PermissionType) bool {
	return u.Actor().Can(permission)
}

// RolesAsStrings returns roles as a slice of strings
func (u *UserContext) RolesAsStrings() []string {
	return lo.Map(u.Roles, func(r domain.UserRoleType, _ int) string { return string(r) })
}

// Actor converts the authenticated user into the actor passed to core operations
func (u *UserContext) Actor() *domain.Actor {
	return &domain.Actor{
		ID:    u.UserID,
		Name:  u.DisplayName,
		OrgID: u.OrgID,
		Roles: u.Roles,
	}
}
