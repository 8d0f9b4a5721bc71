package domain

import (
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// UserRoleType represents a role a user can have
type UserRoleType string

const (
	RoleSuperAdmin UserRoleType = "super_admin"
	RoleOrgAdmin   UserRoleType = "org_admin"
	RoleManager    UserRoleType = "manager"
	RoleFinance    UserRoleType = "finance"
	RoleEmployee   UserRoleType = "employee"
	RoleViewer     UserRoleType = "viewer"
	RoleAPIService UserRoleType = "api_service"
)

// IsValidRole reports whether role is a known role
func IsValidRole(role string) bool {
	_, ok := rolePermissions[UserRoleType(role)]
	return ok || UserRoleType(role) == RoleSuperAdmin
}

// PermissionType represents a specific permission
type PermissionType string

const (
	PermissionDocumentsRead    PermissionType = "documents:read"
	PermissionDocumentsWrite   PermissionType = "documents:write"
	PermissionDocumentsApprove PermissionType = "documents:approve"
	PermissionProjectsRead     PermissionType = "projects:read"
	PermissionSequencesAdmin   PermissionType = "sequences:admin"
)

var rolePermissions = map[UserRoleType][]PermissionType{
	RoleOrgAdmin: {
		PermissionDocumentsRead, PermissionDocumentsWrite, PermissionDocumentsApprove,
		PermissionProjectsRead, PermissionSequencesAdmin,
	},
	RoleManager: {
		PermissionDocumentsRead, PermissionDocumentsWrite, PermissionDocumentsApprove,
		PermissionProjectsRead,
	},
	RoleFinance: {
		PermissionDocumentsRead, PermissionDocumentsWrite, PermissionDocumentsApprove,
		PermissionProjectsRead,
	},
	RoleEmployee: {
		PermissionDocumentsRead, PermissionDocumentsWrite,
		PermissionProjectsRead,
	},
	RoleViewer: {
		PermissionDocumentsRead,
		PermissionProjectsRead,
	},
	RoleAPIService: {
		PermissionDocumentsRead, PermissionDocumentsWrite,
		PermissionProjectsRead,
	},
}

// RoleHasPermission checks if a role grants a permission by default
func RoleHasPermission(role UserRoleType, permission PermissionType) bool {
	if role == RoleSuperAdmin {
		return true
	}
	return lo.Contains(rolePermissions[role], permission)
}

// Actor is the user on whose behalf a core operation runs. OrgID is always
// explicit; the core never guesses a tenant.
type Actor struct {
	ID    uuid.UUID
	Name  string
	OrgID uuid.UUID
	Roles []UserRoleType
}

// Can reports whether any of the actor's roles grants permission
func (a *Actor) Can(permission PermissionType) bool {
	if a == nil {
		return false
	}
	return lo.SomeBy(a.Roles, func(r UserRoleType) bool {
		return RoleHasPermission(r, permission)
	})
}

// Satisfies reports whether the actor passes guard for a document owned by ownerID
func (a *Actor) Satisfies(guard Guard, ownerID uuid.UUID) bool {
	switch guard {
	case GuardOwner:
		return a != nil && a.ID == ownerID && a.Can(PermissionDocumentsWrite)
	case GuardApprover:
		return a.Can(PermissionDocumentsApprove)
	case GuardWriter:
		return a.Can(PermissionDocumentsWrite)
	}
	return false
}
