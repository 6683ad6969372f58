package auth

import (
	"fmt"
	"strings"
)

// Role identifies the coarse access level of an authenticated caller.
type Role string

const (
	RoleSuper           Role = "SUPER"
	RoleAdmin           Role = "ADMIN"
	RoleRegionalManager Role = "REGIONAL_MANAGER"
	RoleFieldManager    Role = "FIELD_MANAGER"
	RoleFieldTech       Role = "FIELD_TECH"
	RoleTranscriber     Role = "TRANSCRIBER"
)

// Permission is a fine-grained capability tag granted through a role.
type Permission string

const (
	PermManageOrganizations Permission = "org:manage"
	PermManageUsers         Permission = "user:manage"
	PermManageRegions       Permission = "region:manage"
	PermManageTeams         Permission = "team:manage"
	PermReadTime            Permission = "time:read"
	PermCreateTime          Permission = "time:create"
	PermUpdateTime          Permission = "time:update"
	PermApproveTime         Permission = "time:approve"
	PermReadReports         Permission = "report:read"
	PermExportReports       Permission = "report:export"
	PermReadTranscripts     Permission = "transcript:read"
	PermCreateTranscripts   Permission = "transcript:create"
)

// rolePermissions is the static role-to-capability table. Roles never gain or
// lose permissions at runtime.
var rolePermissions = map[Role][]Permission{
	RoleSuper: {
		PermManageOrganizations, PermManageUsers, PermManageRegions, PermManageTeams,
		PermReadTime, PermCreateTime, PermUpdateTime, PermApproveTime,
		PermReadReports, PermExportReports, PermReadTranscripts, PermCreateTranscripts,
	},
	RoleAdmin: {
		PermManageOrganizations, PermManageUsers, PermManageRegions, PermManageTeams,
		PermReadTime, PermCreateTime, PermUpdateTime, PermApproveTime,
		PermReadReports, PermExportReports, PermReadTranscripts, PermCreateTranscripts,
	},
	RoleRegionalManager: {
		PermManageRegions, PermManageTeams,
		PermReadTime, PermCreateTime, PermUpdateTime, PermApproveTime,
		PermReadReports,
		PermReadTranscripts,
	},
	RoleFieldManager: {
		PermManageTeams,
		PermReadTime, PermCreateTime, PermUpdateTime, PermApproveTime,
		PermReadReports,
		PermReadTranscripts,
	},
	RoleFieldTech: {
		PermReadTime, PermCreateTime, PermUpdateTime,
		PermReadReports,
	},
	RoleTranscriber: {
		PermReadTranscripts, PermCreateTranscripts,
		PermReadTime,
	},
}

// ParseRole normalizes and validates a role string.
func ParseRole(s string) (Role, error) {
	role := Role(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := rolePermissions[role]; !ok {
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, s)
	}
	return role, nil
}

// PermissionsForRole returns a copy of the capability set granted to a role.
func PermissionsForRole(role Role) []Permission {
	perms, ok := rolePermissions[role]
	if !ok {
		return nil
	}
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// RoleHasPermission reports whether role grants perm.
func RoleHasPermission(role Role, perm Permission) bool {
	for _, p := range rolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}
