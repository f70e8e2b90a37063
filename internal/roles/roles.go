package roles

import "strings"

// Role identifies a staff member's position in the group.
type Role string

const (
	RoleAdmin         Role = "admin"
	RoleJefeEditor    Role = "jefe_editor"
	RoleJefeTraductor Role = "jefe_traductor"
	RoleUploader      Role = "uploader"
	RoleEditor        Role = "editor"
	RoleTraductor     Role = "traductor"
)

var allRoles = []Role{
	RoleAdmin,
	RoleJefeEditor,
	RoleJefeTraductor,
	RoleUploader,
	RoleEditor,
	RoleTraductor,
}

var roleSet = func() map[Role]struct{} {
	set := make(map[Role]struct{}, len(allRoles))
	for _, role := range allRoles {
		set[role] = struct{}{}
	}
	return set
}()

// AllRoles returns the ordered list of known roles.
func AllRoles() []Role {
	cp := make([]Role, len(allRoles))
	copy(cp, allRoles)
	return cp
}

// ParseRole converts a string into a known Role.
func ParseRole(value string) (Role, bool) {
	normalized := Role(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := roleSet[normalized]
	return normalized, ok
}

// IsSuperAdmin reports whether a role bypasses every per-role restriction.
func (r Role) IsSuperAdmin() bool {
	return r == RoleAdmin
}

// CanManageAssignments reports whether a role may create, edit, reassign,
// or delete assignments and chapters. Unknown roles have no permissions.
func (r Role) CanManageAssignments() bool {
	switch r {
	case RoleAdmin, RoleJefeEditor, RoleJefeTraductor:
		return true
	default:
		return false
	}
}

// CanUpload reports whether a role may mark completed chapters as uploaded
// or revert an upload.
func (r Role) CanUpload() bool {
	switch r {
	case RoleAdmin, RoleUploader:
		return true
	default:
		return false
	}
}

// IsAssignableRole reports whether users holding this role may be assigned
// stage work. Chiefs take worker tasks too; only admin is management-only.
func (r Role) IsAssignableRole() bool {
	switch r {
	case RoleJefeEditor, RoleJefeTraductor, RoleUploader, RoleEditor, RoleTraductor:
		return true
	default:
		return false
	}
}
