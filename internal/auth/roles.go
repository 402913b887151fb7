package auth

import (
	"strings"

	"cane-backend/pkg/utils"
)

// Role is one of the dashboard roles. The set is closed; ParseRole maps the
// spellings used by older clients onto it.
type Role string

const (
	RoleSuperAdmin    Role = "super_admin"
	RoleAdmin         Role = "admin"
	RoleRegionalAdmin Role = "regional_admin"
	RoleNationalAdmin Role = "national_admin"
	RoleLoadingPoint  Role = "loading_point"
	RoleMillManager   Role = "mill_manager"
	RoleTransporter   Role = "transporter"
	RoleUser          Role = "user"
)

// AllRoles in the order the admin screens list them
var AllRoles = []Role{
	RoleSuperAdmin,
	RoleAdmin,
	RoleRegionalAdmin,
	RoleNationalAdmin,
	RoleLoadingPoint,
	RoleMillManager,
	RoleTransporter,
	RoleUser,
}

// ParseRole accepts "SuperAdmin", "super-admin", "Super Admin", "super_admin" and so on
func ParseRole(s string) (Role, error) {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r == '-' || r == '_' || r == ' ':
			continue
		default:
			b.WriteRune(r)
		}
	}
	key := strings.ToLower(b.String())

	for _, role := range AllRoles {
		if strings.ReplaceAll(string(role), "_", "") == key {
			return role, nil
		}
	}
	// "elp" is the loading point login used by the mobile app
	if key == "elp" {
		return RoleLoadingPoint, nil
	}
	return "", utils.ValidationError(map[string]string{"role": "unknown role " + s})
}

// IsValid reports whether r is one of the known roles
func (r Role) IsValid() bool {
	for _, role := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin reports whether r may act across every mill
func (r Role) IsAdmin() bool {
	return r == RoleSuperAdmin || r == RoleAdmin || r == RoleNationalAdmin
}
