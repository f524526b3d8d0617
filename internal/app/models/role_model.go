package models

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
	RoleOwner Role = "owner"
)

// AllRoles is ordered from least to most privileged.
var AllRoles = []Role{RoleUser, RoleAdmin, RoleOwner}

// StaffRoles may run moderation and statistics commands.
var StaffRoles = []Role{RoleAdmin, RoleOwner}

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleOwner:
		return true
	default:
		return false
	}
}

func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleOwner
}

// ParseRole maps unknown or empty input to RoleUser.
func ParseRole(s string) Role {
	r := Role(s)
	if !r.Valid() {
		return RoleUser
	}
	return r
}
