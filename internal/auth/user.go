package auth

// Role is the closed set of authorization tiers a user can hold.
// Anything unknown parses to RoleOther and gets no privileges.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSuperadmin Role = "superadmin"
	RoleOther      Role = "other"
)

// EditorRoles are the roles allowed to mutate content sections.
var EditorRoles = []Role{RoleAdmin, RoleSuperadmin}

func ParseRole(s string) Role {
	switch s {
	case "admin":
		return RoleAdmin
	case "superadmin":
		return RoleSuperadmin
	default:
		return RoleOther
	}
}

// Authorized reports whether the role is a member of the allowed set.
func (r Role) Authorized(allowed ...Role) bool {
	for _, a := range allowed {
		if r == a {
			return true
		}
	}
	return false
}

// UserRecord is a single entry of the credential collection. Records are
// created and edited out-of-band, this service only reads them.
type UserRecord struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	Name         string `json:"name"`
	Role         Role   `json:"role"`
	PasswordHash string `json:"passwordHash"`
}
