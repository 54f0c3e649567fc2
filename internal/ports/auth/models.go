package auth

// Role define los roles de usuario del sistema.
type Role string

const (
	RoleSuperadmin Role = "superadmin"
	RoleVet        Role = "vet"
	RoleAssistant  Role = "assistant"
	RoleOwner      Role = "owner"
)

// ValidRole reporta si s es uno de los roles soportados.
func ValidRole(s string) bool {
	switch Role(s) {
	case RoleSuperadmin, RoleVet, RoleAssistant, RoleOwner:
		return true
	}
	return false
}

// Claims representa la información extraída del token.
type Claims struct {
	UserID string
	Email  string
	Role   Role
}

// IsStaff reporta si el rol pertenece al personal de la clínica.
func (c Claims) IsStaff() bool {
	switch c.Role {
	case RoleSuperadmin, RoleVet, RoleAssistant:
		return true
	}
	return false
}

// HasRole reporta si el claim tiene alguno de los roles dados.
func (c Claims) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if c.Role == r {
			return true
		}
	}
	return false
}
