package auth

// Role is the access level carried by a token.
type Role string

const (
	// RoleViewer may run analyses and read JSON results.
	RoleViewer Role = "viewer"
	// RoleAnalyst may also download PDF and XLSX reports.
	RoleAnalyst Role = "analyst"
	RoleAdmin   Role = "admin"
)

// NormalizeRole validates a role string.
func NormalizeRole(value string) (Role, bool) {
	switch Role(value) {
	case RoleViewer, RoleAnalyst, RoleAdmin:
		return Role(value), true
	default:
		return "", false
	}
}

// RoleAtLeast returns true when role satisfies required.
func RoleAtLeast(role Role, required Role) bool {
	return roleRank(role) >= roleRank(required)
}

func roleRank(role Role) int {
	switch role {
	case RoleViewer:
		return 1
	case RoleAnalyst:
		return 2
	case RoleAdmin:
		return 3
	default:
		return 0
	}
}
