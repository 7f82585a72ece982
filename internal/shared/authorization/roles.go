package authorization

// OperatorRole is the role claim carried by back-office tokens.
type OperatorRole string

const (
	RoleAdmin    OperatorRole = "admin"
	RoleOperator OperatorRole = "operator"
)

func (r OperatorRole) String() string {
	return string(r)
}

func (r OperatorRole) IsValid() bool {
	return r == RoleAdmin || r == RoleOperator
}

// ParseOperatorRole returns the role and whether it is recognised.
func ParseOperatorRole(s string) (OperatorRole, bool) {
	role := OperatorRole(s)
	return role, role.IsValid()
}
