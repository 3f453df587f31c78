package user

// Role is the authenticated actor's role as asserted by the identity
// provider. This service trusts the role claim and performs its own
// ownership checks on top of it.
type Role string

const (
	RoleStudent  Role = "student"
	RoleLecturer Role = "lecturer"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleLecturer, RoleAdmin:
		return true
	}
	return false
}

// Identity is the per-request actor extracted from JWT claims.
// ProfileID is the student or lecturer profile the user account maps to;
// empty for admins.
type Identity struct {
	UserID    string
	Role      Role
	ProfileID string
}

func (i Identity) IsAdmin() bool    { return i.Role == RoleAdmin }
func (i Identity) IsLecturer() bool { return i.Role == RoleLecturer }
func (i Identity) IsStudent() bool  { return i.Role == RoleStudent }
