package auth

// Roles known to the system. The set is closed: anything else in a token is
// treated as an ordinary user.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Identity is the verified subject of the current request, extracted from a
// validated token. Handlers pass it (or its Role) explicitly into use cases
// so authorization decisions never depend on ambient session state.
type Identity struct {
	UserID   int64
	Username string
	Role     string
}

// IsAdmin reports whether the identity carries the administrator role
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
