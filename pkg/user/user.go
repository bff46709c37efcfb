package user

import "strings"

// User is the self-declared caller identity for a request. The booking tool
// has no real authentication: callers present a name and an email, and the
// facilities manager's address grants admin access.
type User struct {
	Name  string
	Email string
}

// IsValidEmail applies the original system's loose check: the address must
// contain an "@" and a ".".
func IsValidEmail(email string) bool {
	return strings.Contains(email, "@") && strings.Contains(email, ".")
}
