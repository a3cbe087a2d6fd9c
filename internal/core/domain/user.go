package domain

import (
	"errors"
	"strings"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrNoSession = errors.New("no active session")
var ErrSuperAdminProtected = errors.New("super admin account is protected")
var ErrNotSuperAdmin = errors.New("only the super admin may change roles")
var ErrNotAdmin = errors.New("admin role required")
var ErrUserNotFound = errors.New("user not found")

// Identity is the authenticated actor derived from a session credential.
// It is never stored independently of the credential it was decoded from.
type Identity struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	Email string `json:"email,omitempty"`
}

// IsAdmin reports whether the identity carries the admin role.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// User is a platform account as returned by the backend user listing.
type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// SuperAdminPolicy centralizes the fixed-email super-admin check so the
// several mutation workflows that need it cannot drift apart. The comparison
// is case-insensitive and ignores surrounding whitespace.
type SuperAdminPolicy struct {
	email string
}

func NewSuperAdminPolicy(email string) SuperAdminPolicy {
	return SuperAdminPolicy{email: normalizeEmail(email)}
}

// IsSuperAdmin reports whether the given email identifies the super admin.
func (p SuperAdminPolicy) IsSuperAdmin(email string) bool {
	return p.email != "" && normalizeEmail(email) == p.email
}

// IsSuperAdminIdentity is a convenience for checking the current session.
func (p SuperAdminPolicy) IsSuperAdminIdentity(id *Identity) bool {
	return id != nil && p.IsSuperAdmin(id.Email)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
