package model

import (
	"regexp"
	"strings"
	"time"
)

// Role is the closed set of privilege levels an admin account can hold.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// AdminUser represents an administrative account that can log in to the
// management API. Passwords are stored as bcrypt hashes; the hash is never
// serialized in responses and is additionally projected out of every read
// and list query in the store.
type AdminUser struct {
	ID             string     `bson:"id" json:"id"`
	Username       string     `bson:"username" json:"username"`
	Email          string     `bson:"email" json:"email"`
	HashedPassword string     `bson:"hashedPassword,omitempty" json:"-"`
	Role           Role       `bson:"role" json:"role"`
	IsActive       bool       `bson:"isActive" json:"isActive"`
	CreatedAt      time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time  `bson:"updatedAt" json:"updatedAt"`
	LastLoginAt    *time.Time `bson:"lastLoginAt,omitempty" json:"lastLoginAt,omitempty"`
}

// Sanitized returns a copy with the password hash cleared, for records that
// were loaded through a path that includes the hash (the login lookup).
func (a AdminUser) Sanitized() AdminUser {
	a.HashedPassword = ""
	return a
}

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s looks like an email address. Matches the
// loose check used across the public forms; not a full RFC validation.
func ValidEmail(s string) bool {
	return emailRe.MatchString(s)
}

// ValidateAdmin checks the fields for a new admin account. Returns a map of
// field name to problem; empty map means valid.
func ValidateAdmin(username, email, password string, role Role) map[string]string {
	errs := map[string]string{}

	switch {
	case strings.TrimSpace(username) == "":
		errs["username"] = "Username is required"
	case len(username) < 3:
		errs["username"] = "Username must be at least 3 characters long"
	}

	switch {
	case strings.TrimSpace(email) == "":
		errs["email"] = "Email is required"
	case !ValidEmail(email):
		errs["email"] = "Valid email is required"
	}

	switch {
	case password == "":
		errs["password"] = "Password is required"
	case len(password) < 6:
		errs["password"] = "Password must be at least 6 characters long"
	}

	if role != "" && !role.Valid() {
		errs["role"] = "Role must be either admin or super_admin"
	}

	return errs
}
