package models

import "strings"

// Role is a user's role as issued in the session token
type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleManager Role = "Manager"
	RoleWorker  Role = "Worker"
)

// Roles lists every role, for select boxes.
var Roles = []Role{RoleAdmin, RoleManager, RoleWorker}

// ParseRole accepts a role in any letter case.
func ParseRole(s string) (Role, bool) {
	for _, r := range Roles {
		if strings.EqualFold(string(r), strings.TrimSpace(s)) {
			return r, true
		}
	}
	return "", false
}

// Home is the dashboard path for the role.
func (r Role) Home() string {
	return "/" + strings.ToLower(string(r)) + "/dashboard"
}

// User as returned by /admin/user. Credentials depend on the role:
// Admin and Manager log in with username/password, Workers with an access code.
type User struct {
	ID         string      `json:"_id"`
	FullName   string      `json:"fullName"`
	Role       Role        `json:"role"`
	Username   string      `json:"username,omitempty"`
	AccessCode string      `json:"accessCode,omitempty"`
	Section    *SectionRef `json:"section,omitempty"`
	PhotoURL   string      `json:"photoUrl,omitempty"`
}

// SectionNumber is the worker's assigned section number, 0 when unassigned.
func (u User) SectionNumber() int {
	if u.Section == nil {
		return 0
	}
	return u.Section.Number
}

// Initial is the avatar fallback letter.
func (u User) Initial() string {
	if u.FullName == "" {
		return "?"
	}
	return strings.ToUpper(u.FullName[:1])
}
