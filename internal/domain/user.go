package domain

import "strings"

// UserRole determines what a catalog user may do.
type UserRole string

const (
	UserRoleRequester UserRole = "requester"
	UserRoleAgent     UserRole = "agent"
	UserRoleAdmin     UserRole = "admin"
)

// User is a read-only catalog record for requesters and agents.
type User struct {
	ID          string   `json:"id" yaml:"id"`
	FirstName   string   `json:"firstName" yaml:"firstName"`
	LastName    string   `json:"lastName" yaml:"lastName"`
	DisplayName string   `json:"displayName,omitempty" yaml:"displayName"`
	Email       string   `json:"email" yaml:"email"`
	Department  string   `json:"department,omitempty" yaml:"department"`
	Phone       string   `json:"phone,omitempty" yaml:"phone"`
	Role        UserRole `json:"role" yaml:"role"`
}

// Name returns the display name, falling back to first and last name.
func (u User) Name() string {
	if strings.TrimSpace(u.DisplayName) != "" {
		return u.DisplayName
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// IsAgent reports whether the user can work tickets.
func (u User) IsAgent() bool {
	return u.Role == UserRoleAgent || u.Role == UserRoleAdmin
}
