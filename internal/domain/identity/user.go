package identity

import (
	"strings"
	"time"

	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// UserRole represents a user's role within an organization
type UserRole string

const (
	RoleOwner  UserRole = "owner"
	RoleMember UserRole = "member"
)

// IsValid checks if the role is a known UserRole
func (r UserRole) IsValid() bool {
	return r == RoleOwner || r == RoleMember
}

// User is an account acting within at most one organization. Identity and
// token issuance live with the external auth provider; the domain only
// records membership and role.
type User struct {
	shared.BaseAggregateRoot
	Email          string `gorm:"uniqueIndex"`
	FullName       string
	OrganizationID *uuid.UUID `gorm:"type:uuid;index"`
	Role           UserRole
	AvatarURL      string
	IsActive       bool
	LastLoginAt    *time.Time
}

// TableName returns the database table name
func (User) TableName() string {
	return "users"
}

// NewUser creates a new user without an organization membership
func NewUser(email, fullName string) (*User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, shared.NewValidationError("email", "cannot be empty")
	}
	if !strings.Contains(email, "@") {
		return nil, shared.NewValidationError("email", "must be a valid email address")
	}

	return &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		FullName:          fullName,
		Role:              RoleMember,
		IsActive:          true,
	}, nil
}

// JoinOrganization attaches the user to an organization with the given role
func (u *User) JoinOrganization(orgID uuid.UUID, role UserRole) error {
	if orgID == uuid.Nil {
		return shared.NewValidationError("organization_id", "cannot be empty")
	}
	if !role.IsValid() {
		return shared.NewValidationError("role", "must be owner or member")
	}
	if u.OrganizationID != nil {
		return shared.NewInvalidStateError("user already belongs to an organization")
	}
	u.OrganizationID = &orgID
	u.Role = role
	u.Touch()
	return nil
}

// IsOwner returns true if the user owns their organization
func (u *User) IsOwner() bool {
	return u.Role == RoleOwner
}

// RecordLogin stores the last login timestamp
func (u *User) RecordLogin(at time.Time) {
	u.LastLoginAt = &at
	u.Touch()
}

// Deactivate disables the account
func (u *User) Deactivate() {
	u.IsActive = false
	u.Touch()
}
