package model

import (
	"context"

	"github.com/google/uuid"
)

// Role distinguishes standard users from authority accounts.
type Role string

const (
	// RoleStandard is a regular end-user account.
	RoleStandard Role = "standard"
	// RoleAuthority is a law-enforcement or official account.
	RoleAuthority Role = "authority"
)

// MaxEmergencyContacts limits how many contacts a user may keep.
const MaxEmergencyContacts = 3

// UserIdentity represents the signed-in principal.
type UserIdentity struct {
	ID                uuid.UUID       `json:"id"`
	Name              string          `json:"name"`
	Email             string          `json:"email"`
	Role              Role            `json:"role"`
	MobileNumber      string          `json:"mobileNumber"`
	Gender            string          `json:"gender"`
	DateOfBirth       string          `json:"dateOfBirth"`
	Division          string          `json:"division"`
	Designation       string          `json:"designation"`
	BadgeNumber       string          `json:"badgeNumber"`
	Phone             string          `json:"phone"`
	Address           string          `json:"address"`
	Area              string          `json:"area"`
	EmergencyContacts []ContactRecord `json:"emergencyContacts"`
	VoiceEnrolled     bool            `json:"voiceEnrolled"`
}

// IsAuthority reports whether the identity has the authority role.
func (u UserIdentity) IsAuthority() bool {
	return u.Role == RoleAuthority
}

// ContactRecord is one emergency contact.
type ContactRecord struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone"`
}

// Populated reports whether both name and phone are set.
func (c ContactRecord) Populated() bool {
	return c.Name != "" && c.Phone != ""
}

// Credentials holds login form input.
type Credentials struct {
	Email    string
	Password string
	Role     Role
}

// Registration holds registration form input. Password fields are checked
// by the form and never persisted.
type Registration struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	Gender          string
	DateOfBirth     string
	Address         string
	Area            string
	MobileNumber    string
	Division        string
	Designation     string
	BadgeNumber     string
}

// Identity builds the identity that registration persists.
func (r Registration) Identity(id uuid.UUID, role Role) UserIdentity {
	u := UserIdentity{
		ID:           id,
		Name:         r.Name,
		Email:        r.Email,
		Role:         role,
		MobileNumber: r.MobileNumber,
		Gender:       r.Gender,
		DateOfBirth:  r.DateOfBirth,
		Address:      r.Address,
		Area:         r.Area,
		Phone:        r.MobileNumber,
	}
	if role == RoleAuthority {
		u.Division = r.Division
		u.Designation = r.Designation
		u.BadgeNumber = r.BadgeNumber
	}
	return u
}

// Authenticator resolves credentials to an identity.
type Authenticator interface {
	Authenticate(ctx context.Context, creds Credentials) (UserIdentity, error)
}
