// Package validate checks form input before it reaches the session store.
package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Thanujadevi/EMPOWERHER/internal/model"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[\d\s-]{10,}$`)
)

func invalid(message string) error {
	return model.NewUserError(model.ErrValidation, message, nil)
}

// Email reports whether s looks like an email address.
func Email(s string) bool {
	return emailPattern.MatchString(s)
}

// Phone reports whether s looks like a phone number.
func Phone(s string) bool {
	return phonePattern.MatchString(s)
}

// Login checks the login form.
func Login(creds model.Credentials) error {
	if creds.Email == "" || creds.Password == "" {
		return invalid("Please enter both email and password")
	}
	return nil
}

// MobileNumber checks the OTP form's number.
func MobileNumber(n string) error {
	if strings.TrimSpace(n) == "" {
		return invalid("Please enter your mobile number")
	}
	if !Phone(n) {
		return invalid("Please enter a valid mobile number")
	}
	return nil
}

// OTPCode checks that a code was entered.
func OTPCode(code string) error {
	if strings.TrimSpace(code) == "" {
		return invalid("Please enter the OTP")
	}
	return nil
}

// Registration checks the standard registration form.
func Registration(r model.Registration) error {
	if r.Name == "" || r.Address == "" || r.Area == "" ||
		r.Email == "" || r.Password == "" || r.ConfirmPassword == "" {
		return invalid("Please fill in all required fields")
	}
	return credentials(r)
}

// AuthorityRegistration checks the authority registration form.
func AuthorityRegistration(r model.Registration) error {
	if r.Name == "" || r.Email == "" || r.Password == "" || r.ConfirmPassword == "" ||
		r.Gender == "" || r.Division == "" || r.Designation == "" || r.BadgeNumber == "" {
		return invalid("Please fill in all required fields")
	}
	return credentials(r)
}

func credentials(r model.Registration) error {
	if r.Password != r.ConfirmPassword {
		return invalid("Passwords do not match")
	}
	if len(r.Password) < MinPasswordLength {
		return invalid(fmt.Sprintf("Password must be at least %d characters long", MinPasswordLength))
	}
	if !Email(r.Email) {
		return invalid("Please enter a valid email address")
	}
	return nil
}

// Contacts checks an emergency contact set: at most three records, at least
// one with both name and phone, and every given phone well formed.
func Contacts(contacts []model.ContactRecord) error {
	if len(contacts) > model.MaxEmergencyContacts {
		return invalid(fmt.Sprintf("You can only add up to %d emergency contacts.", model.MaxEmergencyContacts))
	}

	hasValid := false
	for _, c := range contacts {
		if c.Populated() {
			hasValid = true
			break
		}
	}
	if !hasValid {
		return invalid("Please add at least one emergency contact with name and phone number.")
	}

	for _, c := range contacts {
		if c.Phone != "" && !Phone(c.Phone) {
			name := c.Name
			if name == "" {
				name = "contact"
			}
			return invalid(fmt.Sprintf("Please enter a valid phone number for %s.", name))
		}
	}
	return nil
}
