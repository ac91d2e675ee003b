package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thanujadevi/EMPOWERHER/internal/model"
)

func validRegistration() model.Registration {
	return model.Registration{
		Name:            "Asha",
		Email:           "asha@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		Gender:          "female",
		DateOfBirth:     "1995-04-02",
		Address:         "12 MG Road",
		Area:            "Indiranagar",
		MobileNumber:    "+919876543210",
		Division:        "North",
		Designation:     "Inspector",
		BadgeNumber:     "B-42",
	}
}

func TestRegistration(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*model.Registration)
		wantMsg string
	}{
		{name: "valid", mutate: func(*model.Registration) {}},
		{name: "missing name", mutate: func(r *model.Registration) { r.Name = "" }, wantMsg: "Please fill in all required fields"},
		{name: "missing address", mutate: func(r *model.Registration) { r.Address = "" }, wantMsg: "Please fill in all required fields"},
		{name: "missing area", mutate: func(r *model.Registration) { r.Area = "" }, wantMsg: "Please fill in all required fields"},
		{name: "gender optional", mutate: func(r *model.Registration) { r.Gender = "" }},
		{name: "password mismatch", mutate: func(r *model.Registration) { r.ConfirmPassword = "other11" }, wantMsg: "Passwords do not match"},
		{name: "short password", mutate: func(r *model.Registration) { r.Password, r.ConfirmPassword = "abc", "abc" }, wantMsg: "Password must be at least 6 characters long"},
		{name: "bad email", mutate: func(r *model.Registration) { r.Email = "asha@example" }, wantMsg: "Please enter a valid email address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRegistration()
			tt.mutate(&r)

			err := Registration(r)
			if tt.wantMsg == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, model.ErrValidation)
			assert.Equal(t, tt.wantMsg, model.Message(err))
		})
	}
}

func TestAuthorityRegistration_RequiresRoleFields(t *testing.T) {
	require.NoError(t, AuthorityRegistration(validRegistration()))

	r := validRegistration()
	r.BadgeNumber = ""
	err := AuthorityRegistration(r)
	require.ErrorIs(t, err, model.ErrValidation)

	require.NoError(t, Registration(r))
}

func TestLoginAndOTP(t *testing.T) {
	assert.ErrorIs(t, Login(model.Credentials{Email: "a@b.c"}), model.ErrValidation)
	assert.NoError(t, Login(model.Credentials{Email: "a@b.c", Password: "x"}))

	assert.ErrorIs(t, MobileNumber(""), model.ErrValidation)
	assert.ErrorIs(t, MobileNumber("12345"), model.ErrValidation)
	assert.NoError(t, MobileNumber("+91 98765-43210"))

	assert.ErrorIs(t, OTPCode(" "), model.ErrValidation)
	assert.NoError(t, OTPCode("123456"))
}

func TestContacts(t *testing.T) {
	tests := []struct {
		name     string
		contacts []model.ContactRecord
		wantMsg  string
	}{
		{
			name:     "one populated record",
			contacts: []model.ContactRecord{{Name: "Mom", Phone: "+919876543210"}, {}},
		},
		{
			name:     "no populated record",
			contacts: []model.ContactRecord{{Name: "Mom"}, {Phone: "9876543210"}},
			wantMsg:  "Please add at least one emergency contact with name and phone number.",
		},
		{
			name:     "bad phone",
			contacts: []model.ContactRecord{{Name: "Mom", Phone: "+919876543210"}, {Name: "Dad", Phone: "123"}},
			wantMsg:  "Please enter a valid phone number for Dad.",
		},
		{
			name:     "bad phone without name",
			contacts: []model.ContactRecord{{Name: "Mom", Phone: "+919876543210"}, {Phone: "12a"}},
			wantMsg:  "Please enter a valid phone number for contact.",
		},
		{
			name: "too many",
			contacts: []model.ContactRecord{
				{Name: "A", Phone: "9876543210"}, {Name: "B", Phone: "9876543211"},
				{Name: "C", Phone: "9876543212"}, {Name: "D", Phone: "9876543213"},
			},
			wantMsg: "You can only add up to 3 emergency contacts.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Contacts(tt.contacts)
			if tt.wantMsg == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, model.ErrValidation)
			assert.Equal(t, tt.wantMsg, model.Message(err))
		})
	}
}

func TestRegistration_StandardFormFields(t *testing.T) {
	err := Registration(model.Registration{
		Name:            "Asha",
		DateOfBirth:     "2000-01-01",
		Address:         "12 MG Road",
		Area:            "Indiranagar",
		Email:           "asha@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		MobileNumber:    "9876543210",
	})
	require.NoError(t, err)
}
