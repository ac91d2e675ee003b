package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/Thanujadevi/EMPOWERHER/internal/model"
)

// LocalAuthenticator accepts any non-empty credentials. The identity ID is
// derived from the email so repeated logins resolve to the same user.
type LocalAuthenticator struct{}

func NewLocalAuthenticator() *LocalAuthenticator {
	return &LocalAuthenticator{}
}

func (a *LocalAuthenticator) Authenticate(_ context.Context, creds model.Credentials) (model.UserIdentity, error) {
	email := strings.TrimSpace(creds.Email)
	if email == "" || creds.Password == "" {
		return model.UserIdentity{}, model.NewUserError(model.ErrValidation, "Please enter both email and password", nil)
	}

	role := creds.Role
	if role == "" {
		role = model.RoleStandard
	}

	name, _, _ := strings.Cut(email, "@")
	return model.UserIdentity{
		ID:    uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+strings.ToLower(email))),
		Name:  name,
		Email: email,
		Role:  role,
	}, nil
}
