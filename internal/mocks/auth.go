package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Thanujadevi/EMPOWERHER/internal/model"
)

// Authenticator is a testify mock of model.Authenticator.
type Authenticator struct {
	mock.Mock
}

func (m *Authenticator) Authenticate(ctx context.Context, creds model.Credentials) (model.UserIdentity, error) {
	args := m.Called(ctx, creds)
	return args.Get(0).(model.UserIdentity), args.Error(1)
}
