package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Thanujadevi/EMPOWERHER/internal/model"
)

// OTPStore is a testify mock of model.OTPStore.
type OTPStore struct {
	mock.Mock
}

func (m *OTPStore) Save(ctx context.Context, challenge model.OTPChallenge) error {
	args := m.Called(ctx, challenge)
	return args.Error(0)
}

func (m *OTPStore) Get(ctx context.Context, mobileNumber string) (model.OTPChallenge, error) {
	args := m.Called(ctx, mobileNumber)
	return args.Get(0).(model.OTPChallenge), args.Error(1)
}

func (m *OTPStore) Delete(ctx context.Context, mobileNumber string) error {
	args := m.Called(ctx, mobileNumber)
	return args.Error(0)
}

// SMSSender is a testify mock of model.SMSSender.
type SMSSender struct {
	mock.Mock
}

func (m *SMSSender) SendSMS(ctx context.Context, to, body string) error {
	args := m.Called(ctx, to, body)
	return args.Error(0)
}

// VerificationTokenManager is a testify mock of model.VerificationTokenManager.
type VerificationTokenManager struct {
	mock.Mock
}

func (m *VerificationTokenManager) GeneratePhoneToken(mobileNumber string) (string, error) {
	args := m.Called(mobileNumber)
	return args.String(0), args.Error(1)
}

func (m *VerificationTokenManager) ParsePhoneToken(token string) (string, error) {
	args := m.Called(token)
	return args.String(0), args.Error(1)
}
