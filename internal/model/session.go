package model

import (
	"context"
	"time"
)

// Keys used in the local key-value store.
const (
	KeyCurrentUser = "user"
	KeyIsAuthority = "isAuthority"
	KeySettings    = "settings"
)

// KeyValueStore is a durable string store.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// SessionState is a read-only snapshot of the authentication state.
type SessionState struct {
	User          *UserIdentity
	IsAuthority   bool
	Loading       bool
	PendingOTP    string
	PhoneVerified string
	Message       string
}

// LoggedIn reports whether a user is present.
func (s SessionState) LoggedIn() bool {
	return s.User != nil
}

// OTPChallenge is a pending phone verification.
type OTPChallenge struct {
	MobileNumber string    `json:"mobileNumber"`
	CodeHash     []byte    `json:"codeHash"`
	ExpiresAt    time.Time `json:"expiresAt"`
	Attempts     int       `json:"attempts"`
}

// OTPStore persists pending OTP challenges keyed by mobile number.
type OTPStore interface {
	Save(ctx context.Context, challenge OTPChallenge) error
	Get(ctx context.Context, mobileNumber string) (OTPChallenge, error)
	Delete(ctx context.Context, mobileNumber string) error
}

// SMSSender delivers a text message.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// VerificationTokenManager issues proofs that a number passed OTP.
type VerificationTokenManager interface {
	GeneratePhoneToken(mobileNumber string) (string, error)
	ParsePhoneToken(token string) (string, error)
}
