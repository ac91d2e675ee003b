package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Thanujadevi/EMPOWERHER/internal/logger"
	"github.com/Thanujadevi/EMPOWERHER/internal/model"
)

// OTPPolicy bounds one-time code challenges.
type OTPPolicy struct {
	TTL         time.Duration
	MaxAttempts int
	Length      int
}

// DefaultOTPPolicy is five minutes, five attempts, six digits.
var DefaultOTPPolicy = OTPPolicy{TTL: 5 * time.Minute, MaxAttempts: 5, Length: 6}

// OTP issues and checks phone verification codes.
type OTP struct {
	store    model.OTPStore
	sender   model.SMSSender
	tokens   model.VerificationTokenManager
	policy   OTPPolicy
	logger   *logger.Logger
	now      func() time.Time
	generate func(length int) (string, error)
	cost     int
}

func NewOTP(
	store model.OTPStore,
	sender model.SMSSender,
	tokens model.VerificationTokenManager,
	policy OTPPolicy,
	logger *logger.Logger,
) *OTP {
	if policy.TTL <= 0 {
		policy.TTL = DefaultOTPPolicy.TTL
	}
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = DefaultOTPPolicy.MaxAttempts
	}
	if policy.Length <= 0 {
		policy.Length = DefaultOTPPolicy.Length
	}

	return &OTP{
		store:    store,
		sender:   sender,
		tokens:   tokens,
		policy:   policy,
		logger:   logger,
		now:      time.Now,
		generate: numericCode,
		cost:     bcrypt.DefaultCost,
	}
}

func numericCode(length int) (string, error) {
	var b strings.Builder
	ten := big.NewInt(10)
	for i := 0; i < length; i++ {
		d, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + d.Int64()))
	}
	return b.String(), nil
}

// Send starts a challenge for mobileNumber, replacing any pending one.
func (o *OTP) Send(ctx context.Context, mobileNumber string) error {
	o.logger.Debug("OTP service: sending code", "mobile", mobileNumber)

	code, err := o.generate(o.policy.Length)
	if err != nil {
		return fmt.Errorf("failed to generate otp: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), o.cost)
	if err != nil {
		return fmt.Errorf("failed to hash otp: %w", err)
	}

	challenge := model.OTPChallenge{
		MobileNumber: mobileNumber,
		CodeHash:     hash,
		ExpiresAt:    o.now().Add(o.policy.TTL),
	}
	if err := o.store.Save(ctx, challenge); err != nil {
		return fmt.Errorf("failed to save otp challenge: %w", err)
	}

	body := fmt.Sprintf("Your EMPOWERHER verification code is %s. It expires in %d minutes.",
		code, int(o.policy.TTL.Minutes()))
	if err := o.sender.SendSMS(ctx, mobileNumber, body); err != nil {
		if delErr := o.store.Delete(ctx, mobileNumber); delErr != nil {
			o.logger.Warn("OTP service: failed to drop undelivered challenge",
				"mobile", mobileNumber,
				"error", delErr.Error())
		}
		return fmt.Errorf("failed to deliver otp: %w", err)
	}

	o.logger.Info("OTP service: code sent", "mobile", mobileNumber)
	return nil
}

// Verify checks code against the pending challenge and returns a phone
// verification token on success.
func (o *OTP) Verify(ctx context.Context, mobileNumber, code string) (string, error) {
	challenge, err := o.store.Get(ctx, mobileNumber)
	if errors.Is(err, model.ErrNotFound) {
		return "", model.ErrOTPNotRequested
	}
	if err != nil {
		return "", fmt.Errorf("failed to get otp challenge: %w", err)
	}

	if !o.now().Before(challenge.ExpiresAt) {
		o.drop(ctx, mobileNumber)
		return "", model.ErrOTPExpired
	}
	if challenge.Attempts >= o.policy.MaxAttempts {
		o.drop(ctx, mobileNumber)
		return "", model.ErrOTPAttemptsExceeded
	}

	if err := bcrypt.CompareHashAndPassword(challenge.CodeHash, []byte(code)); err != nil {
		challenge.Attempts++
		if challenge.Attempts >= o.policy.MaxAttempts {
			o.drop(ctx, mobileNumber)
			o.logger.Info("OTP service: attempts exhausted", "mobile", mobileNumber)
			return "", model.ErrOTPAttemptsExceeded
		}
		if err := o.store.Save(ctx, challenge); err != nil {
			return "", fmt.Errorf("failed to record otp attempt: %w", err)
		}
		return "", model.ErrOTPInvalid
	}

	o.drop(ctx, mobileNumber)

	token, err := o.tokens.GeneratePhoneToken(mobileNumber)
	if err != nil {
		return "", fmt.Errorf("failed to issue phone token: %w", err)
	}

	o.logger.Info("OTP service: number verified", "mobile", mobileNumber)
	return token, nil
}

func (o *OTP) drop(ctx context.Context, mobileNumber string) {
	if err := o.store.Delete(ctx, mobileNumber); err != nil {
		o.logger.Warn("OTP service: failed to delete challenge",
			"mobile", mobileNumber,
			"error", err.Error())
	}
}
