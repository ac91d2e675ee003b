package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/Thanujadevi/EMPOWERHER/internal/model"
)

const keyPrefix = "otp:"

var _ model.OTPStore = (*OTPStore)(nil)

// OTPStore keeps pending challenges in Redis with a TTL matching the
// challenge expiry.
type OTPStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewOTPStore(client *redis.Client) *OTPStore {
	return &OTPStore{client: client, now: time.Now}
}

func key(mobileNumber string) string {
	return keyPrefix + mobileNumber
}

func (s *OTPStore) Save(ctx context.Context, challenge model.OTPChallenge) error {
	ttl := challenge.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return s.Delete(ctx, challenge.MobileNumber)
	}

	data, err := json.Marshal(challenge)
	if err != nil {
		return fmt.Errorf("failed to marshal otp challenge: %w", err)
	}
	if err := s.client.Set(ctx, key(challenge.MobileNumber), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save otp challenge: %w", err)
	}
	return nil
}

func (s *OTPStore) Get(ctx context.Context, mobileNumber string) (model.OTPChallenge, error) {
	data, err := s.client.Get(ctx, key(mobileNumber)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.OTPChallenge{}, model.ErrNotFound
	}
	if err != nil {
		return model.OTPChallenge{}, fmt.Errorf("failed to get otp challenge: %w", err)
	}

	var challenge model.OTPChallenge
	if err := json.Unmarshal(data, &challenge); err != nil {
		return model.OTPChallenge{}, fmt.Errorf("failed to unmarshal otp challenge: %w", err)
	}
	return challenge, nil
}

func (s *OTPStore) Delete(ctx context.Context, mobileNumber string) error {
	if err := s.client.Del(ctx, key(mobileNumber)).Err(); err != nil {
		return fmt.Errorf("failed to delete otp challenge: %w", err)
	}
	return nil
}
