package memory

import (
	"context"
	"sync"

	"github.com/Thanujadevi/EMPOWERHER/internal/model"
)

var _ model.OTPStore = (*OTPStore)(nil)

// OTPStore keeps pending challenges in process memory. Expiry is checked by
// the caller.
type OTPStore struct {
	mu         sync.Mutex
	challenges map[string]model.OTPChallenge
}

func NewOTPStore() *OTPStore {
	return &OTPStore{challenges: make(map[string]model.OTPChallenge)}
}

func (s *OTPStore) Save(_ context.Context, challenge model.OTPChallenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges[challenge.MobileNumber] = challenge
	return nil
}

func (s *OTPStore) Get(_ context.Context, mobileNumber string) (model.OTPChallenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.challenges[mobileNumber]
	if !ok {
		return model.OTPChallenge{}, model.ErrNotFound
	}
	return c, nil
}

func (s *OTPStore) Delete(_ context.Context, mobileNumber string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.challenges, mobileNumber)
	return nil
}
