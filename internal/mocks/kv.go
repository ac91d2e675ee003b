package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// KeyValueStore is a testify mock of model.KeyValueStore.
type KeyValueStore struct {
	mock.Mock
}

func (m *KeyValueStore) Get(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *KeyValueStore) Set(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *KeyValueStore) Remove(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
