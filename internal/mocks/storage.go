package mocks

import (
	"context"

	"github.com/pageza/recipebox/backend/internal/storage"
	"github.com/stretchr/testify/mock"
)

// MockObjectStore is a mock implementation of the image object store
type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) Upload(ctx context.Context, key string, data []byte, contentType string) (storage.StoredObject, error) {
	args := m.Called(ctx, key, data, contentType)
	return args.Get(0).(storage.StoredObject), args.Error(1)
}

func (m *MockObjectStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
