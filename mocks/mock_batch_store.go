package mocks

import (
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"churnflow/internal/domain"
)

// MockBatchStore is a mock implementation of port.BatchStore.
type MockBatchStore struct {
	mock.Mock
}

func (m *MockBatchStore) Put(run *domain.BatchRun) {
	m.Called(run)
}

func (m *MockBatchStore) Get(id uuid.UUID) (*domain.BatchRun, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BatchRun), args.Error(1)
}
