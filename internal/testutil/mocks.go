package testutil

import (
	"context"

	"github.com/regkit/registrar/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

type MockRegistrarService struct {
	mock.Mock
}

func (m *MockRegistrarService) Available(ctx context.Context, name string) (bool, error) {
	args := m.Called(name)
	return args.Bool(0), args.Error(1)
}

func (m *MockRegistrarService) Info(ctx context.Context, name string) (*domain.Detail, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Detail), args.Error(1)
}

func (m *MockRegistrarService) EnsureExists(ctx context.Context, name string) error {
	args := m.Called(name)
	return args.Error(0)
}

func (m *MockRegistrarService) SetNameservers(ctx context.Context, name string, desired []domain.Nameserver) (*domain.NameserverResult, error) {
	args := m.Called(name, desired)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.NameserverResult), args.Error(1)
}

func (m *MockRegistrarService) SetContact(ctx context.Context, name string, contact *domain.Contact, role domain.ContactRole) error {
	args := m.Called(name, contact, role)
	return args.Error(0)
}

func (m *MockRegistrarService) SecurityEmail(ctx context.Context, name string) (string, error) {
	args := m.Called(name)
	return args.String(0), args.Error(1)
}

func (m *MockRegistrarService) PlaceHold(ctx context.Context, name string) error {
	args := m.Called(name)
	return args.Error(0)
}

func (m *MockRegistrarService) RevertHold(ctx context.Context, name string) error {
	args := m.Called(name)
	return args.Error(0)
}

func (m *MockRegistrarService) Delete(ctx context.Context, name string) error {
	args := m.Called(name)
	return args.Error(0)
}

func (m *MockRegistrarService) HealthCheck(ctx context.Context) map[string]error {
	args := m.Called()
	return args.Get(0).(map[string]error)
}
