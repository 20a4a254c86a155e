package service

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"github.com/spec-kit/citycare/internal/api/dto"
	"github.com/spec-kit/citycare/internal/domain"
)

// MockGateway is a testify mock of Gateway.
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.AuthResponse), args.Error(1)
}

func (m *MockGateway) GetAuthenticated(ctx context.Context, path, token string, out any) error {
	args := m.Called(ctx, path, token, out)
	return args.Error(0)
}

func (m *MockGateway) PostAuthenticated(ctx context.Context, path string, body any, token string, out any) error {
	args := m.Called(ctx, path, body, token, out)
	return args.Error(0)
}

func (m *MockGateway) PutStatus(ctx context.Context, id string, status domain.ComplaintStatus, token string) (*dto.IssueRecord, error) {
	args := m.Called(ctx, id, status, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.IssueRecord), args.Error(1)
}

// respond decodes body into the out argument at index i of a mocked call.
func respond(i int, body string) func(mock.Arguments) {
	return func(args mock.Arguments) {
		if out := args.Get(i); out != nil {
			if err := json.Unmarshal([]byte(body), out); err != nil {
				panic(err)
			}
		}
	}
}
