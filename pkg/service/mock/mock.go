package mock

import (
	"context"
	"testing"

	"github.com/kickplate/kickplate/pkg/domain"
	"github.com/kickplate/kickplate/pkg/service"
)

type MockService struct {
	t    *testing.T
	Impl struct {
		CreateGraph func(ctx context.Context, req domain.GraphRequest) error
		RunGraph    func(ctx context.Context, edagname string) (domain.RunResponse, error)
		GetStatus   func(ctx context.Context, runID string) (domain.StatusDocument, error)
	}
	Calls struct {
		CreateGraph []domain.GraphRequest
		RunGraph    []string
		GetStatus   []string
	}
}

var _ service.Service = &MockService{}

func New(t *testing.T) *MockService {
	return &MockService{t: t}
}

func (m *MockService) CreateGraph(ctx context.Context, req domain.GraphRequest) error {
	m.t.Helper()
	m.Calls.CreateGraph = append(m.Calls.CreateGraph, req)
	if m.Impl.CreateGraph == nil {
		m.t.Fatal("CreateGraph is not implemented")
	}
	return m.Impl.CreateGraph(ctx, req)
}

func (m *MockService) RunGraph(ctx context.Context, edagname string) (domain.RunResponse, error) {
	m.t.Helper()
	m.Calls.RunGraph = append(m.Calls.RunGraph, edagname)
	if m.Impl.RunGraph == nil {
		m.t.Fatal("RunGraph is not implemented")
	}
	return m.Impl.RunGraph(ctx, edagname)
}

func (m *MockService) GetStatus(ctx context.Context, runID string) (domain.StatusDocument, error) {
	m.t.Helper()
	m.Calls.GetStatus = append(m.Calls.GetStatus, runID)
	if m.Impl.GetStatus == nil {
		m.t.Fatal("GetStatus is not implemented")
	}
	return m.Impl.GetStatus(ctx, runID)
}
