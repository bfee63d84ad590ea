package mock

import (
	"context"
	"testing"

	"github.com/kickplate/kickplate/pkg/domain"
	k8s "github.com/kickplate/kickplate/pkg/workloads/k8s"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

type CreateArgs struct {
	Kind     domain.KindDescriptor
	Manifest *unstructured.Unstructured
}

type GetArgs struct {
	Kind domain.KindDescriptor
	Name string
}

// MockCluster is a k8s.Cluster recording its calls.
type MockCluster struct {
	t *testing.T

	NamespaceName string

	Impl struct {
		Create func(ctx context.Context, kind domain.KindDescriptor, manifest *unstructured.Unstructured) (*unstructured.Unstructured, error)
		Get    func(ctx context.Context, kind domain.KindDescriptor, name string) (*unstructured.Unstructured, error)
	}

	Calls struct {
		Create []CreateArgs
		Get    []GetArgs
	}
}

var _ k8s.Cluster = &MockCluster{}

func NewCluster(t *testing.T, namespace string) *MockCluster {
	return &MockCluster{t: t, NamespaceName: namespace}
}

func (m *MockCluster) Namespace() string {
	return m.NamespaceName
}

func (m *MockCluster) Create(ctx context.Context, kind domain.KindDescriptor, manifest *unstructured.Unstructured) (*unstructured.Unstructured, error) {
	m.t.Helper()
	m.Calls.Create = append(m.Calls.Create, CreateArgs{Kind: kind, Manifest: manifest})
	if m.Impl.Create == nil {
		m.t.Fatal("Create is not implemented")
	}
	return m.Impl.Create(ctx, kind, manifest)
}

func (m *MockCluster) Get(ctx context.Context, kind domain.KindDescriptor, name string) (*unstructured.Unstructured, error) {
	m.t.Helper()
	m.Calls.Get = append(m.Calls.Get, GetArgs{Kind: kind, Name: name})
	if m.Impl.Get == nil {
		m.t.Fatal("Get is not implemented")
	}
	return m.Impl.Get(ctx, kind, name)
}
