package k8s

import (
	"context"
	"time"

	"github.com/kickplate/kickplate/pkg/domain"
	"github.com/kickplate/kickplate/pkg/domain/errors/k8serrors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"
)

// subset of dynamic.Interface
type DynamicClient interface {
	CreateObject(ctx context.Context, gvr schema.GroupVersionResource, namespace string, obj *unstructured.Unstructured) (*unstructured.Unstructured, error)
	GetObject(ctx context.Context, gvr schema.GroupVersionResource, namespace string, name string) (*unstructured.Unstructured, error)
}

// A wrapper for dynamic.Interface; because it does not prefer method chain-style invocations of that type.
type dynamicClient struct {
	client dynamic.Interface
}

var _ DynamicClient = &dynamicClient{}

func WrapDynamicClient(client dynamic.Interface) DynamicClient {
	return &dynamicClient{client: client}
}

func (d *dynamicClient) CreateObject(ctx context.Context, gvr schema.GroupVersionResource, namespace string, obj *unstructured.Unstructured) (*unstructured.Unstructured, error) {
	return d.client.Resource(gvr).Namespace(namespace).Create(ctx, obj, metav1.CreateOptions{})
}

func (d *dynamicClient) GetObject(ctx context.Context, gvr schema.GroupVersionResource, namespace string, name string) (*unstructured.Unstructured, error) {
	return d.client.Resource(gvr).Namespace(namespace).Get(ctx, name, metav1.GetOptions{})
}

// Cluster creates and reads custom resources in a namespace.
//
// Errors returned from Cluster carry a status code (see k8serrors.StatusCode).
type Cluster interface {
	// Namespace where resources are handled.
	Namespace() string

	// Create submits the manifest as a resource of kind.
	//
	// The namespace of the manifest is overwritten with Namespace().
	// If the resource already exists, the error has status 409.
	Create(ctx context.Context, kind domain.KindDescriptor, manifest *unstructured.Unstructured) (*unstructured.Unstructured, error)

	// Get reads the resource of kind with the name.
	//
	// If the resource is not found, the error has status 404.
	Get(ctx context.Context, kind domain.KindDescriptor, name string) (*unstructured.Unstructured, error)
}

type k8sCluster struct {
	client    DynamicClient
	namespace string
	timeout   time.Duration
}

// AttachCluster returns Cluster working in namespace.
//
// Each call to the cluster is bounded by timeout. Non-positive timeout means no bound.
func AttachCluster(client DynamicClient, namespace string, timeout time.Duration) Cluster {
	return &k8sCluster{client: client, namespace: namespace, timeout: timeout}
}

func (c *k8sCluster) Namespace() string {
	return c.namespace
}

func (c *k8sCluster) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *k8sCluster) Create(ctx context.Context, kind domain.KindDescriptor, manifest *unstructured.Unstructured) (*unstructured.Unstructured, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	manifest = manifest.DeepCopy()
	manifest.SetNamespace(c.namespace)

	created, err := c.client.CreateObject(ctx, kind.GroupVersionResource(), c.namespace, manifest)
	if err != nil {
		return nil, k8serrors.FromAPIError("creating "+kind.String()+" "+manifest.GetName(), err)
	}
	return created, nil
}

func (c *k8sCluster) Get(ctx context.Context, kind domain.KindDescriptor, name string) (*unstructured.Unstructured, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	got, err := c.client.GetObject(ctx, kind.GroupVersionResource(), c.namespace, name)
	if err != nil {
		return nil, k8serrors.FromAPIError("getting "+kind.String()+" "+name, err)
	}
	return got, nil
}
