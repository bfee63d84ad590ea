package k8s

import (
	"math/rand"
	"strings"

	"github.com/kickplate/kickplate/pkg/domain"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/types"
)

const (
	suffixLength   = 8
	suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
)

type builder struct {
	kind     domain.KindDescriptor
	edagKind domain.KindDescriptor
	intN     func(n int) int
}

type Option func(*builder) *builder

// WithRandom replaces the random source of run names.
//
// intN should return an integer in [0, n).
func WithRandom(intN func(n int) int) Option {
	return func(b *builder) *builder {
		b.intN = intN
		return b
	}
}

// New returns a RunBuilder writing manifests of kind,
// owned by EDAGs of edagKind.
func New(kind domain.KindDescriptor, edagKind domain.KindDescriptor, options ...Option) domain.RunBuilder {
	b := &builder{kind: kind, edagKind: edagKind, intN: rand.Intn}
	for _, opt := range options {
		b = opt(b)
	}
	return b
}

var _ domain.RunBuilder = &builder{}

func (b *builder) Kind() domain.KindDescriptor {
	return b.kind
}

// BuildManifest names the run `{edagname}-{8 random characters}`
// and sets the EDAG as its owner.
func (b *builder) BuildManifest(r domain.RunResource, namespace string) *unstructured.Unstructured {
	u := &unstructured.Unstructured{
		Object: map[string]interface{}{
			"spec": map[string]interface{}{
				"edagname": r.EDAGName,
			},
		},
	}
	u.SetAPIVersion(b.kind.APIVersion())
	u.SetKind(b.kind.Kind)
	u.SetName(r.EDAGName + "-" + b.suffix())
	u.SetNamespace(namespace)
	u.SetOwnerReferences([]metav1.OwnerReference{
		{
			APIVersion: b.edagKind.APIVersion(),
			Kind:       b.edagKind.Kind,
			Name:       r.EDAGName,
			UID:        types.UID(r.EDAGUID),
		},
	})
	return u
}

func (b *builder) suffix() string {
	s := new(strings.Builder)
	s.Grow(suffixLength)
	for i := 0; i < suffixLength; i++ {
		s.WriteByte(suffixAlphabet[b.intN(len(suffixAlphabet))])
	}
	return s.String()
}
