package k8s

import (
	"maps"
	"slices"

	"github.com/kickplate/kickplate/pkg/domain"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

type builder struct {
	kind domain.KindDescriptor
}

// New returns a GraphBuilder writing manifests of the kind.
func New(kind domain.KindDescriptor) domain.GraphBuilder {
	return &builder{kind: kind}
}

var _ domain.GraphBuilder = &builder{}

func (b *builder) Kind() domain.KindDescriptor {
	return b.kind
}

func (*builder) BuildResource(req domain.GraphRequest) domain.GraphResource {
	steps := make([]domain.StepResource, 0, len(req.Steps))
	for _, s := range req.Steps {
		replicas := domain.DefaultReplicas
		if s.Replicas != nil {
			replicas = *s.Replicas
		}
		env := map[string]string{}
		maps.Copy(env, s.Env)

		steps = append(steps, domain.StepResource{
			Stepname:     s.Stepname,
			Image:        s.Image,
			Replicas:     replicas,
			Dependencies: cloneStrings(s.Dependencies),
			Env:          env,
			Args:         cloneStrings(s.Args),
			Command:      cloneStrings(s.Command),
		})
	}

	return domain.GraphResource{Graphname: req.Graphname, Steps: steps}
}

// BuildManifest writes spec.steps as a map keyed by stepname.
//
// Each entry has image, replicas, argument (from Args), envs (from Env),
// command and dependencies.
func (b *builder) BuildManifest(r domain.GraphResource, namespace string) *unstructured.Unstructured {
	steps := make(map[string]interface{}, len(r.Steps))
	for _, s := range r.Steps {
		envs := make(map[string]interface{}, len(s.Env))
		for k, v := range s.Env {
			envs[k] = v
		}
		steps[s.Stepname] = map[string]interface{}{
			"image":        s.Image,
			"replicas":     int64(s.Replicas),
			"argument":     toList(s.Args),
			"envs":         envs,
			"command":      toList(s.Command),
			"dependencies": toList(s.Dependencies),
		}
	}

	u := &unstructured.Unstructured{
		Object: map[string]interface{}{
			"spec": map[string]interface{}{
				"steps": steps,
			},
		},
	}
	u.SetAPIVersion(b.kind.APIVersion())
	u.SetKind(b.kind.Kind)
	u.SetName(r.Graphname)
	u.SetNamespace(namespace)
	return u
}

func cloneStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return slices.Clone(s)
}

// toList converts to the representation unstructured objects can deep-copy.
func toList(s []string) []interface{} {
	l := make([]interface{}, 0, len(s))
	for _, v := range s {
		l = append(l, v)
	}
	return l
}
