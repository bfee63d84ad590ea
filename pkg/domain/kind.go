package domain

import "k8s.io/apimachinery/pkg/runtime/schema"

// KindDescriptor identifies a kind of custom resource in the cluster.
//
// The same descriptor is used to write manifests (apiVersion and kind) and
// to address the resource through the cluster client (group, version and plural).
type KindDescriptor struct {
	Group   string
	Version string
	Kind    string
	Plural  string
}

func (k KindDescriptor) APIVersion() string {
	return k.GroupVersionKind().GroupVersion().String()
}

func (k KindDescriptor) GroupVersionKind() schema.GroupVersionKind {
	return schema.GroupVersionKind{Group: k.Group, Version: k.Version, Kind: k.Kind}
}

func (k KindDescriptor) GroupVersionResource() schema.GroupVersionResource {
	return schema.GroupVersionResource{Group: k.Group, Version: k.Version, Resource: k.Plural}
}

func (k KindDescriptor) String() string {
	return k.Plural + "." + k.Group + "/" + k.Version
}

var (
	// EDAGKind is the default descriptor of graph definitions.
	EDAGKind = KindDescriptor{
		Group: "edag.kickplate.com", Version: "v1alpha1", Kind: "EDAG", Plural: "edags",
	}

	// EDAGRunKind is the default descriptor of runs.
	EDAGRunKind = KindDescriptor{
		Group: "edag.kickplate.com", Version: "v1alpha1", Kind: "EDAGRun", Plural: "edagruns",
	}

	// WorkflowKind is the default descriptor of workflows which execute runs.
	WorkflowKind = KindDescriptor{
		Group: "argoproj.io", Version: "v1alpha1", Kind: "Workflow", Plural: "workflows",
	}
)
