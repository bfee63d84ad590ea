package domain

import "k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

// RunResource is a run of an EDAG, resolved to the identity of the EDAG.
type RunResource struct {
	EDAGName string

	// EDAGUID is the uid assigned by the cluster to the EDAG.
	EDAGUID string
}

// RunResponse tells a client which run has been started.
type RunResponse struct {
	Id string `json:"id"`
}

// RunBuilder builds runs.
//
// Unlike GraphBuilder, a run cannot be built from a client request alone:
// the identity of its EDAG is looked up first and passed as RunResource.
type RunBuilder interface {
	// Kind returns the kind of manifests built by this builder.
	Kind() KindDescriptor

	// BuildManifest returns the wire document of a new run with a random name.
	//
	// Each call generates a new name.
	BuildManifest(r RunResource, namespace string) *unstructured.Unstructured
}
