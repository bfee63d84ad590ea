package domain

import "k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

// GraphRequest is a graph definition submitted by a client.
type GraphRequest struct {
	// Graphname is unique in the namespace and must be a DNS-1123 subdomain.
	Graphname string `json:"graphname" validate:"required,dns1123subdomain"`

	Steps []StepRequest `json:"steps" validate:"required,min=1,dive"`
}

// StepRequest is a step in GraphRequest.
//
// Fields left empty take defaults when the request is built into GraphResource.
type StepRequest struct {
	Stepname     string            `json:"stepname" validate:"required,max=40"`
	Image        string            `json:"image" validate:"required,imageref"`
	Replicas     *int32            `json:"replicas,omitempty" validate:"omitempty,min=1,max=10"`
	Dependencies []string          `json:"dependencies,omitempty"`
	Env          map[string]string `json:"env,omitempty"`
	Args         []string          `json:"args,omitempty"`
	Command      []string          `json:"command,omitempty"`
}

// GraphResource is GraphRequest with every default applied.
//
// It shares no memory with the request it is built from.
type GraphResource struct {
	Graphname string
	Steps     []StepResource
}

type StepResource struct {
	Stepname     string
	Image        string
	Replicas     int32
	Dependencies []string
	Env          map[string]string
	Args         []string
	Command      []string
}

// DefaultReplicas is the number of replicas of a step which does not tell.
const DefaultReplicas int32 = 1

// GraphBuilder builds graph definitions from client requests.
type GraphBuilder interface {
	// Kind returns the kind of manifests built by this builder.
	Kind() KindDescriptor

	// BuildResource applies defaults to a request.
	//
	// Requests should be validated beforehand; this never fails.
	BuildResource(GraphRequest) GraphResource

	// BuildManifest returns the wire document of the resource in the namespace.
	BuildManifest(r GraphResource, namespace string) *unstructured.Unstructured
}
