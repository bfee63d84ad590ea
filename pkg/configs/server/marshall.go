package server

import (
	"fmt"
	"time"

	"github.com/kickplate/kickplate/pkg/domain"
)

type Marshalled[S any] interface {
	trySeal(string) S
}

// seal marshalled object.
//
// this function CAN CAUSE PANIC if misconfiguration is found.
// To get an error instead, use Unmarshal or Load.
func TrySeal[S any](conf Marshalled[S]) S {
	return conf.trySeal("(root)")
}

type ServerConfigMarshall struct {
	Port     int32                  `yaml:"port"`
	Cluster  *ClusterConfigMarshall `yaml:"cluster"`
	RunRetry *RetryConfigMarshall   `yaml:"runRetry,omitempty"`
	Auth     *AuthConfigMarshall    `yaml:"auth"`
	Tracing  *TracingConfigMarshall `yaml:"tracing,omitempty"`
}

var _ Marshalled[*ServerConfig] = &ServerConfigMarshall{}

func (s *ServerConfigMarshall) trySeal(path string) *ServerConfig {
	port := s.Port
	if port == 0 {
		port = 8080
	}
	if port < 0 || 65535 < port {
		panic(fmt.Sprintf("%s.port is out of range: %d", path, port))
	}

	retry := s.RunRetry
	if retry == nil {
		retry = &RetryConfigMarshall{}
	}
	tracing := s.Tracing
	if tracing == nil {
		tracing = &TracingConfigMarshall{}
	}

	return &ServerConfig{
		port:     port,
		cluster:  nonnil(s.Cluster, path+".cluster").trySeal(path + ".cluster"),
		runRetry: retry.trySeal(path + ".runRetry"),
		auth:     nonnil(s.Auth, path+".auth").trySeal(path + ".auth"),
		tracing:  tracing.trySeal(path + ".tracing"),
	}
}

type ClusterConfigMarshall struct {
	Namespace string `yaml:"namespace"`

	// Kubeconfig is optional. Without it, KUBECONFIG or in-cluster config is used.
	Kubeconfig     string               `yaml:"kubeconfig,omitempty"`
	RequestTimeout time.Duration        `yaml:"requestTimeout,omitempty"`
	Kinds          *KindsConfigMarshall `yaml:"kinds,omitempty"`
}

func (c *ClusterConfigMarshall) trySeal(path string) *ClusterConfig {
	timeout := c.RequestTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	if timeout < 0 {
		panic(path + ".requestTimeout should be positive")
	}
	kinds := c.Kinds
	if kinds == nil {
		kinds = &KindsConfigMarshall{}
	}
	return &ClusterConfig{
		namespace:      required(c.Namespace, path+".namespace"),
		kubeconfig:     c.Kubeconfig,
		requestTimeout: timeout,
		kinds:          kinds.trySeal(path + ".kinds"),
	}
}

type KindsConfigMarshall struct {
	EDAG     *KindMarshall `yaml:"edag,omitempty"`
	EDAGRun  *KindMarshall `yaml:"edagRun,omitempty"`
	Workflow *KindMarshall `yaml:"workflow,omitempty"`
}

func (k *KindsConfigMarshall) trySeal(path string) *KindsConfig {
	return &KindsConfig{
		edag:     k.EDAG.orDefault(domain.EDAGKind, path+".edag"),
		edagRun:  k.EDAGRun.orDefault(domain.EDAGRunKind, path+".edagRun"),
		workflow: k.Workflow.orDefault(domain.WorkflowKind, path+".workflow"),
	}
}

type KindMarshall struct {
	Group   string `yaml:"group"`
	Version string `yaml:"version"`
	Kind    string `yaml:"kind"`
	Plural  string `yaml:"plural"`
}

func (k *KindMarshall) orDefault(d domain.KindDescriptor, path string) domain.KindDescriptor {
	if k == nil {
		return d
	}
	return domain.KindDescriptor{
		// group can be empty for the core API group.
		Group:   k.Group,
		Version: required(k.Version, path+".version"),
		Kind:    required(k.Kind, path+".kind"),
		Plural:  required(k.Plural, path+".plural"),
	}
}

type RetryConfigMarshall struct {
	MaxAttempts     int           `yaml:"maxAttempts,omitempty"`
	InitialInterval time.Duration `yaml:"initialInterval,omitempty"`
	Multiplier      float64       `yaml:"multiplier,omitempty"`
	Jitter          *float64      `yaml:"jitter,omitempty"`
}

func (r *RetryConfigMarshall) trySeal(path string) *RetryConfig {
	sealed := &RetryConfig{
		maxAttempts:     5,
		initialInterval: 50 * time.Millisecond,
		multiplier:      2,
		jitter:          0.5,
	}
	if r.MaxAttempts != 0 {
		sealed.maxAttempts = r.MaxAttempts
	}
	if r.InitialInterval != 0 {
		sealed.initialInterval = r.InitialInterval
	}
	if r.Multiplier != 0 {
		sealed.multiplier = r.Multiplier
	}
	if r.Jitter != nil {
		sealed.jitter = *r.Jitter
	}

	switch {
	case sealed.maxAttempts < 1:
		panic(path + ".maxAttempts should be at least 1")
	case sealed.initialInterval < 0:
		panic(path + ".initialInterval should be positive")
	case sealed.multiplier < 1:
		panic(path + ".multiplier should be at least 1")
	case sealed.jitter < 0:
		panic(path + ".jitter should not be negative")
	}
	return sealed
}

type AuthConfigMarshall struct {
	JWKSURL             string        `yaml:"jwksUrl,omitempty"`
	OpenIDConfigURL     string        `yaml:"openidConfigUrl,omitempty"`
	Issuer              string        `yaml:"issuer"`
	Audience            string        `yaml:"audience"`
	Leeway              time.Duration `yaml:"leeway,omitempty"`
	JWKSRefreshInterval time.Duration `yaml:"jwksRefreshInterval,omitempty"`
}

func (a *AuthConfigMarshall) trySeal(path string) *AuthConfig {
	if (a.JWKSURL == "") == (a.OpenIDConfigURL == "") {
		panic(path + ": exactly one of jwksUrl or openidConfigUrl is required")
	}
	refresh := a.JWKSRefreshInterval
	if refresh == 0 {
		refresh = time.Hour
	}
	if a.Leeway < 0 {
		panic(path + ".leeway should not be negative")
	}
	return &AuthConfig{
		jwksURL:             a.JWKSURL,
		openIDConfigURL:     a.OpenIDConfigURL,
		issuer:              required(a.Issuer, path+".issuer"),
		audience:            required(a.Audience, path+".audience"),
		leeway:              a.Leeway,
		jwksRefreshInterval: refresh,
	}
}

type TracingConfigMarshall struct {
	ServiceName string `yaml:"serviceName,omitempty"`
	Exporter    string `yaml:"exporter,omitempty"`
	Endpoint    string `yaml:"endpoint,omitempty"`
	Insecure    bool   `yaml:"insecure,omitempty"`
}

func (t *TracingConfigMarshall) trySeal(path string) *TracingConfig {
	name := t.ServiceName
	if name == "" {
		name = "kickplate"
	}
	exporter := t.Exporter
	if exporter == "" {
		exporter = "none"
	}
	switch exporter {
	case "none", "stdout":
	case "otlp":
		required(t.Endpoint, path+".endpoint")
	default:
		panic(fmt.Sprintf("%s.exporter should be one of none, stdout or otlp: %s", path, exporter))
	}
	return &TracingConfig{
		serviceName: name,
		exporter:    exporter,
		endpoint:    t.Endpoint,
		insecure:    t.Insecure,
	}
}

func nonnil[T any](v *T, path string) *T {
	if v == nil {
		panic(path + " is required")
	}
	return v
}

func required[T comparable](v T, path string) T {
	if v == *new(T) {
		panic(path + " is required")
	}
	return v
}
