package server

import (
	"time"

	"github.com/kickplate/kickplate/pkg/domain"
)

// ServerConfig is the sealed configuration of edagd.
//
// To get an instance, use Load, Unmarshal or TrySeal.
type ServerConfig struct {
	port     int32
	cluster  *ClusterConfig
	runRetry *RetryConfig
	auth     *AuthConfig
	tracing  *TracingConfig
}

// Port to listen. default = 8080
func (c *ServerConfig) Port() int32 {
	return c.port
}

func (c *ServerConfig) Cluster() *ClusterConfig {
	return c.cluster
}

func (c *ServerConfig) RunRetry() *RetryConfig {
	return c.runRetry
}

func (c *ServerConfig) Auth() *AuthConfig {
	return c.auth
}

func (c *ServerConfig) Tracing() *TracingConfig {
	return c.tracing
}

type ClusterConfig struct {
	namespace      string
	kubeconfig     string
	requestTimeout time.Duration
	kinds          *KindsConfig
}

// k8s namespace where EDAGs and runs are created.
func (c *ClusterConfig) Namespace() string {
	return c.namespace
}

// Path to kubeconfig. Empty means "detect".
func (c *ClusterConfig) Kubeconfig() string {
	return c.kubeconfig
}

// Timeout of each request to the cluster. default = 10s
func (c *ClusterConfig) RequestTimeout() time.Duration {
	return c.requestTimeout
}

func (c *ClusterConfig) Kinds() *KindsConfig {
	return c.kinds
}

type KindsConfig struct {
	edag     domain.KindDescriptor
	edagRun  domain.KindDescriptor
	workflow domain.KindDescriptor
}

func (k *KindsConfig) EDAG() domain.KindDescriptor {
	return k.edag
}

func (k *KindsConfig) EDAGRun() domain.KindDescriptor {
	return k.edagRun
}

func (k *KindsConfig) Workflow() domain.KindDescriptor {
	return k.workflow
}

// RetryConfig bounds retries of starting runs.
//
// Defaults: 5 attempts, 50ms initial interval, multiplier 2, jitter 0.5.
type RetryConfig struct {
	maxAttempts     int
	initialInterval time.Duration
	multiplier      float64
	jitter          float64
}

func (r *RetryConfig) MaxAttempts() int {
	return r.maxAttempts
}

func (r *RetryConfig) InitialInterval() time.Duration {
	return r.initialInterval
}

func (r *RetryConfig) Multiplier() float64 {
	return r.multiplier
}

func (r *RetryConfig) Jitter() float64 {
	return r.jitter
}

type AuthConfig struct {
	jwksURL             string
	openIDConfigURL     string
	issuer              string
	audience            string
	leeway              time.Duration
	jwksRefreshInterval time.Duration
}

// URL of the JWKS document. Either this or OpenIDConfigURL is set.
func (a *AuthConfig) JWKSURL() string {
	return a.jwksURL
}

// URL of the OpenID Provider configuration, to discover the JWKS.
func (a *AuthConfig) OpenIDConfigURL() string {
	return a.openIDConfigURL
}

func (a *AuthConfig) Issuer() string {
	return a.issuer
}

func (a *AuthConfig) Audience() string {
	return a.audience
}

func (a *AuthConfig) Leeway() time.Duration {
	return a.leeway
}

// default = 1h
func (a *AuthConfig) JWKSRefreshInterval() time.Duration {
	return a.jwksRefreshInterval
}

type TracingConfig struct {
	serviceName string
	exporter    string
	endpoint    string
	insecure    bool
}

func (t *TracingConfig) ServiceName() string {
	return t.serviceName
}

// one of "none" (default), "stdout" or "otlp".
func (t *TracingConfig) Exporter() string {
	return t.exporter
}

func (t *TracingConfig) Endpoint() string {
	return t.endpoint
}

func (t *TracingConfig) Insecure() bool {
	return t.insecure
}
