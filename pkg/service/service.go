// Package service orchestrates EDAG and EDAGRun resources in the cluster.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kickplate/kickplate/pkg/domain"
	derr "github.com/kickplate/kickplate/pkg/domain/errors"
	"github.com/kickplate/kickplate/pkg/domain/errors/k8serrors"
	statusk8s "github.com/kickplate/kickplate/pkg/domain/status/k8s"
	"github.com/kickplate/kickplate/pkg/metrics"
	"github.com/kickplate/kickplate/pkg/utils/retry"
	"github.com/kickplate/kickplate/pkg/workloads/k8s"
	"github.com/labstack/gommon/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Service is the set of operations exposed to API clients.
type Service interface {
	// CreateGraph registers a graph definition.
	//
	// # Returns
	//
	// - error: ErrInvalidGraph if steps are inconsistent,
	// ErrGraphAlreadyExists if the name is taken, otherwise ErrUndetermined.
	CreateGraph(ctx context.Context, req domain.GraphRequest) error

	// RunGraph starts a run of the named EDAG.
	//
	// Name collisions of the run are retried within the retry policy.
	//
	// # Returns
	//
	// - domain.RunResponse: the name of the created run.
	//
	// - error: ErrGraphNotFound if there is no such EDAG, otherwise ErrUndetermined.
	RunGraph(ctx context.Context, edagname string) (domain.RunResponse, error)

	// GetStatus returns the execution status of the run.
	//
	// # Returns
	//
	// - error: ErrGraphNotFound if there is no such run, otherwise ErrUndetermined.
	GetStatus(ctx context.Context, runID string) (domain.StatusDocument, error)
}

type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// RetryPolicy bounds retries of RunGraph on name collisions.
type RetryPolicy struct {
	// MaxAttempts is the number of attempts including the first one.
	MaxAttempts int

	// InitialInterval is the wait before the second attempt.
	InitialInterval time.Duration

	// Multiplier grows the wait for each following attempt.
	Multiplier float64

	// Jitter extends each wait randomly, by up to Jitter times the wait.
	Jitter float64
}

var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts:     5,
	InitialInterval: 50 * time.Millisecond,
	Multiplier:      2,
	Jitter:          0.5,
}

type service struct {
	cluster k8s.Cluster
	graphs  domain.GraphBuilder
	runs    domain.RunBuilder
	status  statusk8s.Reader

	retry   RetryPolicy
	logger  Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

type Option func(*service) *service

func WithRetryPolicy(p RetryPolicy) Option {
	return func(s *service) *service {
		s.retry = p
		return s
	}
}

func WithLogger(l Logger) Option {
	return func(s *service) *service {
		s.logger = l
		return s
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *service) *service {
		s.metrics = m
		return s
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *service) *service {
		s.tracer = t
		return s
	}
}

func New(
	cluster k8s.Cluster,
	graphs domain.GraphBuilder,
	runs domain.RunBuilder,
	status statusk8s.Reader,
	options ...Option,
) Service {
	s := &service{
		cluster: cluster,
		graphs:  graphs,
		runs:    runs,
		status:  status,
		retry:   DefaultRetryPolicy,
		logger:  log.New("service"),
		tracer:  noop.NewTracerProvider().Tracer(""),
	}
	for _, opt := range options {
		s = opt(s)
	}
	return s
}

func (s *service) CreateGraph(ctx context.Context, req domain.GraphRequest) (err error) {
	ctx, done := s.begin(ctx, "create_graph", attribute.String("edag.name", req.Graphname))
	defer func() { done(err) }()

	if err := domain.ValidateGraph(req); err != nil {
		return err
	}

	manifest := s.graphs.BuildManifest(s.graphs.BuildResource(req), s.cluster.Namespace())
	if _, err := s.cluster.Create(ctx, s.graphs.Kind(), manifest); err != nil {
		if k8serrors.IsConflict(err) {
			return derr.GraphAlreadyExists(req.Graphname)
		}
		return derr.Undetermined(err)
	}
	return nil
}

func (s *service) RunGraph(ctx context.Context, edagname string) (resp domain.RunResponse, err error) {
	ctx, done := s.begin(ctx, "run_graph", attribute.String("edag.name", edagname))
	defer func() { done(err) }()

	backoff := retry.JitteredBackoff(s.retry.InitialInterval, s.retry.Multiplier, s.retry.Jitter)
	resp, err = retry.Bounded(ctx, s.retry.MaxAttempts, backoff, func(attempt int) (domain.RunResponse, error) {
		// the EDAG may be replaced between attempts, so its uid is read each time.
		parent, err := s.cluster.Get(ctx, s.graphs.Kind(), edagname)
		if err != nil {
			if k8serrors.IsMissing(err) {
				return domain.RunResponse{}, derr.GraphNotFound(edagname)
			}
			return domain.RunResponse{}, derr.Undetermined(err)
		}

		manifest := s.runs.BuildManifest(
			domain.RunResource{EDAGName: edagname, EDAGUID: string(parent.GetUID())},
			s.cluster.Namespace(),
		)
		if _, err := s.cluster.Create(ctx, s.runs.Kind(), manifest); err != nil {
			if k8serrors.IsConflict(err) {
				s.metrics.RunNameCollided()
				s.logger.Warnf(
					"EDAGRun name %s is taken (attempt %d of %d)",
					manifest.GetName(), attempt, s.retry.MaxAttempts,
				)
				return domain.RunResponse{}, fmt.Errorf("%w: %w", retry.ErrRetry, err)
			}
			return domain.RunResponse{}, derr.Undetermined(err)
		}
		return domain.RunResponse{Id: manifest.GetName()}, nil
	})
	if err != nil {
		if _, ok := derr.AsGraphNotFound(err); ok {
			return domain.RunResponse{}, err
		}
		return domain.RunResponse{}, derr.Undetermined(err)
	}
	return resp, nil
}

func (s *service) GetStatus(ctx context.Context, runID string) (doc domain.StatusDocument, err error) {
	ctx, done := s.begin(ctx, "get_status", attribute.String("edagrun.id", runID))
	defer func() { done(err) }()

	return s.status.GetStatus(ctx, runID)
}

// begin starts a span for the operation.
//
// The returned function ends the span, and records the outcome to logs and metrics.
func (s *service) begin(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := s.tracer.Start(ctx, operation, trace.WithAttributes(attrs...))
	began := time.Now()

	return ctx, func(err error) {
		defer span.End()

		outcome := outcomeOf(err)
		s.metrics.Observe(operation, outcome, time.Since(began))
		if err == nil {
			span.SetStatus(codes.Ok, "")
			return
		}

		span.SetAttributes(attribute.String("outcome", outcome))
		if u, ok := derr.AsUndetermined(err); ok {
			span.RecordError(err)
			span.SetStatus(codes.Error, "undetermined (ref: "+u.Ref+")")
			s.logger.Errorf("%s failed (ref: %s): %+v", operation, u.Ref, err)
			return
		}
		s.logger.Infof("%s rejected: %s", operation, err)
	}
}

func outcomeOf(err error) string {
	if err == nil {
		return metrics.OutcomeOk
	}
	var (
		exists  *derr.ErrGraphAlreadyExists
		missing *derr.ErrGraphNotFound
		invalid *derr.ErrInvalidGraph
	)
	switch {
	case errors.As(err, &exists):
		return metrics.OutcomeConflict
	case errors.As(err, &missing):
		return metrics.OutcomeNotFound
	case errors.As(err, &invalid):
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeUndetermined
	}
}
