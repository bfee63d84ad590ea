package k8s

import (
	"context"
	"slices"

	"github.com/kickplate/kickplate/pkg/domain"
	derr "github.com/kickplate/kickplate/pkg/domain/errors"
	"github.com/kickplate/kickplate/pkg/domain/errors/k8serrors"
	"github.com/kickplate/kickplate/pkg/workloads/k8s"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

const (
	LabelCompleted = "workflows.argoproj.io/completed"
	LabelPhase     = "workflows.argoproj.io/phase"
)

// Reader reads the execution status of runs.
type Reader interface {
	// GetStatus returns the status of the workflow executing the run.
	//
	// # Returns
	//
	// - domain.StatusDocument: status. Fields not reported yet are nil.
	//
	// - error: ErrGraphNotFound if there is no such workflow, otherwise ErrUndetermined.
	GetStatus(ctx context.Context, runID string) (domain.StatusDocument, error)
}

type Logger interface {
	Warnf(format string, args ...interface{})
}

type reader struct {
	cluster k8s.Cluster
	kind    domain.KindDescriptor
	logger  Logger
}

func New(cluster k8s.Cluster, workflowKind domain.KindDescriptor, logger Logger) Reader {
	return &reader{cluster: cluster, kind: workflowKind, logger: logger}
}

func (r *reader) GetStatus(ctx context.Context, runID string) (domain.StatusDocument, error) {
	wf, err := r.cluster.Get(ctx, r.kind, runID)
	if err != nil {
		if k8serrors.IsMissing(err) {
			return domain.StatusDocument{}, derr.GraphNotFound(runID)
		}
		return domain.StatusDocument{}, derr.Undetermined(err)
	}
	return r.reshape(wf), nil
}

func (r *reader) reshape(wf *unstructured.Unstructured) domain.StatusDocument {
	name := wf.GetName()
	labels := wf.GetLabels()

	doc := domain.StatusDocument{
		Graphname:     optionalString(wf.Object, "metadata", "name"),
		CompletedTime: fromLabels(labels, LabelCompleted),
		Phase:         fromLabels(labels, LabelPhase),
		CreationTime:  optionalString(wf.Object, "metadata", "creationTimestamp"),
		Steps:         []domain.StepStatus{},
	}
	for attr, v := range map[string]*string{
		"completed": doc.CompletedTime, "phase": doc.Phase, "creation_time": doc.CreationTime,
	} {
		if v == nil {
			r.logger.Warnf("failed to get '%s' for graph: %s", attr, name)
		}
	}

	nodes, found, err := unstructured.NestedMap(wf.Object, "status", "nodes")
	if err != nil {
		r.logger.Warnf("status.nodes of %s is malformed: %s", name, err)
		return doc
	}
	if !found {
		return doc
	}

	// the root node is the DAG itself, not a step.
	delete(nodes, name)

	keys := make([]string, 0, len(nodes))
	for k := range nodes {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, key := range keys {
		node, ok := nodes[key].(map[string]interface{})
		if !ok {
			r.logger.Warnf("node %s of %s is malformed", key, name)
			continue
		}
		step := domain.StepStatus{
			Name:         optionalString(node, "displayName"),
			State:        optionalString(node, "phase"),
			StartTime:    optionalString(node, "startedAt"),
			FinishTime:   optionalString(node, "finishedAt"),
			ErrorMessage: optionalString(node, "message"),
		}
		if step.Name == nil {
			r.logger.Warnf("failed to get 'name' of node %s for graph: %s", key, name)
			k := key
			step.Name = &k
		}
		if step.State == nil {
			r.logger.Warnf("failed to get 'state' of node %s for graph: %s", key, name)
		}
		doc.Steps = append(doc.Steps, step)
	}

	return doc
}

func optionalString(obj map[string]interface{}, fields ...string) *string {
	v, found, err := unstructured.NestedString(obj, fields...)
	if !found || err != nil {
		return nil
	}
	return &v
}

func fromLabels(labels map[string]string, key string) *string {
	v, ok := labels[key]
	if !ok {
		return nil
	}
	return &v
}
