package metrics_test

import (
	"strings"
	"testing"
	"time"

	"github.com/kickplate/kickplate/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	testee := metrics.New(reg)

	testee.Observe("run_graph", metrics.OutcomeOk, 10*time.Millisecond)
	testee.Observe("run_graph", metrics.OutcomeOk, 20*time.Millisecond)
	testee.Observe("create_graph", metrics.OutcomeConflict, time.Millisecond)
	testee.RunNameCollided()

	want := `
# HELP kickplate_edag_operations_total Total EDAG service operations by operation and outcome
# TYPE kickplate_edag_operations_total counter
kickplate_edag_operations_total{operation="create_graph",outcome="conflict"} 1
kickplate_edag_operations_total{operation="run_graph",outcome="ok"} 2
# HELP kickplate_edagrun_name_collisions_total Total conflicts on creating EDAGRuns with generated names
# TYPE kickplate_edagrun_name_collisions_total counter
kickplate_edagrun_name_collisions_total 1
`
	if err := testutil.GatherAndCompare(
		reg, strings.NewReader(want),
		"kickplate_edag_operations_total", "kickplate_edagrun_name_collisions_total",
	); err != nil {
		t.Error(err)
	}

	if n, err := testutil.GatherAndCount(reg, "kickplate_edag_operation_duration_seconds"); err != nil {
		t.Error(err)
	} else if n != 2 {
		t.Errorf("duration series = %d", n)
	}
}

func TestMetrics_Nil(t *testing.T) {
	var testee *metrics.Metrics
	testee.Observe("run_graph", metrics.OutcomeOk, time.Millisecond)
	testee.RunNameCollided()
}
