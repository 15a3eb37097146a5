package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/rbos-labs/rbos-backend/pkg/types"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, metric := range fam.GetMetric() {
			if matchLabels(metric, labels) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func matchLabels(metric *dto.Metric, labels map[string]string) bool {
	seen := map[string]string{}
	for _, pair := range metric.GetLabel() {
		seen[pair.GetName()] = pair.GetValue()
	}
	for k, v := range labels {
		if seen[k] != v {
			return false
		}
	}
	return true
}

func TestObserveReconcileCountsOutcomes(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewCartMetrics(reg)

	m.ObserveReconcile("merge", 10*time.Millisecond, nil)
	m.ObserveReconcile("merge", 10*time.Millisecond, errors.New("boom"))
	m.ObserveReconcile("fetch", time.Millisecond, nil)

	if got := counterValue(t, reg, "cart_reconcile_success", map[string]string{"op": "merge"}); got != 1 {
		t.Fatalf("unexpected merge success count: %v", got)
	}
	if got := counterValue(t, reg, "cart_reconcile_failure", map[string]string{"op": "merge"}); got != 1 {
		t.Fatalf("unexpected merge failure count: %v", got)
	}
	if got := counterValue(t, reg, "cart_reconcile_success", map[string]string{"op": "fetch"}); got != 1 {
		t.Fatalf("unexpected fetch success count: %v", got)
	}
}

func TestCountConflictsByKind(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewCartMetrics(reg)

	m.CountConflicts(&types.ConflictReport{
		Dropped: []types.ConflictEntry{{ItemID: "salad"}},
		Merged:  []types.ConflictEntry{{ItemID: "soda"}, {ItemID: "tea"}},
	})

	if got := counterValue(t, reg, "cart_conflicts_total", map[string]string{"kind": "dropped"}); got != 1 {
		t.Fatalf("unexpected dropped count: %v", got)
	}
	if got := counterValue(t, reg, "cart_conflicts_total", map[string]string{"kind": "merged"}); got != 2 {
		t.Fatalf("unexpected merged count: %v", got)
	}
	if got := counterValue(t, reg, "cart_conflicts_total", map[string]string{"kind": "clamped"}); got != 0 {
		t.Fatalf("unexpected clamped count: %v", got)
	}
}

func TestNilRegistererIsNoop(t *testing.T) {
	t.Parallel()

	m := NewCartMetrics(nil)
	m.ObserveReconcile("merge", time.Millisecond, nil)
	m.CountConflicts(&types.ConflictReport{Dropped: []types.ConflictEntry{{ItemID: "x"}}})
}
