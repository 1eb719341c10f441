package pipeline

import (
	"errors"
	"testing"

	"stellab.xyz/argus/internal/core"
	"stellab.xyz/argus/pkg/plugin"
)

func names(transformers []plugin.Transformer) []string {
	out := make([]string, len(transformers))
	for i, tr := range transformers {
		out[i] = tr.Name()
	}
	return out
}

func TestOrderTransformersKeepsConfiguredOrder(t *testing.T) {
	ordered, err := orderTransformers([]plugin.Transformer{
		&mockTransformer{name: "apid_filter"},
		&mockTransformer{name: "decom"},
		&mockTransformer{name: "calibration", deps: []string{"decom"}},
	})
	if err != nil {
		t.Fatalf("orderTransformers failed: %v", err)
	}
	got := names(ordered)
	want := []string{"apid_filter", "decom", "calibration"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestOrderTransformersReordersForDependencies(t *testing.T) {
	// Calibration configured before its dependency; the sort must move decom
	// ahead of it.
	ordered, err := orderTransformers([]plugin.Transformer{
		&mockTransformer{name: "calibration", deps: []string{"decom"}},
		&mockTransformer{name: "decom"},
	})
	if err != nil {
		t.Fatalf("orderTransformers failed: %v", err)
	}
	got := names(ordered)
	if got[0] != "decom" || got[1] != "calibration" {
		t.Errorf("order = %v, want [decom calibration]", got)
	}
}

func TestOrderTransformersRejectsMissingDependency(t *testing.T) {
	_, err := orderTransformers([]plugin.Transformer{
		&mockTransformer{name: "calibration", deps: []string{"decom"}},
	})
	if !errors.Is(err, core.ErrConfigInvalid) {
		t.Errorf("expected ErrConfigInvalid, got %v", err)
	}
}

func TestOrderTransformersRejectsCycle(t *testing.T) {
	_, err := orderTransformers([]plugin.Transformer{
		&mockTransformer{name: "a", deps: []string{"b"}},
		&mockTransformer{name: "b", deps: []string{"a"}},
	})
	if !errors.Is(err, core.ErrConfigInvalid) {
		t.Errorf("expected ErrConfigInvalid, got %v", err)
	}
}

func TestOrderTransformersRejectsDuplicateName(t *testing.T) {
	_, err := orderTransformers([]plugin.Transformer{
		&mockTransformer{name: "decom"},
		&mockTransformer{name: "decom"},
	})
	if !errors.Is(err, core.ErrConfigInvalid) {
		t.Errorf("expected ErrConfigInvalid, got %v", err)
	}
}
