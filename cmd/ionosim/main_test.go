package main

import (
	"strings"
	"testing"

	"github.com/san-kum/ionosim/internal/dynamo"
)

func TestParseVector(t *testing.T) {
	got, err := parseVector("1e-4, 0,-2.5,")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	want := []float64{1e-4, 0, -2.5}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("component %d: expected %g, got %g", i, want[i], got[i])
		}
	}

	if _, err := parseVector("1,x"); err == nil {
		t.Error("expected error for non-numeric component")
	}
}

func TestEnsembleSummary(t *testing.T) {
	results := []*dynamo.Result{
		{Metrics: map[string]float64{"stability": 1, "position_drift": 0.1}},
		{Metrics: map[string]float64{"stability": 0.5, "position_drift": 0.3}},
	}
	out := ensembleSummary(results)
	if !strings.Contains(out, "stability") || !strings.Contains(out, "0.75") {
		t.Errorf("summary missing stability mean:\n%s", out)
	}
	if strings.Index(out, "position_drift") > strings.Index(out, "stability") {
		t.Error("metrics should be sorted by name")
	}
}
