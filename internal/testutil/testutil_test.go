package testutil

import "testing"

func TestSmallGrid(t *testing.T) {
	t.Parallel()
	g := SmallGrid()
	if g.Len() != 6 {
		t.Errorf("Len() = %d, want 6", g.Len())
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestRamp(t *testing.T) {
	t.Parallel()
	got := Ramp(3, 1, 0.5)
	want := []float64{1, 1.5, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Ramp()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestFields(t *testing.T) {
	t.Parallel()
	f := Fields{"surface_water__depth": {0.1}}

	if v, err := f.AtNode("surface_water__depth"); err != nil || len(v) != 1 {
		t.Errorf("AtNode() = %v, %v", v, err)
	}
	if _, err := f.AtNode("missing"); err == nil {
		t.Error("expected error for a missing field")
	}
}

func TestDischargeRecord(t *testing.T) {
	t.Parallel()
	got := DischargeRecord([]float64{0, 1.5}, []float64{60, 2})
	if got != "0 1.5\n60 2\n" {
		t.Errorf("DischargeRecord() = %q", got)
	}
}
