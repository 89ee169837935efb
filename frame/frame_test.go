package frame

import (
	"errors"
	"math"
	"testing"
)

func TestNominalFromStrings(t *testing.T) {
	c := NominalFromStrings("color", []string{"red", "?", "blue", "red", "NA", "green"}, "?", "NA")

	if len(c.Levels) != 3 || c.Levels[0] != "red" || c.Levels[1] != "blue" || c.Levels[2] != "green" {
		t.Error("expected levels in order of first appearance, got:", c.Levels)
	}

	wantCodes := []int{0, -1, 1, 0, -1, 2}
	for i, want := range wantCodes {
		if got := c.Code(i); got != want {
			t.Errorf("row %d: expected code %d, got %d", i, want, got)
		}
	}
	if !c.IsMissing(1) || c.IsMissing(0) {
		t.Error("expected row 1 to be missing and row 0 not")
	}
	if c.Label(2) != "blue" || c.Label(4) != "" {
		t.Errorf("unexpected labels %q, %q", c.Label(2), c.Label(4))
	}
	if !math.IsNaN(c.Float(1)) || c.Float(5) != 2 {
		t.Error("expected Float to return NaN for missing and the code otherwise")
	}
}

func TestNominalWithLevels(t *testing.T) {
	c := NominalWithLevels("color", []string{"red", "blue"}, []string{"blue", "green", "red", ""})
	want := []int{1, -1, 0, -1}
	for i := range want {
		if c.Code(i) != want[i] {
			t.Errorf("row %d: expected code %d, got %d", i, want[i], c.Code(i))
		}
	}
}

func TestNumericMissing(t *testing.T) {
	c := NewNumeric("x", []float64{1, math.NaN(), 3})
	if c.Len() != 3 || !c.IsMissing(1) || c.IsMissing(2) {
		t.Error("expected NaN to mark a missing numeric value")
	}
	if c.Code(0) != -1 {
		t.Error("expected numeric column to have no codes")
	}
}

func TestNew(t *testing.T) {
	x := NewNumeric("x", []float64{1, 2, 3})
	y := NewNominal("y", []string{"a", "b"}, []int{0, 1, -1})

	if _, err := New(y); !errors.Is(err, ErrNoColumns) {
		t.Error("expected ErrNoColumns, got:", err)
	}
	if _, err := New(y, x, NewNumeric("short", []float64{1})); err == nil {
		t.Error("expected error on column length mismatch")
	}
	if _, err := New(x, x); err == nil {
		t.Error("expected error on numeric target")
	}

	f, err := New(y, x, NewNominal("z", []string{"u"}, []int{0, 0, 0}))
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	if f.Rows() != 3 || f.NumFeatures() != 2 {
		t.Errorf("expected 3 rows and 2 features, got %d and %d", f.Rows(), f.NumFeatures())
	}
	if names := f.Names(); names[0] != "x" || names[1] != "z" {
		t.Error("unexpected feature names:", names)
	}
	if f.Class(1) != 1 || f.Class(2) != -1 {
		t.Error("expected class 1 for row 1 and missing class for row 2")
	}
	if len(f.Classes()) != 2 {
		t.Error("expected 2 classes, got:", f.Classes())
	}

	noTarget, err := New(nil, x)
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	if noTarget.HasTarget() || noTarget.Class(0) != -1 || noTarget.Classes() != nil {
		t.Error("expected a frame without target to report no classes")
	}
}

func TestPermuteIsCopy(t *testing.T) {
	x := NewNumeric("x", []float64{10, 20, 30, 40})
	y := NewNominal("y", []string{"a", "b"}, []int{0, 1, 0, 1})
	f, err := New(y, x)
	if err != nil {
		t.Fatal(err)
	}

	// rotate rows 1..3
	p := x.Permute([]int{1, 2, 3}, []int{2, 0, 1})
	g := f.WithFeature(0, p)

	want := []float64{10, 40, 20, 30}
	for i := range want {
		if g.Feature(0).Float(i) != want[i] {
			t.Errorf("row %d: expected %f, got %f", i, want[i], g.Feature(0).Float(i))
		}
		if f.Feature(0).Float(i) != float64(10*(i+1)) {
			t.Errorf("row %d: original frame was modified", i)
		}
	}
	if g.Target() != f.Target() {
		t.Error("expected WithFeature to share the target column")
	}

	c := NewNominal("c", []string{"u", "v"}, []int{0, 1, -1})
	pc := c.Permute([]int{0, 2}, []int{1, 0})
	if pc.Code(0) != -1 || pc.Code(2) != 0 || c.Code(0) != 0 {
		t.Error("unexpected nominal permutation")
	}
}
