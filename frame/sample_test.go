package frame

import (
	"math/rand"
	"sort"
	"testing"
)

func TestBootstrap(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	weights := []float64{1, 0, 1, 1, 0, 1, 1, 1, 1, 1}

	inx, w := Bootstrap().Sample(r, weights)
	if len(inx) != len(weights) || len(w) != len(weights) {
		t.Fatalf("expected %d draws, got %d", len(weights), len(inx))
	}
	for i, id := range inx {
		if weights[id] == 0 {
			t.Errorf("drew zero weight row %d", id)
		}
		if w[i] != 1 {
			t.Errorf("expected unit weight per draw, got %f", w[i])
		}
	}
}

func TestBootstrapProportional(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	weights := []float64{3, 1}

	counts := make([]int, 2)
	for i := 0; i < 2000; i++ {
		inx, _ := Bootstrap().Sample(r, weights)
		for _, id := range inx {
			counts[id]++
		}
	}
	frac := float64(counts[0]) / 4000
	if frac < 0.72 || frac > 0.78 {
		t.Errorf("expected row 0 in about 75%% of draws, got %f", frac)
	}
}

func TestSubsample(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	weights := []float64{1, 2, 0, 1, 1, 1, 1, 1, 1, 1}

	inx, w := Subsample(0.5).Sample(r, weights)
	if len(inx) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(inx))
	}
	if !sort.IntsAreSorted(inx) {
		t.Error("expected sorted row ids, got:", inx)
	}
	seen := make(map[int]bool)
	for i, id := range inx {
		if seen[id] {
			t.Error("row drawn twice:", id)
		}
		seen[id] = true
		if id == 2 {
			t.Error("drew zero weight row 2")
		}
		if w[i] != weights[id] {
			t.Errorf("expected row %d to keep weight %f, got %f", id, weights[id], w[i])
		}
	}

	all, _ := Subsample(1).Sample(r, weights)
	if len(all) != 9 {
		t.Error("expected every positive weight row, got:", all)
	}
}

func TestOutOfBag(t *testing.T) {
	oob := OutOfBag(6, []int{0, 2, 2, 5})
	want := []int{1, 3, 4}
	if len(oob) != len(want) {
		t.Fatalf("expected %v, got %v", want, oob)
	}
	for i := range want {
		if oob[i] != want[i] {
			t.Errorf("expected %v, got %v", want, oob)
		}
	}

	if OutOfBag(3, []int{0, 1, 2}) != nil {
		t.Error("expected no out of bag rows")
	}
}
