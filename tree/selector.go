package tree

import (
	"fmt"
	"math"
	"math/rand"
)

// Selector picks the candidate features evaluated when splitting a node. It
// is called once per split search and may return a different subset on
// every call. Implementations must be safe for concurrent use, all per-tree
// state lives in the *rand.Rand passed in.
type Selector interface {
	Next(r *rand.Rand, nFeatures int) []int
}

// AllFeatures evaluates every feature at every node.
func AllFeatures() Selector { return allFeatures{} }

type allFeatures struct{}

func (allFeatures) Next(_ *rand.Rand, nFeatures int) []int {
	features := make([]int, nFeatures)
	for i := range features {
		features[i] = i
	}
	return features
}

func (allFeatures) String() string { return "all" }

// RandomFeatures draws k distinct features per node. If k <= 0 then
// ceil(sqrt(nFeatures)) features are drawn.
func RandomFeatures(k int) Selector { return randomFeatures{k} }

type randomFeatures struct {
	k int
}

func (s randomFeatures) size(nFeatures int) int {
	k := s.k
	if k <= 0 {
		k = int(math.Ceil(math.Sqrt(float64(nFeatures))))
	}
	if k > nFeatures {
		k = nFeatures
	}
	return k
}

// Next samples from the features using Fisher-Yates,
// Algorithm P, Knuth, The Art of Computer Programming Vol. 2, p. 145
func (s randomFeatures) Next(r *rand.Rand, nFeatures int) []int {
	features := make([]int, nFeatures)
	for i := range features {
		features[i] = i
	}

	k := s.size(nFeatures)
	for j := nFeatures - 1; j >= nFeatures-k; j-- {
		i := r.Intn(j + 1)
		features[i], features[j] = features[j], features[i]
	}

	// drawn features sit at the tail, in reverse draw order
	drawn := features[nFeatures-k:]
	for i, j := 0, len(drawn)-1; i < j; i, j = i+1, j-1 {
		drawn[i], drawn[j] = drawn[j], drawn[i]
	}
	return drawn
}

func (s randomFeatures) String() string {
	if s.k <= 0 {
		return "random(sqrt)"
	}
	return fmt.Sprintf("random(%d)", s.k)
}

// ValidateSelector reports whether sel can be used on a frame with nFeatures
// input features.
func ValidateSelector(sel Selector, nFeatures int) error {
	if rs, ok := sel.(randomFeatures); ok && rs.k > nFeatures {
		return fmt.Errorf("tree: feature selector draws %d features, frame has %d", rs.k, nFeatures)
	}
	return nil
}
