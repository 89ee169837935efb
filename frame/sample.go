package frame

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Sampler draws the rows a single ensemble member is trained on. It returns
// the original row ids drawn, duplicates allowed, and the weight attached to
// each draw.
type Sampler interface {
	Sample(r *rand.Rand, weights []float64) (inx []int, w []float64)
	String() string
}

// Bootstrap returns a sampler drawing len(weights) rows with replacement,
// each draw picking a row with probability proportional to its weight. Every
// drawn row carries weight 1 since the row weights already shaped the draw.
func Bootstrap() Sampler { return bootstrap{} }

type bootstrap struct{}

func (bootstrap) String() string { return "bootstrap" }

func (bootstrap) Sample(r *rand.Rand, weights []float64) ([]int, []float64) {
	n := len(weights)
	cum := make([]float64, n)
	floats.CumSum(cum, weights)
	total := cum[n-1]

	inx := make([]int, n)
	w := make([]float64, n)
	for i := range inx {
		u := r.Float64() * total
		// first row whose cumulative weight exceeds u, zero weight rows are
		// never picked
		id := sort.Search(n, func(k int) bool { return cum[k] > u })
		if id == n {
			id = n - 1
		}
		inx[i] = id
		w[i] = 1
	}
	return inx, w
}

// Subsample returns a sampler drawing ceil(fraction*n) distinct rows
// uniformly among rows with non-zero weight. Drawn rows keep their weight.
func Subsample(fraction float64) Sampler { return subsample{fraction} }

type subsample struct {
	fraction float64
}

func (s subsample) String() string { return fmt.Sprintf("subsample(%g)", s.fraction) }

func (s subsample) Sample(r *rand.Rand, weights []float64) ([]int, []float64) {
	var candidates []int
	for i, wi := range weights {
		if wi > 0 {
			candidates = append(candidates, i)
		}
	}

	m := int(math.Ceil(s.fraction * float64(len(weights))))
	if m > len(candidates) {
		m = len(candidates)
	}

	// partial Fisher-Yates over the candidate rows
	for i := 0; i < m; i++ {
		k := i + r.Intn(len(candidates)-i)
		candidates[i], candidates[k] = candidates[k], candidates[i]
	}
	inx := candidates[:m]
	sort.Ints(inx)

	w := make([]float64, m)
	for i, id := range inx {
		w[i] = weights[id]
	}
	return inx, w
}

// OutOfBag returns, in ascending order, the rows in [0, n) that do not
// appear in drawn.
func OutOfBag(n int, drawn []int) []int {
	inBag := make([]bool, n)
	for _, id := range drawn {
		inBag[id] = true
	}
	var oob []int
	for i, in := range inBag {
		if !in {
			oob = append(oob, i)
		}
	}
	return oob
}
