package tree

import (
	"math"
	"math/rand"

	"github.com/wlattner/cforest/frame"
)

// Candidate is a proposed binary split of a node. Numeric candidates send
// rows with value <= Threshold left, nominal candidates send rows coded
// Level left and every other level right.
type Candidate struct {
	Score     float64
	Feature   int
	Kind      frame.Kind
	Threshold float64
	Level     int
}

func invalidCandidate() Candidate {
	return Candidate{Score: math.NaN(), Feature: -1, Threshold: math.NaN(), Level: -1}
}

// Valid reports whether c is a usable split, NaN scores never are.
func (c Candidate) Valid() bool { return c.Feature >= 0 && !math.IsNaN(c.Score) }

// better reports whether c strictly improves on best. Ties keep best, so the
// first candidate encountered wins.
func (c Candidate) better(best Candidate) bool {
	if math.IsNaN(c.Score) {
		return false
	}
	return math.IsNaN(best.Score) || c.Score > best.Score
}

// goesLeft evaluates the split predicate on a non-missing value of col.
func goesLeft(kind frame.Kind, threshold float64, level int, col *frame.Column, row int) bool {
	if kind == frame.Numeric {
		return col.Float(row) <= threshold
	}
	return col.Code(row) == level
}

// splitter holds the scratch buffers reused by every split search of a
// single tree build.
type splitter struct {
	f          *frame.Frame
	k          int
	selectProb float64
	randState  *rand.Rand

	xBuf   []float64
	inxBuf []int
	wBuf   []float64

	parent  []float64
	left    []float64
	right   []float64
	missing []float64
}

func newSplitter(f *frame.Frame, nClasses int, selectProb float64, r *rand.Rand) *splitter {
	return &splitter{
		f:          f,
		k:          nClasses,
		selectProb: selectProb,
		randState:  r,
		parent:     make([]float64, nClasses),
		left:       make([]float64, nClasses),
		right:      make([]float64, nClasses),
		missing:    make([]float64, nClasses),
	}
}

// bestSplit returns the best candidate over features for the rows inx with
// weights w, whose class distribution is dist. The result is invalid when no
// feature can split the node.
func (s *splitter) bestSplit(inx []int, w []float64, dist []float64, features []int) Candidate {
	best := invalidCandidate()
	for _, j := range features {
		col := s.f.Feature(j)

		var c Candidate
		switch col.Kind {
		case frame.Numeric:
			c = s.numeric(j, col, inx, w, dist)
		case frame.Nominal:
			c = s.nominal(j, col, inx, w, dist)
		default:
			continue
		}

		if c.better(best) {
			best = c
		}
	}
	return best
}

// splitParent sets s.parent to dist less the weight in s.missing.
func (s *splitter) splitParent(dist []float64) {
	for k := range dist {
		s.parent[k] = dist[k] - s.missing[k]
	}
}

func (s *splitter) numeric(j int, col *frame.Column, inx []int, w []float64, dist []float64) Candidate {
	best := invalidCandidate()

	clear(s.missing)
	s.xBuf, s.inxBuf, s.wBuf = s.xBuf[:0], s.inxBuf[:0], s.wBuf[:0]
	for i, id := range inx {
		if col.IsMissing(id) {
			s.missing[s.f.Class(id)] += w[i]
			continue
		}
		s.xBuf = append(s.xBuf, col.Float(id))
		s.inxBuf = append(s.inxBuf, id)
		s.wBuf = append(s.wBuf, w[i])
	}

	n := len(s.xBuf)
	if n < 2 {
		return best
	}

	sw := sweep{x: s.xBuf, inx: s.inxBuf, w: s.wBuf}
	sw.sort()
	xt := sw.x
	if xt[n-1] <= xt[0] {
		return best // constant feature
	}

	s.splitParent(dist)
	clear(s.left)

	for i := 0; i < n-1; i++ {
		s.left[s.f.Class(sw.inx[i])] += sw.w[i]

		if !(xt[i] < xt[i+1]) {
			continue // can't split when x_i == x_i+1
		}
		if s.selectProb < 1 && s.randState.Float64() >= s.selectProb {
			continue
		}

		for k := range s.right {
			s.right[k] = s.parent[k] - s.left[k]
		}

		threshold := (xt[i] + xt[i+1]) / 2
		if threshold >= xt[i+1] {
			// adjacent floats, the midpoint rounds up
			threshold = xt[i]
		}

		c := Candidate{
			Score:     GiniGain(s.parent, s.left, s.right),
			Feature:   j,
			Kind:      frame.Numeric,
			Threshold: threshold,
			Level:     -1,
		}
		if c.better(best) {
			best = c
		}
	}
	return best
}

func (s *splitter) nominal(j int, col *frame.Column, inx []int, w []float64, dist []float64) Candidate {
	best := invalidCandidate()

	levels := len(col.Levels)
	if levels < 2 {
		return best
	}

	clear(s.missing)
	cross := make([][]float64, levels)
	for v := range cross {
		cross[v] = make([]float64, s.k)
	}
	counts := make([]int, levels)
	observed := 0
	for i, id := range inx {
		code := col.Code(id)
		if code < 0 {
			s.missing[s.f.Class(id)] += w[i]
			continue
		}
		if counts[code] == 0 {
			observed++
		}
		cross[code][s.f.Class(id)] += w[i]
		counts[code]++
	}
	if observed < 2 {
		return best
	}

	s.splitParent(dist)

	// with two levels "first vs rest" and "second vs rest" are the same
	// partition mirrored
	last := levels
	if levels == 2 {
		last = 1
	}

	for v := 0; v < last; v++ {
		if counts[v] == 0 {
			continue
		}
		for k := range s.right {
			s.right[k] = s.parent[k] - cross[v][k]
		}

		c := Candidate{
			Score:     GiniGain(s.parent, cross[v], s.right),
			Feature:   j,
			Kind:      frame.Nominal,
			Threshold: math.NaN(),
			Level:     v,
		}
		if c.better(best) {
			best = c
		}
	}
	return best
}
