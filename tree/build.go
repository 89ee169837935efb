package tree

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/wlattner/cforest/frame"
)

var ErrNoRows = errors.New("tree: no rows to fit")

// Fit constructs a tree from every row of f with a non-missing target.
// weights holds one weight per row of f, nil means 1 for every row.
func (t *Classifier) Fit(f *frame.Frame, weights []float64) error {
	if weights != nil && len(weights) != f.Rows() {
		return fmt.Errorf("tree: weights has %d entries, expected %d", len(weights), f.Rows())
	}
	inx := make([]int, f.Rows())
	for i := range inx {
		inx[i] = i
	}
	return t.FitInx(f, inx, weights)
}

// FitInx constructs a tree as in Fit, but only from the rows listed in inx,
// duplicates allowed. weights[i] is the weight of inx[i], nil means 1.
// FitInx is intended to be used with a meta algorithm that relies on
// bootstrap sampling, such as a random forest.
func (t *Classifier) FitInx(f *frame.Frame, inx []int, weights []float64) error {
	if !f.HasTarget() {
		return errors.New("tree: frame has no target")
	}
	if len(f.Classes()) == 0 {
		return errors.New("tree: target has no levels")
	}
	if weights != nil && len(weights) != len(inx) {
		return fmt.Errorf("tree: weights has %d entries, expected %d", len(weights), len(inx))
	}
	if t.MinNodeSize < 1 {
		return fmt.Errorf("tree: MinNodeSize must be at least 1, got %d", t.MinNodeSize)
	}
	if !(t.SelectProb > 0 && t.SelectProb <= 1) {
		return fmt.Errorf("tree: NumericSelectProb must be in (0, 1], got %g", t.SelectProb)
	}
	if err := ValidateSelector(t.selector, f.NumFeatures()); err != nil {
		return err
	}

	// rows without a target can't be counted in any class distribution
	rows := make([]int, 0, len(inx))
	w := make([]float64, 0, len(inx))
	for i, id := range inx {
		if f.Class(id) < 0 {
			continue
		}
		rows = append(rows, id)
		if weights == nil {
			w = append(w, 1)
		} else {
			w = append(w, weights[i])
		}
	}
	if len(rows) == 0 {
		return ErrNoRows
	}

	t.Classes = f.Classes()
	t.Names = f.Names()
	t.Kinds = make([]frame.Kind, f.NumFeatures())
	for j := range t.Kinds {
		t.Kinds[j] = f.Feature(j).Kind
	}

	t.build(f, rows, w)
	return nil
}

func (t *Classifier) build(f *frame.Frame, inx []int, w []float64) {
	k := len(t.Classes)
	nFeatures := f.NumFeatures()
	sp := newSplitter(f, k, t.SelectProb, t.randState)

	t.Nodes = append(t.Nodes[:0], Node{})

	s := new(buildStack)
	s.Push(&stackItem{id: 0, inx: inx, w: w})

	for !s.Empty() {
		item := s.Pop()

		n := Node{Depth: item.depth, Left: -1, Right: -1, Feature: -1, Level: -1, Threshold: math.NaN()}
		n.Dist = make([]float64, k)
		for i, id := range item.inx {
			n.Dist[f.Class(id)] += item.w[i]
		}
		for _, d := range n.Dist {
			n.Total += d
		}
		n.Prob = normalize(n.Dist, n.Total)

		switch {
		case len(item.inx) == 1:
			n.Leaf, n.Reason = true, SingleRow
			n.Label = f.Class(item.inx[0])
		case len(item.inx) <= t.MinNodeSize:
			n.Leaf, n.Reason = true, MinSize
			n.Label = weightedMode(n.Dist, t.randState)
		case isPure(n.Dist):
			n.Leaf, n.Reason = true, Pure
			n.Label = weightedMode(n.Dist, t.randState)
		case t.MaxDepth >= 0 && item.depth >= t.MaxDepth:
			n.Leaf, n.Reason = true, Depth
			n.Label = weightedMode(n.Dist, t.randState)
		}
		if n.Leaf {
			t.Nodes[item.id] = n
			continue
		}

		best := sp.bestSplit(item.inx, item.w, n.Dist, t.selector.Next(t.randState, nFeatures))
		n.Label = weightedMode(n.Dist, t.randState)
		if !best.Valid() {
			n.Leaf, n.Reason = true, NoSplit
			t.Nodes[item.id] = n
			continue
		}

		n.Feature = best.Feature
		n.Kind = best.Kind
		n.Threshold = best.Threshold
		n.Level = best.Level
		n.Score = best.Score

		l, r := partition(f, best, item.inx, item.w)
		n.PLeft = l.pSplit

		n.Left = len(t.Nodes)
		n.Right = n.Left + 1
		t.Nodes = append(t.Nodes, Node{}, Node{})
		t.Nodes[item.id] = n

		s.Push(&stackItem{id: n.Left, inx: l.inx, w: l.w, depth: item.depth + 1})
		s.Push(&stackItem{id: n.Right, inx: r.inx, w: r.w, depth: item.depth + 1})
	}
}

type side struct {
	inx    []int
	w      []float64
	pSplit float64
}

// partition applies c to the rows. Rows missing the split feature go to both
// sides, weighted by the share of non-missing weight each side received.
func partition(f *frame.Frame, c Candidate, inx []int, w []float64) (l, r side) {
	col := f.Feature(c.Feature)

	var wl, wr float64
	var missing []int
	for i, id := range inx {
		switch {
		case col.IsMissing(id):
			missing = append(missing, i)
		case goesLeft(c.Kind, c.Threshold, c.Level, col, id):
			l.inx = append(l.inx, id)
			l.w = append(l.w, w[i])
			wl += w[i]
		default:
			r.inx = append(r.inx, id)
			r.w = append(r.w, w[i])
			wr += w[i]
		}
	}

	l.pSplit = wl / (wl + wr)
	r.pSplit = 1 - l.pSplit

	for _, i := range missing {
		l.inx = append(l.inx, inx[i])
		l.w = append(l.w, w[i]*l.pSplit)
		r.inx = append(r.inx, inx[i])
		r.w = append(r.w, w[i]*r.pSplit)
	}
	return l, r
}

func normalize(dist []float64, total float64) []float64 {
	p := make([]float64, len(dist))
	if total <= 0 {
		for k := range p {
			p[k] = 1 / float64(len(p))
		}
		return p
	}
	for k, d := range dist {
		p[k] = d / total
	}
	return p
}

// isPure reports whether all positive weight sits in a single class.
func isPure(dist []float64) bool {
	nonZero := 0
	for _, d := range dist {
		if d > 0 {
			nonZero++
		}
	}
	return nonZero == 1
}

// weightedMode returns the class with the largest weight, ties broken
// uniformly at random.
func weightedMode(dist []float64, r *rand.Rand) int {
	var modes []int
	top := math.Inf(-1)
	for k, d := range dist {
		switch {
		case d > top:
			top = d
			modes = append(modes[:0], k)
		case d == top:
			modes = append(modes, k)
		}
	}
	if len(modes) == 1 {
		return modes[0]
	}
	return modes[r.Intn(len(modes))]
}

// lifo stack for unexpanded nodes
type buildStack []*stackItem

func (s buildStack) Empty() bool        { return len(s) == 0 }
func (s *buildStack) Push(n *stackItem) { *s = append(*s, n) }
func (s *buildStack) Pop() *stackItem {
	d := (*s)[len(*s)-1]
	*s = (*s)[:len(*s)-1]
	return d
}

type stackItem struct {
	id    int
	inx   []int
	w     []float64
	depth int
}
