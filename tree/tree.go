// tree implements weighted classification trees over mixed numeric and
// nominal features, with soft routing of missing values.
//
// Split search scores binary partitions with the gini impurity decrease.
// Numeric features are split on a threshold between two distinct sorted
// values, nominal features on "one level vs the rest". A row missing the
// split feature is sent down both branches, its weight shared in proportion
// to the non-missing weight routed each way, at fit and at predict time.
//
// Trees are stored as a flat slice of nodes linked by index and grown with
// an explicit stack, so very unbalanced trees never deepen the call stack.
package tree

import (
	"math/rand"
	"time"

	"github.com/wlattner/cforest/frame"
)

// LeafReason records which rule turned a node into a leaf.
type LeafReason uint8

const (
	NotLeaf   LeafReason = iota
	SingleRow            // one row reached the node
	MinSize              // no more rows than MinNodeSize
	Pure                 // all weight in one class
	NoSplit              // no feature produced a valid candidate
	Depth                // MaxDepth reached
)

func (r LeafReason) String() string {
	switch r {
	case NotLeaf:
		return "internal"
	case SingleRow:
		return "single row"
	case MinSize:
		return "min size"
	case Pure:
		return "pure"
	case NoSplit:
		return "no split"
	case Depth:
		return "depth"
	}
	return "unknown"
}

// Node is an element of the tree arena. Left and Right index
// Classifier.Nodes and are -1 for leaves.
type Node struct {
	Leaf   bool
	Reason LeafReason
	Depth  int

	// split, internal nodes only
	Feature   int
	Kind      frame.Kind
	Threshold float64
	Level     int
	Score     float64
	PLeft     float64 // share of non-missing weight routed left
	Left      int
	Right     int

	Dist  []float64 // class weights of the rows at the node
	Total float64
	Prob  []float64 // Dist normalized, uniform when Total is 0
	Label int       // weighted mode of Dist
}

// Classifier implements a decision tree classifier. The classifier
// should be initialized with NewClassifier.
type Classifier struct {
	Nodes       []Node
	MinNodeSize int     // nodes with at most this many rows become leaves
	MaxDepth    int     // -1 for no limit
	SelectProb  float64 // probability a numeric boundary is evaluated
	Classes     []string
	Names       []string // feature names seen at fit
	Kinds       []frame.Kind
	selector    Selector
	randState   *rand.Rand
}

// methods for the treeConfiger interface
func (t *Classifier) setMinNodeSize(n int)    { t.MinNodeSize = n }
func (t *Classifier) setMaxDepth(n int)       { t.MaxDepth = n }
func (t *Classifier) setSelector(s Selector)  { t.selector = s }
func (t *Classifier) setSelectProb(p float64) { t.SelectProb = p }
func (t *Classifier) setRand(r *rand.Rand)    { t.randState = r }
func (t *Classifier) setRandState(seed int64) { t.randState = rand.New(rand.NewSource(seed)) }

// interface for configuration so forest can pass the same options through
type treeConfiger interface {
	setMinNodeSize(n int)
	setMaxDepth(n int)
	setSelector(s Selector)
	setSelectProb(p float64)
	setRand(r *rand.Rand)
	setRandState(seed int64)
}

// MinNodeSize turns nodes with at most n rows into leaves.
func MinNodeSize(n int) func(treeConfiger) {
	return func(c treeConfiger) {
		c.setMinNodeSize(n)
	}
}

// MaxDepth limits the depth of the fitted tree. Specifying -1 for n will
// grow a full tree, subject to MinNodeSize.
func MaxDepth(n int) func(treeConfiger) {
	return func(c treeConfiger) {
		c.setMaxDepth(n)
	}
}

// Features sets the column selector consulted at every split search.
func Features(s Selector) func(treeConfiger) {
	return func(c treeConfiger) {
		c.setSelector(s)
	}
}

// NumericSelectProb evaluates each numeric split boundary only with
// probability p. At p = 1 every boundary is evaluated and no random number
// is drawn.
func NumericSelectProb(p float64) func(treeConfiger) {
	return func(c treeConfiger) {
		c.setSelectProb(p)
	}
}

// Rand sets the random source used for tie breaks, feature selection and
// boundary thinning.
func Rand(r *rand.Rand) func(treeConfiger) {
	return func(c treeConfiger) {
		c.setRand(r)
	}
}

// RandState sets the seed for the random number generator
func RandState(seed int64) func(treeConfiger) {
	return func(c treeConfiger) {
		c.setRandState(seed)
	}
}

// NewClassifier returns a configured/initialized decision tree classifier.
// If no options are passed, the returned Classifier will be equivalent to the
// following call:
//
//	clf := NewClassifier(MinNodeSize(1), MaxDepth(-1), Features(AllFeatures()), NumericSelectProb(1))
func NewClassifier(options ...func(treeConfiger)) *Classifier {
	t := &Classifier{
		MinNodeSize: 1,
		MaxDepth:    -1,
		SelectProb:  1,
		selector:    AllFeatures(),
		randState:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	for _, opt := range options {
		opt(t)
	}

	return t
}

// Depth returns the depth of the deepest leaf, 0 for a single leaf.
func (t *Classifier) Depth() int {
	d := 0
	for i := range t.Nodes {
		if t.Nodes[i].Depth > d {
			d = t.Nodes[i].Depth
		}
	}
	return d
}

// NumLeaves returns the number of leaves.
func (t *Classifier) NumLeaves() int {
	n := 0
	for i := range t.Nodes {
		if t.Nodes[i].Leaf {
			n++
		}
	}
	return n
}

// Walk calls fn for every internal node, in arena order.
func (t *Classifier) Walk(fn func(n *Node)) {
	for i := range t.Nodes {
		if !t.Nodes[i].Leaf {
			fn(&t.Nodes[i])
		}
	}
}
