// forest implements bagged ensembles of classification trees with out of bag
// error estimates and three variable importance measures: split frequency,
// impurity gain and OOB permutation accuracy drop.
//
// Every tree is grown on its own bootstrap sample with its own random
// generator, seeded from the forest seed before any tree is built, so a fit
// gives the same trees whether it runs sequentially or on many workers.
package forest

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/wlattner/cforest/frame"
	"github.com/wlattner/cforest/tree"
)

// BaggingMode selects how tree outputs are combined.
type BaggingMode int

const (
	// Distribution averages the class probabilities of the trees.
	Distribution BaggingMode = iota
	// Vote counts the label predicted by each tree.
	Vote
)

func (m BaggingMode) String() string {
	switch m {
	case Distribution:
		return "distribution"
	case Vote:
		return "vote"
	}
	return fmt.Sprintf("BaggingMode(%d)", int(m))
}

// ParseBaggingMode maps "distribution" or "vote" to a BaggingMode.
func ParseBaggingMode(s string) (BaggingMode, error) {
	switch strings.ToLower(s) {
	case "distribution", "":
		return Distribution, nil
	case "vote":
		return Vote, nil
	}
	return 0, fmt.Errorf("forest: unknown bagging mode %q", s)
}

type Classifier struct {
	NTrees      int
	MinNodeSize int
	MaxDepth    int
	MaxFeatures int // -1 all features, 0 ceil(sqrt(p))
	SelectProb  float64
	Bagging     BaggingMode
	Seed        int64

	// schema of the training frame
	Classes []string
	Names   []string
	Kinds   []frame.Kind
	Levels  [][]string

	Trees []*tree.Classifier

	// out of bag estimates, filled when ComputeOOB is set
	ConfusionMatrix [][]int
	Accuracy        float64
	OOBErr          float64
	OOBCov          float64

	// per tree importance contributions, indexed [tree][feature]
	FreqContrib [][]float64
	GainContrib [][]float64
	PermContrib [][]float64

	sampler    frame.Sampler
	nWorkers   int
	computeOOB bool
	freqVI     bool
	gainVI     bool
	permVI     bool
	hook       func(c *Classifier, done int)
}

// methods for the forestConfiger interface
func (c *Classifier) setNumTrees(n int)                     { c.NTrees = n }
func (c *Classifier) setNumWorkers(n int)                   { c.nWorkers = n }
func (c *Classifier) setMinNodeSize(n int)                  { c.MinNodeSize = n }
func (c *Classifier) setMaxDepth(n int)                     { c.MaxDepth = n }
func (c *Classifier) setMaxFeatures(n int)                  { c.MaxFeatures = n }
func (c *Classifier) setSelectProb(p float64)               { c.SelectProb = p }
func (c *Classifier) setSampler(s frame.Sampler)            { c.sampler = s }
func (c *Classifier) setBagging(m BaggingMode)              { c.Bagging = m }
func (c *Classifier) setComputeOOB()                        { c.computeOOB = true }
func (c *Classifier) setFreqVI()                            { c.freqVI = true }
func (c *Classifier) setGainVI()                            { c.gainVI = true }
func (c *Classifier) setPermVI()                            { c.permVI = true }
func (c *Classifier) setSeed(s int64)                       { c.Seed = s }
func (c *Classifier) setHook(fn func(c *Classifier, n int)) { c.hook = fn }

type forestConfiger interface {
	setNumTrees(n int)
	setNumWorkers(n int)
	setMinNodeSize(n int)
	setMaxDepth(n int)
	setMaxFeatures(n int)
	setSelectProb(p float64)
	setSampler(s frame.Sampler)
	setBagging(m BaggingMode)
	setComputeOOB()
	setFreqVI()
	setGainVI()
	setPermVI()
	setSeed(s int64)
	setHook(fn func(c *Classifier, n int))
}

// NumTrees sets the number of trees used in the random forest.
func NumTrees(n int) func(forestConfiger) {
	return func(c forestConfiger) {
		c.setNumTrees(n)
	}
}

// NumWorkers sets the number of goroutines used to fit trees and to predict.
// With 0 everything runs on the calling goroutine.
func NumWorkers(n int) func(forestConfiger) {
	return func(c forestConfiger) {
		c.setNumWorkers(n)
	}
}

// MinNodeSize turns tree nodes with at most n rows into leaves.
func MinNodeSize(n int) func(forestConfiger) {
	return func(c forestConfiger) {
		c.setMinNodeSize(n)
	}
}

// MaxDepth limits the depth of the fitted trees. Specifying -1 for n will
// grow full trees, subject to MinNodeSize.
func MaxDepth(n int) func(forestConfiger) {
	return func(c forestConfiger) {
		c.setMaxDepth(n)
	}
}

// MaxFeatures limits the number of features considered for splitting at each
// node. -1 considers all features, 0 draws ceil(sqrt(p)).
func MaxFeatures(n int) func(forestConfiger) {
	return func(c forestConfiger) {
		c.setMaxFeatures(n)
	}
}

// NumericSelectProb evaluates each numeric split boundary with probability p.
func NumericSelectProb(p float64) func(forestConfiger) {
	return func(c forestConfiger) {
		c.setSelectProb(p)
	}
}

// Sampler sets the row sampler drawing the training rows of each tree.
func Sampler(s frame.Sampler) func(forestConfiger) {
	return func(c forestConfiger) {
		c.setSampler(s)
	}
}

// Bagging sets how tree outputs are combined at prediction.
func Bagging(m BaggingMode) func(forestConfiger) {
	return func(c forestConfiger) {
		c.setBagging(m)
	}
}

// ComputeOOB accumulates out of bag predictions while fitting, giving the
// OOB error, coverage and confusion matrix.
func ComputeOOB() func(forestConfiger) {
	return func(c forestConfiger) {
		c.setComputeOOB()
	}
}

// FreqVI records split frequency importance.
func FreqVI() func(forestConfiger) {
	return func(c forestConfiger) {
		c.setFreqVI()
	}
}

// GainVI records impurity gain importance.
func GainVI() func(forestConfiger) {
	return func(c forestConfiger) {
		c.setGainVI()
	}
}

// PermVI records OOB permutation importance.
func PermVI() func(forestConfiger) {
	return func(c forestConfiger) {
		c.setPermVI()
	}
}

// Seed sets the seed every per tree generator is derived from.
func Seed(s int64) func(forestConfiger) {
	return func(c forestConfiger) {
		c.setSeed(s)
	}
}

// RunningHook calls fn after each tree is merged into the ensemble, with the
// number of trees merged so far. OOBError and OOBCoverage report running
// values inside fn. With workers, trees are merged in completion order.
func RunningHook(fn func(c *Classifier, done int)) func(forestConfiger) {
	return func(c forestConfiger) {
		c.setHook(fn)
	}
}

// NewClassifier returns a configured/initialized random forest classifier.
// If no options are passed, the returned Classifier will be equivalent to
// the following call:
//
//	clf := NewClassifier(NumTrees(10), NumWorkers(0), MinNodeSize(1), MaxDepth(-1),
//		MaxFeatures(0), NumericSelectProb(1), Sampler(frame.Bootstrap()),
//		Bagging(Distribution), Seed(time.Now().UnixNano()))
func NewClassifier(options ...func(forestConfiger)) *Classifier {
	f := &Classifier{
		NTrees:      10,
		MinNodeSize: 1,
		MaxDepth:    -1,
		MaxFeatures: 0,
		SelectProb:  1,
		Bagging:     Distribution,
		Seed:        time.Now().UnixNano(),
		sampler:     frame.Bootstrap(),
	}

	for _, opt := range options {
		opt(f)
	}

	return f
}

// selector returns the per node feature selector of the trees.
func (f *Classifier) selector() tree.Selector {
	if f.MaxFeatures < 0 {
		return tree.AllFeatures()
	}
	return tree.RandomFeatures(f.MaxFeatures)
}

// newTree returns an unfitted tree configured like the forest, drawing from r.
func (f *Classifier) newTree(r *rand.Rand) *tree.Classifier {
	return tree.NewClassifier(
		tree.MinNodeSize(f.MinNodeSize),
		tree.MaxDepth(f.MaxDepth),
		tree.Features(f.selector()),
		tree.NumericSelectProb(f.SelectProb),
		tree.Rand(r),
	)
}

// String describes the configuration of the forest.
func (f *Classifier) String() string {
	features := "all"
	if f.MaxFeatures == 0 {
		features = "sqrt"
	} else if f.MaxFeatures > 0 {
		features = fmt.Sprint(f.MaxFeatures)
	}

	var vi []string
	if f.freqVI {
		vi = append(vi, "freq")
	}
	if f.gainVI {
		vi = append(vi, "gain")
	}
	if f.permVI {
		vi = append(vi, "perm")
	}

	sampler := "bootstrap"
	if f.sampler != nil {
		sampler = f.sampler.String()
	}

	return fmt.Sprintf("forest{trees:%d, features:%s, minNodeSize:%d, maxDepth:%d, selectProb:%g, sampler:%s, bagging:%s, oob:%v, vi:[%s]}",
		f.NTrees, features, f.MinNodeSize, f.MaxDepth, f.SelectProb, sampler, f.Bagging, f.computeOOB, strings.Join(vi, ","))
}
