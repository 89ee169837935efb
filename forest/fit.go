package forest

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/wlattner/cforest/frame"
	"github.com/wlattner/cforest/tree"
)

var (
	// ErrConfig is wrapped by every error reporting an unusable configuration
	// or observation set.
	ErrConfig = errors.New("forest: invalid configuration")
	// ErrWeights is wrapped by every error reporting unusable row weights.
	ErrWeights = errors.New("forest: invalid weights")
)

// validate checks the configuration against fr and returns the row weights
// used for sampling, with rows missing the target set to 0.
func (f *Classifier) validate(fr *frame.Frame, weights []float64) ([]float64, error) {
	if f.NTrees < 1 {
		return nil, fmt.Errorf("%w: NumTrees must be at least 1, got %d", ErrConfig, f.NTrees)
	}
	if f.nWorkers < 0 {
		return nil, fmt.Errorf("%w: NumWorkers must be non-negative, got %d", ErrConfig, f.nWorkers)
	}
	if f.MinNodeSize < 1 {
		return nil, fmt.Errorf("%w: MinNodeSize must be at least 1, got %d", ErrConfig, f.MinNodeSize)
	}
	if !(f.SelectProb > 0 && f.SelectProb <= 1) {
		return nil, fmt.Errorf("%w: NumericSelectProb must be in (0, 1], got %g", ErrConfig, f.SelectProb)
	}
	if f.Bagging != Distribution && f.Bagging != Vote {
		return nil, fmt.Errorf("%w: unknown bagging mode %d", ErrConfig, int(f.Bagging))
	}
	if f.sampler == nil {
		return nil, fmt.Errorf("%w: no row sampler", ErrConfig)
	}
	if fr.Rows() == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrConfig)
	}
	if fr.NumFeatures() == 0 {
		return nil, fmt.Errorf("%w: no features", ErrConfig)
	}
	if !fr.HasTarget() || len(fr.Classes()) == 0 {
		return nil, fmt.Errorf("%w: frame has no target levels", ErrConfig)
	}
	if f.MaxFeatures > fr.NumFeatures() {
		return nil, fmt.Errorf("%w: MaxFeatures %d exceeds the %d features", ErrConfig, f.MaxFeatures, fr.NumFeatures())
	}

	w := make([]float64, fr.Rows())
	if weights == nil {
		for i := range w {
			w[i] = 1
		}
	} else {
		if len(weights) != fr.Rows() {
			return nil, fmt.Errorf("%w: weights has %d entries, expected %d", ErrWeights, len(weights), fr.Rows())
		}
		for i, wi := range weights {
			if math.IsNaN(wi) || math.IsInf(wi, 0) || wi < 0 {
				return nil, fmt.Errorf("%w: weight of row %d is %g", ErrWeights, i, wi)
			}
		}
		copy(w, weights)
	}

	total := 0.0
	for i := range w {
		if fr.Class(i) < 0 {
			w[i] = 0
		}
		total += w[i]
	}
	if total <= 0 {
		return nil, fmt.Errorf("%w: no weight on rows with a target", ErrWeights)
	}
	return w, nil
}

type job struct {
	id   int
	seed int64
}

// treeResult is everything one unit of work produces. It is never modified
// once sent to the reducer.
type treeResult struct {
	id      int
	t       *tree.Classifier
	oob     []int
	oobProb [][]float64
	freq    []float64
	gain    []float64
	perm    []float64
	err     error
}

// grow samples, fits and evaluates one tree.
func (f *Classifier) grow(fr *frame.Frame, weights []float64, j job) *treeResult {
	r := rand.New(rand.NewSource(j.seed))

	inx, w := f.sampler.Sample(r, weights)
	t := f.newTree(r)
	if err := t.FitInx(fr, inx, w); err != nil {
		return &treeResult{id: j.id, err: fmt.Errorf("forest: tree %d: %w", j.id, err)}
	}

	res := &treeResult{id: j.id, t: t}

	if f.computeOOB || f.permVI {
		for _, row := range frame.OutOfBag(fr.Rows(), inx) {
			if fr.Class(row) >= 0 {
				res.oob = append(res.oob, row)
			}
		}
	}
	if f.computeOOB {
		res.oobProb = t.PredictProb(fr, res.oob)
	}
	if f.freqVI || f.gainVI {
		res.freq, res.gain = splitImportance(t, fr.NumFeatures())
	}
	if f.permVI {
		res.perm = permImportance(fr, t, res.oob, r)
	}
	return res
}

// Fit grows the ensemble on fr. weights holds one non-negative weight per
// row, nil means 1 for every row. Rows missing the target are never drawn.
// Fit either grows every tree or returns the first error and leaves the
// classifier without trees. The training schema (Classes, Names, Kinds,
// Levels) is only replaced by a successful fit.
func (f *Classifier) Fit(fr *frame.Frame, weights []float64) error {
	w, err := f.validate(fr, weights)
	if err != nil {
		return err
	}

	f.Trees = nil
	classes := fr.Classes()

	// every tree gets its seed up front, so tree i doesn't depend on which
	// worker picks it up
	seeds := make([]int64, f.NTrees)
	r := rand.New(rand.NewSource(f.Seed))
	for i := range seeds {
		seeds[i] = r.Int63()
	}

	trees := make([]*tree.Classifier, f.NTrees)
	f.FreqContrib, f.GainContrib, f.PermContrib = nil, nil, nil
	var freq, gain, perm [][]float64
	if f.freqVI {
		freq = make([][]float64, f.NTrees)
	}
	if f.gainVI {
		gain = make([][]float64, f.NTrees)
	}
	if f.permVI {
		perm = make([][]float64, f.NTrees)
	}

	var oob *oobCtr
	f.ConfusionMatrix, f.Accuracy, f.OOBErr, f.OOBCov = nil, 0, 0, 0
	if f.computeOOB {
		oob = newOOBCtr(fr, len(classes))
	}

	var (
		firstErr error
		done     int
	)
	merge := func(res *treeResult) {
		if firstErr != nil {
			return
		}
		if res.err != nil {
			firstErr = res.err
			return
		}

		trees[res.id] = res.t
		if oob != nil {
			oob.update(res.oob, res.oobProb)
			f.OOBErr, f.OOBCov = oob.errorRate(), oob.coverage()
		}
		if freq != nil {
			freq[res.id] = res.freq
		}
		if gain != nil {
			gain[res.id] = res.gain
		}
		if perm != nil {
			perm[res.id] = res.perm
		}

		done++
		if f.hook != nil {
			f.hook(f, done)
		}
	}

	if f.nWorkers == 0 {
		for i, seed := range seeds {
			merge(f.grow(fr, w, job{i, seed}))
			if firstErr != nil {
				break
			}
		}
	} else {
		f.fitParallel(fr, w, seeds, merge, func() bool { return firstErr != nil })
	}

	if firstErr != nil {
		f.OOBErr, f.OOBCov = 0, 0
		return firstErr
	}

	f.Trees = trees
	f.Classes = classes
	f.Names = fr.Names()
	f.Kinds = make([]frame.Kind, fr.NumFeatures())
	f.Levels = make([][]string, fr.NumFeatures())
	for j := range f.Kinds {
		f.Kinds[j] = fr.Feature(j).Kind
		f.Levels[j] = fr.Feature(j).Levels
	}
	f.FreqContrib, f.GainContrib, f.PermContrib = freq, gain, perm
	if oob != nil {
		f.ConfusionMatrix, f.Accuracy = oob.compute()
	}
	return nil
}

// fitParallel feeds the jobs to f.nWorkers goroutines and merges the results
// on the calling goroutine. Once failed reports true no new job is handed
// out, jobs already running still complete.
func (f *Classifier) fitParallel(fr *frame.Frame, w []float64, seeds []int64, merge func(*treeResult), failed func() bool) {
	in := make(chan job)
	out := make(chan *treeResult)
	stop := make(chan struct{})

	// start workers
	var wg sync.WaitGroup
	for i := 0; i < f.nWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range in {
				out <- f.grow(fr, w, j)
			}
		}()
	}

	// fill the queue
	go func() {
		defer close(in)
		for i, seed := range seeds {
			select {
			case in <- job{i, seed}:
			case <-stop:
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	stopped := false
	for res := range out {
		merge(res)
		if failed() && !stopped {
			close(stop)
			stopped = true
		}
	}
}
