package forest

import (
	"errors"
	"math"
	"math/rand"
	"strings"
	"testing"

	cv "github.com/smartystreets/goconvey/convey"

	"github.com/wlattner/cforest/frame"
	"github.com/wlattner/cforest/tree"
)

func sameTrees(a, b []*tree.Classifier) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i].Nodes) != len(b[i].Nodes) {
			return false
		}
		for j := range a[i].Nodes {
			na, nb := a[i].Nodes[j], b[i].Nodes[j]
			if na.Feature != nb.Feature || na.Left != nb.Left || na.Label != nb.Label ||
				na.Score != nb.Score || na.Total != nb.Total {
				return false
			}
			if !(na.Threshold == nb.Threshold || math.IsNaN(na.Threshold) && math.IsNaN(nb.Threshold)) {
				return false
			}
		}
	}
	return true
}

func noise(seed int64, n int) []float64 {
	r := rand.New(rand.NewSource(seed))
	x := make([]float64, n)
	for i := range x {
		x[i] = r.Float64()
	}
	return x
}

// emptySampler never draws a row, every tree fails to fit.
type emptySampler struct{}

func (emptySampler) Sample(*rand.Rand, []float64) ([]int, []float64) { return nil, nil }
func (emptySampler) String() string                                 { return "empty" }

func Test001_sequential_and_parallel_fits_agree(t *testing.T) {

	cv.Convey("Given a fixed seed, fitting with 0 and with 4 workers should grow bit identical trees and the same OOB estimates", t, func() {
		f := irisFrame(noise(1, 150))
		opts := []func(forestConfiger){NumTrees(40), Seed(99), ComputeOOB(), FreqVI(), GainVI(), NumericSelectProb(0.8)}

		seq := NewClassifier(opts...)
		cv.So(seq.Fit(f, nil), cv.ShouldBeNil)

		par := NewClassifier(append(opts, NumWorkers(4))...)
		cv.So(par.Fit(f, nil), cv.ShouldBeNil)

		cv.So(sameTrees(seq.Trees, par.Trees), cv.ShouldBeTrue)
		cv.So(math.Abs(seq.OOBError()-par.OOBError()), cv.ShouldBeLessThan, 1e-12)
		cv.So(par.ConfusionMatrix, cv.ShouldResemble, seq.ConfusionMatrix)
		cv.So(par.FreqContrib, cv.ShouldResemble, seq.FreqContrib)
		cv.So(par.GainContrib, cv.ShouldResemble, seq.GainContrib)
	})
}

func Test002_oob_merge_is_order_insensitive(t *testing.T) {

	cv.Convey("Merging the same tree results forwards and in reverse should give the same OOB error", t, func() {
		f := irisFrame(nil)
		clf := NewClassifier(NumTrees(25), ComputeOOB())
		w, err := clf.validate(f, nil)
		cv.So(err, cv.ShouldBeNil)

		r := rand.New(rand.NewSource(5))
		var results []*treeResult
		for i := 0; i < 25; i++ {
			res := clf.grow(f, w, job{i, r.Int63()})
			cv.So(res.err, cv.ShouldBeNil)
			results = append(results, res)
		}

		fwd := newOOBCtr(f, 3)
		for _, res := range results {
			fwd.update(res.oob, res.oobProb)
		}
		rev := newOOBCtr(f, 3)
		for i := len(results) - 1; i >= 0; i-- {
			rev.update(results[i].oob, results[i].oobProb)
		}

		cv.So(math.Abs(fwd.errorRate()-rev.errorRate()), cv.ShouldBeLessThan, 1e-12)
		cv.So(fwd.coverage(), cv.ShouldEqual, rev.coverage())
	})
}

func Test003_oob_coverage_never_decreases(t *testing.T) {

	cv.Convey("As trees are merged the share of rows with an OOB vote should never decrease", t, func() {
		f := irisFrame(nil)
		var coverage []float64
		hook := func(c *Classifier, done int) {
			coverage = append(coverage, c.OOBCoverage())
		}

		clf := NewClassifier(NumTrees(30), Seed(7), ComputeOOB(), NumWorkers(3), RunningHook(hook))
		cv.So(clf.Fit(f, nil), cv.ShouldBeNil)

		cv.So(len(coverage), cv.ShouldEqual, 30)
		for i := 1; i < len(coverage); i++ {
			cv.So(coverage[i], cv.ShouldBeGreaterThanOrEqualTo, coverage[i-1])
		}
		cv.So(coverage[0], cv.ShouldBeGreaterThan, 0)
		cv.So(coverage[len(coverage)-1], cv.ShouldEqual, clf.OOBCoverage())
	})
}

func Test004_importance(t *testing.T) {

	cv.Convey("Given iris plus an irrelevant noise feature", t, func() {
		f := irisFrame(noise(2, 150))
		clf := NewClassifier(NumTrees(200), Seed(11), NumWorkers(4), FreqVI(), GainVI(), PermVI())
		cv.So(clf.Fit(f, nil), cv.ShouldBeNil)

		cv.Convey("frequency and gain importance should be non-negative", func() {
			freq, err := clf.FrequencyImportance()
			cv.So(err, cv.ShouldBeNil)
			gain, err := clf.GainImportance()
			cv.So(err, cv.ShouldBeNil)

			cv.So(len(freq), cv.ShouldEqual, 5)
			for i := range freq {
				cv.So(freq[i].Mean, cv.ShouldBeGreaterThanOrEqualTo, 0)
				cv.So(gain[i].Mean, cv.ShouldBeGreaterThanOrEqualTo, 0)
				cv.So(freq[i].Samples, cv.ShouldEqual, 200)
			}
			cv.So(freq[0].Scaled, cv.ShouldAlmostEqual, 100)
			cv.So(strings.HasPrefix(gain[0].Feature, "Petal"), cv.ShouldBeTrue)
		})

		cv.Convey("permutation importance of the noise feature should not be distinguishable from 0", func() {
			perm, err := clf.PermutationImportance()
			cv.So(err, cv.ShouldBeNil)

			var petal, noise Importance
			for _, imp := range perm {
				switch imp.Feature {
				case "noise":
					noise = imp
				case "Petal.Width":
					petal = imp
				}
			}
			cv.So(noise.P, cv.ShouldBeGreaterThan, 0.001)
			cv.So(math.Abs(noise.Mean), cv.ShouldBeLessThan, 0.02)
			cv.So(math.Abs(petal.Z), cv.ShouldBeGreaterThan, math.Abs(noise.Z))
		})

		cv.Convey("reports not asked for should be an error", func() {
			plain := NewClassifier(NumTrees(2), Seed(1))
			cv.So(plain.Fit(f, nil), cv.ShouldBeNil)
			_, err := plain.PermutationImportance()
			cv.So(err, cv.ShouldNotBeNil)
		})
	})
}

func Test005_configuration_errors(t *testing.T) {

	cv.Convey("Fit should refuse unusable configurations before growing any tree", t, func() {
		f := irisFrame(nil)

		nan := make([]float64, 150)
		neg := make([]float64, 150)
		for i := range nan {
			nan[i], neg[i] = 1, 1
		}
		nan[3], neg[4] = math.NaN(), -1

		tests := []struct {
			clf     *Classifier
			weights []float64
			want    error
		}{
			{NewClassifier(NumTrees(0)), nil, ErrConfig},
			{NewClassifier(NumWorkers(-1)), nil, ErrConfig},
			{NewClassifier(MinNodeSize(0)), nil, ErrConfig},
			{NewClassifier(NumericSelectProb(0)), nil, ErrConfig},
			{NewClassifier(NumericSelectProb(1.5)), nil, ErrConfig},
			{NewClassifier(MaxFeatures(5)), nil, ErrConfig},
			{NewClassifier(Bagging(BaggingMode(7))), nil, ErrConfig},
			{NewClassifier(), []float64{1, 2, 3}, ErrWeights},
			{NewClassifier(), make([]float64, 150), ErrWeights},
			{NewClassifier(), nan, ErrWeights},
			{NewClassifier(), neg, ErrWeights},
		}

		for _, test := range tests {
			err := test.clf.Fit(f, test.weights)
			cv.So(errors.Is(err, test.want), cv.ShouldBeTrue)
			cv.So(test.clf.Trees, cv.ShouldBeNil)
		}

		noTarget, err := frame.New(nil, frame.NewNumeric("x", []float64{1, 2}))
		cv.So(err, cv.ShouldBeNil)
		cv.So(errors.Is(NewClassifier().Fit(noTarget, nil), ErrConfig), cv.ShouldBeTrue)
	})
}

func Test006_fail_stop(t *testing.T) {

	cv.Convey("When tree fits fail, Fit should return the error and expose no trees", t, func() {
		f := irisFrame(nil)
		for _, workers := range []int{0, 3} {
			clf := NewClassifier(NumTrees(20), NumWorkers(workers), Sampler(emptySampler{}), ComputeOOB())
			err := clf.Fit(f, nil)
			cv.So(err, cv.ShouldNotBeNil)
			cv.So(errors.Is(err, tree.ErrNoRows), cv.ShouldBeTrue)
			cv.So(clf.Trees, cv.ShouldBeNil)
			cv.So(clf.Names, cv.ShouldBeNil)
			cv.So(clf.Classes, cv.ShouldBeNil)
			cv.So(clf.OOBError(), cv.ShouldEqual, 0)

			_, err = clf.Predict(f, true, false)
			cv.So(errors.Is(err, ErrNotFitted), cv.ShouldBeTrue)
		}
	})
}

func Test007_missing_targets_and_subsample(t *testing.T) {

	cv.Convey("Rows without a target should never be drawn nor counted out of bag", t, func() {
		codes := make([]int, 150)
		species := irisFrame(nil).Target()
		for i := range codes {
			codes[i] = species.Code(i)
			if i%10 == 0 {
				codes[i] = -1
			}
		}
		cols := make([]*frame.Column, 4)
		base := irisFrame(nil)
		for j := range cols {
			cols[j] = base.Feature(j)
		}
		f, err := frame.New(frame.NewNominal("species", species.Levels, codes), cols...)
		cv.So(err, cv.ShouldBeNil)

		clf := NewClassifier(NumTrees(20), Seed(3), ComputeOOB(), Sampler(frame.Subsample(0.6)))
		cv.So(clf.Fit(f, nil), cv.ShouldBeNil)

		total := 0
		for _, row := range clf.ConfusionMatrix {
			for _, n := range row {
				total += n
			}
		}
		cv.So(total, cv.ShouldBeLessThanOrEqualTo, 135)
		cv.So(clf.OOBCoverage(), cv.ShouldBeLessThanOrEqualTo, 0.9)

		labels, err := clf.PredictLabels(f)
		cv.So(err, cv.ShouldBeNil)
		cv.So(len(labels), cv.ShouldEqual, 150)
	})
}

func Test008_predict_schema(t *testing.T) {

	cv.Convey("Predict should check the frame against the training schema", t, func() {
		f := irisFrame(nil)
		clf := NewClassifier(NumTrees(3), Seed(1))
		cv.So(clf.Fit(f, nil), cv.ShouldBeNil)

		wide := irisFrame(noise(1, 150))
		_, err := clf.Predict(wide, true, false)
		cv.So(err, cv.ShouldNotBeNil)

		var cols []*frame.Column
		for _, name := range XNames {
			cols = append(cols, frame.NewNumeric(name, nil))
		}
		empty, err := frame.New(nil, cols...)
		cv.So(err, cv.ShouldBeNil)
		p, err := clf.Predict(empty, true, true)
		cv.So(err, cv.ShouldBeNil)
		cv.So(p.Densities, cv.ShouldBeNil)
		cv.So(len(p.Classes), cv.ShouldEqual, 0)

		p, err = clf.Predict(f, false, true)
		cv.So(err, cv.ShouldBeNil)
		cv.So(p.Classes, cv.ShouldBeNil)
		cv.So(p.Densities, cv.ShouldNotBeNil)

		cv.So(clf.String(), cv.ShouldContainSubstring, "trees:3")

		cv.Convey("features in another order should be refused", func() {
			reversed := make([]*frame.Column, 4)
			for j := range reversed {
				reversed[j] = f.Feature(3 - j)
			}
			fr, err := frame.New(nil, reversed...)
			cv.So(err, cv.ShouldBeNil)
			_, err = clf.Predict(fr, true, false)
			cv.So(err, cv.ShouldNotBeNil)
			cv.So(err.Error(), cv.ShouldContainSubstring, XNames[3])
		})
	})

	cv.Convey("Nominal features should be coded against the training levels", t, func() {
		var color, class []string
		for i := 0; i < 20; i++ {
			color = append(color, []string{"red", "blue"}[i%2])
			class = append(class, []string{"a", "b"}[i%2])
		}
		train, err := frame.New(frame.NominalFromStrings("y", class), frame.NominalFromStrings("color", color))
		cv.So(err, cv.ShouldBeNil)

		clf := NewClassifier(NumTrees(15), Seed(2), MaxFeatures(-1))
		cv.So(clf.Fit(train, nil), cv.ShouldBeNil)

		recoded, err := frame.New(nil, frame.NominalFromStrings("color", []string{"blue", "red"}))
		cv.So(err, cv.ShouldBeNil)
		_, err = clf.Predict(recoded, true, false)
		cv.So(err, cv.ShouldNotBeNil)

		same, err := frame.New(nil, frame.NominalWithLevels("color", clf.Levels[0], []string{"blue", "red"}))
		cv.So(err, cv.ShouldBeNil)
		labels, err := clf.PredictLabels(same)
		cv.So(err, cv.ShouldBeNil)
		cv.So(labels, cv.ShouldResemble, []string{"b", "a"})

		prefix, err := frame.New(nil, frame.NewNominal("color", []string{"red"}, []int{0}))
		cv.So(err, cv.ShouldBeNil)
		labels, err = clf.PredictLabels(prefix)
		cv.So(err, cv.ShouldBeNil)
		cv.So(labels, cv.ShouldResemble, []string{"a"})
	})
}
