package forest

import (
	"errors"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/wlattner/cforest/frame"
	"github.com/wlattner/cforest/tree"
)

// Importance summarizes the per tree contributions of one feature.
type Importance struct {
	Feature string
	Mean    float64
	SD      float64
	Scaled  float64 // 100 * Mean / largest Mean
	Z       float64 // permutation importance only
	P       float64 // two sided normal p-value of Z
	Samples int
}

// splitImportance sums, per feature, the weight of the nodes split on it and
// that weight times the impurity decrease of the split.
func splitImportance(t *tree.Classifier, nFeatures int) (freq, gain []float64) {
	freq = make([]float64, nFeatures)
	gain = make([]float64, nFeatures)
	t.Walk(func(n *tree.Node) {
		freq[n.Feature] += n.Total
		gain[n.Feature] += math.Abs(n.Score) * n.Total
	})
	return freq, gain
}

// permImportance returns, per feature, the accuracy of t on the oob rows less
// its accuracy once the feature is shuffled among those rows. It returns nil
// without oob rows.
func permImportance(fr *frame.Frame, t *tree.Classifier, oob []int, r *rand.Rand) []float64 {
	if len(oob) == 0 {
		return nil
	}

	ref := accuracy(fr, t, oob)
	imp := make([]float64, fr.NumFeatures())
	for j := range imp {
		shuffled := fr.WithFeature(j, fr.Feature(j).Permute(oob, r.Perm(len(oob))))
		imp[j] = ref - accuracy(shuffled, t, oob)
	}
	return imp
}

func accuracy(fr *frame.Frame, t *tree.Classifier, rows []int) float64 {
	correct := 0
	for _, row := range rows {
		if t.PredictRow(fr, row) == fr.Class(row) {
			correct++
		}
	}
	return float64(correct) / float64(len(rows))
}

// FrequencyImportance reports, per feature, the weight of the nodes split on
// it, one sample per tree, sorted by decreasing mean.
func (f *Classifier) FrequencyImportance() ([]Importance, error) {
	if f.FreqContrib == nil {
		return nil, errors.New("forest: frequency importance was not recorded")
	}
	imp := summarize(f.Names, f.FreqContrib)
	sortByMean(imp)
	return imp, nil
}

// GainImportance reports, per feature, the weighted impurity decrease of the
// nodes split on it, one sample per tree, sorted by decreasing mean.
func (f *Classifier) GainImportance() ([]Importance, error) {
	if f.GainContrib == nil {
		return nil, errors.New("forest: gain importance was not recorded")
	}
	imp := summarize(f.Names, f.GainContrib)
	sortByMean(imp)
	return imp, nil
}

// PermutationImportance reports, per feature, the OOB accuracy lost when the
// feature is shuffled, one sample per tree with out of bag rows. Z is
// Mean/SD and P its two sided p-value under a standard normal. Features are
// sorted by decreasing |Z|.
func (f *Classifier) PermutationImportance() ([]Importance, error) {
	if f.PermContrib == nil {
		return nil, errors.New("forest: permutation importance was not recorded")
	}
	imp := summarize(f.Names, f.PermContrib)
	for i := range imp {
		imp[i].Z = zScore(imp[i].Mean, imp[i].SD)
		imp[i].P = 2 * distuv.UnitNormal.CDF(-math.Abs(imp[i].Z))
	}
	sort.SliceStable(imp, func(i, j int) bool {
		return math.Abs(imp[i].Z) > math.Abs(imp[j].Z)
	})
	return imp, nil
}

// summarize reduces contrib, indexed [tree][feature], to one Importance per
// feature. Trees without contributions are skipped.
func summarize(names []string, contrib [][]float64) []Importance {
	imp := make([]Importance, len(names))
	x := make([]float64, 0, len(contrib))
	top := 0.0
	for j, name := range names {
		x = x[:0]
		for _, c := range contrib {
			if len(c) > 0 {
				x = append(x, c[j])
			}
		}

		imp[j].Feature = name
		imp[j].Samples = len(x)
		switch len(x) {
		case 0:
		case 1:
			imp[j].Mean = x[0]
		default:
			imp[j].Mean, imp[j].SD = stat.MeanStdDev(x, nil)
		}
		if imp[j].Mean > top {
			top = imp[j].Mean
		}
	}

	if top > 0 {
		for j := range imp {
			imp[j].Scaled = 100 * imp[j].Mean / top
		}
	}
	return imp
}

func zScore(mean, sd float64) float64 {
	if sd > 0 {
		return mean / sd
	}
	switch {
	case mean > 0:
		return math.Inf(1)
	case mean < 0:
		return math.Inf(-1)
	}
	return 0
}

func sortByMean(imp []Importance) {
	sort.SliceStable(imp, func(i, j int) bool {
		return imp[i].Mean > imp[j].Mean
	})
}
