package forest

import (
	"gonum.org/v1/gonum/floats"

	"github.com/wlattner/cforest/frame"
)

// oobCtr accumulates the out of bag class densities of every row. Updates
// are sums, so trees can be merged in any order.
type oobCtr struct {
	y       []int
	density [][]float64 // nRows x nClasses
	votes   []int       // trees that left the row out of bag
	best    []int

	covered    int
	mismatches int
}

func newOOBCtr(fr *frame.Frame, nClasses int) *oobCtr {
	o := &oobCtr{
		y:       make([]int, fr.Rows()),
		density: make([][]float64, fr.Rows()),
		votes:   make([]int, fr.Rows()),
		best:    make([]int, fr.Rows()),
	}
	for i := range o.density {
		o.y[i] = fr.Class(i)
		o.density[i] = make([]float64, nClasses)
	}
	return o
}

// update adds the predictions of one tree for its out of bag rows and keeps
// the running mismatch count in step with the per row best class.
func (o *oobCtr) update(rows []int, prob [][]float64) {
	for i, row := range rows {
		if o.votes[row] == 0 {
			o.covered++
		} else if o.best[row] != o.y[row] {
			o.mismatches--
		}

		floats.Add(o.density[row], prob[i])
		o.votes[row]++
		o.best[row] = floats.MaxIdx(o.density[row])

		if o.best[row] != o.y[row] {
			o.mismatches++
		}
	}
}

// errorRate is the share of covered rows whose best class is wrong.
func (o *oobCtr) errorRate() float64 {
	if o.covered == 0 {
		return 0
	}
	return float64(o.mismatches) / float64(o.covered)
}

// coverage is the share of rows with at least one out of bag prediction.
func (o *oobCtr) coverage() float64 {
	if len(o.votes) == 0 {
		return 0
	}
	return float64(o.covered) / float64(len(o.votes))
}

// compute confusion matrix and overall accuracy from oob predictions,
// actual class by row, predicted class by column
func (o *oobCtr) compute() ([][]int, float64) {
	nClasses := 0
	if len(o.density) > 0 {
		nClasses = len(o.density[0])
	}
	confMat := make([][]int, nClasses)
	for i := range confMat {
		confMat[i] = make([]int, nClasses)
	}

	for i, actual := range o.y {
		if o.votes[i] == 0 || actual < 0 {
			continue
		}
		confMat[actual][o.best[i]]++
	}

	if o.covered == 0 {
		return confMat, 0
	}
	correctCt := 0
	for i := range confMat {
		correctCt += confMat[i][i]
	}
	accuracy := float64(correctCt) / float64(o.covered)

	return confMat, accuracy
}

// OOBError returns the out of bag error rate, mismatches over rows with at
// least one out of bag prediction.
func (f *Classifier) OOBError() float64 { return f.OOBErr }

// OOBCoverage returns the share of rows with at least one out of bag
// prediction.
func (f *Classifier) OOBCoverage() float64 { return f.OOBCov }
