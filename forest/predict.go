package forest

import (
	"errors"
	"fmt"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/wlattner/cforest/frame"
)

var ErrNotFitted = errors.New("forest: classifier has no trees")

// Prediction holds the ensemble output for every row of a frame. Classes
// indexes Classifier.Classes, Densities has one row per frame row and one
// column per class. Either is nil when it was not requested, Densities is
// also nil for a frame without rows.
type Prediction struct {
	Classes   []int
	Densities *mat.Dense
}

// Schema checks that fr has the features the forest was fitted on: same
// count, names, order and kinds, and nominal features coded against the same
// levels. A nominal column may know fewer levels than the model, as long as
// they are a prefix of the training levels.
func (f *Classifier) Schema(fr *frame.Frame) error {
	if len(f.Trees) == 0 {
		return ErrNotFitted
	}
	if fr.NumFeatures() != len(f.Names) {
		return fmt.Errorf("forest: frame has %d features, model has %d", fr.NumFeatures(), len(f.Names))
	}
	for j := range f.Names {
		col := fr.Feature(j)
		if col.Name != f.Names[j] {
			return fmt.Errorf("forest: feature %d is %q, model expects %q", j, col.Name, f.Names[j])
		}
		if col.Kind != f.Kinds[j] {
			return fmt.Errorf("forest: feature %q is %s, model expects %s", col.Name, col.Kind, f.Kinds[j])
		}
		if col.Kind != frame.Nominal {
			continue
		}
		if len(col.Levels) > len(f.Levels[j]) {
			return fmt.Errorf("forest: feature %q has %d levels, model knows %d", col.Name, len(col.Levels), len(f.Levels[j]))
		}
		for i, level := range col.Levels {
			if level != f.Levels[j][i] {
				return fmt.Errorf("forest: feature %q codes %q as %d, model codes it as %q", col.Name, level, i, f.Levels[j][i])
			}
		}
	}
	return nil
}

// Predict runs every tree on every row of fr and combines the outputs with
// the bagging mode of the forest. Rows are split into contiguous ranges, one
// per worker.
func (f *Classifier) Predict(fr *frame.Frame, wantClasses, wantDensities bool) (Prediction, error) {
	if err := f.Schema(fr); err != nil {
		return Prediction{}, err
	}

	n, k := fr.Rows(), len(f.Classes)
	dens := make([]float64, n*k)
	classes := make([]int, n)

	predictRows := func(start, end int) {
		for row := start; row < end; row++ {
			d := dens[row*k : (row+1)*k]
			for _, t := range f.Trees {
				switch f.Bagging {
				case Vote:
					d[t.PredictRow(fr, row)]++
				default:
					floats.Add(d, t.PredictProbRow(fr, row))
				}
			}
			floats.Scale(1/float64(len(f.Trees)), d)
			classes[row] = floats.MaxIdx(d)
		}
	}

	numWorkers := f.nWorkers
	if numWorkers <= 1 || n <= 1 {
		predictRows(0, n)
	} else {
		var wg sync.WaitGroup
		rowsPerWorker := (n + numWorkers - 1) / numWorkers
		for w := 0; w < numWorkers; w++ {
			startRow := w * rowsPerWorker
			endRow := startRow + rowsPerWorker
			if endRow > n {
				endRow = n
			}
			if startRow >= n {
				break
			}

			wg.Add(1)
			go func(start, end int) {
				defer wg.Done()
				predictRows(start, end)
			}(startRow, endRow)
		}
		wg.Wait()
	}

	var p Prediction
	if wantClasses {
		p.Classes = classes
	}
	if wantDensities && n > 0 {
		p.Densities = mat.NewDense(n, k, dens)
	}
	return p, nil
}

// PredictLabels returns the predicted class label for each row of fr.
func (f *Classifier) PredictLabels(fr *frame.Frame) ([]string, error) {
	p, err := f.Predict(fr, true, false)
	if err != nil {
		return nil, err
	}
	labels := make([]string, len(p.Classes))
	for i, c := range p.Classes {
		labels[i] = f.Classes[c]
	}
	return labels, nil
}
