package tree

import (
	"encoding/gob"
	"io"

	"gonum.org/v1/gonum/floats"

	"github.com/wlattner/cforest/frame"
)

// visit is a node reached by a row together with the share of the row's
// weight that reached it.
type visit struct {
	id int
	w  float64
}

// route adds the class probabilities of the leaves reached by row to dst,
// scaled by the weight reaching each leaf. It returns the leaf id when the
// row reached exactly one leaf, -1 when a missing value split it.
func (t *Classifier) route(f *frame.Frame, row int, dst []float64) int {
	var s []visit
	s = append(s, visit{0, 1})
	leaves, last := 0, -1

	for len(s) > 0 {
		v := s[len(s)-1]
		s = s[:len(s)-1]

		n := &t.Nodes[v.id]
		if n.Leaf {
			floats.AddScaled(dst, v.w, n.Prob)
			leaves++
			last = v.id
			continue
		}

		col := f.Feature(n.Feature)
		switch {
		case col.IsMissing(row):
			s = append(s, visit{n.Left, v.w * n.PLeft}, visit{n.Right, v.w * (1 - n.PLeft)})
		case goesLeft(n.Kind, n.Threshold, n.Level, col, row):
			s = append(s, visit{n.Left, v.w})
		default:
			s = append(s, visit{n.Right, v.w})
		}
	}

	if leaves == 1 {
		return last
	}
	return -1
}

// PredictProbRow returns the class probabilities for a single row of f. The
// indices of the return value correspond to Classifier.Classes. A row missing
// a split feature gets PLeft times the left subtree output plus (1 - PLeft)
// times the right subtree output.
func (t *Classifier) PredictProbRow(f *frame.Frame, row int) []float64 {
	p := make([]float64, len(t.Classes))
	t.route(f, row, p)
	return p
}

// PredictProb returns the class probabilities for the rows listed in inx, or
// for every row of f when inx is nil.
func (t *Classifier) PredictProb(f *frame.Frame, inx []int) [][]float64 {
	inx = rowsOrAll(f, inx)
	p := make([][]float64, len(inx))
	for i, row := range inx {
		p[i] = t.PredictProbRow(f, row)
	}
	return p
}

// PredictRow returns the class id predicted for a single row. A row reaching
// one leaf gets the leaf label, a row split by missing values gets the most
// probable class, lowest id on ties.
func (t *Classifier) PredictRow(f *frame.Frame, row int) int {
	p := make([]float64, len(t.Classes))
	if leaf := t.route(f, row, p); leaf >= 0 {
		return t.Nodes[leaf].Label
	}
	return floats.MaxIdx(p)
}

// Predict returns the predicted class id for the rows listed in inx, or for
// every row of f when inx is nil.
func (t *Classifier) Predict(f *frame.Frame, inx []int) []int {
	inx = rowsOrAll(f, inx)
	p := make([]int, len(inx))
	for i, row := range inx {
		p[i] = t.PredictRow(f, row)
	}
	return p
}

func rowsOrAll(f *frame.Frame, inx []int) []int {
	if inx != nil {
		return inx
	}
	inx = make([]int, f.Rows())
	for i := range inx {
		inx[i] = i
	}
	return inx
}

// Save serializes the Classifier using encoding/gob to an io.Writer.
func (t *Classifier) Save(w io.Writer) error {
	e := gob.NewEncoder(w)
	return e.Encode(t)
}

// Load deserializes the Classifier using encoding/gob from an io.Reader.
func (t *Classifier) Load(r io.Reader) error {
	d := gob.NewDecoder(r)
	return d.Decode(t)
}
