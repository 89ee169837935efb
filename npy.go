package main

import (
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"

	"github.com/wlattner/cforest/forest"
	"github.com/wlattner/cforest/frame"
)

func readNpyMatrix(fileName string) (*mat.Dense, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := npyio.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %v", fileName, err)
	}

	m := &mat.Dense{}
	if err := r.Read(m); err != nil {
		return nil, fmt.Errorf("reading %s: %v", fileName, err)
	}
	return m, nil
}

func readNpyVector(fileName string) ([]float64, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var v []float64
	if err := npyio.Read(f, &v); err != nil {
		return nil, fmt.Errorf("reading %s: %v", fileName, err)
	}
	return v, nil
}

// npyColumns turns every column of m into a numeric feature. NaN cells are
// missing values.
func npyColumns(m *mat.Dense, names []string) []*frame.Column {
	_, c := m.Dims()
	cols := make([]*frame.Column, c)
	for j := range cols {
		name := fmt.Sprintf("X%d", j+1)
		if j < len(names) {
			name = names[j]
		}
		cols[j] = frame.NewNumeric(name, mat.Col(nil, j, m))
	}
	return cols
}

// parseNpy reads a training set from a 2-d feature matrix and a vector of
// class labels. Labels are formatted as numbers, NaN labels are missing.
func parseNpy(featuresFile, labelsFile string) (*frame.Frame, error) {
	m, err := readNpyMatrix(featuresFile)
	if err != nil {
		return nil, err
	}
	labels, err := readNpyVector(labelsFile)
	if err != nil {
		return nil, err
	}
	if r, _ := m.Dims(); r != len(labels) {
		return nil, fmt.Errorf("%s has %d rows, %s has %d labels", featuresFile, r, labelsFile, len(labels))
	}

	y := make([]string, len(labels))
	for i, l := range labels {
		if math.IsNaN(l) {
			continue
		}
		y[i] = strconv.FormatFloat(l, 'f', -1, 64)
	}
	return frame.New(frame.NominalFromStrings("y", y, ""), npyColumns(m, nil)...)
}

// parseNpyFor reads the features of a prediction set for a forest fitted on
// numeric features only.
func parseNpyFor(featuresFile string, clf *forest.Classifier) (*frame.Frame, error) {
	for j, k := range clf.Kinds {
		if k != frame.Numeric {
			return nil, fmt.Errorf("feature %q is %s, .npy input holds numeric features only", clf.Names[j], k)
		}
	}
	m, err := readNpyMatrix(featuresFile)
	if err != nil {
		return nil, err
	}
	return frame.New(nil, npyColumns(m, clf.Names)...)
}

// writeDensities stores the class densities, one row per observation and one
// column per class.
func writeDensities(fileName string, d *mat.Dense) error {
	f, err := os.Create(fileName)
	if err != nil {
		return err
	}
	if err := npyio.Write(f, d); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
