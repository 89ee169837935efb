package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/wlattner/cforest/forest"
	"github.com/wlattner/cforest/frame"
)

// parsedInput is a CSV file held column by column. The first row is always
// read as the header.
type parsedInput struct {
	VarNames []string
	cols     [][]string
	missing  map[string]bool
}

func readCSV(r io.Reader, missing []string) (*parsedInput, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New("empty input, expected a header row")
	}
	if err != nil {
		return nil, err
	}

	p := &parsedInput{
		VarNames: header,
		cols:     make([][]string, len(header)),
		missing:  make(map[string]bool, len(missing)),
	}
	for _, m := range missing {
		p.missing[m] = true
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		for j, val := range row {
			p.cols[j] = append(p.cols[j], strings.TrimSpace(val))
		}
	}
	return p, nil
}

func (p *parsedInput) rows() int {
	if len(p.cols) == 0 {
		return 0
	}
	return len(p.cols[0])
}

func (p *parsedInput) index(name string) int {
	for j, n := range p.VarNames {
		if n == name {
			return j
		}
	}
	return -1
}

// numeric parses vals as floats, missing tokens become NaN. It fails on the
// first cell that is neither a number nor a missing token.
func (p *parsedInput) numeric(j int) ([]float64, error) {
	x := make([]float64, len(p.cols[j]))
	for i, val := range p.cols[j] {
		if p.missing[val] {
			x[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil, fmt.Errorf("column %s, row %d: %v", p.VarNames[j], i+2, err)
		}
		x[i] = v
	}
	return x, nil
}

// feature returns column j as numeric when every non missing cell parses as
// a number, as nominal otherwise.
func (p *parsedInput) feature(j int) *frame.Column {
	if x, err := p.numeric(j); err == nil {
		return frame.NewNumeric(p.VarNames[j], x)
	}
	return frame.NominalFromStrings(p.VarNames[j], p.cols[j], p.missingTokens()...)
}

func (p *parsedInput) missingTokens() []string {
	tokens := make([]string, 0, len(p.missing))
	for m := range p.missing {
		tokens = append(tokens, m)
	}
	return tokens
}

// parseCSV reads a training set. The target column is named by target, or is
// the first column when target is empty; every other column is a feature.
func parseCSV(r io.Reader, target string, missing []string) (*frame.Frame, error) {
	p, err := readCSV(r, missing)
	if err != nil {
		return nil, err
	}

	ty := 0
	if target != "" {
		if ty = p.index(target); ty < 0 {
			return nil, fmt.Errorf("target column %q not found in header", target)
		}
	}
	if len(p.VarNames) < 2 {
		return nil, errors.New("input needs a target and at least one feature column")
	}

	var features []*frame.Column
	for j := range p.VarNames {
		if j != ty {
			features = append(features, p.feature(j))
		}
	}
	y := frame.NominalFromStrings(p.VarNames[ty], p.cols[ty], p.missingTokens()...)
	return frame.New(y, features...)
}

// parseCSVFor reads the features clf was fitted on, matching columns by name.
// Nominal values are coded against the training levels, unseen levels are
// treated as missing. Other columns, the target included, are ignored.
func parseCSVFor(r io.Reader, clf *forest.Classifier, missing []string) (*frame.Frame, error) {
	p, err := readCSV(r, missing)
	if err != nil {
		return nil, err
	}

	features := make([]*frame.Column, len(clf.Names))
	for j, name := range clf.Names {
		k := p.index(name)
		if k < 0 {
			return nil, fmt.Errorf("feature column %q not found in header", name)
		}
		switch clf.Kinds[j] {
		case frame.Numeric:
			x, err := p.numeric(k)
			if err != nil {
				return nil, err
			}
			features[j] = frame.NewNumeric(name, x)
		default:
			features[j] = frame.NominalWithLevels(name, clf.Levels[j], p.cols[k])
		}
	}
	return frame.New(nil, features...)
}
