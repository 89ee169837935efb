// frame holds the observation set consumed by tree and forest: typed feature
// columns, an optional nominal target, and the row samplers used for bagging.
//
// Rows are always referenced by integer id. Nothing in this package copies rows;
// partitions and samples are expressed as slices of row ids.
package frame

import (
	"errors"
	"fmt"
	"math"
)

// Kind tags a column as numeric or nominal.
type Kind uint8

const (
	Numeric Kind = iota
	Nominal
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Nominal:
		return "nominal"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Column is a single typed variable. Numeric columns store NaN for missing
// values, nominal columns store -1.
type Column struct {
	Name   string
	Kind   Kind
	Levels []string // nominal only
	nums   []float64
	codes  []int
}

// NewNumeric returns a numeric column, NaN marks a missing value.
func NewNumeric(name string, values []float64) *Column {
	return &Column{Name: name, Kind: Numeric, nums: values}
}

// NewNominal returns a nominal column from level codes, -1 marks a missing value.
func NewNominal(name string, levels []string, codes []int) *Column {
	return &Column{Name: name, Kind: Nominal, Levels: levels, codes: codes}
}

// NominalFromStrings recodes values as level ids in order of first appearance.
// Any value equal to one of the missing tokens is stored as missing.
func NominalFromStrings(name string, values []string, missing ...string) *Column {
	isMissing := make(map[string]bool, len(missing))
	for _, m := range missing {
		isMissing[m] = true
	}

	uniq := make(map[string]int)
	var levels []string
	codes := make([]int, len(values))
	for i, val := range values {
		if isMissing[val] {
			codes[i] = -1
			continue
		}
		id, ok := uniq[val]
		if !ok {
			id = len(uniq)
			uniq[val] = id
			levels = append(levels, val)
		}
		codes[i] = id
	}
	return NewNominal(name, levels, codes)
}

// NominalWithLevels codes values against a fixed level set. Values outside
// levels, and missing tokens, are stored as missing.
func NominalWithLevels(name string, levels []string, values []string) *Column {
	uniq := make(map[string]int, len(levels))
	for i, l := range levels {
		uniq[l] = i
	}
	codes := make([]int, len(values))
	for i, val := range values {
		id, ok := uniq[val]
		if !ok {
			id = -1
		}
		codes[i] = id
	}
	return NewNominal(name, levels, codes)
}

// Len returns the number of rows in the column.
func (c *Column) Len() int {
	if c.Kind == Numeric {
		return len(c.nums)
	}
	return len(c.codes)
}

func (c *Column) IsMissing(row int) bool {
	if c.Kind == Numeric {
		return math.IsNaN(c.nums[row])
	}
	return c.codes[row] < 0
}

// Float returns the numeric value at row, for nominal columns the level code.
func (c *Column) Float(row int) float64 {
	if c.Kind == Numeric {
		return c.nums[row]
	}
	if c.codes[row] < 0 {
		return math.NaN()
	}
	return float64(c.codes[row])
}

// Code returns the level code at row, -1 when missing or numeric.
func (c *Column) Code(row int) int {
	if c.Kind == Numeric {
		return -1
	}
	return c.codes[row]
}

// Label returns the level name at row, "" when missing.
func (c *Column) Label(row int) string {
	code := c.Code(row)
	if code < 0 {
		return ""
	}
	return c.Levels[code]
}

// Permute returns a copy of c where the value at rows[i] is taken from
// rows[perm[i]]. Rows not listed keep their value. c is not modified.
func (c *Column) Permute(rows []int, perm []int) *Column {
	out := &Column{Name: c.Name, Kind: c.Kind, Levels: c.Levels}
	if c.Kind == Numeric {
		out.nums = make([]float64, len(c.nums))
		copy(out.nums, c.nums)
		for i, row := range rows {
			out.nums[row] = c.nums[rows[perm[i]]]
		}
		return out
	}
	out.codes = make([]int, len(c.codes))
	copy(out.codes, c.codes)
	for i, row := range rows {
		out.codes[row] = c.codes[rows[perm[i]]]
	}
	return out
}

// Frame is an immutable table of feature columns plus an optional nominal
// target. A frame without target can be used for prediction only.
type Frame struct {
	features []*Column
	target   *Column
	rows     int
}

var ErrNoColumns = errors.New("frame: no feature columns")

// New builds a frame. All columns must have the same length and the target,
// when given, must be nominal.
func New(target *Column, features ...*Column) (*Frame, error) {
	if len(features) == 0 {
		return nil, ErrNoColumns
	}
	n := features[0].Len()
	for _, c := range features[1:] {
		if c.Len() != n {
			return nil, fmt.Errorf("frame: column %q has %d rows, expected %d", c.Name, c.Len(), n)
		}
	}
	if target != nil {
		if target.Kind != Nominal {
			return nil, fmt.Errorf("frame: target column %q must be nominal", target.Name)
		}
		if target.Len() != n {
			return nil, fmt.Errorf("frame: column %q has %d rows, expected %d", target.Name, target.Len(), n)
		}
	}
	return &Frame{features: features, target: target, rows: n}, nil
}

func (f *Frame) Rows() int             { return f.rows }
func (f *Frame) NumFeatures() int      { return len(f.features) }
func (f *Frame) Feature(j int) *Column { return f.features[j] }
func (f *Frame) Target() *Column       { return f.target }
func (f *Frame) HasTarget() bool       { return f.target != nil }

// Names returns the feature names in column order.
func (f *Frame) Names() []string {
	names := make([]string, len(f.features))
	for i, c := range f.features {
		names[i] = c.Name
	}
	return names
}

// Classes returns the target levels, nil without target.
func (f *Frame) Classes() []string {
	if f.target == nil {
		return nil
	}
	return f.target.Levels
}

// Class returns the target code at row, -1 when missing or without target.
func (f *Frame) Class(row int) int {
	if f.target == nil {
		return -1
	}
	return f.target.codes[row]
}

// WithFeature returns a frame sharing every column with f except column j,
// which is replaced by c.
func (f *Frame) WithFeature(j int, c *Column) *Frame {
	features := make([]*Column, len(f.features))
	copy(features, f.features)
	features[j] = c
	return &Frame{features: features, target: f.target, rows: f.rows}
}
