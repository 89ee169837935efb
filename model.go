package main

import (
	"encoding/csv"
	"encoding/gob"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/wlattner/cforest/forest"
	"github.com/wlattner/cforest/frame"
)

// Model is a fitted forest plus what the command line reports about the fit.
type Model struct {
	Clf     *forest.Classifier
	Target  string
	NSample int
	FitTime time.Duration
}

func (m *Model) Fit(fr *frame.Frame, clf *forest.Classifier) error {
	start := time.Now()
	if err := clf.Fit(fr, nil); err != nil {
		return err
	}
	m.FitTime = time.Since(start)
	m.Clf = clf
	m.Target = fr.Target().Name
	m.NSample = fr.Rows()
	return nil
}

func (m *Model) Report(w io.Writer) {
	fmt.Fprintf(w, "Fit %d trees using %d examples in %.2f seconds\n",
		len(m.Clf.Trees), m.NSample, m.FitTime.Seconds())
	fmt.Fprintf(w, "%v\n", m.Clf)
	fmt.Fprintf(w, "\n")

	for _, kind := range []string{"gain", "freq", "perm"} {
		if m.ReportVarImp(w, kind, 20) == nil {
			break
		}
	}

	if m.Clf.ConfusionMatrix != nil {
		m.reportOOB(w)
	}
}

func (m *Model) reportOOB(w io.Writer) {
	fmt.Fprintf(w, "Out of Bag Confusion Matrix (actual by row, predicted by column)\n")
	fmt.Fprintf(w, "----------------------------------------------------------------\n")
	// headers
	fmt.Fprintf(w, "%-14s ", "")
	for _, class := range m.Clf.Classes {
		fmt.Fprintf(w, "%-14s ", class)
	}
	fmt.Fprintf(w, "\n")

	// rows
	for actualID, class := range m.Clf.Classes {
		fmt.Fprintf(w, "%-14s ", class)

		for predictedID := range m.Clf.Classes {
			fmt.Fprintf(w, "%-14d ", m.Clf.ConfusionMatrix[actualID][predictedID])
		}

		fmt.Fprintf(w, "\n")
	}

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "OOB Error: %.2f%%\n", 100.0*m.Clf.OOBError())
	fmt.Fprintf(w, "OOB Coverage: %.2f%%\n", 100.0*m.Clf.OOBCoverage())
	fmt.Fprintf(w, "Overall Accuracy: %.2f%%\n", 100.0*m.Clf.Accuracy)
}

// VarImp returns the importance report named by kind: freq, gain or perm.
func (m *Model) VarImp(kind string) ([]forest.Importance, error) {
	switch kind {
	case "freq":
		return m.Clf.FrequencyImportance()
	case "gain":
		return m.Clf.GainImportance()
	case "perm":
		return m.Clf.PermutationImportance()
	}
	return nil, fmt.Errorf("unknown importance %q, use freq, gain or perm", kind)
}

func (m *Model) SaveVarImp(w io.Writer, kind string) error {
	imp, err := m.VarImp(kind)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"feature", "mean", "sd", "scaled", "z", "p", "samples"}); err != nil {
		return err
	}
	for _, v := range imp {
		err := writer.Write([]string{
			v.Feature,
			strconv.FormatFloat(v.Mean, 'f', -1, 64),
			strconv.FormatFloat(v.SD, 'f', -1, 64),
			strconv.FormatFloat(v.Scaled, 'f', -1, 64),
			strconv.FormatFloat(v.Z, 'f', -1, 64),
			strconv.FormatFloat(v.P, 'f', -1, 64),
			strconv.Itoa(v.Samples),
		})
		if err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func (m *Model) ReportVarImp(w io.Writer, kind string, maxVars int) error {
	imp, err := m.VarImp(kind)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Variable Importance (%s)\n", kind)
	fmt.Fprintf(w, "------------------------\n")

	// only show top n
	if maxVars > len(imp) || maxVars <= 0 {
		maxVars = len(imp)
	}

	for _, v := range imp[:maxVars] {
		if kind == "perm" {
			fmt.Fprintf(w, "%-15s: %-10.4f z=%-8.2f p=%.4f\n", v.Feature, v.Mean, v.Z, v.P)
		} else {
			fmt.Fprintf(w, "%-15s: %-10.2f\n", v.Feature, v.Scaled)
		}
	}

	fmt.Fprintf(w, "\n")
	return nil
}

func (m *Model) Load(r io.Reader) error {
	d := gob.NewDecoder(r)
	return d.Decode(m)
}

func (m *Model) Save(w io.Writer) error {
	e := gob.NewEncoder(w)
	return e.Encode(m)
}
