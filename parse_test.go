package main

import (
	"math"
	"strings"
	"testing"

	"github.com/wlattner/cforest/forest"
	"github.com/wlattner/cforest/frame"
)

func TestParseIrisCSV(t *testing.T) {
	r := strings.NewReader(irisCSV)

	fr, err := parseCSV(r, "", defaultMissing)
	if err != nil {
		t.Fatal("unexpected error parsing iris data:", err)
	}

	if fr.Target().Name != "Species" {
		t.Error("expected the first column to be the target, got:", fr.Target().Name)
	}

	if fr.Feature(0).Name != "Sepal.Length" {
		t.Error("expected first variable name to be Sepal.Length, got:", fr.Feature(0).Name)
	}

	// check num rows
	if fr.Rows() != 9 {
		t.Error("expected dataset to have 9 rows, got:", fr.Rows())
	}

	// num cols
	if fr.NumFeatures() != 4 {
		t.Error("expected dataset to have 4 features, got:", fr.NumFeatures())
	}

	for j := 0; j < fr.NumFeatures(); j++ {
		if fr.Feature(j).Kind != frame.Numeric {
			t.Errorf("expected feature %s to be numeric", fr.Feature(j).Name)
		}
	}

	// spot check y val
	if fr.Target().Label(4) != "virginica" {
		t.Error("expected 5th row to have target label of virginica, got:", fr.Target().Label(4))
	}
	if len(fr.Classes()) != 2 {
		t.Error("expected 2 classes, got:", fr.Classes())
	}
}

func TestParseNamedTargetAndNominal(t *testing.T) {
	r := strings.NewReader(weatherCSV)

	fr, err := parseCSV(r, "play", defaultMissing)
	if err != nil {
		t.Fatal("unexpected error parsing weather data:", err)
	}

	if fr.Target().Name != "play" {
		t.Error("expected target play, got:", fr.Target().Name)
	}
	if fr.NumFeatures() != 3 {
		t.Fatal("expected 3 features, got:", fr.NumFeatures())
	}

	outlook := fr.Feature(0)
	if outlook.Kind != frame.Nominal {
		t.Error("expected outlook to be nominal")
	}
	if !outlook.IsMissing(3) {
		t.Error("expected ? to be read as missing")
	}

	temp := fr.Feature(1)
	if temp.Kind != frame.Numeric {
		t.Error("expected temp to be numeric despite a missing cell")
	}
	if !math.IsNaN(temp.Float(2)) {
		t.Error("expected NA to be read as NaN, got:", temp.Float(2))
	}

	if fr.Class(5) >= 0 {
		t.Error("expected an empty target cell to be missing")
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := parseCSV(strings.NewReader(""), "", defaultMissing); err == nil {
		t.Error("expected an error for empty input")
	}
	if _, err := parseCSV(strings.NewReader(irisCSV), "species", defaultMissing); err == nil {
		t.Error("expected an error for an unknown target column")
	}
	if _, err := parseCSV(strings.NewReader("a\n1\n2\n"), "", defaultMissing); err == nil {
		t.Error("expected an error for input without features")
	}
}

func TestParseForModel(t *testing.T) {
	train, err := parseCSV(strings.NewReader(weatherCSV), "play", defaultMissing)
	if err != nil {
		t.Fatal(err)
	}
	clf := forest.NewClassifier(forest.NumTrees(3), forest.Seed(1))
	if err := clf.Fit(train, nil); err != nil {
		t.Fatal("unexpected error fitting weather data:", err)
	}

	// columns reordered, target dropped, one unseen level
	const input = `windy,outlook,temp
yes,sunny,20
no,foggy,25
`
	fr, err := parseCSVFor(strings.NewReader(input), clf, defaultMissing)
	if err != nil {
		t.Fatal("unexpected error parsing prediction data:", err)
	}
	if fr.HasTarget() {
		t.Error("expected no target in prediction frame")
	}
	if fr.Feature(0).Name != "outlook" || fr.Feature(2).Name != "windy" {
		t.Error("expected features in training order, got:", fr.Names())
	}
	if !fr.Feature(0).IsMissing(1) {
		t.Error("expected unseen level foggy to be missing")
	}

	labels, err := clf.PredictLabels(fr)
	if err != nil {
		t.Fatal("unexpected error predicting:", err)
	}
	if len(labels) != 2 {
		t.Error("expected 2 predictions, got:", len(labels))
	}

	if _, err := parseCSVFor(strings.NewReader("outlook,temp\nsunny,1\n"), clf, defaultMissing); err == nil {
		t.Error("expected an error for a missing feature column")
	}
}

var irisCSV = `"Species","Sepal.Length","Sepal.Width","Petal.Length","Petal.Width"
"setosa",5.1,3.5,1.4,0.2
"setosa",4.9,3,1.4,0.2
"setosa",4.7,3.2,1.3,0.2
"setosa",4.6,3.1,1.5,0.2
"virginica",5,3.6,1.4,0.2
"setosa",5.4,3.9,1.7,0.4
"setosa",4.6,3.4,1.4,0.3
"setosa",5,3.4,1.5,0.2
"setosa",4.4,2.9,1.4,0.2
`

var weatherCSV = `outlook,temp,windy,play
sunny,29,no,no
sunny,27,yes,no
overcast,NA,no,yes
?,21,no,yes
rainy,20,no,yes
rainy,18,yes,
overcast,18,yes,yes
sunny,22,no,no
sunny,21,no,yes
rainy,24,no,yes
sunny,24,yes,yes
overcast,22,yes,yes
overcast,27,no,yes
rainy,22,yes,no
`
