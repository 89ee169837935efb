package main

import (
	"fmt"
	"os"
	"strings"

	yaml "gopkg.in/yaml.v2"

	"github.com/wlattner/cforest/forest"
	"github.com/wlattner/cforest/frame"
)

// fitConfig holds the forest settings of the grow command. It is read from a
// YAML file, command line flags take precedence over the file.
type fitConfig struct {
	Target      string   `yaml:"target"`
	Missing     []string `yaml:"missing"`
	Trees       int      `yaml:"trees"`
	Workers     int      `yaml:"workers"`
	MinNodeSize int      `yaml:"min_node_size"`
	MaxDepth    int      `yaml:"max_depth"`
	MaxFeatures int      `yaml:"max_features"`
	SelectProb  float64  `yaml:"select_prob"`
	Sampler     string   `yaml:"sampler"`
	Fraction    float64  `yaml:"fraction"`
	Bagging     string   `yaml:"bagging"`
	Seed        int64    `yaml:"seed"`
	OOB         bool     `yaml:"oob"`
	Importance  []string `yaml:"importance"`
}

var defaultMissing = []string{"", "?", "NA"}

func defaultFitConfig() fitConfig {
	return fitConfig{
		Missing:     defaultMissing,
		Trees:       10,
		MinNodeSize: 1,
		MaxDepth:    -1,
		SelectProb:  1,
		Sampler:     "bootstrap",
		Fraction:    0.632,
		Bagging:     forest.Distribution.String(),
		OOB:         true,
	}
}

// readFitConfig overlays the YAML document at path on the defaults.
func readFitConfig(path string) (fitConfig, error) {
	cfg := defaultFitConfig()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.UnmarshalStrict(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %v", path, err)
	}
	return cfg, nil
}

func (c fitConfig) sampler() (frame.Sampler, error) {
	switch strings.ToLower(c.Sampler) {
	case "bootstrap", "":
		return frame.Bootstrap(), nil
	case "subsample":
		if c.Fraction <= 0 || c.Fraction > 1 {
			return nil, fmt.Errorf("subsample fraction must be in (0, 1], got %g", c.Fraction)
		}
		return frame.Subsample(c.Fraction), nil
	}
	return nil, fmt.Errorf("unknown sampler %q, use bootstrap or subsample", c.Sampler)
}

// classifier returns an unfitted forest configured by c.
func (c fitConfig) classifier() (*forest.Classifier, error) {
	sampler, err := c.sampler()
	if err != nil {
		return nil, err
	}
	bagging, err := forest.ParseBaggingMode(c.Bagging)
	if err != nil {
		return nil, err
	}

	clf := forest.NewClassifier(
		forest.NumTrees(c.Trees),
		forest.NumWorkers(c.Workers),
		forest.MinNodeSize(c.MinNodeSize),
		forest.MaxDepth(c.MaxDepth),
		forest.MaxFeatures(c.MaxFeatures),
		forest.NumericSelectProb(c.SelectProb),
		forest.Sampler(sampler),
		forest.Bagging(bagging),
	)
	if c.Seed != 0 {
		forest.Seed(c.Seed)(clf)
	}
	if c.OOB {
		forest.ComputeOOB()(clf)
	}
	for _, vi := range c.Importance {
		switch strings.ToLower(vi) {
		case "freq":
			forest.FreqVI()(clf)
		case "gain":
			forest.GainVI()(clf)
		case "perm":
			forest.PermVI()(clf)
		default:
			return nil, fmt.Errorf("unknown importance %q, use freq, gain or perm", vi)
		}
	}
	return clf, nil
}
