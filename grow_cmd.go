package main

import (
	"fmt"
	"os"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/wlattner/cforest/forest"
	"github.com/wlattner/cforest/frame"
)

type growCmdConfig struct {
	*rootCmdConfig
	dataInput   string
	npyFeatures string
	npyLabels   string
	configFile  string
	output      string
	varImpFile  string
	profile     bool
	fit         fitConfig
}

func growCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &growCmdConfig{rootCmdConfig: rootConfig, fit: defaultFitConfig()}
	cmd := &cobra.Command{
		Use:   "grow",
		Short: "Grow a forest from a set of data",
		Long: `Grow a forest of classification trees from a CSV file with a header row, or
from a .npy feature matrix and a .npy label vector. Settings are read from an
optional YAML config file, flags override the file.`,
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			if err := config.merge(cmd); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}

			fr, err := config.trainingSet()
			if err != nil {
				fmt.Fprintf(os.Stderr, "reading training set: %v\n", err)
				os.Exit(3)
			}

			clf, err := config.fit.classifier()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(4)
			}
			if config.verbose {
				forest.RunningHook(config.progress)(clf)
			}

			config.Logf("Growing %d trees from a set with %d samples and %d features to predict %s ...",
				clf.NTrees, fr.Rows(), fr.NumFeatures(), fr.Target().Name)
			m := &Model{}
			if err := config.grow(m, fr, clf); err != nil {
				fmt.Fprintf(os.Stderr, "growing the forest: %v\n", err)
				os.Exit(5)
			}
			config.Logf("Done")

			if err := config.save(m); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(6)
			}
			m.Report(os.Stdout)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&(config.dataInput), "input", "i", "", "path to a CSV file with a header row holding the training data (defaults to STDIN)")
	flags.StringVar(&(config.npyFeatures), "npy-features", "", "path to a 2-d .npy matrix of numeric features, used instead of --input")
	flags.StringVar(&(config.npyLabels), "npy-labels", "", "path to a .npy vector with one class label per row of --npy-features")
	flags.StringVarP(&(config.configFile), "config", "c", "", "path to a YAML file with forest settings")
	flags.StringVarP(&(config.output), "output", "o", "", "path to the file the fitted model is written to (required)")
	flags.StringVar(&(config.varImpFile), "varimp", "", "path to a CSV file for the first recorded variable importance report")
	flags.BoolVar(&(config.profile), "profile", false, "write a CPU profile of the fit to the working directory")

	flags.StringVarP(&(config.fit.Target), "target", "t", "", "name of the class column (defaults to the first column)")
	flags.IntVarP(&(config.fit.Trees), "trees", "n", config.fit.Trees, "number of trees")
	flags.IntVarP(&(config.fit.Workers), "workers", "w", config.fit.Workers, "number of goroutines growing trees, 0 grows them on the calling goroutine")
	flags.IntVar(&(config.fit.MinNodeSize), "min-node-size", config.fit.MinNodeSize, "nodes with at most this many rows become leaves")
	flags.IntVar(&(config.fit.MaxDepth), "max-depth", config.fit.MaxDepth, "maximum tree depth, -1 for no limit")
	flags.IntVar(&(config.fit.MaxFeatures), "max-features", config.fit.MaxFeatures, "features tried at each split, -1 for all, 0 for ceil(sqrt(p))")
	flags.Float64Var(&(config.fit.SelectProb), "select-prob", config.fit.SelectProb, "probability each numeric split point is evaluated")
	flags.StringVar(&(config.fit.Sampler), "sampler", config.fit.Sampler, "row sampler: bootstrap or subsample")
	flags.Float64Var(&(config.fit.Fraction), "fraction", config.fit.Fraction, "share of rows drawn by the subsample sampler")
	flags.StringVar(&(config.fit.Bagging), "bagging", config.fit.Bagging, "how tree outputs are combined: distribution or vote")
	flags.Int64Var(&(config.fit.Seed), "seed", 0, "random seed, 0 seeds from the clock")
	flags.BoolVar(&(config.fit.OOB), "oob", config.fit.OOB, "compute out of bag error and confusion matrix")
	flags.StringSliceVar(&(config.fit.Importance), "importance", nil, "importance measures to record: freq, gain, perm")
	return cmd
}

func (gcc *growCmdConfig) Validate() error {
	if gcc.output == "" {
		return fmt.Errorf("required output flag was not set")
	}
	if gcc.npyFeatures != "" && gcc.dataInput != "" {
		return fmt.Errorf("cannot set both input and npy-features flags at the same time")
	}
	if (gcc.npyFeatures == "") != (gcc.npyLabels == "") {
		return fmt.Errorf("npy-features and npy-labels flags must be set together")
	}
	return nil
}

// merge reads the config file and puts back every flag set on the command
// line over it.
func (gcc *growCmdConfig) merge(cmd *cobra.Command) error {
	flagged := gcc.fit
	fileCfg, err := readFitConfig(gcc.configFile)
	if err != nil {
		return err
	}

	changed := cmd.Flags().Changed
	if changed("target") {
		fileCfg.Target = flagged.Target
	}
	if changed("trees") {
		fileCfg.Trees = flagged.Trees
	}
	if changed("workers") {
		fileCfg.Workers = flagged.Workers
	}
	if changed("min-node-size") {
		fileCfg.MinNodeSize = flagged.MinNodeSize
	}
	if changed("max-depth") {
		fileCfg.MaxDepth = flagged.MaxDepth
	}
	if changed("max-features") {
		fileCfg.MaxFeatures = flagged.MaxFeatures
	}
	if changed("select-prob") {
		fileCfg.SelectProb = flagged.SelectProb
	}
	if changed("sampler") {
		fileCfg.Sampler = flagged.Sampler
	}
	if changed("fraction") {
		fileCfg.Fraction = flagged.Fraction
	}
	if changed("bagging") {
		fileCfg.Bagging = flagged.Bagging
	}
	if changed("seed") {
		fileCfg.Seed = flagged.Seed
	}
	if changed("oob") {
		fileCfg.OOB = flagged.OOB
	}
	if changed("importance") {
		fileCfg.Importance = flagged.Importance
	}
	gcc.fit = fileCfg
	return nil
}

func (gcc *growCmdConfig) trainingSet() (*frame.Frame, error) {
	if gcc.npyFeatures != "" {
		return parseNpy(gcc.npyFeatures, gcc.npyLabels)
	}
	if gcc.dataInput == "" {
		gcc.Logf("Reading training set from STDIN ...")
		return parseCSV(os.Stdin, gcc.fit.Target, gcc.fit.Missing)
	}
	f, err := os.Open(gcc.dataInput)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseCSV(f, gcc.fit.Target, gcc.fit.Missing)
}

func (gcc *growCmdConfig) progress(c *forest.Classifier, done int) {
	if done%10 != 0 && done != c.NTrees {
		return
	}
	gcc.Logf("grew %d/%d trees, oob error %.4f, oob coverage %.4f", done, c.NTrees, c.OOBError(), c.OOBCoverage())
}

func (gcc *growCmdConfig) save(m *Model) error {
	f, err := os.Create(gcc.output)
	if err != nil {
		return err
	}
	if err := m.Save(f); err != nil {
		f.Close()
		return fmt.Errorf("writing model: %v", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	if gcc.varImpFile == "" {
		return nil
	}
	if len(gcc.fit.Importance) == 0 {
		return fmt.Errorf("varimp flag set but no importance measure was recorded")
	}
	vf, err := os.Create(gcc.varImpFile)
	if err != nil {
		return err
	}
	if err := m.SaveVarImp(vf, gcc.fit.Importance[0]); err != nil {
		vf.Close()
		return fmt.Errorf("writing variable importance: %v", err)
	}
	return vf.Close()
}

// grow fits m, under the CPU profiler when profiling was requested.
func (gcc *growCmdConfig) grow(m *Model, fr *frame.Frame, clf *forest.Classifier) error {
	if gcc.profile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	}
	return m.Fit(fr, clf)
}
