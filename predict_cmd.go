package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wlattner/cforest/frame"
)

type predictCmdConfig struct {
	*rootCmdConfig
	modelInput  string
	dataInput   string
	npyFeatures string
	output      string
	densities   string
	workers     int
	missing     []string
}

func predictCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &predictCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict the class of a set of data with a fitted model",
		Long: `Predict the class of every row of a CSV file, or of a .npy feature matrix,
with a model written by grow. Feature columns are matched by name.`,
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			m, err := loadModel(config.modelInput)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			m.Clf.SetNumWorkers(config.workers)

			fr, err := config.predictionSet(m)
			if err != nil {
				fmt.Fprintf(os.Stderr, "reading prediction set: %v\n", err)
				os.Exit(3)
			}

			config.Logf("Predicting %d samples with %d trees ...", fr.Rows(), len(m.Clf.Trees))
			p, err := m.Clf.Predict(fr, true, config.densities != "")
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(4)
			}
			labels := make([]string, len(p.Classes))
			for i, c := range p.Classes {
				labels[i] = m.Clf.Classes[c]
			}

			if err := config.write(labels); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(5)
			}
			if config.densities != "" && p.Densities != nil {
				if err := writeDensities(config.densities, p.Densities); err != nil {
					fmt.Fprintf(os.Stderr, "writing densities: %v\n", err)
					os.Exit(6)
				}
			}
			config.Logf("Done")
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&(config.modelInput), "model", "m", "", "path to a model written by grow (required)")
	flags.StringVarP(&(config.dataInput), "input", "i", "", "path to a CSV file with a header row (defaults to STDIN)")
	flags.StringVar(&(config.npyFeatures), "npy-features", "", "path to a 2-d .npy matrix of numeric features, used instead of --input")
	flags.StringVarP(&(config.output), "output", "o", "", "path to a file for the predicted labels, one per line (defaults to STDOUT)")
	flags.StringVar(&(config.densities), "densities", "", "path to a .npy file for the class densities, one column per class")
	flags.IntVarP(&(config.workers), "workers", "w", 0, "number of goroutines predicting rows")
	flags.StringSliceVar(&(config.missing), "missing", defaultMissing, "cell values read as missing")
	return cmd
}

func (pcc *predictCmdConfig) Validate() error {
	if pcc.modelInput == "" {
		return fmt.Errorf("required model flag was not set")
	}
	if pcc.npyFeatures != "" && pcc.dataInput != "" {
		return fmt.Errorf("cannot set both input and npy-features flags at the same time")
	}
	if pcc.workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", pcc.workers)
	}
	return nil
}

func (pcc *predictCmdConfig) predictionSet(m *Model) (*frame.Frame, error) {
	if pcc.npyFeatures != "" {
		return parseNpyFor(pcc.npyFeatures, m.Clf)
	}
	if pcc.dataInput == "" {
		return parseCSVFor(os.Stdin, m.Clf, pcc.missing)
	}
	f, err := os.Open(pcc.dataInput)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseCSVFor(f, m.Clf, pcc.missing)
}

func (pcc *predictCmdConfig) write(labels []string) error {
	if pcc.output == "" {
		return writePred(os.Stdout, labels)
	}
	f, err := os.Create(pcc.output)
	if err != nil {
		return err
	}
	if err := writePred(f, labels); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
