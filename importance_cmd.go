package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type importanceCmdConfig struct {
	*rootCmdConfig
	modelInput string
	kind       string
	top        int
	csvOutput  string
}

func importanceCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &importanceCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "importance",
		Short: "Report the variable importance recorded in a model",
		Run: func(cmd *cobra.Command, args []string) {
			if config.modelInput == "" {
				fmt.Fprintln(os.Stderr, "required model flag was not set")
				os.Exit(1)
			}
			m, err := loadModel(config.modelInput)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}

			if config.csvOutput == "" {
				err = m.ReportVarImp(os.Stdout, config.kind, config.top)
			} else {
				err = config.saveCSV(m)
			}
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(3)
			}
		},
	}
	cmd.Flags().StringVarP(&(config.modelInput), "model", "m", "", "path to a model written by grow (required)")
	cmd.Flags().StringVarP(&(config.kind), "kind", "k", "gain", "importance measure: freq, gain or perm")
	cmd.Flags().IntVar(&(config.top), "top", 20, "number of features shown, 0 for all")
	cmd.Flags().StringVar(&(config.csvOutput), "csv", "", "write the full report as CSV to this path instead")
	return cmd
}

func (icc *importanceCmdConfig) saveCSV(m *Model) error {
	f, err := os.Create(icc.csvOutput)
	if err != nil {
		return err
	}
	if err := m.SaveVarImp(f, icc.kind); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
