package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

type rootCmdConfig struct {
	verbose bool
}

func (c *rootCmdConfig) Logf(format string, a ...interface{}) {
	logger(c.verbose).Logf(format, a...)
}

func main() {
	if err := cliParser().Execute(); err != nil {
		os.Exit(1)
	}
}

func cliParser() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cforest",
		Short: "cforest grows bagged classification trees",
		Long: `A tool to grow ensembles of classification trees from CSV or .npy data,
estimate their out of bag error and variable importance, and use them to
make predictions`,
		SilenceUsage: true,
	}
	config := &rootCmdConfig{}
	rootCmd.PersistentFlags().BoolVarP(&(config.verbose), "verbose", "v", false, "log progress to stderr")
	rootCmd.AddCommand(versionCmd(), growCmd(config), predictCmd(config), importanceCmd(config), renderCmd(config))
	return rootCmd
}

func loadModel(fName string) (*Model, error) {
	f, err := os.Open(fName)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m := new(Model)
	if err := m.Load(f); err != nil {
		return nil, fmt.Errorf("decoding model from %s: %v", fName, err)
	}
	return m, nil
}

func writePred(w io.Writer, prediction []string) error {
	wtr := bufio.NewWriter(w)

	for _, pred := range prediction {
		_, err := wtr.WriteString(pred)
		if err != nil {
			return err
		}

		err = wtr.WriteByte('\n')
		if err != nil {
			return err
		}
	}

	return wtr.Flush()
}
