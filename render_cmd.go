package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type renderCmdConfig struct {
	*rootCmdConfig
	modelInput string
	treeIndex  int
	output     string
	format     string
}

func renderCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &renderCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Draw one tree of a model with graphviz",
		Run: func(cmd *cobra.Command, args []string) {
			if config.modelInput == "" || config.output == "" {
				fmt.Fprintln(os.Stderr, "required model and output flags must be set")
				os.Exit(1)
			}
			m, err := loadModel(config.modelInput)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			config.Logf("Drawing tree %d of %d ...", config.treeIndex, len(m.Clf.Trees))
			if err := renderTree(m.Clf, config.treeIndex, config.output, config.format); err != nil {
				fmt.Fprintf(os.Stderr, "rendering tree: %v\n", err)
				os.Exit(3)
			}
		},
	}
	cmd.Flags().StringVarP(&(config.modelInput), "model", "m", "", "path to a model written by grow (required)")
	cmd.Flags().IntVar(&(config.treeIndex), "tree", 0, "index of the tree to draw")
	cmd.Flags().StringVarP(&(config.output), "output", "o", "", "path of the image (required)")
	cmd.Flags().StringVarP(&(config.format), "format", "f", "", "png, svg, jpg or dot (defaults to the output extension)")
	return cmd
}
