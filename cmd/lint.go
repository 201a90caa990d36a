package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tylerk07/hexgrammar/internal/grammar"
	"github.com/tylerk07/hexgrammar/utils"
)

var lintCmd = &cobra.Command{
	Use:               "lint [grammar.yaml]",
	Short:             "Validate a grammar document and report errors and warnings",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: utils.CompleteFilesByExtension(grammarExtensions, false),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading grammar file: %w", err)
		}

		result := grammar.Lint(string(text))
		for _, w := range result.Warnings {
			fmt.Printf("warning: %s\n", w)
		}
		for _, e := range result.Errors {
			fmt.Printf("error: %s\n", e)
		}

		if !result.Success {
			return fmt.Errorf("%d error(s)", len(result.Errors))
		}
		fmt.Printf("%s: %d type(s), %d registry entr(y/ies)\n", args[0], len(result.Grammar.TypeOrder), len(result.Grammar.RegistryOrder))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lintCmd)
}
