package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tylerk07/hexgrammar/internal/binparse"
	"github.com/tylerk07/hexgrammar/internal/coverage"
	"github.com/tylerk07/hexgrammar/internal/reader"
	"github.com/tylerk07/hexgrammar/utils"
)

var coverageCmd = &cobra.Command{
	Use:               "coverage [grammar.yaml] [file]",
	Short:             "Parse a file and report mapped/unmapped byte coverage",
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: utils.CompleteFilesByExtension(append(grammarExtensions, binaryExtensions...), false),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := lintGrammarFile(args[0])
		if err != nil {
			return err
		}

		rdr, rerr := reader.Open(args[1], 0, 0)
		if rerr != nil {
			return fmt.Errorf("%s", rerr.Error())
		}
		defer rdr.Close()

		result := binparse.Parse(g, rdr, binparse.Options{})
		report := coverage.Analyze(result, rdr.Size())

		fmt.Printf("file size:  %s\n", utils.MemorySize(report.FileSize))
		fmt.Printf("covered:    %s (%.2f%%)\n", utils.MemorySize(report.BytesCovered), report.CoveragePercentage)
		fmt.Printf("uncovered:  %s\n", utils.MemorySize(report.BytesUncovered))
		fmt.Printf("records:    %d\n", report.RecordCount)
		fmt.Printf("gaps:       %d\n", len(report.Gaps))
		for _, gap := range report.Gaps {
			fmt.Printf("  [%d, %d) %s\n", gap.Start, gap.End, utils.MemorySize(gap.Length()))
		}
		if report.HasGap {
			fmt.Printf("largest gap: [%d, %d)\n", report.LargestGap.Start, report.LargestGap.End)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(coverageCmd)
}
