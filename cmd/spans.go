package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tylerk07/hexgrammar/internal/binparse"
	"github.com/tylerk07/hexgrammar/internal/reader"
	"github.com/tylerk07/hexgrammar/internal/spans"
	"github.com/tylerk07/hexgrammar/utils"
)

var (
	spansStart int64
	spansEnd   int64
)

var spansCmd = &cobra.Command{
	Use:               "spans [grammar.yaml] [file]",
	Short:             "Print the leaf overlay spans intersecting a viewport",
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
		gen := spans.NewGenerator(result)

		end := spansEnd
		if end == 0 {
			end = rdr.Size()
		}
		list, _ := gen.Spans(spansStart, end)

		for _, s := range list {
			fmt.Printf("[%d, %d) %-24s group=%-6s endian=%s/%s", s.Offset, s.End(), s.Path, s.Group, s.EffectiveEndian, s.EndianSource)
			if s.ColorOverride != "" {
				fmt.Printf(" color=%s", s.ColorOverride)
			}
			fmt.Println()
		}
		fmt.Printf("%d span(s) in [%d, %d)\n", len(list), spansStart, end)
		return nil
	},
}

func init() {
	spansCmd.Flags().Int64Var(&spansStart, "start", 0, "viewport start offset")
	spansCmd.Flags().Int64Var(&spansEnd, "end", 0, "viewport end offset (0 = EOF)")
	rootCmd.AddCommand(spansCmd)
}
