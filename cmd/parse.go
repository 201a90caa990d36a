package cmd

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tylerk07/hexgrammar/internal/binparse"
	"github.com/tylerk07/hexgrammar/internal/model"
	"github.com/tylerk07/hexgrammar/internal/reader"
	"github.com/tylerk07/hexgrammar/utils"
)

var (
	parseStart      int64
	parseByteLimit  int64
	parseMaxRecords int64
)

var parseCmd = &cobra.Command{
	Use:               "parse [grammar.yaml] [file]",
	Short:             "Lint a grammar, parse a file against it, and print the record tree",
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

		started := time.Now()
		result := binparse.Parse(g, rdr, binparse.Options{
			StartOffset: parseStart,
			ByteLimit:   parseByteLimit,
			MaxRecords:  parseMaxRecords,
		})
		elapsed := time.Since(started)

		for i, rec := range result.Records {
			fmt.Printf("record[%d] %s @ %d size=%d", i, rec.TypeName, rec.Offset, rec.Size)
			if rec.Discriminator != "" {
				fmt.Printf(" discriminator=%s", rec.Discriminator)
			}
			fmt.Println()
			if rec.Error != nil {
				fmt.Printf("  error: %s\n", rec.Error.Error())
				continue
			}
			printNode(rec.Root, 1)
		}

		if len(result.Errors) > 0 {
			fmt.Printf("\n%d parse error(s):\n", len(result.Errors))
			for _, e := range result.Errors {
				fmt.Printf("  %s\n", e.Error())
			}
		}
		fmt.Printf("\ntotal bytes parsed: %d, stopped at offset %d (%s)\n", result.TotalBytesParsed, result.StopOffset, utils.FormatDuration(elapsed))
		return nil
	},
}

func printNode(n *model.ParsedNode, depth int) {
	indent := strings.Repeat("  ", depth)
	if n.IsLeaf() {
		f := n.Field
		fmt.Printf("%s%s = %s (offset=%d length=%d type=%s endian=%s/%s)\n",
			indent, lastSegment(f.Path), formatValue(f.Value), f.Offset, f.Length, f.Type, f.EffectiveEndian, f.EndianSource)
		if f.Error != nil {
			fmt.Printf("%s  error: %s\n", indent, f.Error.Error())
		}
		if n.Note != "" {
			fmt.Printf("%s  note: %s\n", indent, n.Note)
		}
		return
	}
	fmt.Printf("%s%s (offset=%d length=%d)\n", indent, lastSegment(n.Path), n.Offset, n.Length)
	for _, c := range n.Children {
		printNode(c, depth+1)
	}
}

func lastSegment(path string) string {
	if path == "" {
		return "<record>"
	}
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		return path[i+1:]
	}
	return path
}

func formatValue(v model.Value) string {
	switch v.Kind {
	case model.ValueInt:
		return strconv.FormatInt(v.Int, 10)
	case model.ValueUint:
		return strconv.FormatUint(v.Uint, 10)
	case model.ValueFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case model.ValueString:
		return fmt.Sprintf("%q", v.Str)
	case model.ValueBytes:
		return "0x" + hex.EncodeToString(v.Bytes)
	default:
		return "<none>"
	}
}

func init() {
	parseCmd.Flags().Int64Var(&parseStart, "start", 0, "start offset")
	parseCmd.Flags().Int64Var(&parseByteLimit, "byte-limit", 0, "byte limit from start (0 = to EOF)")
	parseCmd.Flags().Int64Var(&parseMaxRecords, "max-records", 0, "maximum records to parse (0 = unbounded)")
	rootCmd.AddCommand(parseCmd)
}
