package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tylerk07/hexgrammar/internal/binparse"
	"github.com/tylerk07/hexgrammar/internal/decode"
	"github.com/tylerk07/hexgrammar/internal/reader"
	"github.com/tylerk07/hexgrammar/utils"
)

var (
	decodeRecord int
	decodeField  string
)

var decodeCmd = &cobra.Command{
	Use:               "decode [grammar.yaml] [file]",
	Short:             "Run the registry decoder against one parsed record's payload",
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
		if decodeRecord < 0 || decodeRecord >= len(result.Records) {
			return fmt.Errorf("record index %d out of range (parsed %d record(s))", decodeRecord, len(result.Records))
		}
		rec := result.Records[decodeRecord]

		dv := decode.Decode(rec, g, decodeField)
		fmt.Printf("record[%d] %s @ %d\n", decodeRecord, rec.TypeName, rec.Offset)
		fmt.Printf("field:   %s\n", dv.FieldPath)
		fmt.Printf("decoder: %s\n", dv.DecoderType)
		if !dv.Success {
			fmt.Printf("error:   %s\n", dv.Error.Error())
			return nil
		}
		fmt.Printf("value:   %s\n", dv.Value)
		return nil
	},
}

func init() {
	decodeCmd.Flags().IntVar(&decodeRecord, "record", 0, "index of the parsed record to decode")
	decodeCmd.Flags().StringVar(&decodeField, "field", "", "explicit field path to decode (default: registry-nominated field)")
	rootCmd.AddCommand(decodeCmd)
}
