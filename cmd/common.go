package cmd

import (
	"fmt"
	"os"

	"github.com/tylerk07/hexgrammar/internal/grammar"
)

var grammarExtensions = []string{".yaml", ".yml"}
var binaryExtensions = []string{".bin", ".dat"}

func lintGrammarFile(path string) (*grammar.Grammar, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading grammar file: %w", err)
	}
	result := grammar.Lint(string(text))
	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	if !result.Success {
		for _, e := range result.Errors {
			fmt.Fprintf(os.Stderr, "error: %s\n", e)
		}
		return nil, fmt.Errorf("grammar %s failed to lint", path)
	}
	return result.Grammar, nil
}
