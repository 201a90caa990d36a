package model

import (
	"time"

	"github.com/tylerk07/hexgrammar/internal/grammar"
)

// ParsedField is a leaf result: the universal currency between the parser
// and every downstream consumer. Deeply immutable once constructed.
type ParsedField struct {
	Path           string
	Offset         int64
	Length         int64
	Type           grammar.PrimKind
	Value          Value
	Error          *ParseError
	EffectiveEndian grammar.Endian
	EndianSource    grammar.EndianSource
	Color          string
}

// ParsedNode is the recursive tree analogue of ParsedField: a leaf carries
// Field (non-nil, Children nil); an internal node carries Children
// (non-nil, Field nil) and an aggregate Length.
type ParsedNode struct {
	Path     string
	Offset   int64
	Length   int64
	Field    *ParsedField  // set on leaves
	Children []*ParsedNode // set on internal nodes
	Error    *ParseError   // structural error for this node, leaf or composite
	Note     string        // e.g. "truncated at EOF"; "" when absent
}

func (n *ParsedNode) IsLeaf() bool { return n != nil && n.Field != nil }

// Leaves flattens the tree into its leaf ParsedFields in depth-first
// (tree) order. This is not sorted by offset when fields use offset/skip
// or an SOA layout, whose rows are transposed from column-major storage.
func (n *ParsedNode) Leaves() []*ParsedField {
	if n == nil {
		return nil
	}
	if n.IsLeaf() {
		return []*ParsedField{n.Field}
	}
	var out []*ParsedField
	for _, c := range n.Children {
		out = append(out, c.Leaves()...)
	}
	return out
}

// ParsedRecord groups one top-level record's parsed tree with its chosen
// type name, location, and optional discriminator value.
type ParsedRecord struct {
	TypeName      string
	Offset        int64
	Size          int64
	Discriminator string // canonical "0x%04X"; "" when grammar has no switch
	Root          *ParsedNode
	Error         *ParseError // set when this record is a per-record failure
}

// Leaves flattens the record's tree into its leaves.
func (r *ParsedRecord) Leaves() []*ParsedField {
	if r == nil {
		return nil
	}
	return r.Root.Leaves()
}

// ParseResult is the parser's single output value (spec.md §3). Timestamp
// is for consumer logging only and is excluded from equality comparisons.
type ParseResult struct {
	Records          []*ParsedRecord
	Errors           []*ParseError
	Format           string
	TotalBytesParsed int64
	StopOffset       int64
	FilePath         string
	Timestamp        time.Time
}
