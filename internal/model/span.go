package model

import (
	"sort"

	"github.com/tylerk07/hexgrammar/internal/grammar"
)

// Span is a leaf-level, viewport-intersected overlay interval (spec.md §3).
type Span struct {
	Offset          int64
	Length          int64
	Path            string
	Group           string // "int" | "float" | "string" | "bytes"
	EffectiveEndian grammar.Endian
	EndianSource    grammar.EndianSource
	ColorOverride   string
}

// End is the half-open interval's exclusive end.
func (s Span) End() int64 { return s.Offset + s.Length }

// SpanIndex is an ordered-by-offset, disjoint array of spans with an
// O(log n) find(offset) lookup (spec.md §3 "SpanIndex").
type SpanIndex struct {
	spans []Span
}

// NewSpanIndex builds an index over spans, which must already be sorted
// by offset. Find assumes the spans are pairwise disjoint; the
// SpanGenerator sorts its spans but does not remove overlaps between leaves
// that the parser reported as Overlap errors.
func NewSpanIndex(spans []Span) *SpanIndex {
	return &SpanIndex{spans: spans}
}

// Find returns the span covering offset, or (Span{}, false) if offset
// falls in a gap or outside every span.
func (idx *SpanIndex) Find(offset int64) (Span, bool) {
	if idx == nil || len(idx.spans) == 0 {
		return Span{}, false
	}
	i := sort.Search(len(idx.spans), func(i int) bool {
		return idx.spans[i].End() > offset
	})
	if i == len(idx.spans) {
		return Span{}, false
	}
	s := idx.spans[i]
	if offset < s.Offset {
		return Span{}, false
	}
	return s, true
}

// Spans returns the index's underlying span slice in offset order.
func (idx *SpanIndex) Spans() []Span {
	if idx == nil {
		return nil
	}
	return idx.spans
}
