package binparse

import "github.com/tylerk07/hexgrammar/internal/grammar"

// fixedSize computes a field's byte size when it is statically determined
// by the grammar alone (independent of any parse-time scope). Used to
// infer array stride when the grammar omits an explicit one.
func fixedSize(f *grammar.Field) (int64, bool) {
	switch f.Kind {
	case grammar.KindPrimitive:
		p := f.Prim
		if p.Type.IsNumeric() {
			return int64(p.Type.Size()), true
		}
		if p.NullTerminated {
			return p.Length.MaxLength, true
		}
		if p.Length.Kind == grammar.LengthLiteral {
			return p.Length.Literal, true
		}
		return 0, false
	case grammar.KindStruct:
		var total int64
		for _, child := range f.Fields {
			if child.Offset != nil || child.Skip != nil {
				return 0, false
			}
			sz, ok := fixedSize(child)
			if !ok {
				return 0, false
			}
			total += sz
		}
		return total, true
	case grammar.KindArray:
		if f.ArrayLength.Kind != grammar.LengthLiteral {
			return 0, false
		}
		var stride int64
		if f.Stride != nil {
			stride = *f.Stride
		} else {
			sz, ok := fixedSize(f.Element)
			if !ok {
				return 0, false
			}
			stride = sz
		}
		return f.ArrayLength.Literal * stride, true
	case grammar.KindSOA:
		if f.SOALength.Kind != grammar.LengthLiteral {
			return 0, false
		}
		var colTotal int64
		for _, col := range f.SOAFields {
			sz, ok := fixedSize(col)
			if !ok {
				return 0, false
			}
			colTotal += sz
		}
		return f.SOALength.Literal * colTotal, true
	default:
		return 0, false
	}
}
