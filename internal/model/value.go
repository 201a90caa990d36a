package model

// ValueKind is the closed tag for a decoded ParsedField value (spec.md §9:
// "model it as a tagged variant rather than a language-dynamic value").
type ValueKind int

const (
	ValueNone ValueKind = iota
	ValueInt
	ValueUint
	ValueFloat
	ValueBytes
	ValueString
)

// Value is a sum of {int64, uint64, f64, bytes, string}, matching exactly
// the primitive decode results a leaf field can produce.
type Value struct {
	Kind  ValueKind
	Int   int64
	Uint  uint64
	Float float64
	Bytes []byte
	Str   string
}

func IntValue(v int64) Value    { return Value{Kind: ValueInt, Int: v} }
func UintValue(v uint64) Value  { return Value{Kind: ValueUint, Uint: v} }
func FloatValue(v float64) Value { return Value{Kind: ValueFloat, Float: v} }
func StringValue(v string) Value { return Value{Kind: ValueString, Str: v} }

// BytesValue copies b so the Value owns independent storage; ParsedField
// values of kind bytes must be owned copies so consumers can outlive the
// Reader that produced them (spec.md §3 "Lifecycle").
func BytesValue(b []byte) Value {
	cp := make([]byte, len(b))
	copy(cp, b)
	return Value{Kind: ValueBytes, Bytes: cp}
}

// AsInt64 normalizes any numeric Value kind to an int64, for use as a
// sibling-scope lookup in arithmetic length expressions.
func (v Value) AsInt64() (int64, bool) {
	switch v.Kind {
	case ValueInt:
		return v.Int, true
	case ValueUint:
		return int64(v.Uint), true
	default:
		return 0, false
	}
}
