// Package grammar defines the immutable grammar AST and the linter that
// validates a declarative YAML document into it.
package grammar

// PrimKind is the closed set of primitive field types.
type PrimKind string

const (
	U8     PrimKind = "u8"
	U16    PrimKind = "u16"
	U32    PrimKind = "u32"
	U64    PrimKind = "u64"
	I8     PrimKind = "i8"
	I16    PrimKind = "i16"
	I32    PrimKind = "i32"
	I64    PrimKind = "i64"
	F32    PrimKind = "f32"
	F64    PrimKind = "f64"
	Bytes  PrimKind = "bytes"
	String PrimKind = "string"
)

var numSizes = map[PrimKind]int{
	U8: 1, U16: 2, U32: 4, U64: 8,
	I8: 1, I16: 2, I32: 4, I64: 8,
	F32: 4, F64: 8,
}

// Size returns the fixed byte size of fixed-width primitives, or 0 if the
// kind has a variable size (bytes/string).
func (k PrimKind) Size() int {
	return numSizes[k]
}

func (k PrimKind) Signed() bool {
	switch k {
	case I8, I16, I32, I64:
		return true
	}
	return false
}

func (k PrimKind) IsFloat() bool {
	return k == F32 || k == F64
}

func (k PrimKind) IsNumeric() bool {
	_, ok := numSizes[k]
	return ok
}

// Group collapses a primitive kind into the cosmetic span group used for
// hex-viewer styling (spec.md §4.5).
func (k PrimKind) Group() string {
	switch k {
	case U8, U16, U32, U64, I8, I16, I32, I64:
		return "int"
	case F32, F64:
		return "float"
	case String:
		return "string"
	case Bytes:
		return "bytes"
	default:
		return "bytes"
	}
}

// Endian is little or big endian.
type Endian string

const (
	Little Endian = "little"
	Big    Endian = "big"
)

// EndianSource records which layer resolved a field's effective endianness.
type EndianSource string

const (
	SourceField   EndianSource = "field"
	SourceType    EndianSource = "type"
	SourceParent  EndianSource = "parent"
	SourceRoot    EndianSource = "root"
	SourceDefault EndianSource = "default"
)

// FieldKind is the closed set of field shapes (spec.md §9: represent as a
// tagged variant, not a class hierarchy).
type FieldKind string

const (
	KindPrimitive FieldKind = "primitive"
	KindStruct    FieldKind = "struct"
	KindArray     FieldKind = "array"
	KindSOA       FieldKind = "soa"
	KindChunk     FieldKind = "chunk"
)

// LengthKind distinguishes the four ways a length may be specified
// (spec.md §3 "Length").
type LengthKind int

const (
	LengthNone LengthKind = iota
	LengthLiteral
	LengthRef
	LengthExpr
	LengthNullTerminated
)

// Length is a resolved-at-lint-time description of how to compute a
// dynamic size at parse time.
type Length struct {
	Kind      LengthKind
	Literal   int64
	Ref       string
	Expr      string
	MaxLength int64 // for LengthNullTerminated
}

func (l Length) IsSet() bool { return l.Kind != LengthNone }

// ChunkLengthType is the closed set of length-field encodings a chunk's
// length prefix may use.
type ChunkLengthType string

const (
	ChunkU8    ChunkLengthType = "u8"
	ChunkU16LE ChunkLengthType = "u16 LE"
	ChunkU16BE ChunkLengthType = "u16 BE"
	ChunkU32LE ChunkLengthType = "u32 LE"
	ChunkU32BE ChunkLengthType = "u32 BE"
)

// Size is the byte width of the chunk's length field itself.
func (c ChunkLengthType) Size() int {
	switch c {
	case ChunkU8:
		return 1
	case ChunkU16LE, ChunkU16BE:
		return 2
	case ChunkU32LE, ChunkU32BE:
		return 4
	}
	return 0
}

func (c ChunkLengthType) Endian() Endian {
	switch c {
	case ChunkU16BE, ChunkU32BE:
		return Big
	default:
		return Little
	}
}

// Primitive holds the fields specific to kind==KindPrimitive.
type Primitive struct {
	Type           PrimKind
	Length         Length // for bytes/string
	Encoding       string // ascii, utf-8, utf-16le, utf-16be (string only)
	NullTerminated bool
}

// Field is one schema-declared tree node: a tagged union over Kind.
// Only the members relevant to Kind are populated; the linter never
// produces a Field whose Kind-specific members are inconsistent.
type Field struct {
	Name   string
	Kind   FieldKind
	Offset *int64 // absolute offset from enclosing container base
	Skip   *int64 // relative skip from end of previous sibling
	Endian *Endian
	Color  string // normalized; "" means unset (inherit)

	// KindPrimitive
	Prim *Primitive

	// KindStruct
	Fields []*Field

	// KindArray
	ArrayLength Length
	Element     *Field
	Stride      *int64

	// KindSOA
	SOAFields   []*Field
	SOALength   Length

	// KindChunk
	LengthType           ChunkLengthType
	LengthIncludesHeader bool
	Payload              *Field
}

// RecordSwitch is the discriminated-union selector (spec.md §3, §4.4.1).
type RecordSwitch struct {
	ExprType  string // e.g. "Header"
	ExprField string // e.g. "type_id"
	Cases     map[string]string // canonical "0x%04X" key -> type name
	Default   string
}

// RegistryEntry describes how to render one discriminator's payload
// (spec.md §4.7).
type RegistryEntry struct {
	Key         string // canonical "0x%04X"
	DisplayName string
	Decoder     DecoderKind
	Field       string // field name to decode; "" means default "payload"
	Encoding    string // for DecodeString
	Endian      *Endian
	Width       int  // for DecodeInt / DecodeBitflags
	Signed      bool // for DecodeInt
}

// DecoderKind is the closed set of registry decoders (spec.md §4.7).
type DecoderKind string

const (
	DecodeNone       DecoderKind = "none"
	DecodeString     DecoderKind = "string"
	DecodeU16        DecoderKind = "u16"
	DecodeU32        DecoderKind = "u32"
	DecodeHex        DecoderKind = "hex"
	DecodeFtmPacked  DecoderKind = "ftm_packed_date"
	DecodeInt        DecoderKind = "int"
	DecodeBitflags   DecoderKind = "bitflags"
	DecodeDOSDate    DecoderKind = "dos_date"
	DecodeUnixSecLE  DecoderKind = "unix_seconds"
)

// Grammar is the validated, immutable top-level document (spec.md §3
// "Record Grammar"). It is produced only by Lint and never mutated.
type Grammar struct {
	Format   string
	Endian   Endian
	Repeat   string // currently only "until_eof"
	Switch   *RecordSwitch
	TypeOrder []string
	Types    map[string]*Field // name -> struct-shaped (or alias-shaped) type
	RegistryOrder []string
	Registry map[string]RegistryEntry // canonical key -> entry
}

// SoleType returns the one declared type name when there is no
// discriminator switch (see SPEC_FULL.md §4.4 Non-discriminated grammars).
func (g *Grammar) SoleType() (string, bool) {
	if g.Switch != nil {
		return "", false
	}
	if len(g.TypeOrder) != 1 {
		return "", false
	}
	return g.TypeOrder[0], true
}
