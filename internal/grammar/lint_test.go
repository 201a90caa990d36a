package grammar_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tylerk07/hexgrammar/internal/grammar"
)

const validGrammar = `
format: record_stream
endian: little
types:
  Header:
    type: struct
    fields:
      - name: type_raw
        type: u16
      - name: length
        type: u16
  Payload:
    type: struct
    fields:
      - name: header
        type: Header
      - name: body
        type: bytes
        length: 4
record:
  switch:
    expr: Header.type_raw
    cases:
      "0x0001": Payload
    default: Payload
registry:
  "0x0001":
    name: text record
    decode:
      as: hex
`

func TestLintValidGrammar(t *testing.T) {
	t.Parallel()
	result := grammar.Lint(validGrammar)
	require.True(t, result.Success, "errors: %v", result.Errors)
	require.NotNil(t, result.Grammar)
	assert.Equal(t, []string{"Header", "Payload"}, result.Grammar.TypeOrder)
	assert.Contains(t, result.Grammar.Registry, "0x0001")
	assert.Equal(t, grammar.DecodeHex, result.Grammar.Registry["0x0001"].Decoder)
}

func TestLintRejectsBadFormat(t *testing.T) {
	t.Parallel()
	result := grammar.Lint(`format: something_else`)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Errors)
}

func TestLintRejectsForwardReference(t *testing.T) {
	t.Parallel()
	text := `
format: record_stream
types:
  Rec:
    type: struct
    fields:
      - name: body
        type: bytes
        length: size
      - name: size
        type: u16
`
	result := grammar.Lint(text)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Errors)
}

func TestLintRejectsOffsetAndSkipTogether(t *testing.T) {
	t.Parallel()
	text := `
format: record_stream
types:
  Rec:
    type: struct
    fields:
      - name: a
        type: u8
        offset: 0
        skip: 1
`
	result := grammar.Lint(text)
	assert.False(t, result.Success)
}

func TestLintRejectsUnknownTypeReference(t *testing.T) {
	t.Parallel()
	text := `
format: record_stream
types:
  Rec:
    type: struct
    fields:
      - name: a
        type: DoesNotExist
`
	result := grammar.Lint(text)
	assert.False(t, result.Success)
}

func TestLintRejectsTypeCycle(t *testing.T) {
	t.Parallel()
	text := `
format: record_stream
types:
  A:
    type: B
  B:
    type: A
  Rec:
    type: struct
    fields:
      - name: a
        type: A
`
	result := grammar.Lint(text)
	assert.False(t, result.Success)
}

func TestLintWarnsUnreferencedType(t *testing.T) {
	t.Parallel()
	text := `
format: record_stream
types:
  Header:
    type: struct
    fields:
      - name: type_raw
        type: u16
  Unused:
    type: struct
    fields:
      - name: x
        type: u8
record:
  switch:
    expr: Header.type_raw
    cases:
      "0x0001": Header
    default: Header
`
	result := grammar.Lint(text)
	require.True(t, result.Success, "errors: %v", result.Errors)
	assert.NotEmpty(t, result.Warnings)
}

func TestLintArrayOfSugar(t *testing.T) {
	t.Parallel()
	text := `
format: record_stream
types:
  Rec:
    type: struct
    fields:
      - name: items
        type: array of u8
        length: 4
`
	result := grammar.Lint(text)
	require.True(t, result.Success, "errors: %v", result.Errors)
	rec := result.Grammar.Types["Rec"]
	items := rec.Fields[0]
	assert.Equal(t, grammar.KindArray, items.Kind)
	assert.Equal(t, grammar.U8, items.Element.Prim.Type)
}

func TestLintSOARequiresFixedSizeFields(t *testing.T) {
	t.Parallel()
	text := `
format: record_stream
types:
  Rec:
    type: struct
    fields:
      - name: cols
        type: array
        length: 4
        layout: soa
        fields:
          - name: id
            type: u16
          - name: flag
            type: bytes
`
	result := grammar.Lint(text)
	assert.False(t, result.Success)
}

func TestLintChunkDefaultsPayloadToBytes(t *testing.T) {
	t.Parallel()
	text := `
format: record_stream
types:
  Rec:
    type: struct
    fields:
      - name: blob
        type: chunk
        length_type: u16 LE
`
	result := grammar.Lint(text)
	require.True(t, result.Success, "errors: %v", result.Errors)
	blob := result.Grammar.Types["Rec"].Fields[0]
	assert.Equal(t, grammar.KindChunk, blob.Kind)
	assert.Equal(t, grammar.Bytes, blob.Payload.Prim.Type)
}

func TestCanonicalDiscriminatorFormatting(t *testing.T) {
	t.Parallel()
	text := `
format: record_stream
types:
  Header:
    type: struct
    fields:
      - name: type_raw
        type: u16
record:
  switch:
    expr: Header.type_raw
    cases:
      "1": Header
    default: Header
`
	result := grammar.Lint(text)
	require.True(t, result.Success, "errors: %v", result.Errors)
	_, ok := result.Grammar.Switch.Cases["0x0001"]
	assert.True(t, ok)
}

func TestLintAcceptsExplicitLengthField(t *testing.T) {
	t.Parallel()
	text := `
format: record_stream
types:
  Rec:
    type: struct
    fields:
      - name: size
        type: u16
      - name: body
        type: bytes
        length_field: size
`
	result := grammar.Lint(text)
	require.True(t, result.Success, "errors: %v", result.Errors)
	body := result.Grammar.Types["Rec"].Fields[1]
	assert.Equal(t, grammar.LengthRef, body.Prim.Length.Kind)
	assert.Equal(t, "size", body.Prim.Length.Ref)
}

func TestLintAcceptsExplicitLengthExpr(t *testing.T) {
	t.Parallel()
	text := `
format: record_stream
types:
  Rec:
    type: struct
    fields:
      - name: size
        type: u16
      - name: body
        type: bytes
        length_expr: "size - 4"
`
	result := grammar.Lint(text)
	require.True(t, result.Success, "errors: %v", result.Errors)
	body := result.Grammar.Types["Rec"].Fields[1]
	assert.Equal(t, grammar.LengthExpr, body.Prim.Length.Kind)
	assert.Equal(t, "size - 4", body.Prim.Length.Expr)
}

func TestLintRejectsForwardReferenceInLengthExpr(t *testing.T) {
	t.Parallel()
	text := `
format: record_stream
types:
  Rec:
    type: struct
    fields:
      - name: body
        type: bytes
        length_expr: "size - 4"
      - name: size
        type: u16
`
	result := grammar.Lint(text)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Errors)
}

func TestSoleType(t *testing.T) {
	t.Parallel()
	text := `
format: record_stream
types:
  Only:
    type: struct
    fields:
      - name: a
        type: u8
`
	result := grammar.Lint(text)
	require.True(t, result.Success, "errors: %v", result.Errors)
	name, ok := result.Grammar.SoleType()
	assert.True(t, ok)
	assert.Equal(t, "Only", name)
}
