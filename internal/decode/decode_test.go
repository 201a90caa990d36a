package decode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tylerk07/hexgrammar/internal/decode"
	"github.com/tylerk07/hexgrammar/internal/grammar"
	"github.com/tylerk07/hexgrammar/internal/model"
)

func recordWithFields(discriminator int64, fields map[string]model.Value) *model.ParsedRecord {
	var children []*model.ParsedNode
	headerType := &model.ParsedField{Path: "header.type_raw", Value: model.IntValue(discriminator), Type: grammar.U16}
	children = append(children, &model.ParsedNode{Path: "header.type_raw", Field: headerType})
	for name, v := range fields {
		f := &model.ParsedField{Path: name, Value: v}
		children = append(children, &model.ParsedNode{Path: name, Field: f})
	}
	root := &model.ParsedNode{Path: "", Children: children}
	return &model.ParsedRecord{TypeName: "Rec", Root: root}
}

func TestDecodeExplicitFieldUsesTypeDrivenDefault(t *testing.T) {
	t.Parallel()
	rec := recordWithFields(1, map[string]model.Value{
		"count": model.IntValue(42),
		"blob":  model.BytesValue([]byte{0xDE, 0xAD}),
	})
	g := &grammar.Grammar{Registry: map[string]grammar.RegistryEntry{}}

	dv := decode.Decode(rec, g, "count")
	require.True(t, dv.Success)
	assert.Equal(t, "42", dv.Value)

	dv2 := decode.Decode(rec, g, "blob")
	require.True(t, dv2.Success)
	assert.Equal(t, "dead", dv2.Value)
}

func TestDecodeExplicitFieldNotFound(t *testing.T) {
	t.Parallel()
	rec := recordWithFields(1, map[string]model.Value{})
	g := &grammar.Grammar{Registry: map[string]grammar.RegistryEntry{}}

	dv := decode.Decode(rec, g, "missing")
	assert.False(t, dv.Success)
	require.NotNil(t, dv.Error)
}

func TestDecodeRegistryDrivenHex(t *testing.T) {
	t.Parallel()
	rec := recordWithFields(1, map[string]model.Value{
		"payload": model.BytesValue([]byte{0x01, 0x02, 0xFF}),
	})
	g := &grammar.Grammar{Registry: map[string]grammar.RegistryEntry{
		"0x0001": {Key: "0x0001", Decoder: grammar.DecodeHex},
	}}

	dv := decode.Decode(rec, g, "")
	require.True(t, dv.Success, "error: %v", dv.Error)
	assert.Equal(t, "0102ff", dv.Value)
	assert.Equal(t, "payload", dv.FieldPath)
}

func TestDecodeRegistryUnknownKey(t *testing.T) {
	t.Parallel()
	rec := recordWithFields(0x99, map[string]model.Value{})
	g := &grammar.Grammar{Registry: map[string]grammar.RegistryEntry{}}

	dv := decode.Decode(rec, g, "")
	assert.False(t, dv.Success)
	require.NotNil(t, dv.Error)
}

func TestDecodeRegistryNominatesNamedField(t *testing.T) {
	t.Parallel()
	rec := recordWithFields(1, map[string]model.Value{
		"value_a": model.BytesValue([]byte{0x12, 0x34}),
	})
	big := grammar.Big
	g := &grammar.Grammar{Registry: map[string]grammar.RegistryEntry{
		"0x0001": {Key: "0x0001", Field: "value_a", Decoder: grammar.DecodeU16, Endian: &big},
	}}

	dv := decode.Decode(rec, g, "")
	require.True(t, dv.Success, "error: %v", dv.Error)
	assert.Equal(t, "value_a", dv.FieldPath)
	assert.Equal(t, "4660", dv.Value)
}

func TestDecodeFtmPackedDate(t *testing.T) {
	t.Parallel()
	day, month, year := byte(15), byte(6), uint16(2020)
	raw := []byte{day << 3, month << 1, byte(year), byte(year >> 8)}
	rec := recordWithFields(1, map[string]model.Value{"payload": model.BytesValue(raw)})
	g := &grammar.Grammar{Registry: map[string]grammar.RegistryEntry{
		"0x0001": {Key: "0x0001", Decoder: grammar.DecodeFtmPacked},
	}}

	dv := decode.Decode(rec, g, "")
	require.True(t, dv.Success, "error: %v", dv.Error)
	assert.Equal(t, "2020-06-15", dv.Value)
}

func TestDecodeFtmPackedDateRejectsBadLowBit(t *testing.T) {
	t.Parallel()
	raw := []byte{1 << 3, (6 << 1) | 1, 0xE4, 0x07}
	rec := recordWithFields(1, map[string]model.Value{"payload": model.BytesValue(raw)})
	g := &grammar.Grammar{Registry: map[string]grammar.RegistryEntry{
		"0x0001": {Key: "0x0001", Decoder: grammar.DecodeFtmPacked},
	}}

	dv := decode.Decode(rec, g, "")
	assert.False(t, dv.Success)
}

func TestDecodeDOSDate(t *testing.T) {
	t.Parallel()
	// day=15, month=6, year=2001 (1980+21).
	v := uint16(15) | uint16(6)<<5 | uint16(21)<<9
	raw := []byte{byte(v), byte(v >> 8)}
	rec := recordWithFields(1, map[string]model.Value{"payload": model.BytesValue(raw)})
	g := &grammar.Grammar{Registry: map[string]grammar.RegistryEntry{
		"0x0001": {Key: "0x0001", Decoder: grammar.DecodeDOSDate},
	}}

	dv := decode.Decode(rec, g, "")
	require.True(t, dv.Success, "error: %v", dv.Error)
	assert.Equal(t, "2001-06-15", dv.Value)
}

func TestDecodeUnixSeconds(t *testing.T) {
	t.Parallel()
	raw := []byte{0, 0, 0, 0} // epoch
	rec := recordWithFields(1, map[string]model.Value{"payload": model.BytesValue(raw)})
	g := &grammar.Grammar{Registry: map[string]grammar.RegistryEntry{
		"0x0001": {Key: "0x0001", Decoder: grammar.DecodeUnixSecLE},
	}}

	dv := decode.Decode(rec, g, "")
	require.True(t, dv.Success, "error: %v", dv.Error)
	assert.Equal(t, "1970-01-01T00:00:00Z", dv.Value)
}

func TestDecodeIntSignExtension(t *testing.T) {
	t.Parallel()
	rec := recordWithFields(1, map[string]model.Value{"payload": model.BytesValue([]byte{0xFF})})
	g := &grammar.Grammar{Registry: map[string]grammar.RegistryEntry{
		"0x0001": {Key: "0x0001", Decoder: grammar.DecodeInt, Width: 1, Signed: true},
	}}

	dv := decode.Decode(rec, g, "")
	require.True(t, dv.Success, "error: %v", dv.Error)
	assert.Equal(t, "-1", dv.Value)
}

func TestDecodeBitflags(t *testing.T) {
	t.Parallel()
	rec := recordWithFields(1, map[string]model.Value{"payload": model.BytesValue([]byte{0b00000101})})
	g := &grammar.Grammar{Registry: map[string]grammar.RegistryEntry{
		"0x0001": {Key: "0x0001", Decoder: grammar.DecodeBitflags, Width: 1},
	}}

	dv := decode.Decode(rec, g, "")
	require.True(t, dv.Success, "error: %v", dv.Error)
	assert.Equal(t, "0b00000101", dv.Value)
}

func TestDecodeMissingDiscriminator(t *testing.T) {
	t.Parallel()
	root := &model.ParsedNode{Path: "", Children: nil}
	rec := &model.ParsedRecord{TypeName: "Rec", Root: root}
	g := &grammar.Grammar{Registry: map[string]grammar.RegistryEntry{}}

	dv := decode.Decode(rec, g, "")
	assert.False(t, dv.Success)
	require.NotNil(t, dv.Error)
}
