// Package decode implements the Registry Decoder: ParsedRecord + Grammar
// -> a human-readable DecodedValue for a record's discriminated payload
// (spec.md §4.7).
package decode

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"

	"github.com/tylerk07/hexgrammar/internal/grammar"
	"github.com/tylerk07/hexgrammar/internal/model"
)

// DecodedValue is the decoder's single output value.
type DecodedValue struct {
	Success     bool
	Value       string
	DecoderType grammar.DecoderKind
	FieldPath   string
	Error       *model.ParseError
}

// conventional path a discriminator is read from when no explicit field
// name is requested.
const discriminatorPath = "header.type_raw"

// Decode produces a DecodedValue for record. When fieldName is empty, the
// value of the record's discriminatorPath leaf, formatted as "0x%04X",
// selects a registry entry (ParsedRecord.Discriminator is not consulted);
// otherwise the named field is decoded with a type-driven default decoder.
func Decode(record *model.ParsedRecord, g *grammar.Grammar, fieldName string) *DecodedValue {
	if fieldName != "" {
		leaf := findLeaf(record, fieldName)
		if leaf == nil {
			return fail(model.ErrDecodeFailure, fieldName, "field %q not found in record", fieldName)
		}
		return &DecodedValue{Success: true, Value: defaultFormat(leaf), DecoderType: grammar.DecodeNone, FieldPath: fieldName}
	}

	disc := findLeaf(record, discriminatorPath)
	if disc == nil {
		return fail(model.ErrDecodeFailure, discriminatorPath, "record has no discriminator at %q", discriminatorPath)
	}
	iv, ok := disc.Value.AsInt64()
	if !ok {
		return fail(model.ErrDecodeFailure, discriminatorPath, "discriminator at %q is not numeric", discriminatorPath)
	}
	key := fmt.Sprintf("0x%04X", uint64(iv))
	entry, ok := g.Registry[key]
	if !ok {
		return fail(model.ErrDecodeFailure, discriminatorPath, "unknown registry key %q", key)
	}

	targetField := entry.Field
	if targetField == "" {
		targetField = "payload"
	}
	leaf := findLeaf(record, targetField)
	if leaf == nil {
		return fail(model.ErrDecodeFailure, targetField, "field %q not found in record", targetField)
	}
	return decodeWith(leaf, entry, targetField)
}

func findLeaf(record *model.ParsedRecord, path string) *model.ParsedField {
	for _, leaf := range record.Leaves() {
		if leaf.Path == path || strings.HasSuffix(leaf.Path, "."+path) {
			return leaf
		}
	}
	return nil
}

func fail(kind model.ErrorKind, path, format string, args ...any) *DecodedValue {
	return &DecodedValue{Error: model.NewError(kind, path, format, args...), FieldPath: path}
}

// defaultFormat is the type-driven default decoder used when the caller
// names an exact field: integers -> decimal, bytes -> hex, string -> itself.
func defaultFormat(f *model.ParsedField) string {
	switch f.Value.Kind {
	case model.ValueInt:
		return strconv.FormatInt(f.Value.Int, 10)
	case model.ValueUint:
		return strconv.FormatUint(f.Value.Uint, 10)
	case model.ValueFloat:
		return strconv.FormatFloat(f.Value.Float, 'g', -1, 64)
	case model.ValueBytes:
		return hex.EncodeToString(f.Value.Bytes)
	case model.ValueString:
		return f.Value.Str
	default:
		return ""
	}
}

func rawBytes(f *model.ParsedField) []byte {
	if f.Value.Kind == model.ValueBytes {
		return f.Value.Bytes
	}
	return []byte(f.Value.Str)
}

func decodeWith(f *model.ParsedField, entry grammar.RegistryEntry, path string) *DecodedValue {
	switch entry.Decoder {
	case grammar.DecodeNone:
		return &DecodedValue{Success: true, Value: defaultFormat(f), DecoderType: entry.Decoder, FieldPath: path}

	case grammar.DecodeString:
		return decodeStringEntry(f, entry, path)

	case grammar.DecodeU16:
		return decodeUint(f, entry, path, 2)

	case grammar.DecodeU32:
		return decodeUint(f, entry, path, 4)

	case grammar.DecodeHex:
		return &DecodedValue{Success: true, Value: hex.EncodeToString(rawBytes(f)), DecoderType: entry.Decoder, FieldPath: path}

	case grammar.DecodeFtmPacked:
		return decodeFtmPacked(f, path)

	case grammar.DecodeDOSDate:
		return decodeDOSDate(f, path)

	case grammar.DecodeUnixSecLE:
		return decodeUnixSeconds(f, path)

	case grammar.DecodeInt:
		return decodeInt(f, entry, path)

	case grammar.DecodeBitflags:
		return decodeBitflags(f, entry, path)

	default:
		return fail(model.ErrDecodeFailure, path, "unsupported decoder %q", entry.Decoder)
	}
}

func decodeStringEntry(f *model.ParsedField, entry grammar.RegistryEntry, path string) *DecodedValue {
	if f.Value.Kind == model.ValueString {
		return &DecodedValue{Success: true, Value: f.Value.Str, DecoderType: grammar.DecodeString, FieldPath: path}
	}
	raw := rawBytes(f)
	var s string
	switch entry.Encoding {
	case "utf-16le":
		out, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(raw)
		if err != nil {
			return fail(model.ErrDecodeFailure, path, "invalid utf-16le bytes")
		}
		s = string(out)
	case "utf-16be":
		out, err := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder().Bytes(raw)
		if err != nil {
			return fail(model.ErrDecodeFailure, path, "invalid utf-16be bytes")
		}
		s = string(out)
	default:
		s = string(raw)
	}
	return &DecodedValue{Success: true, Value: s, DecoderType: grammar.DecodeString, FieldPath: path}
}

func byteOrderOf(e *grammar.Endian) binary.ByteOrder {
	if e != nil && *e == grammar.Big {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func decodeUint(f *model.ParsedField, entry grammar.RegistryEntry, path string, width int) *DecodedValue {
	raw := rawBytes(f)
	if len(raw) < width {
		return fail(model.ErrDecodeFailure, path, "need %d bytes, have %d", width, len(raw))
	}
	order := byteOrderOf(entry.Endian)
	var v uint64
	if width == 2 {
		v = uint64(order.Uint16(raw))
	} else {
		v = uint64(order.Uint32(raw))
	}
	return &DecodedValue{Success: true, Value: strconv.FormatUint(v, 10), DecoderType: entry.Decoder, FieldPath: path}
}

func decodeFtmPacked(f *model.ParsedField, path string) *DecodedValue {
	raw := rawBytes(f)
	if len(raw) < 4 {
		return fail(model.ErrDecodeFailure, path, "ftm_packed_date needs 4 bytes, have %d", len(raw))
	}
	day := raw[0] >> 3
	if raw[1]&1 != 0 {
		return fail(model.ErrDecodeFailure, path, "ftm_packed_date: byte1 low bit must be zero")
	}
	month := raw[1] >> 1
	year := binary.LittleEndian.Uint16(raw[2:4])
	if month < 1 || month > 12 {
		return fail(model.ErrDecodeFailure, path, "ftm_packed_date: month %d out of range", month)
	}
	if day < 1 || day > 31 {
		return fail(model.ErrDecodeFailure, path, "ftm_packed_date: day %d out of range", day)
	}
	if year == 0 {
		return fail(model.ErrDecodeFailure, path, "ftm_packed_date: year must be > 0")
	}
	return &DecodedValue{Success: true, Value: fmt.Sprintf("%04d-%02d-%02d", year, month, day), DecoderType: grammar.DecodeFtmPacked, FieldPath: path}
}

// decodeDOSDate reads an MS-DOS packed date (2 bytes, little-endian):
// bits 0-4 day, bits 5-8 month, bits 9-15 years since 1980.
func decodeDOSDate(f *model.ParsedField, path string) *DecodedValue {
	raw := rawBytes(f)
	if len(raw) < 2 {
		return fail(model.ErrDecodeFailure, path, "dos_date needs 2 bytes, have %d", len(raw))
	}
	v := binary.LittleEndian.Uint16(raw)
	day := v & 0x1F
	month := (v >> 5) & 0x0F
	year := 1980 + (v >> 9)
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return fail(model.ErrDecodeFailure, path, "dos_date: invalid date %d-%d-%d", year, month, day)
	}
	return &DecodedValue{Success: true, Value: fmt.Sprintf("%04d-%02d-%02d", year, month, day), DecoderType: grammar.DecodeDOSDate, FieldPath: path}
}

// decodeUnixSeconds reads a 4-byte little-endian u32 count of seconds
// since the Unix epoch.
func decodeUnixSeconds(f *model.ParsedField, path string) *DecodedValue {
	raw := rawBytes(f)
	if len(raw) < 4 {
		return fail(model.ErrDecodeFailure, path, "unix_seconds needs 4 bytes, have %d", len(raw))
	}
	secs := binary.LittleEndian.Uint32(raw)
	t := time.Unix(int64(secs), 0).UTC()
	return &DecodedValue{Success: true, Value: t.Format(time.RFC3339), DecoderType: grammar.DecodeUnixSecLE, FieldPath: path}
}

func decodeInt(f *model.ParsedField, entry grammar.RegistryEntry, path string) *DecodedValue {
	raw := rawBytes(f)
	if len(raw) < entry.Width {
		return fail(model.ErrDecodeFailure, path, "int(%d) needs %d bytes, have %d", entry.Width, entry.Width, len(raw))
	}
	order := byteOrderOf(entry.Endian)
	buf := make([]byte, 8)
	if order == binary.BigEndian {
		copy(buf[8-entry.Width:], raw[:entry.Width])
	} else {
		copy(buf[:entry.Width], raw[:entry.Width])
	}
	u := order.Uint64(buf)
	if !entry.Signed {
		return &DecodedValue{Success: true, Value: strconv.FormatUint(u, 10), DecoderType: grammar.DecodeInt, FieldPath: path}
	}
	shift := uint(64 - entry.Width*8)
	signed := int64(u<<shift) >> shift
	return &DecodedValue{Success: true, Value: strconv.FormatInt(signed, 10), DecoderType: grammar.DecodeInt, FieldPath: path}
}

func decodeBitflags(f *model.ParsedField, entry grammar.RegistryEntry, path string) *DecodedValue {
	raw := rawBytes(f)
	if len(raw) < entry.Width {
		return fail(model.ErrDecodeFailure, path, "bitflags(%d) needs %d bytes, have %d", entry.Width, entry.Width, len(raw))
	}
	order := byteOrderOf(entry.Endian)
	var v uint64
	switch entry.Width {
	case 1:
		v = uint64(raw[0])
	case 2:
		v = uint64(order.Uint16(raw))
	case 4:
		v = uint64(order.Uint32(raw))
	case 8:
		v = order.Uint64(raw)
	default:
		for i := 0; i < entry.Width; i++ {
			v = v<<8 | uint64(raw[i])
		}
	}
	return &DecodedValue{Success: true, Value: fmt.Sprintf("0b%0*b", entry.Width*8, v), DecoderType: grammar.DecodeBitflags, FieldPath: path}
}
