package binparse

import (
	"bytes"

	"golang.org/x/text/encoding/unicode"

	"github.com/tylerk07/hexgrammar/internal/evalexpr"
	"github.com/tylerk07/hexgrammar/internal/grammar"
	"github.com/tylerk07/hexgrammar/internal/model"
	"github.com/tylerk07/hexgrammar/internal/reader"
)

// decodeString turns raw bytes into a string under the declared encoding.
// Decode errors are replaced, never propagated, so record layout stays
// aligned (spec.md §4.4.2).
func decodeString(raw []byte, encoding string) string {
	switch encoding {
	case "utf-16le":
		dec := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
		out, err := dec.Bytes(raw)
		if err != nil {
			return string(bytes.ToValidUTF8(raw, []byte{0xEF, 0xBF, 0xBD}))
		}
		return string(out)
	case "utf-16be":
		dec := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
		out, err := dec.Bytes(raw)
		if err != nil {
			return string(bytes.ToValidUTF8(raw, []byte{0xEF, 0xBF, 0xBD}))
		}
		return string(out)
	default: // ascii, utf-8
		return string(bytes.ToValidUTF8(raw, []byte{0xEF, 0xBF, 0xBD}))
	}
}

// resolveLength computes a dynamic length value for bytes/string/array
// fields against the current scope (spec.md §3 Length, §4.2).
func resolveLength(ln grammar.Length, sc *scope, path string) (int64, *model.ParseError) {
	switch ln.Kind {
	case grammar.LengthLiteral:
		return ln.Literal, nil
	case grammar.LengthRef:
		v, ok := sc.lookup(ln.Ref)
		if !ok {
			return 0, model.NewError(model.ErrLengthUnresolved, path, "length reference %q could not be resolved", ln.Ref)
		}
		n, ok := v.AsInt64()
		if !ok {
			return 0, model.NewError(model.ErrLengthUnresolved, path, "length reference %q is not a numeric value", ln.Ref)
		}
		return n, nil
	case grammar.LengthExpr:
		n, err := evalexpr.Eval(ln.Expr, sc.intLookup)
		if err != nil {
			return 0, model.NewError(model.ErrLengthUnresolved, path, "length expression %q: %v", ln.Expr, err)
		}
		return n, nil
	default:
		return 0, model.NewError(model.ErrLengthUnresolved, path, "length was not specified")
	}
}

const (
	maxArrayElements = 10000
	maxDynamicLength = 1000000
)

// clampToLimit caps n to the budget remaining before limit, an absolute
// exclusive end offset (0 means unbounded, e.g. outside any chunk payload).
func clampToLimit(offset, n, limit int64) int64 {
	if limit <= 0 {
		return n
	}
	avail := limit - offset
	if avail < 0 {
		avail = 0
	}
	if avail < n {
		return avail
	}
	return n
}

// parsePrimitive reads one fixed- or dynamic-length leaf field. limit caps
// the read at a chunk payload's declared span when non-zero, in addition
// to the file's own EOF (spec.md §4.4.2 "Chunk").
func parsePrimitive(rdr *reader.Reader, f *grammar.Field, path string, offset int64, sc *scope, eff grammar.Endian, src grammar.EndianSource, color string, forcedLen int64, hasForcedLen bool, limit int64) *model.ParsedNode {
	prim := f.Prim

	if prim.Type.IsNumeric() {
		w := int64(prim.Type.Size())
		readW := clampToLimit(offset, w, limit)
		data, _ := rdr.Read(offset, readW)
		if int64(len(data)) < w {
			err := model.NewErrorAt(model.ErrFieldOutOfBounds, path, offset, "field extends past EOF: need %d bytes, have %d", w, len(data))
			return leafNode(path, offset, int64(len(data)), prim.Type, model.Value{}, err, eff, src, color, "")
		}
		val := decodeNumeric(prim.Type, data, eff)
		return leafNode(path, offset, w, prim.Type, val, nil, eff, src, color, "")
	}

	if prim.NullTerminated {
		maxLen := prim.Length.MaxLength
		readLen := clampToLimit(offset, maxLen, limit)
		data, _ := rdr.Read(offset, readLen)
		note := ""
		if int64(len(data)) < maxLen {
			// clamped to EOF or to a chunk's declared span, not an error:
			// spec.md's clamp rule is a non-fatal annotation, not a
			// per-field failure.
			note = "truncated at EOF"
		}
		raw := data
		if i := bytes.IndexByte(raw, 0); i >= 0 {
			raw = raw[:i]
		}
		val := model.StringValue(decodeString(raw, prim.Encoding))
		return leafNode(path, offset, int64(len(data)), prim.Type, val, nil, eff, src, color, note)
	}

	var n int64
	var lenErr *model.ParseError
	if hasForcedLen {
		n = forcedLen
	} else {
		n, lenErr = resolveLength(prim.Length, sc, path)
	}
	if lenErr != nil {
		return leafNode(path, offset, 0, prim.Type, model.Value{}, lenErr, eff, src, color, "")
	}
	if n < 0 {
		err := model.NewError(model.ErrLengthUnresolved, path, "resolved length %d is negative", n)
		return leafNode(path, offset, 0, prim.Type, model.Value{}, err, eff, src, color, "")
	}
	if n > maxDynamicLength {
		err := model.NewError(model.ErrLengthExceedsCap, path, "resolved length %d exceeds the maximum of %d", n, maxDynamicLength)
		return leafNode(path, offset, 0, prim.Type, model.Value{}, err, eff, src, color, "")
	}

	readLen := clampToLimit(offset, n, limit)
	data, _ := rdr.Read(offset, readLen)
	note := ""
	if int64(len(data)) < n {
		// clamped to EOF or to a chunk's declared span: see above.
		note = "truncated at EOF"
	}

	var val model.Value
	if prim.Type == grammar.String {
		val = model.StringValue(decodeString(data, prim.Encoding))
	} else {
		val = model.BytesValue(data)
	}
	return leafNode(path, offset, int64(len(data)), prim.Type, val, nil, eff, src, color, note)
}

func leafNode(path string, offset, length int64, typ grammar.PrimKind, val model.Value, err *model.ParseError, eff grammar.Endian, src grammar.EndianSource, color, note string) *model.ParsedNode {
	return &model.ParsedNode{
		Path:   path,
		Offset: offset,
		Length: length,
		Note:   note,
		Error:  err,
		Field: &model.ParsedField{
			Path: path, Offset: offset, Length: length, Type: typ,
			Value: val, Error: err, EffectiveEndian: eff, EndianSource: src, Color: color,
		},
	}
}
