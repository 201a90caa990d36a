package binparse

import (
	"github.com/tylerk07/hexgrammar/internal/grammar"
	"github.com/tylerk07/hexgrammar/internal/model"
	"github.com/tylerk07/hexgrammar/internal/reader"
)

// parseChunk reads the length prefix, computes the payload span (clamped
// to EOF and annotated when clamped), and parses the payload within it
// (spec.md §4.4.2 "Chunk"). outerLimit propagates an enclosing chunk's
// clamped span for a chunk nested inside another chunk's payload (0 means
// unbounded).
func parseChunk(rdr *reader.Reader, f *grammar.Field, path string, offset int64, sc *scope, tc typeCtx, parentEndian grammar.Endian, color string, outerLimit int64) (*model.ParsedNode, int64) {
	lt := f.LengthType
	lenSize := int64(lt.Size())
	lenEndian := lt.Endian()

	lenReadSize := clampToLimit(offset, lenSize, outerLimit)
	lenBytes, _ := rdr.Read(offset, lenReadSize)
	lenPath := joinPath(path, "length")
	if int64(len(lenBytes)) < lenSize {
		err := model.NewErrorAt(model.ErrFieldOutOfBounds, path, offset, "chunk length field extends past EOF: need %d bytes, have %d", lenSize, len(lenBytes))
		return &model.ParsedNode{Path: path, Offset: offset, Length: int64(len(lenBytes)), Error: err}, int64(len(lenBytes))
	}

	var declared int64
	switch lenSize {
	case 1:
		declared = int64(lenBytes[0])
	case 2:
		v := decodeNumeric(grammar.U16, lenBytes, lenEndian)
		declared, _ = v.AsInt64()
	case 4:
		v := decodeNumeric(grammar.U32, lenBytes, lenEndian)
		declared, _ = v.AsInt64()
	}

	lenNode := &model.ParsedNode{
		Path: lenPath, Offset: offset, Length: lenSize,
		Field: &model.ParsedField{
			Path: lenPath, Offset: offset, Length: lenSize, Type: grammar.U32,
			Value: model.IntValue(declared), EffectiveEndian: lenEndian, EndianSource: grammar.SourceField, Color: color,
		},
	}

	payloadLen := declared
	if f.LengthIncludesHeader {
		payloadLen = declared - lenSize
		if payloadLen < 0 {
			err := model.NewErrorAt(model.ErrInvalidChunkLength, path, offset, "chunk declared length %d is smaller than its %d-byte header", declared, lenSize)
			return &model.ParsedNode{Path: path, Offset: offset, Length: lenSize, Children: []*model.ParsedNode{lenNode}, Error: err}, lenSize
		}
	}

	payloadOffset := offset + lenSize
	payload := f.Payload

	// payloadLimit binds every field kind nested in the payload, not just
	// a bare bytes field, to the chunk's declared span (spec.md:193 "parse
	// the payload field at the clamped span").
	payloadLimit := payloadOffset + payloadLen
	if outerLimit > 0 && outerLimit < payloadLimit {
		payloadLimit = outerLimit
	}

	var payloadNode *model.ParsedNode
	var payloadConsumed int64
	if payload.Kind == grammar.KindPrimitive && payload.Prim.Type == grammar.Bytes && !payload.Prim.Length.IsSet() {
		payloadNode, payloadConsumed = parseField(rdr, payload, joinPath(path, "payload"), payloadOffset, sc, tc, &parentEndian, color, true, payloadLen, true, payloadLimit)
	} else {
		payloadNode, payloadConsumed = parseField(rdr, payload, joinPath(path, "payload"), payloadOffset, sc, tc, &parentEndian, color, true, 0, false, payloadLimit)
	}

	total := lenSize + payloadConsumed
	return &model.ParsedNode{
		Path: path, Offset: offset, Length: total,
		Children: []*model.ParsedNode{lenNode, payloadNode},
	}, total
}
