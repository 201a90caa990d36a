package binparse

import (
	"github.com/tylerk07/hexgrammar/internal/grammar"
	"github.com/tylerk07/hexgrammar/internal/model"
	"github.com/tylerk07/hexgrammar/internal/reader"
)

// typeCtx carries the two recursion invariants that do not change as we
// descend through one record's tree: the type-level endian default (fixed
// for the whole type) and the grammar-root default.
type typeCtx struct {
	typeEndian *grammar.Endian
	rootEndian grammar.Endian
}

// parseField dispatches on f.Kind and returns the parsed node plus the
// number of bytes it consumed from the stream. It never returns nil.
// limit is an absolute exclusive end offset no read may cross (0 means
// unbounded); a chunk payload sets it to its clamped span so that every
// field kind nested inside respects the chunk's declared length, not just
// the file's actual EOF (spec.md §4.4.2 "Chunk").
func parseField(rdr *reader.Reader, f *grammar.Field, path string, offset int64, sc *scope, tc typeCtx, parentEndian *grammar.Endian, inheritedColor string, isChunkPayload bool, forcedLen int64, hasForcedLen bool, limit int64) (*model.ParsedNode, int64) {
	eff, src := grammar.ResolveEndian(f.Endian, tc.typeEndian, parentEndian, tc.rootEndian)
	color := f.Color
	if color == "" {
		color = inheritedColor
	}

	switch f.Kind {
	case grammar.KindPrimitive:
		node := parsePrimitive(rdr, f, path, offset, sc, eff, src, color, forcedLen, hasForcedLen, limit)
		return node, node.Length
	case grammar.KindStruct:
		return parseStruct(rdr, f, path, offset, sc, tc, eff, color, limit)
	case grammar.KindArray:
		return parseArray(rdr, f, path, offset, sc, tc, eff, color, limit)
	case grammar.KindSOA:
		return parseSOA(rdr, f, path, offset, sc, tc, eff, color, limit)
	case grammar.KindChunk:
		return parseChunk(rdr, f, path, offset, sc, tc, eff, color, limit)
	default:
		err := model.NewErrorAt(model.ErrGrammarSemantic, path, offset, "unknown field kind %q", f.Kind)
		return &model.ParsedNode{Path: path, Offset: offset, Length: 0, Error: err}, 0
	}
}
