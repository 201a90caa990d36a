// Package binparse implements the recursive-descent record parser:
// Grammar + Reader + bounds -> ParseResult (spec.md §4.4).
package binparse

import (
	"fmt"
	"sort"
	"time"

	"github.com/tylerk07/hexgrammar/internal/grammar"
	"github.com/tylerk07/hexgrammar/internal/model"
	"github.com/tylerk07/hexgrammar/internal/reader"
)

// Options configures one Parse call. Zero values mean "use the spec's
// default": StartOffset 0, ByteLimit the whole file, MaxRecords unbounded.
type Options struct {
	StartOffset int64
	ByteLimit   int64 // <= 0 means "to end of file"
	MaxRecords  int64 // <= 0 means unbounded
}

// Parse runs g against rdr and returns one immutable ParseResult. It is a
// pure function of its inputs apart from the Reader's file handle.
func Parse(g *grammar.Grammar, rdr *reader.Reader, opts Options) *model.ParseResult {
	result := &model.ParseResult{Format: g.Format, FilePath: rdr.Path(), Timestamp: time.Now()}

	start := opts.StartOffset
	if start < 0 {
		result.Errors = append(result.Errors, model.NewError(model.ErrInvalidOffset, "", "negative start offset %d", start))
		return result
	}

	limit := opts.ByteLimit
	if limit <= 0 {
		limit = rdr.Size()
	}
	end := start + limit
	if end > rdr.Size() {
		end = rdr.Size()
	}

	maxRecords := opts.MaxRecords
	if maxRecords <= 0 {
		maxRecords = 1<<63 - 1
	}

	cursor := start
	var recordCount int64
	for cursor < rdr.Size() && cursor < end && recordCount < maxRecords {
		typeName, discValue, discErr := resolveRecordType(g, rdr, cursor)
		if discErr != nil {
			result.Records = append(result.Records, &model.ParsedRecord{Offset: cursor, Error: discErr})
			result.Errors = append(result.Errors, discErr)
			break
		}

		record, consumed := parseOneRecord(g, rdr, typeName, discValue, cursor)
		result.Records = append(result.Records, record)
		if record.Error != nil {
			result.Errors = append(result.Errors, record.Error)
		}
		if consumed <= 0 {
			// A zero-progress record would spin forever; treat it as fatal
			// for the scan rather than looping.
			break
		}
		cursor += consumed
		recordCount++
	}

	result.TotalBytesParsed = cursor - start
	result.StopOffset = cursor
	result.Errors = append(result.Errors, detectOverlaps(result.Records)...)
	return result
}

// resolveRecordType picks the type for the next record: the grammar's
// sole type when there is no discriminator switch, or the switch's case
// (falling back to its default) otherwise (spec.md §4.4.1).
func resolveRecordType(g *grammar.Grammar, rdr *reader.Reader, cursor int64) (typeName string, discriminator string, err *model.ParseError) {
	if g.Switch == nil {
		sole, ok := g.SoleType()
		if !ok {
			return "", "", model.NewErrorAt(model.ErrDiscriminatorUnresolvable, "", cursor, "grammar declares no discriminator switch and not exactly one type")
		}
		return sole, "", nil
	}

	sw := g.Switch
	header, ok := g.Types[sw.ExprType]
	if !ok {
		return "", "", model.NewErrorAt(model.ErrDiscriminatorUnresolvable, "", cursor, "discriminator header type %q is not declared", sw.ExprType)
	}

	tc := typeCtx{typeEndian: header.Endian, rootEndian: g.Endian}
	sc := newScope(nil)
	cur := cursor
	var discValue model.Value
	found := false
	for _, child := range header.Fields {
		node, consumed := parseField(rdr, child, child.Name, cur, sc, tc, nil, "", false, 0, false, 0)
		if node.IsLeaf() && node.Field.Error == nil {
			sc.set(child.Name, node.Field.Value)
		}
		if child.Name == sw.ExprField {
			if !node.IsLeaf() {
				return "", "", model.NewErrorAt(model.ErrDiscriminatorUnresolvable, sw.ExprType+"."+sw.ExprField, cursor, "discriminator field is not a primitive")
			}
			discValue = node.Field.Value
			found = true
			break
		}
		cur += consumed
		if consumed <= 0 {
			break
		}
	}
	if !found {
		return "", "", model.NewErrorAt(model.ErrDiscriminatorUnresolvable, sw.ExprType+"."+sw.ExprField, cursor, "header does not fit: discriminator field not reached before EOF")
	}

	iv, ok := discValue.AsInt64()
	if !ok {
		return "", "", model.NewErrorAt(model.ErrDiscriminatorUnresolvable, sw.ExprType+"."+sw.ExprField, cursor, "discriminator value is not numeric")
	}
	canonical := fmt.Sprintf("0x%04X", uint64(iv))
	if t, ok := sw.Cases[canonical]; ok {
		return t, canonical, nil
	}
	return sw.Default, canonical, nil
}

// parseOneRecord fully parses a single top-level record of typeName at
// cursor (re-parsing from the start, per spec.md §4.4.1's third step).
func parseOneRecord(g *grammar.Grammar, rdr *reader.Reader, typeName, discriminator string, cursor int64) (*model.ParsedRecord, int64) {
	root, ok := g.Types[typeName]
	if !ok {
		err := model.NewErrorAt(model.ErrDiscriminatorUnresolvable, "", cursor, "type %q is not declared", typeName)
		return &model.ParsedRecord{TypeName: typeName, Offset: cursor, Error: err}, 0
	}

	tc := typeCtx{typeEndian: root.Endian, rootEndian: g.Endian}
	sc := newScope(nil)
	node, consumed := parseField(rdr, root, "", cursor, sc, tc, nil, "", false, 0, false, 0)

	return &model.ParsedRecord{
		TypeName:      typeName,
		Offset:        cursor,
		Size:          consumed,
		Discriminator: discriminator,
		Root:          node,
	}, consumed
}

// detectOverlaps walks the flat, offset-sorted leaf list across all
// records and reports any pair of intersecting intervals (spec.md §4.4.2
// "Overlap detection").
func detectOverlaps(records []*model.ParsedRecord) []*model.ParseError {
	var leaves []*model.ParsedField
	for _, r := range records {
		leaves = append(leaves, r.Leaves()...)
	}
	sort.Slice(leaves, func(i, j int) bool { return leaves[i].Offset < leaves[j].Offset })

	var errs []*model.ParseError
	var active []*model.ParsedField // earlier leaves still extending past the cursor
	for _, cur := range leaves {
		if cur.Length == 0 {
			continue
		}
		kept := active[:0]
		for _, prev := range active {
			if prev.Offset+prev.Length > cur.Offset {
				errs = append(errs, model.NewErrorAt(model.ErrOverlap, "", cur.Offset,
					"Overlap: %s and %s", prev.Path, cur.Path))
				kept = append(kept, prev)
			}
		}
		active = append(kept, cur)
	}
	return errs
}
