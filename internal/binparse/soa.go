package binparse

import (
	"github.com/tylerk07/hexgrammar/internal/grammar"
	"github.com/tylerk07/hexgrammar/internal/model"
	"github.com/tylerk07/hexgrammar/internal/reader"
)

// parseSOA lays out an array of records column-major: every column is a
// contiguous run of N fixed-size primitives, then the columns are
// transposed back into N row-shaped nodes (spec.md §4.4.2 "SOA array").
// limit propagates an enclosing chunk's clamped span to every column cell
// (0 means unbounded).
func parseSOA(rdr *reader.Reader, f *grammar.Field, path string, offset int64, sc *scope, tc typeCtx, parentEndian grammar.Endian, color string, limit int64) (*model.ParsedNode, int64) {
	n, lenErr := resolveLength(f.SOALength, sc, path)
	if lenErr != nil {
		return &model.ParsedNode{Path: path, Offset: offset, Length: 0, Error: lenErr}, 0
	}
	if n < 0 {
		err := model.NewError(model.ErrLengthUnresolved, path, "resolved soa length %d is negative", n)
		return &model.ParsedNode{Path: path, Offset: offset, Length: 0, Error: err}, 0
	}
	if n > maxArrayElements {
		err := model.NewError(model.ErrLengthExceedsCap, path, "resolved soa length %d exceeds the maximum of %d elements", n, maxArrayElements)
		return &model.ParsedNode{Path: path, Offset: offset, Length: 0, Error: err}, 0
	}

	k := len(f.SOAFields)
	sizes := make([]int64, k)
	colBase := make([]int64, k)
	cur := offset
	for j, col := range f.SOAFields {
		sz, ok := fixedSize(col)
		if !ok {
			err := model.NewError(model.ErrGrammarSemantic, path, "soa column %q is not a fixed-size primitive", col.Name)
			return &model.ParsedNode{Path: path, Offset: offset, Length: 0, Error: err}, 0
		}
		sizes[j] = sz
		colBase[j] = cur
		cur += n * sz
	}

	if n == 0 {
		return &model.ParsedNode{Path: path, Offset: offset, Length: 0, Children: []*model.ParsedNode{}}, 0
	}

	cells := make([][]*model.ParsedNode, n)
	for i := range cells {
		cells[i] = make([]*model.ParsedNode, k)
	}
	for j, col := range f.SOAFields {
		for i := int64(0); i < n; i++ {
			elemOffset := colBase[j] + i*sizes[j]
			elemPath := joinPath(indexPath(path, int(i)), col.Name)
			node, _ := parseField(rdr, col, elemPath, elemOffset, sc, tc, &parentEndian, color, false, 0, false, limit)
			cells[i][j] = node
		}
	}

	rows := make([]*model.ParsedNode, n)
	for i := int64(0); i < n; i++ {
		rowOffset := cells[i][0].Offset
		var rowLen int64
		for j := 0; j < k; j++ {
			if cells[i][j].Offset < rowOffset {
				rowOffset = cells[i][j].Offset
			}
			rowLen += cells[i][j].Length
		}
		rows[i] = &model.ParsedNode{
			Path: indexPath(path, int(i)), Offset: rowOffset, Length: rowLen, Children: cells[i],
		}
	}

	var totalLen int64
	if k > 0 {
		totalLen = colBase[k-1] + n*sizes[k-1] - offset
	}
	return &model.ParsedNode{Path: path, Offset: offset, Length: totalLen, Children: rows}, totalLen
}
