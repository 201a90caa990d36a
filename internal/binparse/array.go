package binparse

import (
	"github.com/tylerk07/hexgrammar/internal/grammar"
	"github.com/tylerk07/hexgrammar/internal/model"
	"github.com/tylerk07/hexgrammar/internal/reader"
)

// parseArray produces N elements at offsets base + i*stride (spec.md
// §4.4.2 "Array"). limit propagates an enclosing chunk's clamped span to
// every element (0 means unbounded).
func parseArray(rdr *reader.Reader, f *grammar.Field, path string, offset int64, sc *scope, tc typeCtx, parentEndian grammar.Endian, color string, limit int64) (*model.ParsedNode, int64) {
	n, lenErr := resolveLength(f.ArrayLength, sc, path)
	if lenErr != nil {
		return &model.ParsedNode{Path: path, Offset: offset, Length: 0, Error: lenErr}, 0
	}
	if n < 0 {
		err := model.NewError(model.ErrLengthUnresolved, path, "resolved array length %d is negative", n)
		return &model.ParsedNode{Path: path, Offset: offset, Length: 0, Error: err}, 0
	}
	if n > maxArrayElements {
		err := model.NewError(model.ErrLengthExceedsCap, path, "resolved array length %d exceeds the maximum of %d elements", n, maxArrayElements)
		return &model.ParsedNode{Path: path, Offset: offset, Length: 0, Error: err}, 0
	}

	var stride int64
	if f.Stride != nil {
		stride = *f.Stride
	} else {
		sz, ok := fixedSize(f.Element)
		if !ok {
			err := model.NewError(model.ErrStrideUnknown, path, "array stride could not be inferred from a variable-length element")
			return &model.ParsedNode{Path: path, Offset: offset, Length: 0, Error: err}, 0
		}
		stride = sz
	}

	if n == 0 {
		return &model.ParsedNode{Path: path, Offset: offset, Length: 0, Children: []*model.ParsedNode{}}, 0
	}

	children := make([]*model.ParsedNode, 0, n)
	var lastOffset, lastConsumed int64
	for i := int64(0); i < n; i++ {
		elemOffset := offset + i*stride
		elemPath := indexPath(path, int(i))
		node, consumed := parseField(rdr, f.Element, elemPath, elemOffset, sc, tc, &parentEndian, color, false, 0, false, limit)
		children = append(children, node)
		lastOffset, lastConsumed = elemOffset, consumed
	}

	length := lastOffset + lastConsumed - offset
	return &model.ParsedNode{Path: path, Offset: offset, Length: length, Children: children}, length
}
