package binparse

import (
	"fmt"

	"github.com/tylerk07/hexgrammar/internal/grammar"
	"github.com/tylerk07/hexgrammar/internal/model"
	"github.com/tylerk07/hexgrammar/internal/reader"
)

// parseStruct lays out child fields sequentially from offset, chaining a
// fresh local scope to sc (the enclosing struct's scope, one level up,
// per the forward-reference rule enforced at lint time). limit propagates
// an enclosing chunk's clamped span to every child (0 means unbounded).
func parseStruct(rdr *reader.Reader, f *grammar.Field, path string, offset int64, sc *scope, tc typeCtx, parentEndian grammar.Endian, color string, limit int64) (*model.ParsedNode, int64) {
	childScope := newScope(sc)
	cur := offset
	children := make([]*model.ParsedNode, 0, len(f.Fields))

	for _, child := range f.Fields {
		childOffset := cur
		switch {
		case child.Offset != nil:
			childOffset = offset + *child.Offset
		case child.Skip != nil:
			childOffset = cur + *child.Skip
		}
		childPath := joinPath(path, child.Name)
		node, consumed := parseField(rdr, child, childPath, childOffset, childScope, tc, &parentEndian, color, false, 0, false, limit)
		children = append(children, node)
		if node.IsLeaf() && node.Field.Error == nil {
			childScope.set(child.Name, node.Field.Value)
		}
		cur = childOffset + consumed
	}

	length := cur - offset
	return &model.ParsedNode{Path: path, Offset: offset, Length: length, Children: children}, length
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return fmt.Sprintf("%s.%s", parent, name)
}

func indexPath(parent string, i int) string {
	return fmt.Sprintf("%s[%d]", parent, i)
}
