package binparse

import (
	"encoding/binary"
	"math"

	"github.com/tylerk07/hexgrammar/internal/grammar"
	"github.com/tylerk07/hexgrammar/internal/model"
)

// byteOrder returns the stdlib ByteOrder matching the resolved endianness.
func byteOrder(e grammar.Endian) binary.ByteOrder {
	if e == grammar.Big {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// decodeNumeric interprets b (exactly prim.Size() bytes) under endian and
// returns the tagged Value appropriate to the primitive's kind.
func decodeNumeric(prim grammar.PrimKind, b []byte, endian grammar.Endian) model.Value {
	order := byteOrder(endian)
	switch prim {
	case grammar.U8:
		return model.UintValue(uint64(b[0]))
	case grammar.I8:
		return model.IntValue(int64(int8(b[0])))
	case grammar.U16:
		return model.UintValue(uint64(order.Uint16(b)))
	case grammar.I16:
		return model.IntValue(int64(int16(order.Uint16(b))))
	case grammar.U32:
		return model.UintValue(uint64(order.Uint32(b)))
	case grammar.I32:
		return model.IntValue(int64(int32(order.Uint32(b))))
	case grammar.U64:
		return model.UintValue(order.Uint64(b))
	case grammar.I64:
		return model.IntValue(int64(order.Uint64(b)))
	case grammar.F32:
		return model.FloatValue(float64(math.Float32frombits(order.Uint32(b))))
	case grammar.F64:
		return model.FloatValue(math.Float64frombits(order.Uint64(b)))
	default:
		return model.Value{}
	}
}
