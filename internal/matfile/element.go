package matfile

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// MAT data element types.
type dataType uint32

const (
	miINT8       dataType = 1
	miUINT8      dataType = 2
	miINT16      dataType = 3
	miUINT16     dataType = 4
	miINT32      dataType = 5
	miUINT32     dataType = 6
	miSINGLE     dataType = 7
	miDOUBLE     dataType = 9
	miINT64      dataType = 12
	miUINT64     dataType = 13
	miMATRIX     dataType = 14
	miCOMPRESSED dataType = 15
	miUTF8       dataType = 16
	miUTF16      dataType = 17
	miUTF32      dataType = 18
)

// Array flag bits in the first word of the array flags subelement.
const (
	flagLogical = 0x0200
	flagGlobal  = 0x0400
	flagComplex = 0x0800
)

type element struct {
	typ  dataType
	data []byte
}

// elementReader walks a sequence of tagged data elements in a buffer.
type elementReader struct {
	order binary.ByteOrder
	buf   []byte
	off   int
}

// next returns the following element, or io.EOF at the end of the buffer.
func (r *elementReader) next() (element, error) {
	remaining := len(r.buf) - r.off
	if remaining == 0 {
		return element{}, io.EOF
	}
	if remaining < 8 {
		return element{}, fmt.Errorf("element tag at offset %d: %w", r.off, io.ErrUnexpectedEOF)
	}

	word := r.order.Uint32(r.buf[r.off:])

	// Small data element: size and type share the first word, data fits in the second.
	if size := word >> 16; size != 0 {
		if size > 4 {
			return element{}, fmt.Errorf("small element at offset %d claims %d bytes", r.off, size)
		}
		el := element{
			typ:  dataType(word & 0xffff),
			data: r.buf[r.off+4 : r.off+4+int(size)],
		}
		r.off += 8
		return el, nil
	}

	size := uint64(r.order.Uint32(r.buf[r.off+4:]))
	start := r.off + 8
	if size > uint64(len(r.buf)-start) {
		return element{}, fmt.Errorf("element at offset %d claims %d bytes, %d available: %w",
			r.off, size, len(r.buf)-start, io.ErrUnexpectedEOF)
	}
	el := element{typ: dataType(word), data: r.buf[start : start+int(size)]}
	r.off = start + int(size)

	if el.typ != miCOMPRESSED {
		pad := padding(int(size))
		if pad > len(r.buf)-r.off {
			pad = len(r.buf) - r.off
		}
		r.off += pad
	}
	return el, nil
}

// expect reads the next element and checks its type.
func (r *elementReader) expect(typ dataType, what string) (element, error) {
	el, err := r.next()
	if err != nil {
		return element{}, fmt.Errorf("%s: %w", what, eofAsUnexpected(err))
	}
	if el.typ != typ {
		return element{}, fmt.Errorf("%s: element type %d, want %d", what, el.typ, typ)
	}
	return el, nil
}

func padding(n int) int {
	return (8 - n%8) % 8
}

func decompress(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

// decodeNumbers converts a numeric element to float64 values. MATLAB may
// store an array in a narrower type than its class, so every numeric
// element type is accepted regardless of the array class.
func decodeNumbers(order binary.ByteOrder, typ dataType, data []byte) ([]float64, error) {
	size, err := elementSize(typ)
	if err != nil {
		return nil, err
	}
	if len(data)%size != 0 {
		return nil, fmt.Errorf("%d bytes is not a multiple of the %d byte element size", len(data), size)
	}

	n := len(data) / size
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		b := data[i*size:]
		switch typ {
		case miINT8:
			out[i] = float64(int8(b[0]))
		case miUINT8:
			out[i] = float64(b[0])
		case miINT16:
			out[i] = float64(int16(order.Uint16(b)))
		case miUINT16:
			out[i] = float64(order.Uint16(b))
		case miINT32:
			out[i] = float64(int32(order.Uint32(b)))
		case miUINT32:
			out[i] = float64(order.Uint32(b))
		case miSINGLE:
			out[i] = float64(math.Float32frombits(order.Uint32(b)))
		case miDOUBLE:
			out[i] = math.Float64frombits(order.Uint64(b))
		case miINT64:
			out[i] = float64(int64(order.Uint64(b)))
		case miUINT64:
			out[i] = float64(order.Uint64(b))
		}
	}
	return out, nil
}

func elementSize(typ dataType) (int, error) {
	switch typ {
	case miINT8, miUINT8:
		return 1, nil
	case miINT16, miUINT16:
		return 2, nil
	case miINT32, miUINT32, miSINGLE:
		return 4, nil
	case miDOUBLE, miINT64, miUINT64:
		return 8, nil
	default:
		return 0, fmt.Errorf("element type %d is not numeric", typ)
	}
}
