package matfile

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

const defaultDescription = "MATLAB 5.0 MAT-file, written by curve-plotter"

// WriteOptions controls Write.
type WriteOptions struct {
	Description string // Header text, truncated to 116 bytes
	Compress    bool   // Wrap each variable in a zlib compressed element
}

// Write encodes vars as a little-endian Level 5 MAT file. Every variable is
// stored as a double array; its dimensions come from Dims when set,
// otherwise from Data.
func Write(w io.Writer, vars []*Variable, opts WriteOptions) error {
	desc := opts.Description
	if desc == "" {
		desc = defaultDescription
	}

	var hdr bytes.Buffer
	hdr.Write(headerText(desc))
	hdr.Write(make([]byte, 8)) // subsystem data offset
	binary.Write(&hdr, binary.LittleEndian, uint16(version5))
	hdr.WriteString("IM")
	if _, err := w.Write(hdr.Bytes()); err != nil {
		return err
	}

	for _, v := range vars {
		el, err := encodeMatrix(v)
		if err != nil {
			return fmt.Errorf("%s: %w", v.Name, err)
		}
		if opts.Compress {
			el, err = compressElement(el)
			if err != nil {
				return fmt.Errorf("%s: %w", v.Name, err)
			}
		}
		if _, err := w.Write(el); err != nil {
			return err
		}
	}
	return nil
}

func encodeMatrix(v *Variable) ([]byte, error) {
	dims := v.Dims
	if dims == nil {
		if v.Data != nil {
			r, c := v.Data.Dims()
			dims = []int{r, c}
		} else {
			dims = []int{0, 0}
		}
	}
	if len(dims) < 2 {
		return nil, fmt.Errorf("need at least 2 dimensions, got %d", len(dims))
	}

	rows := dims[0]
	cols := 1
	for _, d := range dims[1:] {
		cols *= d
	}
	if v.Data != nil {
		r, c := v.Data.Dims()
		if r != rows || c != cols {
			return nil, fmt.Errorf("data is %dx%d, dimensions say %dx%d", r, c, rows, cols)
		}
	} else if rows*cols != 0 {
		return nil, fmt.Errorf("no data for %dx%d array", rows, cols)
	}

	var body bytes.Buffer

	flags := make([]byte, 8)
	binary.LittleEndian.PutUint32(flags, uint32(ClassDouble))
	writeElement(&body, miUINT32, flags)

	dimBytes := make([]byte, 4*len(dims))
	for i, d := range dims {
		binary.LittleEndian.PutUint32(dimBytes[4*i:], uint32(int32(d)))
	}
	writeElement(&body, miINT32, dimBytes)

	writeElement(&body, miINT8, []byte(v.Name))

	values := make([]byte, 8*rows*cols)
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			bits := math.Float64bits(v.Data.At(r, c))
			binary.LittleEndian.PutUint64(values[8*(r+c*rows):], bits)
		}
	}
	writeElement(&body, miDOUBLE, values)

	var el bytes.Buffer
	writeElement(&el, miMATRIX, body.Bytes())
	return el.Bytes(), nil
}

// writeElement appends a tagged element, using the small element form for
// payloads of up to 4 bytes, and pads to an 8 byte boundary.
func writeElement(buf *bytes.Buffer, typ dataType, data []byte) {
	tag := make([]byte, 8)
	if len(data) > 0 && len(data) <= 4 {
		binary.LittleEndian.PutUint32(tag, uint32(len(data))<<16|uint32(typ))
		copy(tag[4:], data)
		buf.Write(tag)
		return
	}
	binary.LittleEndian.PutUint32(tag, uint32(typ))
	binary.LittleEndian.PutUint32(tag[4:], uint32(len(data)))
	buf.Write(tag)
	buf.Write(data)
	buf.Write(make([]byte, padding(len(data))))
}

func compressElement(el []byte) ([]byte, error) {
	var z bytes.Buffer
	zw := zlib.NewWriter(&z)
	if _, err := zw.Write(el); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}

	out := make([]byte, 8, 8+z.Len())
	binary.LittleEndian.PutUint32(out, uint32(miCOMPRESSED))
	binary.LittleEndian.PutUint32(out[4:], uint32(z.Len()))
	return append(out, z.Bytes()...), nil
}
