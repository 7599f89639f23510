// Package matfile reads and writes MATLAB Level 5 MAT files.
//
// Only the parts needed for signal captures are decoded: numeric arrays are
// returned as dense matrices, everything else is listed by name and class.
package matfile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gonum.org/v1/gonum/mat"

	"curve-plotter/internal/apperr"
)

const (
	headerSize     = 128
	headerTextSize = 116
	version5       = 0x0100
	version73      = 0x0200
)

// ErrUnsupported marks valid files in a layout this package does not decode.
var ErrUnsupported = errors.New("unsupported MAT file")

// Class is the MATLAB array class of a variable.
type Class uint8

const (
	ClassUnknown Class = 0
	ClassCell    Class = 1
	ClassStruct  Class = 2
	ClassObject  Class = 3
	ClassChar    Class = 4
	ClassSparse  Class = 5
	ClassDouble  Class = 6
	ClassSingle  Class = 7
	ClassInt8    Class = 8
	ClassUint8   Class = 9
	ClassInt16   Class = 10
	ClassUint16  Class = 11
	ClassInt32   Class = 12
	ClassUint32  Class = 13
	ClassInt64   Class = 14
	ClassUint64  Class = 15
)

func (c Class) String() string {
	switch c {
	case ClassCell:
		return "cell"
	case ClassStruct:
		return "struct"
	case ClassObject:
		return "object"
	case ClassChar:
		return "char"
	case ClassSparse:
		return "sparse"
	case ClassDouble:
		return "double"
	case ClassSingle:
		return "single"
	case ClassInt8:
		return "int8"
	case ClassUint8:
		return "uint8"
	case ClassInt16:
		return "int16"
	case ClassUint16:
		return "uint16"
	case ClassInt32:
		return "int32"
	case ClassUint32:
		return "uint32"
	case ClassInt64:
		return "int64"
	case ClassUint64:
		return "uint64"
	default:
		return fmt.Sprintf("class(%d)", uint8(c))
	}
}

// Numeric reports whether arrays of this class hold plain numbers.
func (c Class) Numeric() bool {
	return c >= ClassDouble && c <= ClassUint64
}

// Variable is one named top-level array.
type Variable struct {
	Name    string // Raw name, may contain NUL padding
	Class   Class
	Dims    []int
	Complex bool
	Logical bool
	Global  bool

	// Data holds the real part of a numeric array as Rows x Cols.
	// It is nil for empty or non-numeric arrays.
	Data *mat.Dense
}

// Numeric reports whether the variable holds a numeric array.
func (v *Variable) Numeric() bool {
	return v.Class.Numeric()
}

// Rows returns the first dimension, the number of samples in a capture.
func (v *Variable) Rows() int {
	if len(v.Dims) == 0 {
		return 0
	}
	return v.Dims[0]
}

// Cols returns the product of all dimensions after the first.
func (v *Variable) Cols() int {
	if len(v.Dims) == 0 {
		return 0
	}
	n := 1
	for _, d := range v.Dims[1:] {
		n *= d
	}
	return n
}

// File is a decoded MAT file.
type File struct {
	Header    string
	Version   uint16
	ByteOrder binary.ByteOrder
	Variables []*Variable
}

// Lookup returns the variable with the given raw name, or nil.
func (f *File) Lookup(name string) *Variable {
	for _, v := range f.Variables {
		if v.Name == name {
			return v
		}
	}
	return nil
}

// Open reads and decodes the MAT file at path. Decoding failures are
// reported as parse errors, filesystem failures as IO errors.
func Open(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.IO("read", path, err)
	}
	f, err := decode(data)
	if err != nil {
		return nil, apperr.Parse("decode", path, err)
	}
	return f, nil
}

// Read decodes a MAT file from r.
func Read(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperr.IO("read", "", err)
	}
	f, err := decode(data)
	if err != nil {
		return nil, apperr.Parse("decode", "", err)
	}
	return f, nil
}

func decode(data []byte) (*File, error) {
	hdr, err := parseHeader(data)
	if err != nil {
		return nil, err
	}

	er := &elementReader{order: hdr.ByteOrder, buf: data[headerSize:]}
	for {
		el, err := er.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if el.typ == miCOMPRESSED {
			el, err = inflate(hdr.ByteOrder, el.data)
			if err != nil {
				return nil, err
			}
		}
		if el.typ != miMATRIX {
			// Top-level elements other than arrays carry no variables.
			continue
		}

		v, err := parseMatrix(hdr.ByteOrder, el.data)
		if err != nil {
			return nil, err
		}
		if v != nil {
			hdr.Variables = append(hdr.Variables, v)
		}
	}
	return hdr, nil
}

func parseHeader(data []byte) (*File, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("file is %d bytes, shorter than the %d byte header", len(data), headerSize)
	}

	text := string(data[:headerTextSize])
	var order binary.ByteOrder
	switch string(data[126:128]) {
	case "IM":
		order = binary.LittleEndian
	case "MI":
		order = binary.BigEndian
	default:
		if !strings.HasPrefix(text, "MATLAB") {
			return nil, fmt.Errorf("%w: not a Level 5 MAT file", ErrUnsupported)
		}
		return nil, fmt.Errorf("invalid endian indicator %q", data[126:128])
	}

	ver := order.Uint16(data[124:126])
	if ver == version73 || strings.HasPrefix(text, "MATLAB 7.3") {
		return nil, fmt.Errorf("%w: v7.3 (HDF5) files are not supported, save with -v7", ErrUnsupported)
	}
	if ver != version5 {
		return nil, fmt.Errorf("%w: version 0x%04x", ErrUnsupported, ver)
	}

	return &File{
		Header:    strings.TrimRight(text, " \x00"),
		Version:   ver,
		ByteOrder: order,
	}, nil
}

func inflate(order binary.ByteOrder, compressed []byte) (element, error) {
	raw, err := decompress(compressed)
	if err != nil {
		return element{}, fmt.Errorf("decompress element: %w", err)
	}
	er := &elementReader{order: order, buf: raw}
	el, err := er.next()
	if err == io.EOF {
		return element{}, fmt.Errorf("empty compressed element")
	}
	return el, err
}

// parseMatrix decodes the body of a miMATRIX element. An empty body is a
// placeholder and yields a nil variable.
func parseMatrix(order binary.ByteOrder, body []byte) (*Variable, error) {
	if len(body) == 0 {
		return nil, nil
	}
	er := &elementReader{order: order, buf: body}

	flags, err := er.expect(miUINT32, "array flags")
	if err != nil {
		return nil, err
	}
	if len(flags.data) < 8 {
		return nil, fmt.Errorf("array flags: %d bytes, want 8", len(flags.data))
	}
	word := order.Uint32(flags.data)

	v := &Variable{
		Class:   Class(word & 0xff),
		Complex: word&flagComplex != 0,
		Global:  word&flagGlobal != 0,
		Logical: word&flagLogical != 0,
	}

	dims, err := er.expect(miINT32, "dimensions")
	if err != nil {
		return nil, err
	}
	if len(dims.data) < 8 || len(dims.data)%4 != 0 {
		return nil, fmt.Errorf("dimensions: %d bytes", len(dims.data))
	}
	for i := 0; i < len(dims.data); i += 4 {
		d := int32(order.Uint32(dims.data[i:]))
		if d < 0 {
			return nil, fmt.Errorf("negative dimension %d", d)
		}
		v.Dims = append(v.Dims, int(d))
	}

	name, err := er.next()
	if err != nil {
		return nil, fmt.Errorf("array name: %w", eofAsUnexpected(err))
	}
	if name.typ != miINT8 && name.typ != miUTF8 {
		return nil, fmt.Errorf("array name: element type %d", name.typ)
	}
	v.Name = string(name.data)

	if !v.Class.Numeric() {
		return v, nil
	}

	rows, cols := v.Rows(), v.Cols()
	part, err := er.next()
	if err != nil {
		return nil, fmt.Errorf("%s: real part: %w", v.Name, eofAsUnexpected(err))
	}
	values, err := decodeNumbers(order, part.typ, part.data)
	if err != nil {
		return nil, fmt.Errorf("%s: real part: %w", v.Name, err)
	}
	if len(values) != rows*cols {
		return nil, fmt.Errorf("%s: real part has %d values, dimensions need %d", v.Name, len(values), rows*cols)
	}
	if rows*cols > 0 {
		v.Data = fromColumnMajor(rows, cols, values)
	}
	return v, nil
}

// fromColumnMajor lays out MATLAB's column-major values as a row-major matrix.
func fromColumnMajor(rows, cols int, values []float64) *mat.Dense {
	transposed := mat.NewDense(cols, rows, values)
	return mat.DenseCopyOf(transposed.T())
}

func eofAsUnexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

// headerText builds the 116 byte descriptive text field.
func headerText(desc string) []byte {
	text := bytes.Repeat([]byte{' '}, headerTextSize)
	copy(text, desc)
	return text
}
