// Package javaobj reads and writes streams in the java.io object
// serialization protocol.
//
// Decoding produces a graph of Go values: nil, bool, int8, uint16 (char),
// int16, int32, int64, float32, float64, string, *Object, *Array,
// *ClassDesc, *Class and BlockData. Back-references in the stream resolve to
// the same pointer, so shared and cyclic structure is preserved.
package javaobj

import (
	"fmt"

	"github.com/creachadair/mds/mapset"
)

type opcodeSet = mapset.Set[byte]

// Type codes accepted where the grammar allows only a subset. A nil set
// accepts anything.
var (
	classDescOpcodes  = mapset.New(TcClassdesc, TcProxyclassdesc, TcReference, TcNull)
	arrayClassOpcodes = mapset.New(TcClassdesc, TcProxyclassdesc, TcReference)
	superClassOpcodes = mapset.New(TcClassdesc, TcReference, TcNull)
	fieldTypeOpcodes  = mapset.New(TcString, TcReference, TcClassdesc, TcNull)
)

// Decoder reads top-level records from an in-memory stream. Handles are
// shared by all records of the stream. A Decoder is not safe for concurrent
// use; independent Decoders are.
type Decoder struct {
	c       *Cursor
	handles handleTable
	opts    options
	depth   int
	err     error
}

// NewDecoder validates the stream header at the start of data and returns a
// Decoder positioned at the first record.
func NewDecoder(data []byte, opts ...Option) (*Decoder, error) {
	dec := &Decoder{
		c:    NewCursor(data),
		opts: newOptions(opts),
	}
	if err := dec.readHeader(); err != nil {
		return nil, &DecodeError{Offset: dec.c.Position(), Err: err}
	}
	return dec, nil
}

// Decode decodes the first record of a stream. trailing is the number of
// bytes left after that record; they are not an error, since a stream may
// hold several records.
func Decode(data []byte, opts ...Option) (v any, trailing int, err error) {
	dec, err := NewDecoder(data, opts...)
	if err != nil {
		return nil, 0, err
	}
	v, err = dec.ReadObject()
	if err != nil {
		return nil, 0, err
	}
	return v, dec.Remaining(), nil
}

func (dec *Decoder) readHeader() error {
	magic, err := dec.c.ReadUint16()
	if err != nil {
		return fmt.Errorf("readHeader: %w: %w", ErrStreamHeader, err)
	}
	version, err := dec.c.ReadUint16()
	if err != nil {
		return fmt.Errorf("readHeader: %w: %w", ErrStreamHeader, err)
	}
	if magic != StreamMagic || version != StreamVersion {
		return fmt.Errorf("readHeader: %w: %04X%04X", ErrStreamHeader, magic, version)
	}
	return nil
}

// ReadObject decodes the next top-level record. After a failure the stream
// cannot be resynchronized and every later call returns the same error.
func (dec *Decoder) ReadObject() (any, error) {
	if dec.err != nil {
		return nil, dec.err
	}
	v, err := dec.readObject(nil)
	if err != nil {
		dec.err = &DecodeError{Offset: dec.c.Position(), Err: err}
		return nil, dec.err
	}
	return v, nil
}

// More reports whether unread bytes remain and no error has occurred.
func (dec *Decoder) More() bool {
	return dec.err == nil && dec.c.Remaining() > 0
}

// Remaining returns the number of unread bytes.
func (dec *Decoder) Remaining() int {
	return dec.c.Remaining()
}

// Handles returns the number of handles assigned so far.
func (dec *Decoder) Handles() int {
	return dec.handles.len()
}

func (dec *Decoder) readObject(expect opcodeSet) (any, error) {
	offset := dec.c.Position()
	tc, err := dec.c.ReadUint8()
	if err != nil {
		return nil, err
	}
	if dec.opts.tracer != nil {
		dec.opts.tracer.Trace(tc, dec.depth, offset)
	}
	if expect != nil && !expect.Has(tc) {
		return nil, fmt.Errorf("readObject: %w: %s at offset %d", ErrUnexpectedOpcode, OpcodeName(tc), offset)
	}
	if dec.depth >= dec.opts.maxDepth {
		return nil, fmt.Errorf("readObject: %w: more than %d levels", ErrDepthExceeded, dec.opts.maxDepth)
	}
	dec.depth++
	defer func() { dec.depth-- }()

	switch tc {
	case TcNull:
		return nil, nil
	case TcReference:
		return dec.readHandle()
	case TcClassdesc:
		return dec.readNonProxyDesc()
	case TcClass:
		return dec.readClass()
	case TcString:
		s, err := dec.c.ReadUTF()
		if err != nil {
			return nil, err
		}
		dec.handles.allocate(s)
		return s, nil
	case TcArray:
		return dec.readArray()
	case TcObject:
		return dec.readOrdinaryObject()
	case TcBlockdata:
		return dec.readBlockData()
	default:
		if tc >= tcBase && tc <= tcMax {
			return nil, fmt.Errorf("readObject: %w: %s", ErrUnsupportedFeature, OpcodeName(tc))
		}
		return nil, fmt.Errorf("readObject: %w: %s at offset %d", ErrUnknownOpcode, OpcodeName(tc), offset)
	}
}

func (dec *Decoder) readHandle() (any, error) {
	h, err := dec.c.ReadInt32()
	if err != nil {
		return nil, err
	}
	return dec.handles.resolve(Handle(h))
}

func (dec *Decoder) readClass() (*Class, error) {
	desc, err := dec.readClassDesc(classDescOpcodes)
	if err != nil {
		return nil, err
	}
	class := &Class{Desc: desc}
	class.Handle = dec.handles.allocate(class)
	return class, nil
}

func (dec *Decoder) readBlockData() (BlockData, error) {
	l, err := dec.c.ReadUint8()
	if err != nil {
		return nil, err
	}
	p, err := dec.c.ReadBytes(int(l))
	if err != nil {
		return nil, err
	}
	return BlockData(p), nil
}

func (dec *Decoder) readOrdinaryObject() (*Object, error) {
	desc, err := dec.readClassDesc(classDescOpcodes)
	if err != nil {
		return nil, err
	}
	if desc == nil {
		return nil, fmt.Errorf("readOrdinaryObject: %w: object with null class descriptor", ErrUnexpectedOpcode)
	}
	if err := checkInstantiable(desc); err != nil {
		return nil, fmt.Errorf("readOrdinaryObject: %w", err)
	}
	object := &Object{Class: desc}
	object.Handle = dec.handles.allocate(object)
	if err := dec.readSerialData(object); err != nil {
		return nil, err
	}
	return object, nil
}

// readSerialData reads one value per field of object's class, in the order
// Flatten defines.
func (dec *Decoder) readSerialData(object *Object) error {
	for _, d := range object.Class.Hierarchy() {
		for _, field := range d.Fields {
			v, err := dec.readFieldValue(field.Kind)
			if err != nil {
				return err
			}
			object.fields = append(object.fields, FieldValue{Class: d, Name: field.Name, Value: v})
		}
	}
	return nil
}

// readFieldValue reads a value of the given kind. Object and array fields
// may hold any record the grammar allows, including null and references,
// so they are decoded without restriction.
func (dec *Decoder) readFieldValue(kind FieldKind) (any, error) {
	if kind.IsPrimitive() {
		return DecodePrimitive(kind, dec.c)
	}
	return dec.readObject(nil)
}
