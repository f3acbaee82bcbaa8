package javaobj

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// maxBlockDataLen is the longest payload of a short TC_BLOCKDATA record.
const maxBlockDataLen = 0xFF

// Encoder writes a stream header followed by records. Only two kinds of
// top-level value are supported: strings and BlockData, written as a single
// TC_BLOCKDATA record, and *Object graphs using the default field layout.
type Encoder struct {
	w       io.Writer
	handles *handleMap
}

// NewEncoder writes the stream header to w.
func NewEncoder(w io.Writer) (*Encoder, error) {
	enc := &Encoder{
		w:       w,
		handles: newHandleMap(),
	}
	if err := enc.writeHeader(); err != nil {
		return nil, err
	}
	return enc, nil
}

// Encode returns a complete stream holding v.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc, err := NewEncoder(&buf)
	if err != nil {
		return nil, err
	}
	if err := enc.WriteObject(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteObject writes v as the next top-level record.
func (enc *Encoder) WriteObject(v any) error {
	switch v := v.(type) {
	case string:
		return enc.writeBlockData([]byte(v))
	case BlockData:
		return enc.writeBlockData(v)
	case *Object:
		if v == nil {
			return fmt.Errorf("WriteObject: %w: nil object", ErrInvalidValue)
		}
		return enc.writeObject(v)
	default:
		return fmt.Errorf("WriteObject: %w: cannot write %s (%T) as a top-level record", ErrUnsupportedFeature, KindOf(v), v)
	}
}

func (enc *Encoder) writeBinary(values ...any) error {
	for _, value := range values {
		if err := binary.Write(enc.w, binary.BigEndian, value); err != nil {
			return err
		}
	}
	return nil
}

func (enc *Encoder) writeHeader() error {
	return enc.writeBinary(StreamMagic, StreamVersion)
}

func (enc *Encoder) writeBlockData(p []byte) error {
	if len(p) > maxBlockDataLen {
		return fmt.Errorf("writeBlockData: %w: %d bytes needs TC_BLOCKDATALONG", ErrUnsupportedFeature, len(p))
	}
	if err := enc.writeBinary(TcBlockdata, uint8(len(p))); err != nil {
		return err
	}
	_, err := enc.w.Write(p)
	return err
}

// maxUTFLen is the longest string a 2-byte UTF length prefix can frame.
const maxUTFLen = 0xFFFF

func (enc *Encoder) writeUTF(s string) error {
	if len(s) > maxUTFLen {
		return fmt.Errorf("writeUTF: %w: %d byte string does not fit a 2-byte length", ErrUnsupportedFeature, len(s))
	}
	p := []byte(s)
	return enc.writeBinary(uint16(len(p)), p)
}

// writeRefOr writes a TC_REFERENCE if key was written before, and calls f
// otherwise.
func (enc *Encoder) writeRefOr(key any, f func() error) error {
	if h, ok := enc.handles.findHandle(key); ok {
		return enc.writeBinary(TcReference, int32(h))
	}
	return f()
}

// writeValue writes a value held by an object or array slot.
func (enc *Encoder) writeValue(v any) error {
	switch v := v.(type) {
	case nil:
		return enc.writeBinary(TcNull)
	case string:
		return enc.writeString(v)
	case *Object:
		if v == nil {
			return enc.writeBinary(TcNull)
		}
		return enc.writeObject(v)
	case *Array:
		if v == nil {
			return enc.writeBinary(TcNull)
		}
		return enc.writeArray(v)
	case *Class:
		if v == nil {
			return enc.writeBinary(TcNull)
		}
		return enc.writeClass(v)
	case *ClassDesc:
		return enc.classDesc(v)
	case BlockData:
		return enc.writeBlockData(v)
	default:
		return fmt.Errorf("writeValue: %w: %s (%T) is not a reference value", ErrInvalidValue, KindOf(v), v)
	}
}

func (enc *Encoder) writeString(s string) error {
	return enc.writeRefOr(s, func() error {
		if len(s) > maxUTFLen {
			return fmt.Errorf("writeString: %w: %d byte string needs TC_LONGSTRING", ErrUnsupportedFeature, len(s))
		}
		if err := enc.writeBinary(TcString); err != nil {
			return err
		}
		enc.handles.newHandle(s)
		return enc.writeUTF(s)
	})
}

func (enc *Encoder) writeObject(object *Object) error {
	return enc.writeRefOr(object, func() error {
		if err := checkInstantiable(object.Class); err != nil {
			return fmt.Errorf("writeObject: %w", err)
		}
		if err := enc.writeBinary(TcObject); err != nil {
			return err
		}
		if err := enc.classDesc(object.Class); err != nil {
			return err
		}
		enc.handles.newHandle(object)
		return enc.classData(object)
	})
}

// classData writes the field values of object in the order the decoder
// reads them.
func (enc *Encoder) classData(object *Object) error {
	fields := Flatten(object.Class)
	if len(fields) != len(object.fields) {
		return fmt.Errorf("classData: %w: %s has %d fields, object holds %d", ErrInvalidValue, object.Class.Name, len(fields), len(object.fields))
	}
	for i, f := range fields {
		v := object.fields[i].Value
		if err := checkFieldValue(f, v); err != nil {
			return fmt.Errorf("classData: %s: %w", object.Class.Name, err)
		}
		if err := enc.writeFieldValue(f.Kind, v); err != nil {
			return err
		}
	}
	return nil
}

func (enc *Encoder) writeFieldValue(kind FieldKind, v any) error {
	if kind.IsPrimitive() {
		return enc.writeBinary(v)
	}
	return enc.writeValue(v)
}

func (enc *Encoder) classDesc(desc *ClassDesc) error {
	if desc == nil {
		return enc.writeBinary(TcNull)
	}
	return enc.writeRefOr(desc, func() error {
		return enc.newClassDesc(desc)
	})
}

func (enc *Encoder) newClassDesc(desc *ClassDesc) error {
	if desc.Flags.IsEnum() || desc.Flags.IsExternalizable() || desc.Flags.HasWriteMethod() {
		return fmt.Errorf("newClassDesc: %w: %s has flags %s", ErrUnsupportedFeature, desc.Name, desc.Flags)
	}
	if err := enc.writeBinary(TcClassdesc); err != nil {
		return err
	}
	if err := enc.writeUTF(desc.Name); err != nil {
		return err
	}
	if err := enc.writeBinary(desc.SerialVersionUID); err != nil {
		return err
	}
	enc.handles.newHandle(desc)
	return enc.classDescInfo(desc)
}

func (enc *Encoder) classDescInfo(desc *ClassDesc) error {
	if err := enc.writeBinary(byte(desc.Flags)); err != nil {
		return err
	}
	if err := enc.fields(desc); err != nil {
		return err
	}
	if err := enc.classAnnotation(); err != nil {
		return err
	}
	return enc.superClassDesc(desc)
}

func (enc *Encoder) fields(desc *ClassDesc) error {
	if len(desc.Fields) > 0x7FFF {
		return fmt.Errorf("fields: %w: %s declares %d fields", ErrInvalidValue, desc.Name, len(desc.Fields))
	}
	if err := enc.writeBinary(int16(len(desc.Fields))); err != nil {
		return err
	}
	for _, field := range desc.Fields {
		if err := enc.fieldDesc(field); err != nil {
			return err
		}
	}
	return nil
}

func (enc *Encoder) fieldDesc(field FieldDesc) error {
	if _, err := KindFromTag(field.Kind.Tag()); err != nil {
		return fmt.Errorf("fieldDesc: %s: %w", field.Name, err)
	}
	if err := enc.writeBinary(field.Kind.Tag()); err != nil {
		return err
	}
	if err := enc.writeUTF(field.Name); err != nil {
		return err
	}
	if field.Kind.IsPrimitive() {
		return nil
	}
	switch {
	case field.Class != nil:
		return enc.classDesc(field.Class)
	case field.ClassName != "":
		return enc.writeString(field.ClassName)
	default:
		return enc.writeBinary(TcNull)
	}
}

// classAnnotation writes an empty annotation; annotateClass hooks are not
// supported.
func (enc *Encoder) classAnnotation() error {
	return enc.writeBinary(TcEndblockdata)
}

func (enc *Encoder) superClassDesc(desc *ClassDesc) error {
	return enc.classDesc(desc.Super)
}

func (enc *Encoder) writeArray(array *Array) error {
	return enc.writeRefOr(array, func() error {
		elemKind, err := arrayElementKind(array.Class)
		if err != nil {
			return fmt.Errorf("writeArray: %w", err)
		}
		if err := enc.writeBinary(TcArray); err != nil {
			return err
		}
		if err := enc.classDesc(array.Class); err != nil {
			return err
		}
		enc.handles.newHandle(array)
		if err := enc.writeBinary(int32(len(array.Elements))); err != nil {
			return err
		}
		elem := FieldDesc{Name: array.Class.Name, Kind: elemKind}
		for _, v := range array.Elements {
			if err := checkFieldValue(elem, v); err != nil {
				return fmt.Errorf("writeArray: %w", err)
			}
			if err := enc.writeFieldValue(elemKind, v); err != nil {
				return err
			}
		}
		return nil
	})
}

func (enc *Encoder) writeClass(class *Class) error {
	return enc.writeRefOr(class, func() error {
		if err := enc.writeBinary(TcClass); err != nil {
			return err
		}
		if err := enc.classDesc(class.Desc); err != nil {
			return err
		}
		enc.handles.newHandle(class)
		return nil
	})
}
