package javaobj

import "fmt"

// FieldKind is the semantic type of a serialized field, derived from its
// one-byte type code.
type FieldKind byte

const (
	KindBoolean FieldKind = 'Z'
	KindByte    FieldKind = 'B'
	KindChar    FieldKind = 'C'
	KindShort   FieldKind = 'S'
	KindInt     FieldKind = 'I'
	KindLong    FieldKind = 'J'
	KindFloat   FieldKind = 'F'
	KindDouble  FieldKind = 'D'
	KindArray   FieldKind = '['
	KindObject  FieldKind = 'L'
)

// KindFromTag maps a field type code to its kind.
func KindFromTag(tag byte) (FieldKind, error) {
	switch k := FieldKind(tag); k {
	case KindBoolean, KindByte, KindChar, KindShort, KindInt, KindLong,
		KindFloat, KindDouble, KindArray, KindObject:
		return k, nil
	default:
		return 0, fmt.Errorf("%w: %q (0x%02X)", ErrUnknownFieldType, rune(tag), tag)
	}
}

// Tag returns the type code written to the stream for k.
func (k FieldKind) Tag() byte { return byte(k) }

// IsPrimitive reports whether values of kind k are written inline rather
// than as a nested type-coded record.
func (k FieldKind) IsPrimitive() bool {
	return k != KindArray && k != KindObject
}

func (k FieldKind) String() string {
	switch k {
	case KindBoolean:
		return "boolean"
	case KindByte:
		return "byte"
	case KindChar:
		return "char"
	case KindShort:
		return "short"
	case KindInt:
		return "int"
	case KindLong:
		return "long"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("FieldKind(0x%02X)", byte(k))
	}
}

// DecodePrimitive reads one value of primitive kind k from c. Booleans are
// a single byte where any nonzero value is true, chars are returned as
// uint16 and the remaining kinds as their signed Go counterparts.
func DecodePrimitive(k FieldKind, c *Cursor) (any, error) {
	switch k {
	case KindBoolean:
		v, err := c.ReadUint8()
		return v != 0, err
	case KindByte:
		return c.ReadInt8()
	case KindChar:
		return c.ReadUint16()
	case KindShort:
		return c.ReadInt16()
	case KindInt:
		return c.ReadInt32()
	case KindLong:
		return c.ReadInt64()
	case KindFloat:
		return c.ReadFloat32()
	case KindDouble:
		return c.ReadFloat64()
	default:
		return nil, fmt.Errorf("DecodePrimitive: %s is not a primitive kind", k)
	}
}
