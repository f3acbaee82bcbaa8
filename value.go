package javaobj

import "fmt"

// ValueKind classifies a decoded value.
type ValueKind int

const (
	ValueUnsupported ValueKind = iota
	ValueNull
	ValueBoolean
	ValueByte
	ValueChar
	ValueShort
	ValueInt
	ValueLong
	ValueFloat
	ValueDouble
	ValueString
	ValueObject
	ValueArray
	ValueClassDesc
	ValueClass
	ValueBlockData
)

var valueKindNames = [...]string{
	ValueUnsupported: "unsupported",
	ValueNull:        "null",
	ValueBoolean:     "boolean",
	ValueByte:        "byte",
	ValueChar:        "char",
	ValueShort:       "short",
	ValueInt:         "int",
	ValueLong:        "long",
	ValueFloat:       "float",
	ValueDouble:      "double",
	ValueString:      "string",
	ValueObject:      "object",
	ValueArray:       "array",
	ValueClassDesc:   "class descriptor",
	ValueClass:       "class",
	ValueBlockData:   "block data",
}

func (k ValueKind) String() string {
	if k < 0 || int(k) >= len(valueKindNames) {
		return fmt.Sprintf("ValueKind(%d)", int(k))
	}
	return valueKindNames[k]
}

// KindOf reports which member of the decoded value union v is. Values that
// a Decoder never produces are reported as ValueUnsupported.
func KindOf(v any) ValueKind {
	switch v.(type) {
	case nil:
		return ValueNull
	case bool:
		return ValueBoolean
	case int8:
		return ValueByte
	case uint16:
		return ValueChar
	case int16:
		return ValueShort
	case int32:
		return ValueInt
	case int64:
		return ValueLong
	case float32:
		return ValueFloat
	case float64:
		return ValueDouble
	case string:
		return ValueString
	case *Object:
		return ValueObject
	case *Array:
		return ValueArray
	case *ClassDesc:
		return ValueClassDesc
	case *Class:
		return ValueClass
	case BlockData:
		return ValueBlockData
	default:
		return ValueUnsupported
	}
}

// BlockData is an opaque run of bytes written outside of any typed field.
type BlockData []byte

// Class is a java.lang.Class instance written with TC_CLASS.
type Class struct {
	Desc   *ClassDesc
	Handle Handle
}

// FieldValue is one field slot of an Object.
type FieldValue struct {
	// Class is the class that declares the field.
	Class *ClassDesc
	Name  string
	Value any
}

// Object is a decoded instance of a serializable class. Its field slots are
// filled once while decoding and are read through Field, FieldOf and Fields.
type Object struct {
	Class  *ClassDesc
	Handle Handle
	fields []FieldValue
}

// NewObject builds an object of class desc. values are given in the order
// returned by Flatten(desc), one per field.
func NewObject(desc *ClassDesc, values ...any) (*Object, error) {
	if desc == nil {
		return nil, fmt.Errorf("NewObject: %w: nil class descriptor", ErrInvalidValue)
	}
	obj := &Object{Class: desc}
	i := 0
	for _, d := range desc.Hierarchy() {
		for _, f := range d.Fields {
			if i >= len(values) {
				return nil, fmt.Errorf("NewObject: %w: %s has more than %d fields", ErrInvalidValue, desc.Name, len(values))
			}
			if err := checkFieldValue(f, values[i]); err != nil {
				return nil, fmt.Errorf("NewObject: %w", err)
			}
			obj.fields = append(obj.fields, FieldValue{Class: d, Name: f.Name, Value: values[i]})
			i++
		}
	}
	if i != len(values) {
		return nil, fmt.Errorf("NewObject: %w: %s has %d fields, got %d values", ErrInvalidValue, desc.Name, i, len(values))
	}
	return obj, nil
}

// Field returns the value of the named field. When a subclass shadows a
// superclass field of the same name, the subclass's value is returned.
func (obj *Object) Field(name string) (any, bool) {
	for i := len(obj.fields) - 1; i >= 0; i-- {
		if obj.fields[i].Name == name {
			return obj.fields[i].Value, true
		}
	}
	return nil, false
}

// FieldOf returns the value of the field name declared by className.
func (obj *Object) FieldOf(className, name string) (any, bool) {
	for _, f := range obj.fields {
		if f.Class.Name == className && f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Fields returns a copy of all field slots in stream order.
func (obj *Object) Fields() []FieldValue {
	return append([]FieldValue(nil), obj.fields...)
}

func (obj *Object) String() string {
	return fmt.Sprintf("%s@%s", obj.Class.Name, obj.Handle)
}

// checkFieldValue reports whether v can be written for field f.
func checkFieldValue(f FieldDesc, v any) error {
	want := ValueNull
	switch f.Kind {
	case KindBoolean:
		want = ValueBoolean
	case KindByte:
		want = ValueByte
	case KindChar:
		want = ValueChar
	case KindShort:
		want = ValueShort
	case KindInt:
		want = ValueInt
	case KindLong:
		want = ValueLong
	case KindFloat:
		want = ValueFloat
	case KindDouble:
		want = ValueDouble
	default:
		switch KindOf(v) {
		case ValueNull, ValueString, ValueObject, ValueArray, ValueClass, ValueClassDesc, ValueBlockData:
			return nil
		}
		return fmt.Errorf("%w: field %s cannot hold %s", ErrInvalidValue, f.Name, KindOf(v))
	}
	if got := KindOf(v); got != want {
		return fmt.Errorf("%w: field %s is %s, got %s", ErrInvalidValue, f.Name, want, got)
	}
	return nil
}
