package javaobj

import "fmt"

// Array is a decoded array instance. Elements of primitive arrays hold the
// Go type DecodePrimitive returns for the element kind, so an int[] holds
// int32 values.
type Array struct {
	Class    *ClassDesc
	Handle   Handle
	Elements []any
}

func (array *Array) Len() int {
	return len(array.Elements)
}

func (array *Array) Index(i int) any {
	return array.Elements[i]
}

// ElementKind returns the kind of the array's elements, taken from the
// second character of its class name ("[I" is an int array, "[[I" an array
// of arrays, "[Ljava.lang.String;" an object array).
func (array *Array) ElementKind() (FieldKind, error) {
	return arrayElementKind(array.Class)
}

func arrayElementKind(desc *ClassDesc) (FieldKind, error) {
	if desc == nil {
		return 0, fmt.Errorf("%w: array without class descriptor", ErrUnknownFieldType)
	}
	if len(desc.Name) < 2 || desc.Name[0] != '[' {
		return 0, fmt.Errorf("%w: %q is not an array class", ErrUnknownFieldType, desc.Name)
	}
	return KindFromTag(desc.Name[1])
}

func (dec *Decoder) readArray() (*Array, error) {
	desc, err := dec.readClassDesc(arrayClassOpcodes)
	if err != nil {
		return nil, err
	}
	elemKind, err := arrayElementKind(desc)
	if err != nil {
		return nil, fmt.Errorf("readArray: %w", err)
	}
	array := &Array{Class: desc}
	array.Handle = dec.handles.allocate(array)

	l, err := dec.c.ReadInt32()
	if err != nil {
		return nil, err
	}
	// Every element occupies at least one byte, which bounds the allocation
	// by the input size.
	if l < 0 || int64(l) > int64(dec.c.Remaining()) {
		return nil, fmt.Errorf("readArray: %w: size %d with %d bytes left", ErrTruncatedStream, l, dec.c.Remaining())
	}
	array.Elements = make([]any, 0, int(l))
	for i := 0; i < int(l); i++ {
		v, err := dec.readFieldValue(elemKind)
		if err != nil {
			return nil, err
		}
		array.Elements = append(array.Elements, v)
	}
	return array, nil
}
