package javaobj

import "fmt"

// ClassDesc is a decoded class descriptor.
type ClassDesc struct {
	Name string
	// SerialVersionUID is the class's stream identity. It is opaque and only
	// meaningful for equality and display.
	SerialVersionUID int64
	Flags            ClassFlags
	Fields           []FieldDesc
	Super            *ClassDesc
	Handle           Handle
}

func (desc *ClassDesc) String() string {
	if desc == nil {
		return "<nil>"
	}
	return fmt.Sprintf("[%s:0x%X]", desc.Name, uint64(desc.SerialVersionUID))
}

// FieldDesc describes one serializable field declared by a class.
type FieldDesc struct {
	Name string
	Kind FieldKind
	// ClassName is the JVM type signature of an object or array field, such as
	// "Ljava/lang/String;" or "[I". It is empty for primitive fields and for
	// fields whose type was written as null.
	ClassName string
	// Class is set when the field type was written as a class descriptor
	// rather than a type signature string.
	Class *ClassDesc
}

// Hierarchy returns desc and its superclasses, root-most first.
func (desc *ClassDesc) Hierarchy() []*ClassDesc {
	var chain []*ClassDesc
	seen := make(map[*ClassDesc]bool)
	for d := desc; d != nil && !seen[d]; d = d.Super {
		seen[d] = true
		chain = append(chain, d)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// Flatten returns every field an instance of desc carries, in stream order:
// the root-most ancestor's fields first and desc's own fields last.
func Flatten(desc *ClassDesc) []FieldDesc {
	var fields []FieldDesc
	for _, d := range desc.Hierarchy() {
		fields = append(fields, d.Fields...)
	}
	return fields
}

// checkInstantiable reports whether objects of desc can be read with the
// default field layout.
func checkInstantiable(desc *ClassDesc) error {
	for _, d := range desc.Hierarchy() {
		switch {
		case d.Flags.IsExternalizable():
			return fmt.Errorf("%w: %s is externalizable", ErrUnsupportedFeature, d.Name)
		case d.Flags.HasWriteMethod():
			return fmt.Errorf("%w: %s has a custom writeObject method", ErrUnsupportedFeature, d.Name)
		case !d.Flags.IsSerializable():
			return fmt.Errorf("%w: %s is not serializable (flags %s)", ErrUnsupportedFeature, d.Name, d.Flags)
		}
	}
	return nil
}

func (dec *Decoder) readClassDesc(expect opcodeSet) (*ClassDesc, error) {
	v, err := dec.readObject(expect)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	desc, ok := v.(*ClassDesc)
	if !ok {
		return nil, fmt.Errorf("readClassDesc: %w: reference to %s is not a class descriptor", ErrHandleResolution, KindOf(v))
	}
	return desc, nil
}

func (dec *Decoder) readNonProxyDesc() (*ClassDesc, error) {
	name, err := dec.c.ReadUTF()
	if err != nil {
		return nil, err
	}
	suid, err := dec.c.ReadInt64()
	if err != nil {
		return nil, err
	}
	desc := &ClassDesc{Name: name, SerialVersionUID: suid}
	desc.Handle = dec.handles.allocate(desc)

	flags, err := dec.c.ReadUint8()
	if err != nil {
		return nil, err
	}
	desc.Flags = ClassFlags(flags)
	switch {
	case desc.Flags.IsEnum():
		return nil, fmt.Errorf("readNonProxyDesc: %w: enum class %s", ErrUnsupportedFeature, name)
	case desc.Flags.IsExternalizable():
		return nil, fmt.Errorf("readNonProxyDesc: %w: externalizable class %s", ErrUnsupportedFeature, name)
	case desc.Flags.HasWriteMethod():
		return nil, fmt.Errorf("readNonProxyDesc: %w: class %s has a custom writeObject method", ErrUnsupportedFeature, name)
	}

	numFields, err := dec.c.ReadInt16()
	if err != nil {
		return nil, err
	}
	if numFields < 0 {
		return nil, fmt.Errorf("readNonProxyDesc: %w: negative field count %d for %s", ErrMalformedStream, numFields, name)
	}
	for i := 0; i < int(numFields); i++ {
		field, err := dec.readFieldDesc()
		if err != nil {
			return nil, err
		}
		desc.Fields = append(desc.Fields, field)
	}

	if err := dec.skipClassAnnotation(name); err != nil {
		return nil, err
	}

	super, err := dec.readClassDesc(superClassOpcodes)
	if err != nil {
		return nil, err
	}
	desc.Super = super
	return desc, nil
}

func (dec *Decoder) readFieldDesc() (FieldDesc, error) {
	tcode, err := dec.c.ReadUint8()
	if err != nil {
		return FieldDesc{}, err
	}
	kind, err := KindFromTag(tcode)
	if err != nil {
		return FieldDesc{}, err
	}
	name, err := dec.c.ReadUTF()
	if err != nil {
		return FieldDesc{}, err
	}
	field := FieldDesc{Name: name, Kind: kind}
	if kind.IsPrimitive() {
		return field, nil
	}
	v, err := dec.readObject(fieldTypeOpcodes)
	if err != nil {
		return FieldDesc{}, err
	}
	switch v := v.(type) {
	case nil:
	case string:
		field.ClassName = v
	case *ClassDesc:
		field.ClassName = v.Name
		field.Class = v
	default:
		return FieldDesc{}, fmt.Errorf("readFieldDesc: %w: type of field %s refers to %s", ErrHandleResolution, name, KindOf(v))
	}
	return field, nil
}

// skipClassAnnotation consumes an empty class annotation. Annotation
// contents are written by custom annotateClass hooks and are not supported.
func (dec *Decoder) skipClassAnnotation(className string) error {
	tc, err := dec.c.ReadUint8()
	if err != nil {
		return err
	}
	if tc != TcEndblockdata {
		return fmt.Errorf("readClassDescriptor: %w: annotation data for %s (got %s)", ErrUnsupportedFeature, className, OpcodeName(tc))
	}
	return nil
}
