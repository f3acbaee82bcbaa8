package javaobj

import (
	"bytes"
	"encoding/binary"
)

// streamBuilder assembles stream fixtures.
type streamBuilder struct {
	buf bytes.Buffer
}

// newStream returns a builder that already holds a valid header.
func newStream() *streamBuilder {
	return new(streamBuilder).u16(StreamMagic).u16(StreamVersion)
}

func (b *streamBuilder) u8(v ...byte) *streamBuilder {
	b.buf.Write(v)
	return b
}

func (b *streamBuilder) u16(v uint16) *streamBuilder {
	binary.Write(&b.buf, binary.BigEndian, v)
	return b
}

func (b *streamBuilder) i32(v int32) *streamBuilder {
	binary.Write(&b.buf, binary.BigEndian, v)
	return b
}

func (b *streamBuilder) i64(v int64) *streamBuilder {
	binary.Write(&b.buf, binary.BigEndian, v)
	return b
}

func (b *streamBuilder) utf(s string) *streamBuilder {
	return b.u16(uint16(len(s))).u8([]byte(s)...)
}

func (b *streamBuilder) str(s string) *streamBuilder {
	return b.u8(TcString).utf(s)
}

func (b *streamBuilder) ref(h Handle) *streamBuilder {
	return b.u8(TcReference).i32(int32(h))
}

// field describes a field record. For object and array fields, sig is
// written as a TC_STRING type signature.
type field struct {
	tag  byte
	name string
	sig  string
}

// classDesc writes a TC_CLASSDESC record up to and including its annotation
// terminator. The superclass descriptor is left to the caller.
func (b *streamBuilder) classDesc(name string, suid int64, flags ClassFlags, fields ...field) *streamBuilder {
	b.u8(TcClassdesc).utf(name).i64(suid).u8(byte(flags)).u16(uint16(len(fields)))
	for _, f := range fields {
		b.u8(f.tag).utf(f.name)
		if f.tag == '[' || f.tag == 'L' {
			b.str(f.sig)
		}
	}
	return b.u8(TcEndblockdata)
}

func (b *streamBuilder) bytes() []byte {
	return append([]byte(nil), b.buf.Bytes()...)
}

// pointStream is a Point3D extends Point object:
//
//	0x7E0000 Point3D descriptor
//	0x7E0001 "Ljava/lang/String;"
//	0x7E0002 Point descriptor
//	0x7E0003 the object
//	0x7E0004 "origin"
func pointStream() []byte {
	return newStream().
		u8(TcObject).
		classDesc("Point3D", 2, ScSerializable, field{'I', "z", ""}, field{'L', "label", "Ljava/lang/String;"}).
		classDesc("Point", 1, ScSerializable, field{'I', "x", ""}, field{'I', "y", ""}).
		u8(TcNull).
		i32(1).i32(2).i32(3).
		str("origin").
		bytes()
}
