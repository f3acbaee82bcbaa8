package javaobj

import "fmt"

// The following symbols in `java.io.ObjectStreamConstants` define
// the terminal and constant values expected in a stream.
const (
	StreamMagic      uint16 = 0xaced
	StreamVersion    uint16 = 5
	TcNull           byte   = 0x70
	TcReference      byte   = 0x71
	TcClassdesc      byte   = 0x72
	TcObject         byte   = 0x73
	TcString         byte   = 0x74
	TcArray          byte   = 0x75
	TcClass          byte   = 0x76
	TcBlockdata      byte   = 0x77
	TcEndblockdata   byte   = 0x78
	TcReset          byte   = 0x79
	TcBlockdatalong  byte   = 0x7A
	TcException      byte   = 0x7B
	TcLongstring     byte   = 0x7C
	TcProxyclassdesc byte   = 0x7D
	TcEnum           byte   = 0x7E
	tcBase                  = TcNull
	tcMax                   = TcEnum
)

// BaseWireHandle is the first handle assigned in a stream.
const BaseWireHandle Handle = 0x7E0000

// ClassFlags is the classDescFlags byte of a class descriptor.
type ClassFlags byte

// The flag byte classDescFlags may include values of
const (
	ScWriteMethod    ClassFlags = 0x01 // if SC_SERIALIZABLE
	ScBlockData      ClassFlags = 0x08 // if SC_EXTERNALIZABLE
	ScSerializable   ClassFlags = 0x02
	ScExternalizable ClassFlags = 0x04
	ScEnum           ClassFlags = 0x10
)

func (f ClassFlags) IsSerializable() bool   { return f&ScSerializable != 0 }
func (f ClassFlags) HasWriteMethod() bool   { return f&ScWriteMethod != 0 }
func (f ClassFlags) IsExternalizable() bool { return f&ScExternalizable != 0 }
func (f ClassFlags) IsEnum() bool           { return f&ScEnum != 0 }

func (f ClassFlags) String() string {
	names := []struct {
		flag ClassFlags
		name string
	}{
		{ScWriteMethod, "SC_WRITE_METHOD"},
		{ScSerializable, "SC_SERIALIZABLE"},
		{ScExternalizable, "SC_EXTERNALIZABLE"},
		{ScBlockData, "SC_BLOCK_DATA"},
		{ScEnum, "SC_ENUM"},
	}
	var s string
	for _, n := range names {
		if f&n.flag == 0 {
			continue
		}
		if s != "" {
			s += "|"
		}
		s += n.name
	}
	if s == "" {
		return fmt.Sprintf("0x%02X", byte(f))
	}
	return s
}

var opcodeNames = map[byte]string{
	TcNull:           "TC_NULL",
	TcReference:      "TC_REFERENCE",
	TcClassdesc:      "TC_CLASSDESC",
	TcObject:         "TC_OBJECT",
	TcString:         "TC_STRING",
	TcArray:          "TC_ARRAY",
	TcClass:          "TC_CLASS",
	TcBlockdata:      "TC_BLOCKDATA",
	TcEndblockdata:   "TC_ENDBLOCKDATA",
	TcReset:          "TC_RESET",
	TcBlockdatalong:  "TC_BLOCKDATALONG",
	TcException:      "TC_EXCEPTION",
	TcLongstring:     "TC_LONGSTRING",
	TcProxyclassdesc: "TC_PROXYCLASSDESC",
	TcEnum:           "TC_ENUM",
}

// OpcodeName returns the protocol name of a type code, or its hex form
// for bytes outside the protocol range.
func OpcodeName(tc byte) string {
	if name, ok := opcodeNames[tc]; ok {
		return name
	}
	return fmt.Sprintf("0x%02X", tc)
}
