package javaobj

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_String(t *testing.T) {
	b, err := Encode("Hi")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xac, 0xed, 0x00, 0x05, TcBlockdata, 0x02, 'H', 'i'}, b)

	v, trailing, err := Decode(b)
	require.NoError(t, err)
	assert.Zero(t, trailing)
	assert.Equal(t, BlockData("Hi"), v)
}

func TestEncode_BlockData(t *testing.T) {
	b, err := Encode(BlockData{})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xac, 0xed, 0x00, 0x05, TcBlockdata, 0x00}, b)

	_, err = Encode(BlockData(make([]byte, 256)))
	assert.ErrorIs(t, err, ErrUnsupportedFeature)
}

func TestEncode_Unsupported(t *testing.T) {
	for _, v := range []any{nil, int32(1), true, &Array{Class: &ClassDesc{Name: "[I"}}, &ClassDesc{Name: "A"}, (*Object)(nil)} {
		_, err := Encode(v)
		assert.Error(t, err, "%T", v)
	}
	_, err := Encode(int32(1))
	assert.ErrorIs(t, err, ErrUnsupportedFeature)
}

func TestEncode_RoundTrip(t *testing.T) {
	in := pointStream()
	v, _, err := Decode(in)
	require.NoError(t, err)

	out, err := Encode(v)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestEncode_Graph(t *testing.T) {
	leafDesc := &ClassDesc{
		Name:             "Leaf",
		SerialVersionUID: 9,
		Flags:            ScSerializable,
		Fields:           []FieldDesc{{Name: "flag", Kind: KindBoolean}, {Name: "ch", Kind: KindChar}},
	}
	nodeDesc := &ClassDesc{
		Name:             "Node",
		SerialVersionUID: 10,
		Flags:            ScSerializable,
		Fields: []FieldDesc{
			{Name: "left", Kind: KindObject, ClassName: "LLeaf;"},
			{Name: "right", Kind: KindObject, ClassName: "Leaf", Class: leafDesc},
			{Name: "nums", Kind: KindArray, ClassName: "[D"},
			{Name: "name", Kind: KindObject, ClassName: "Ljava/lang/String;"},
			{Name: "alias", Kind: KindObject, ClassName: "Ljava/lang/String;"},
			{Name: "type", Kind: KindObject, ClassName: "Ljava/lang/Class;"},
		},
	}
	leaf, err := NewObject(leafDesc, true, uint16('q'))
	require.NoError(t, err)
	nums := &Array{
		Class:    &ClassDesc{Name: "[D", Flags: ScSerializable},
		Elements: []any{1.5, -2.0},
	}
	node, err := NewObject(nodeDesc, leaf, leaf, nums, "n", "n", &Class{Desc: leafDesc})
	require.NoError(t, err)

	b, err := Encode(node)
	require.NoError(t, err)

	v, trailing, err := Decode(b)
	require.NoError(t, err)
	assert.Zero(t, trailing)
	got := v.(*Object)

	left, _ := got.Field("left")
	right, _ := got.Field("right")
	assert.Same(t, left, right, "shared object must be written once")
	flag, _ := left.(*Object).Field("flag")
	assert.Equal(t, true, flag)
	ch, _ := left.(*Object).Field("ch")
	assert.Equal(t, uint16('q'), ch)

	gotNums, _ := got.Field("nums")
	assert.Equal(t, []any{1.5, -2.0}, gotNums.(*Array).Elements)

	name, _ := got.Field("name")
	alias, _ := got.Field("alias")
	assert.Equal(t, "n", name)
	assert.Equal(t, "n", alias)

	typ, _ := got.Field("type")
	require.IsType(t, &Class{}, typ)
	assert.Same(t, left.(*Object).Class, typ.(*Class).Desc)
	assert.Same(t, got.Class.Fields[1].Class, left.(*Object).Class)

	// Handles are re-assigned by the decoder, everything else survives.
	ignoreHandles := cmp.FilterPath(func(p cmp.Path) bool {
		return p.Last().String() == ".Handle"
	}, cmp.Ignore())
	if diff := cmp.Diff(node, got, cmp.AllowUnexported(Object{}), ignoreHandles); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEncode_InvalidFields(t *testing.T) {
	desc := &ClassDesc{Name: "A", Flags: ScSerializable, Fields: []FieldDesc{{Name: "i", Kind: KindInt}}}

	_, err := NewObject(desc, int64(1))
	assert.ErrorIs(t, err, ErrInvalidValue)
	_, err = NewObject(desc)
	assert.ErrorIs(t, err, ErrInvalidValue)
	_, err = NewObject(desc, int32(1), int32(2))
	assert.ErrorIs(t, err, ErrInvalidValue)
	_, err = NewObject(nil)
	assert.ErrorIs(t, err, ErrInvalidValue)

	objDesc := &ClassDesc{Name: "B", Flags: ScSerializable, Fields: []FieldDesc{{Name: "o", Kind: KindObject}}}
	_, err = NewObject(objDesc, int32(1))
	assert.ErrorIs(t, err, ErrInvalidValue)

	obj, err := NewObject(desc, int32(1))
	require.NoError(t, err)
	obj.fields[0].Value = "not an int"
	_, err = Encode(obj)
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestEncode_LongNames(t *testing.T) {
	long := strings.Repeat("A", 0x10001)

	obj, err := NewObject(&ClassDesc{Name: long, Flags: ScSerializable})
	require.NoError(t, err)
	_, err = Encode(obj)
	assert.ErrorIs(t, err, ErrUnsupportedFeature)

	obj, err = NewObject(&ClassDesc{Name: "A", Flags: ScSerializable, Fields: []FieldDesc{{Name: long, Kind: KindInt}}}, int32(1))
	require.NoError(t, err)
	_, err = Encode(obj)
	assert.ErrorIs(t, err, ErrUnsupportedFeature)

	obj, err = NewObject(&ClassDesc{Name: "A", Flags: ScSerializable, Fields: []FieldDesc{{Name: "s", Kind: KindObject, ClassName: "Ljava/lang/String;"}}}, long)
	require.NoError(t, err)
	_, err = Encode(obj)
	assert.ErrorIs(t, err, ErrUnsupportedFeature)

	obj, err = NewObject(&ClassDesc{Name: strings.Repeat("A", 0xFFFF), Flags: ScSerializable})
	require.NoError(t, err)
	b, err := Encode(obj)
	require.NoError(t, err)
	v, trailing, err := Decode(b)
	require.NoError(t, err)
	assert.Zero(t, trailing)
	assert.Len(t, v.(*Object).Class.Name, 0xFFFF)
}

func TestEncode_DescriptorAndBlockDataFields(t *testing.T) {
	in := newStream().
		u8(TcObject).
		classDesc("Holder", 7, ScSerializable,
			field{'L', "c", "Ljava/lang/Object;"},
			field{'L', "b", "Ljava/io/Serializable;"}).
		u8(TcNull).
		classDesc("Inner", 8, ScSerializable).u8(TcNull).
		u8(TcBlockdata, 2, 0xca, 0xfe).
		bytes()
	v, trailing, err := Decode(in)
	require.NoError(t, err)
	assert.Zero(t, trailing)

	obj := v.(*Object)
	c, _ := obj.Field("c")
	require.IsType(t, &ClassDesc{}, c)
	assert.Equal(t, "Inner", c.(*ClassDesc).Name)
	b, _ := obj.Field("b")
	assert.Equal(t, BlockData{0xca, 0xfe}, b)

	out, err := Encode(obj)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	_, err = NewObject(obj.Class, &ClassDesc{Name: "X", Flags: ScSerializable}, BlockData("x"))
	assert.NoError(t, err)
}

func TestEncode_UnsupportedClass(t *testing.T) {
	desc := &ClassDesc{Name: "W", Flags: ScSerializable | ScWriteMethod}
	obj, err := NewObject(desc)
	require.NoError(t, err)
	_, err = Encode(obj)
	assert.ErrorIs(t, err, ErrUnsupportedFeature)
}

type failingWriter struct{}

var errWrite = errors.New("write failed")

func (failingWriter) Write(p []byte) (int, error) { return 0, errWrite }

func TestNewEncoder(t *testing.T) {
	_, err := NewEncoder(failingWriter{})
	assert.ErrorIs(t, err, errWrite)

	var buf bytes.Buffer
	enc, err := NewEncoder(&buf)
	require.NoError(t, err)
	require.NoError(t, enc.WriteObject("a"))
	require.NoError(t, enc.WriteObject(BlockData{0x01}))
	assert.Equal(t, []byte{0xac, 0xed, 0x00, 0x05, TcBlockdata, 1, 'a', TcBlockdata, 1, 0x01}, buf.Bytes())

	dec, err := NewDecoder(buf.Bytes())
	require.NoError(t, err)
	var got []any
	for dec.More() {
		v, err := dec.ReadObject()
		require.NoError(t, err)
		got = append(got, v)
	}
	assert.Equal(t, []any{BlockData("a"), BlockData{0x01}}, got)
}
