package main

import (
	"bytes"
	"testing"

	"github.com/lujjjh/go-javaobj"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleGraph(t *testing.T) *javaobj.Object {
	t.Helper()
	base := &javaobj.ClassDesc{
		Name:             "Base",
		SerialVersionUID: 1,
		Flags:            javaobj.ScSerializable,
		Fields:           []javaobj.FieldDesc{{Name: "id", Kind: javaobj.KindInt}},
	}
	node := &javaobj.ClassDesc{
		Name:             "Node",
		SerialVersionUID: 2,
		Flags:            javaobj.ScSerializable,
		Fields: []javaobj.FieldDesc{
			{Name: "name", Kind: javaobj.KindObject, ClassName: "Ljava/lang/String;"},
			{Name: "peer", Kind: javaobj.KindObject, ClassName: "LNode;"},
		},
		Super: base,
	}
	leaf, err := javaobj.NewObject(node, int32(2), "leaf", nil)
	require.NoError(t, err)
	root, err := javaobj.NewObject(node, int32(1), "root", leaf)
	require.NoError(t, err)

	b, err := javaobj.Encode(root)
	require.NoError(t, err)
	v, _, err := javaobj.Decode(b)
	require.NoError(t, err)
	return v.(*javaobj.Object)
}

func TestPrinter(t *testing.T) {
	root := sampleGraph(t)

	var buf bytes.Buffer
	p := newPrinter(&buf)
	p.print(root)
	p.print(root)

	want := `  object Node @0x7E0004 {
    id = 1 (int)
    name = "root"
    peer = object Node @0x7E0006 {
      id = 2 (int)
      name = "leaf"
      peer = null
    }
  }
  @0x7E0004
`
	assert.Equal(t, want, buf.String())
}

func TestPrinter_Values(t *testing.T) {
	var buf bytes.Buffer
	p := newPrinter(&buf)
	p.print(javaobj.BlockData{0x01, 0xab})
	p.print(nil)
	p.print(int64(-3))
	assert.Equal(t, "  blockdata[2] 01 ab\n  null\n  -3 (long)\n", buf.String())
}

func TestCollectClasses(t *testing.T) {
	classes := collectClasses(sampleGraph(t))
	var names []string
	for _, c := range classes {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Node", "Base"}, names)

	s := summarize(classes[0])
	assert.Equal(t, "Base", s.Super)
	assert.Equal(t, "SC_SERIALIZABLE", s.Flags)
	assert.Equal(t, []fieldSummary{
		{Name: "id", Type: "int"},
		{Name: "name", Type: "Ljava/lang/String;"},
		{Name: "peer", Type: "LNode;"},
	}, s.Fields)
}
