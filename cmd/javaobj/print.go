package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/creachadair/mds/mapset"
	"github.com/lujjjh/go-javaobj"
)

// printer writes decoded values as an indented tree. Each object, array and
// class is expanded once; later occurrences print as a handle reference.
type printer struct {
	w     io.Writer
	depth int
	seen  mapset.Set[any]
}

func newPrinter(w io.Writer) *printer {
	return &printer{w: w, seen: mapset.New[any]()}
}

func (p *printer) line(format string, args ...any) {
	fmt.Fprintf(p.w, "%s%s\n", strings.Repeat("  ", p.depth+1), fmt.Sprintf(format, args...))
}

// visit reports whether v is printed for the first time.
func (p *printer) visit(v any) bool {
	if p.seen.Has(v) {
		return false
	}
	p.seen.Add(v)
	return true
}

func (p *printer) print(v any) {
	p.printNamed("", v)
}

func (p *printer) printNamed(name string, v any) {
	prefix := ""
	if name != "" {
		prefix = name + " = "
	}
	switch v := v.(type) {
	case nil:
		p.line("%snull", prefix)
	case string:
		p.line("%s%s", prefix, strconv.Quote(v))
	case javaobj.BlockData:
		p.line("%sblockdata[%d] % x", prefix, len(v), []byte(v))
	case *javaobj.ClassDesc:
		p.line("%sclassdesc %s", prefix, v)
	case *javaobj.Class:
		p.line("%sclass %s @%s", prefix, v.Desc, v.Handle)
	case *javaobj.Object:
		if !p.visit(v) {
			p.line("%s@%s", prefix, v.Handle)
			return
		}
		p.line("%sobject %s @%s {", prefix, v.Class.Name, v.Handle)
		p.depth++
		for _, f := range v.Fields() {
			p.printNamed(f.Name, f.Value)
		}
		p.depth--
		p.line("}")
	case *javaobj.Array:
		if !p.visit(v) {
			p.line("%s@%s", prefix, v.Handle)
			return
		}
		p.line("%sarray %s @%s (%d) [", prefix, v.Class.Name, v.Handle, v.Len())
		p.depth++
		for i, e := range v.Elements {
			p.printNamed(strconv.Itoa(i), e)
		}
		p.depth--
		p.line("]")
	default:
		p.line("%s%v (%s)", prefix, v, javaobj.KindOf(v))
	}
}

// collectClasses returns every class descriptor reachable from v, in the
// order they are first encountered.
func collectClasses(v any) []*javaobj.ClassDesc {
	var out []*javaobj.ClassDesc
	seen := mapset.New[any]()
	var addDesc func(*javaobj.ClassDesc)
	addDesc = func(d *javaobj.ClassDesc) {
		for ; d != nil && !seen.Has(d); d = d.Super {
			seen.Add(d)
			out = append(out, d)
			for _, f := range d.Fields {
				addDesc(f.Class)
			}
		}
	}
	var walk func(any)
	walk = func(v any) {
		switch v := v.(type) {
		case *javaobj.ClassDesc:
			addDesc(v)
		case *javaobj.Class:
			addDesc(v.Desc)
		case *javaobj.Object:
			if seen.Has(v) {
				return
			}
			seen.Add(v)
			addDesc(v.Class)
			for _, f := range v.Fields() {
				walk(f.Value)
			}
		case *javaobj.Array:
			if seen.Has(v) {
				return
			}
			seen.Add(v)
			addDesc(v.Class)
			for _, e := range v.Elements {
				walk(e)
			}
		}
	}
	walk(v)
	return out
}
