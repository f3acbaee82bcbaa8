// Command javaobj inspects java.io object serialization streams.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/creachadair/command"
	"github.com/creachadair/flax"
	"github.com/klauspost/compress/gzip"
	"github.com/kr/pretty"
	"github.com/lujjjh/go-javaobj"
	"go.uber.org/zap"
)

type globalFlags struct {
	Gzip     bool `flag:"gzip,Input is gzip-compressed"`
	Trace    bool `flag:"trace,Log every type code to stderr"`
	MaxDepth int  `flag:"max-depth,Maximum record nesting depth"`
}

var globalArgs = globalFlags{MaxDepth: javaobj.DefaultMaxDepth}

func main() {
	root := &command.C{
		Name:     "javaobj",
		Usage:    "command args...",
		SetFlags: command.Flags(flax.MustBind, &globalArgs),
		Commands: []*command.C{
			{
				Name:  "dump",
				Usage: "dump file",
				Help: `Decode every record of a stream and print it as a tree.

Objects, arrays and classes that were already printed are shown as a
back-reference to their handle, such as @0x7E0004. Use "-" to read
standard input.`,
				Run: command.Adapt(runDump),
			},
			{
				Name:  "classes",
				Usage: "classes file",
				Help:  "List the class descriptors reachable from the first record, with their flattened fields.",
				Run:   command.Adapt(runClasses),
			},
			{
				Name:  "block",
				Usage: "block text",
				Help:  "Write a stream holding text as a single block data record to standard output.",
				Run:   command.Adapt(runBlock),
			},
			command.HelpCommand(nil),
			command.VersionCommand(),
		},
	}
	env := root.NewEnv(nil)
	command.RunOrFail(env, os.Args[1:])
}

func readInput(path string) ([]byte, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	if globalArgs.Gzip {
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("opening gzip stream: %w", err)
		}
		defer zr.Close()
		r = zr
	}
	return io.ReadAll(r)
}

// decoderOptions returns the decoder options selected by global flags and a
// function that flushes the trace log.
func decoderOptions() ([]javaobj.Option, func(), error) {
	opts := []javaobj.Option{javaobj.WithMaxDepth(globalArgs.MaxDepth)}
	if !globalArgs.Trace {
		return opts, func() {}, nil
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return nil, nil, fmt.Errorf("creating trace logger: %w", err)
	}
	opts = append(opts, javaobj.WithTracer(javaobj.NewZapTracer(logger)))
	return opts, func() { logger.Sync() }, nil
}

func runDump(env *command.Env, path string) error {
	data, err := readInput(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	opts, flush, err := decoderOptions()
	if err != nil {
		return err
	}
	defer flush()

	dec, err := javaobj.NewDecoder(data, opts...)
	if err != nil {
		return err
	}
	p := newPrinter(os.Stdout)
	for i := 0; dec.More(); i++ {
		v, err := dec.ReadObject()
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		fmt.Printf("record %d:\n", i)
		p.print(v)
	}
	fmt.Printf("%d handles\n", dec.Handles())
	return nil
}

type fieldSummary struct {
	Name string
	Type string
}

type classSummary struct {
	Name             string
	SerialVersionUID string
	Flags            string
	Super            string
	Fields           []fieldSummary
}

func summarize(desc *javaobj.ClassDesc) classSummary {
	s := classSummary{
		Name:             desc.Name,
		SerialVersionUID: fmt.Sprintf("0x%016X", uint64(desc.SerialVersionUID)),
		Flags:            desc.Flags.String(),
	}
	if desc.Super != nil {
		s.Super = desc.Super.Name
	}
	for _, f := range javaobj.Flatten(desc) {
		typ := f.Kind.String()
		if f.ClassName != "" {
			typ = f.ClassName
		}
		s.Fields = append(s.Fields, fieldSummary{Name: f.Name, Type: typ})
	}
	return s
}

func runClasses(env *command.Env, path string) error {
	data, err := readInput(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	opts, flush, err := decoderOptions()
	if err != nil {
		return err
	}
	defer flush()

	v, trailing, err := javaobj.Decode(data, opts...)
	if err != nil {
		return err
	}
	for _, desc := range collectClasses(v) {
		fmt.Printf("%# v\n", pretty.Formatter(summarize(desc)))
	}
	if trailing > 0 {
		fmt.Printf("%d trailing bytes after the first record\n", trailing)
	}
	return nil
}

func runBlock(env *command.Env, text string) error {
	b, err := javaobj.Encode(text)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(b)
	return err
}
