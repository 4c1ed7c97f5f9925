package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/creachadair/command"
	"github.com/creachadair/flax"
	"github.com/kr/pretty"
	"github.com/tdbus/dbus"
	"github.com/tdbus/dbus/fragments"
)

func main() {
	root := &command.C{
		Name:  "dbuswire",
		Usage: "command args...",
		Help:  "Inspect DBus wire data: parse type signatures and decode messages.",
		Commands: []*command.C{
			{
				Name:  "sig",
				Usage: "sig signature...",
				Help: `Parse DBus type signatures.

Each argument is parsed as a type signature and printed as a type
tree, or as a parse error. The exit status is nonzero if any of the
signatures are invalid.`,
				Run: runSig,
			},
			{
				Name:  "decode",
				Usage: "decode [file]",
				Help: `Decode a DBus wire-format message.

Reads a complete message from the given file, or from standard input,
and pretty-prints its header fields and body. With --sig, the input
is a bare message body with the given signature instead, decoded in
the byte order given by --order.`,
				SetFlags: command.Flags(flax.MustBind, &decodeArgs),
				Run:      runDecode,
			},
			command.HelpCommand(nil),
			command.VersionCommand(),
		},
	}

	command.RunOrFail(root.NewEnv(nil), os.Args[1:])
}

func runSig(env *command.Env) error {
	if len(env.Args) == 0 {
		return env.Usagef("sig requires at least one signature argument.")
	}

	var out indenter
	invalid := 0
	for _, arg := range env.Args {
		out.indent(0)
		sig, err := dbus.ParseSignature(arg)
		if err != nil {
			out.v(err)
			invalid++
			continue
		}
		if sig.IsZero() {
			out.f("%q: empty signature, describes no values", arg)
			continue
		}
		out.s(arg)
		for _, t := range sig.Types() {
			printType(&out, 1, "", t)
		}
	}
	if invalid > 0 {
		return fmt.Errorf("%d of %d signatures invalid", invalid, len(env.Args))
	}
	return nil
}

func printType(out *indenter, depth int, label string, t *dbus.Type) {
	out.indent(depth)
	out.f("%s%s: %s, align %d", label, t, t.Kind(), t.Align())
	switch t.Kind() {
	case dbus.KindArray:
		printType(out, depth+1, "", t.Elem())
	case dbus.KindDictEntry:
		printType(out, depth+1, "key ", t.Key())
		printType(out, depth+1, "value ", t.Elem())
	case dbus.KindStruct:
		for i := 0; i < t.NumField(); i++ {
			printType(out, depth+1, "", t.Field(i))
		}
	}
}

var decodeArgs struct {
	Hex   bool   `flag:"hex,Input is hex encoded, whitespace ignored"`
	Sig   string `flag:"sig,Decode a bare message body with this signature"`
	Order string `flag:"order,default=le,Byte order of a bare body: le or be"`
}

func runDecode(env *command.Env) error {
	args := growTo(env.Args, 1)
	var in io.Reader = os.Stdin
	if args[0] != "" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	if decodeArgs.Hex {
		data, err = hex.DecodeString(strings.Join(strings.Fields(string(data)), ""))
		if err != nil {
			return fmt.Errorf("decoding hex input: %w", err)
		}
	}

	if decodeArgs.Sig == "" {
		msg, err := dbus.UnmarshalMessage(data)
		if err != nil {
			return fmt.Errorf("decoding message: %w", err)
		}
		fmt.Printf("%# v\n", pretty.Formatter(msg))
		return nil
	}

	sig, err := dbus.ParseSignature(decodeArgs.Sig)
	if err != nil {
		return err
	}
	var ord fragments.ByteOrder
	switch decodeArgs.Order {
	case "le":
		ord = fragments.LittleEndian
	case "be":
		ord = fragments.BigEndian
	default:
		return env.Usagef("unknown byte order %q, want le or be.", decodeArgs.Order)
	}
	body, err := dbus.Unmarshal(sig, data, ord)
	if err != nil {
		return fmt.Errorf("decoding body: %w", err)
	}
	for _, v := range body {
		fmt.Printf("%# v\n", pretty.Formatter(v))
	}
	return nil
}
