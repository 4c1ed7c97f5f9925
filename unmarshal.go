package dbus

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"unicode/utf8"

	"github.com/tdbus/dbus/fragments"
)

// maxVariantDepth bounds recursion into nested variants while
// decoding. Signature parsing bounds array and struct nesting, but
// every variant embeds a fresh signature, so a crafted message could
// otherwise nest variants without limit.
const maxVariantDepth = 64

// Unmarshal decodes the DBus wire encoding of a message body against
// sig, using the given byte ordering, and returns one [Value] per
// complete type in the signature. The zero Signature decodes an empty
// body to an empty slice.
//
// Decoding applies the inverse of the rules used by [Marshal]:
// integer wire types decode to their exact value type, arrays of byte
// decode to [Bytes], other arrays to [Sequence], arrays of dict
// entries to [Dict] in wire order with duplicate keys preserved,
// structs to [Sequence], and variants to [Variant] carrying the
// embedded signature, which the wire data self-describes.
//
// Strings must be valid UTF-8 and object paths must satisfy the
// object path grammar. A body that ends in the middle of a value
// fails with an error wrapping [ErrTruncated]; a body with bytes left
// over after the last value is also an error.
func Unmarshal(sig Signature, data []byte, ord fragments.ByteOrder) ([]Value, error) {
	in := bytes.NewReader(data)
	d := fragments.Decoder{Order: ord, In: in}
	vals, err := unmarshalArgs(&d, sig)
	if err != nil {
		return nil, err
	}
	if n := in.Len(); n > 0 {
		return nil, fmt.Errorf("%d leftover bytes after message body", n)
	}
	return vals, nil
}

func unmarshalArgs(d *fragments.Decoder, sig Signature) ([]Value, error) {
	vals := make([]Value, 0, len(sig.types))
	for _, t := range sig.types {
		v, err := unmarshalValue(d, t, 0)
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
	}
	return vals, nil
}

// readErr converts the io errors of an exhausted input into
// ErrTruncated, annotated with the wire type being decoded. Errors
// that already carry decode context pass through unchanged.
func readErr(err error, what string) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("reading %s: %w", what, ErrTruncated)
	}
	return err
}

// unmarshalValue decodes a single value of type t.
func unmarshalValue(d *fragments.Decoder, t *Type, depth int) (Value, error) {
	switch t.kind {
	case KindByte:
		u, err := d.Uint8()
		if err != nil {
			return nil, readErr(err, t.str)
		}
		return Byte(u), nil
	case KindInt16:
		u, err := d.Uint16()
		if err != nil {
			return nil, readErr(err, t.str)
		}
		return Int16(u), nil
	case KindUint16:
		u, err := d.Uint16()
		if err != nil {
			return nil, readErr(err, t.str)
		}
		return Uint16(u), nil
	case KindInt32:
		u, err := d.Uint32()
		if err != nil {
			return nil, readErr(err, t.str)
		}
		return Int32(u), nil
	case KindUint32:
		u, err := d.Uint32()
		if err != nil {
			return nil, readErr(err, t.str)
		}
		return Uint32(u), nil
	case KindInt64:
		u, err := d.Uint64()
		if err != nil {
			return nil, readErr(err, t.str)
		}
		return Int64(u), nil
	case KindUint64:
		u, err := d.Uint64()
		if err != nil {
			return nil, readErr(err, t.str)
		}
		return Uint64(u), nil
	case KindBool:
		u, err := d.Uint32()
		if err != nil {
			return nil, readErr(err, t.str)
		}
		if u > 1 {
			return nil, typeErr(t, "invalid boolean value %d", u)
		}
		return Bool(u == 1), nil
	case KindDouble:
		u, err := d.Uint64()
		if err != nil {
			return nil, readErr(err, t.str)
		}
		return Double(math.Float64frombits(u)), nil
	case KindString:
		s, err := d.String()
		if err != nil {
			return nil, readErr(err, t.str)
		}
		if !utf8.ValidString(s) {
			return nil, typeErr(t, "%w", ErrInvalidUTF8)
		}
		return String(s), nil
	case KindObjectPath:
		s, err := d.String()
		if err != nil {
			return nil, readErr(err, t.str)
		}
		if !ValidObjectPath(s) {
			return nil, NameError{"object path", s}
		}
		return ObjectPath(s), nil
	case KindSignature:
		s, err := d.Signature()
		if err != nil {
			return nil, readErr(err, t.str)
		}
		sig, err := ParseSignature(s)
		if err != nil {
			return nil, err
		}
		return sig, nil
	case KindVariant:
		return unmarshalVariant(d, t, depth)
	case KindArray:
		return unmarshalArray(d, t, depth)
	case KindStruct:
		fields := make(Sequence, 0, len(t.fields))
		err := d.Struct(func() error {
			for _, ft := range t.fields {
				v, err := unmarshalValue(d, ft, depth)
				if err != nil {
					return err
				}
				fields = append(fields, v)
			}
			return nil
		})
		if err != nil {
			return nil, readErr(err, t.str)
		}
		return fields, nil
	default:
		return nil, typeErr(t, "no decoding for %s values", t.kind)
	}
}

func unmarshalVariant(d *fragments.Decoder, t *Type, depth int) (Value, error) {
	if depth++; depth > maxVariantDepth {
		return nil, typeErr(t, "variants nested deeper than %d levels", maxVariantDepth)
	}
	s, err := d.Signature()
	if err != nil {
		return nil, readErr(err, t.str)
	}
	sig, err := ParseSignature(s)
	if err != nil {
		return nil, err
	}
	inner, ok := sig.Single()
	if !ok {
		return nil, typeErr(t, "variant signature %q must describe exactly one complete type", s)
	}
	v, err := unmarshalValue(d, inner, depth)
	if err != nil {
		return nil, err
	}
	return Variant{Sig: sig, Value: v}, nil
}

func unmarshalArray(d *fragments.Decoder, t *Type, depth int) (Value, error) {
	elem := t.elem
	if elem.kind == KindByte {
		bs, err := d.Bytes()
		if err != nil {
			return nil, readErr(err, t.str)
		}
		return Bytes(bs), nil
	}
	if elem.kind == KindDictEntry {
		dict := Dict{}
		_, err := d.Array(elem.Align(), func(int) error {
			var ent DictEntry
			err := d.Struct(func() error {
				k, err := unmarshalValue(d, elem.key, depth)
				if err != nil {
					return err
				}
				v, err := unmarshalValue(d, elem.elem, depth)
				if err != nil {
					return err
				}
				ent = DictEntry{Key: k, Value: v}
				return nil
			})
			if err != nil {
				return err
			}
			dict = append(dict, ent)
			return nil
		})
		if err != nil {
			return nil, readErr(err, t.str)
		}
		return dict, nil
	}
	seq := Sequence{}
	_, err := d.Array(elem.Align(), func(int) error {
		v, err := unmarshalValue(d, elem, depth)
		if err != nil {
			return err
		}
		seq = append(seq, v)
		return nil
	})
	if err != nil {
		return nil, readErr(err, t.str)
	}
	return seq, nil
}
