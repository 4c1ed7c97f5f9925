package dbus

import (
	"math"
	"unicode/utf8"

	"github.com/tdbus/dbus/fragments"
)

// Marshal returns the DBus wire encoding of args interpreted against
// sig, using the given byte ordering. The result is a message body:
// its alignment is relative to offset zero, which on the wire is the
// start of the enclosing message.
//
// Marshal walks the signature's types in order, consuming one value
// per complete type. The number of values must match the number of
// types exactly, or Marshal returns an [ArityError]; the zero
// Signature with no values encodes to an empty body.
//
// Each value's concrete type must suit the wire type the signature
// declares at its position:
//
// Integer wire types (byte, int16, uint16, int32, uint32, int64,
// uint64) accept any of the integer value types, provided the value
// lies within the range of the wire type; out-of-range values return
// a [RangeError].
//
// Bool, double and string wire types require [Bool], [Double] and
// [String] values respectively. Strings must be valid UTF-8.
//
// Object path and signature wire types accept their dedicated value
// types, or [String] values that satisfy the corresponding grammar.
//
// Arrays accept [Sequence] values, or [Bytes] for arrays of byte.
// Arrays of dict entries accept [Dict] values and encode the entries
// in Dict order, without deduplicating keys.
//
// Structs accept [Sequence] values with exactly one element per
// field.
//
// Variants accept [Variant] values whose Sig describes exactly one
// complete type, and encode the signature followed by the inner
// value.
//
// Any other combination of wire type and value returns a [TypeError].
func Marshal(sig Signature, args []Value, ord fragments.ByteOrder) ([]byte, error) {
	e := fragments.Encoder{Order: ord}
	if err := marshalArgs(&e, sig, args); err != nil {
		return nil, err
	}
	return e.Out, nil
}

func marshalArgs(e *fragments.Encoder, sig Signature, args []Value) error {
	if len(args) != len(sig.types) {
		return ArityError{sig.str, len(sig.types), len(args)}
	}
	for i, t := range sig.types {
		if err := marshalValue(e, t, args[i]); err != nil {
			return err
		}
	}
	return nil
}

// marshalValue appends the wire form of a single value of type t.
func marshalValue(e *fragments.Encoder, t *Type, v Value) error {
	if v == nil {
		return typeErr(t, "missing value")
	}
	switch t.kind {
	case KindByte:
		bits, err := checkInt(t, v)
		if err != nil {
			return err
		}
		e.Uint8(uint8(bits))
	case KindInt16, KindUint16:
		bits, err := checkInt(t, v)
		if err != nil {
			return err
		}
		e.Uint16(uint16(bits))
	case KindInt32, KindUint32:
		bits, err := checkInt(t, v)
		if err != nil {
			return err
		}
		e.Uint32(uint32(bits))
	case KindInt64, KindUint64:
		bits, err := checkInt(t, v)
		if err != nil {
			return err
		}
		e.Uint64(bits)
	case KindBool:
		b, ok := v.(Bool)
		if !ok {
			return typeErr(t, "need a bool value, got %s", KindOf(v))
		}
		if b {
			e.Uint32(1)
		} else {
			e.Uint32(0)
		}
	case KindDouble:
		f, ok := v.(Double)
		if !ok {
			return typeErr(t, "need a double value, got %s", KindOf(v))
		}
		e.Uint64(math.Float64bits(float64(f)))
	case KindString:
		s, ok := v.(String)
		if !ok {
			return typeErr(t, "need a string value, got %s", KindOf(v))
		}
		if !utf8.ValidString(string(s)) {
			return typeErr(t, "%w", ErrInvalidUTF8)
		}
		e.String(string(s))
	case KindObjectPath:
		var p string
		switch pv := v.(type) {
		case ObjectPath:
			p = string(pv)
		case String:
			p = string(pv)
		default:
			return typeErr(t, "need an object path value, got %s", KindOf(v))
		}
		if !ValidObjectPath(p) {
			return NameError{"object path", p}
		}
		e.String(p)
	case KindSignature:
		var str string
		switch sv := v.(type) {
		case Signature:
			str = sv.str
		case String:
			if _, err := ParseSignature(string(sv)); err != nil {
				return err
			}
			str = string(sv)
		default:
			return typeErr(t, "need a signature value, got %s", KindOf(v))
		}
		e.Signature(str)
	case KindVariant:
		va, ok := v.(Variant)
		if !ok {
			return typeErr(t, "need a variant value, got %s", KindOf(v))
		}
		inner, ok := va.Sig.Single()
		if !ok {
			return typeErr(t, "variant signature %q must describe exactly one complete type", va.Sig.str)
		}
		e.Signature(va.Sig.str)
		return marshalValue(e, inner, va.Value)
	case KindArray:
		return marshalArray(e, t, v)
	case KindStruct:
		seq, ok := v.(Sequence)
		if !ok {
			return typeErr(t, "need a sequence value, got %s", KindOf(v))
		}
		if len(seq) != len(t.fields) {
			return ArityError{t.str, len(t.fields), len(seq)}
		}
		return e.Struct(func() error {
			for i, ft := range t.fields {
				if err := marshalValue(e, ft, seq[i]); err != nil {
					return err
				}
			}
			return nil
		})
	default:
		return typeErr(t, "no encoding for %s values", t.kind)
	}
	return nil
}

func marshalArray(e *fragments.Encoder, t *Type, v Value) error {
	elem := t.elem
	if bs, ok := v.(Bytes); ok {
		// Raw buffers encode in a single write, with no per-element
		// dispatch.
		if elem.kind != KindByte {
			return typeErr(t, "raw bytes need a byte array type")
		}
		e.Bytes(bs)
		return nil
	}
	if elem.kind == KindDictEntry {
		dict, ok := v.(Dict)
		if !ok {
			return typeErr(t, "need a dict value, got %s", KindOf(v))
		}
		return e.Array(elem.Align(), func() error {
			for _, ent := range dict {
				err := e.Struct(func() error {
					if err := marshalValue(e, elem.key, ent.Key); err != nil {
						return err
					}
					return marshalValue(e, elem.elem, ent.Value)
				})
				if err != nil {
					return err
				}
			}
			return nil
		})
	}
	seq, ok := v.(Sequence)
	if !ok {
		return typeErr(t, "need a sequence value, got %s", KindOf(v))
	}
	return e.Array(elem.Align(), func() error {
		for _, el := range seq {
			if err := marshalValue(e, elem, el); err != nil {
				return err
			}
		}
		return nil
	})
}
