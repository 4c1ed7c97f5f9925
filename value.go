package dbus

import "bytes"

// A Value is one DBus value, in the generic representation the
// marshaling engine operates on. It is a closed union: the concrete
// types are [Byte], [Bool], [Int16], [Uint16], [Int32], [Uint32],
// [Int64], [Uint64], [Double], [String], [ObjectPath], [Signature],
// [Bytes], [Sequence], [Dict] and [Variant].
//
// Sequence represents both arrays and struct field lists; the
// signature a value is encoded against decides which. Arrays of byte
// may equivalently be represented as Bytes, which encodes in a single
// write. [Equal] treats the two representations as equal.
type Value interface {
	kind() Kind
}

// Byte is a DBus byte value.
type Byte byte

// Bool is a DBus boolean value.
type Bool bool

// Int16 is a DBus signed 16-bit integer value.
type Int16 int16

// Uint16 is a DBus unsigned 16-bit integer value.
type Uint16 uint16

// Int32 is a DBus signed 32-bit integer value.
type Int32 int32

// Uint32 is a DBus unsigned 32-bit integer value.
type Uint32 uint32

// Int64 is a DBus signed 64-bit integer value.
type Int64 int64

// Uint64 is a DBus unsigned 64-bit integer value.
type Uint64 uint64

// Double is a DBus double-precision float value.
type Double float64

// String is a DBus string value. Strings must be valid UTF-8.
type String string

// ObjectPath is a DBus object path value, such as
// "/org/freedesktop/DBus". Paths must conform to the object path
// grammar, see [ValidObjectPath].
type ObjectPath string

// Bytes is an array of DBus bytes in raw buffer form.
type Bytes []byte

// A Sequence is an ordered list of DBus values. It represents array
// values as well as struct field lists.
type Sequence []Value

// A DictEntry is one key/value pair of a Dict.
type DictEntry struct {
	Key   Value
	Value Value
}

// A Dict is an ordered list of key/value pairs, the value form of
// arrays of dict entries.
//
// Dict does not deduplicate: decoding preserves every entry in wire
// order, including entries with duplicate keys, and encoding writes
// entries in Dict order.
type Dict []DictEntry

// A Variant is a DBus value paired with its type signature. The
// signature must describe exactly one complete type.
type Variant struct {
	Sig   Signature
	Value Value
}

func (Byte) kind() Kind       { return KindByte }
func (Bool) kind() Kind       { return KindBool }
func (Int16) kind() Kind      { return KindInt16 }
func (Uint16) kind() Kind     { return KindUint16 }
func (Int32) kind() Kind      { return KindInt32 }
func (Uint32) kind() Kind     { return KindUint32 }
func (Int64) kind() Kind      { return KindInt64 }
func (Uint64) kind() Kind     { return KindUint64 }
func (Double) kind() Kind     { return KindDouble }
func (String) kind() Kind     { return KindString }
func (ObjectPath) kind() Kind { return KindObjectPath }
func (Signature) kind() Kind  { return KindSignature }
func (Bytes) kind() Kind      { return KindArray }
func (Sequence) kind() Kind   { return KindArray }
func (Dict) kind() Kind       { return KindArray }
func (Variant) kind() Kind    { return KindVariant }

// KindOf returns the kind of v's concrete type. The kind of a nil
// Value is KindInvalid. Sequence, Dict and Bytes all report
// KindArray: which container a Sequence encodes as is decided by the
// signature, not the value.
func KindOf(v Value) Kind {
	if v == nil {
		return KindInvalid
	}
	return v.kind()
}

// Equal reports whether two values are structurally equal.
//
// Sequences are compared element-wise. Dicts are compared as
// multisets of entries, ignoring order. A Bytes value equals the
// Sequence holding the same bytes as Byte values. Variants compare by
// signature and inner value. Numeric values are equal only if their
// kinds match exactly.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch av := a.(type) {
	case Bytes:
		switch bv := b.(type) {
		case Bytes:
			return bytes.Equal(av, bv)
		case Sequence:
			return bytesEqualSequence(av, bv)
		}
		return false
	case Sequence:
		switch bv := b.(type) {
		case Bytes:
			return bytesEqualSequence(bv, av)
		case Sequence:
			if len(av) != len(bv) {
				return false
			}
			for i := range av {
				if !Equal(av[i], bv[i]) {
					return false
				}
			}
			return true
		}
		return false
	case Dict:
		bv, ok := b.(Dict)
		if !ok || len(av) != len(bv) {
			return false
		}
		// Multiset comparison: every entry of a must pair up with a
		// distinct equal entry of b.
		used := make([]bool, len(bv))
	entries:
		for _, ae := range av {
			for i, be := range bv {
				if used[i] {
					continue
				}
				if Equal(ae.Key, be.Key) && Equal(ae.Value, be.Value) {
					used[i] = true
					continue entries
				}
			}
			return false
		}
		return true
	case Variant:
		bv, ok := b.(Variant)
		return ok && av.Sig.Equal(bv.Sig) && Equal(av.Value, bv.Value)
	case Signature:
		bv, ok := b.(Signature)
		return ok && av.Equal(bv)
	default:
		return a == b
	}
}

func bytesEqualSequence(bs Bytes, seq Sequence) bool {
	if len(bs) != len(seq) {
		return false
	}
	for i, v := range seq {
		b, ok := v.(Byte)
		if !ok || byte(b) != bs[i] {
			return false
		}
	}
	return true
}
