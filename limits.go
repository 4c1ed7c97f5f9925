package dbus

import "fmt"

// intBounds is the inclusive range of values representable by an
// integer wire type. min is meaningful for signed types only; max is
// the magnitude of the largest positive value.
type intBounds struct {
	min int64
	max uint64
}

var intRanges = map[Kind]intBounds{
	KindByte:   {0, 0xff},
	KindUint16: {0, 0xffff},
	KindUint32: {0, 0xffffffff},
	KindUint64: {0, 0xffffffffffffffff},
	KindInt16:  {-0x8000, 0x7fff},
	KindInt32:  {-0x80000000, 0x7fffffff},
	KindInt64:  {-0x8000000000000000, 0x7fffffffffffffff},
}

// intValue extracts the integer payload of v. If signed is true the
// payload is i, otherwise u. ok is false when v is not an integer
// value at all.
func intValue(v Value) (i int64, u uint64, signed, ok bool) {
	switch n := v.(type) {
	case Byte:
		return 0, uint64(n), false, true
	case Uint16:
		return 0, uint64(n), false, true
	case Uint32:
		return 0, uint64(n), false, true
	case Uint64:
		return 0, uint64(n), false, true
	case Int16:
		return int64(n), 0, true, true
	case Int32:
		return int64(n), 0, true, true
	case Int64:
		return int64(n), 0, true, true
	}
	return 0, 0, false, false
}

// checkInt validates that v is an integer value lying within the
// representable range of the integer wire type t, and returns the
// value's two's complement bits. The caller truncates the bits to the
// wire width. Any integer kind of value is accepted for any integer
// wire type; the comparison against the type's bounds is exact, with
// the signed and unsigned 64-bit lanes compared separately so that no
// value is rounded or wrapped before the check.
func checkInt(t *Type, v Value) (uint64, error) {
	if !intKinds.Has(t.kind) {
		panic(fmt.Sprintf("dbus: range check for non-integer type %q", t.str))
	}
	bounds := intRanges[t.kind]
	i, u, signed, ok := intValue(v)
	if !ok {
		return 0, typeErr(t, "need an integer value, got %s", KindOf(v))
	}
	if signed {
		if i < bounds.min || (i > 0 && uint64(i) > bounds.max) {
			return 0, RangeError{t.String(), v}
		}
		return uint64(i), nil
	}
	if u > bounds.max {
		return 0, RangeError{t.String(), v}
	}
	return u, nil
}
