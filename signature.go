package dbus

import (
	"errors"
	"fmt"
	"slices"
)

// Limits imposed by the signature grammar: a signature string is at
// most 255 bytes, and arrays and structs (including dict entries) may
// each nest at most 32 levels deep.
const (
	maxSignatureLen = 255
	maxNestingDepth = 32
)

// A Kind identifies one of the categories of the DBus type system.
type Kind byte

const (
	KindInvalid Kind = iota
	KindByte
	KindBool
	KindInt16
	KindUint16
	KindInt32
	KindUint32
	KindInt64
	KindUint64
	KindDouble
	KindString
	KindObjectPath
	KindSignature
	KindVariant
	KindArray
	KindStruct
	KindDictEntry
)

var kindNames = [...]string{
	KindInvalid:    "invalid",
	KindByte:       "byte",
	KindBool:       "bool",
	KindInt16:      "int16",
	KindUint16:     "uint16",
	KindInt32:      "int32",
	KindUint32:     "uint32",
	KindInt64:      "int64",
	KindUint64:     "uint64",
	KindDouble:     "double",
	KindString:     "string",
	KindObjectPath: "object path",
	KindSignature:  "signature",
	KindVariant:    "variant",
	KindArray:      "array",
	KindStruct:     "struct",
	KindDictEntry:  "dict entry",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", byte(k))
}

// IsBasic reports whether k is one of the basic (non-container)
// kinds. Basic kinds are the only kinds permitted as dict entry keys.
func (k Kind) IsBasic() bool {
	return basicKinds.Has(k)
}

// A Type is a node in the tree describing one complete DBus type.
//
// Types are immutable, and the descriptors of equal signature
// fragments may be shared. They are safe for concurrent use.
type Type struct {
	kind   Kind
	str    string
	elem   *Type   // array element or dict entry value type
	key    *Type   // dict entry key type
	fields []*Type // struct field types
}

// Kind returns the type's kind.
func (t *Type) Kind() Kind {
	return t.kind
}

// String returns the signature fragment the type was parsed from, as
// described in the DBus specification.
func (t *Type) String() string {
	return t.str
}

// IsBasic reports whether t is a basic (non-container) type.
func (t *Type) IsBasic() bool {
	return t.kind.IsBasic()
}

// Elem returns the element type of an array, or the value type of a
// dict entry. It panics for other kinds.
func (t *Type) Elem() *Type {
	switch t.kind {
	case KindArray, KindDictEntry:
		return t.elem
	}
	panic(fmt.Sprintf("dbus: Elem of %s type %q", t.kind, t.str))
}

// Key returns the key type of a dict entry. It panics for other
// kinds.
func (t *Type) Key() *Type {
	if t.kind != KindDictEntry {
		panic(fmt.Sprintf("dbus: Key of %s type %q", t.kind, t.str))
	}
	return t.key
}

// NumField returns the number of fields in a struct. It panics for
// other kinds.
func (t *Type) NumField() int {
	if t.kind != KindStruct {
		panic(fmt.Sprintf("dbus: NumField of %s type %q", t.kind, t.str))
	}
	return len(t.fields)
}

// Field returns the type of the i-th struct field. It panics for
// other kinds.
func (t *Type) Field(i int) *Type {
	if t.kind != KindStruct {
		panic(fmt.Sprintf("dbus: Field of %s type %q", t.kind, t.str))
	}
	return t.fields[i]
}

// Align returns the alignment in bytes of values of type t in the
// wire format.
func (t *Type) Align() int {
	switch t.kind {
	case KindByte, KindSignature, KindVariant:
		return 1
	case KindInt16, KindUint16:
		return 2
	case KindBool, KindInt32, KindUint32, KindString, KindObjectPath, KindArray:
		return 4
	case KindInt64, KindUint64, KindDouble, KindStruct, KindDictEntry:
		return 8
	}
	panic(fmt.Sprintf("dbus: Align of %s type %q", t.kind, t.str))
}

// A Signature describes the types of an ordered sequence of DBus
// values, such as a message body.
type Signature struct {
	str   string
	types []*Type
}

// String returns the string encoding of the Signature, as described
// in the DBus specification.
func (s Signature) String() string {
	return s.str
}

// IsZero reports whether the signature is the zero value, which
// describes an empty value sequence.
func (s Signature) IsZero() bool {
	return len(s.types) == 0
}

// Equal reports whether s and o describe the same type sequence.
func (s Signature) Equal(o Signature) bool {
	return s.str == o.str
}

// Types returns the descriptors of the complete types in s, in order.
func (s Signature) Types() []*Type {
	return slices.Clone(s.types)
}

// Single returns the signature's type descriptor if it consists of
// exactly one complete type, as variant signatures must.
func (s Signature) Single() (*Type, bool) {
	if len(s.types) != 1 {
		return nil, false
	}
	return s.types[0], true
}

var sigCache cache[string, Signature]

// ParseSignature parses a DBus type signature string. The empty
// string is a valid signature describing zero values.
func ParseSignature(sig string) (Signature, error) {
	if ret, err := sigCache.Get(sig); err == nil {
		return ret, nil
	} else if !errors.Is(err, errNotFound) {
		return Signature{}, err
	}

	ret, err := parseSignature(sig)
	if err != nil {
		sigCache.SetErr(sig, err)
		return Signature{}, err
	}
	sigCache.Set(sig, ret)
	return ret, nil
}

// MustParseSignature is like [ParseSignature], but panics if the
// signature is invalid. It is intended for signature constants.
func MustParseSignature(sig string) Signature {
	ret, err := ParseSignature(sig)
	if err != nil {
		panic(err)
	}
	return ret
}

func parseSignature(sig string) (Signature, error) {
	if len(sig) > maxSignatureLen {
		return Signature{}, SignatureError{sig, fmt.Errorf("signature is %d bytes, exceeding the %d byte limit", len(sig), maxSignatureLen)}
	}

	var (
		rest  = sig
		types []*Type
		t     *Type
		err   error
	)
	for rest != "" {
		t, rest, err = parseOne(rest, false, parseDepth{})
		if err != nil {
			return Signature{}, SignatureError{sig, err}
		}
		types = append(types, t)
	}
	return Signature{str: sig, types: types}, nil
}

// parseDepth tracks container nesting while parsing. Arrays count
// separately from structs and dict entries, which share a limit.
type parseDepth struct {
	arrays, structs int
}

// parseOne consumes the first complete type from the front of sig,
// and returns its descriptor as well as the remainder of the type
// string.
func parseOne(sig string, inArray bool, depth parseDepth) (t *Type, rest string, err error) {
	if sig == "" {
		return nil, "", errors.New("missing type")
	}
	if ret, ok := strToType[sig[0]]; ok {
		return ret, sig[1:], nil
	}

	switch sig[0] {
	case 'a':
		if depth.arrays++; depth.arrays > maxNestingDepth {
			return nil, "", fmt.Errorf("array nesting deeper than %d levels", maxNestingDepth)
		}
		if len(sig) == 1 {
			return nil, "", errors.New("missing array element type")
		}
		elem, rest, err := parseOne(sig[1:], true, depth)
		if err != nil {
			return nil, "", err
		}
		return &Type{
			kind: KindArray,
			str:  sig[:len(sig)-len(rest)],
			elem: elem,
		}, rest, nil
	case '(':
		if depth.structs++; depth.structs > maxNestingDepth {
			return nil, "", fmt.Errorf("struct nesting deeper than %d levels", maxNestingDepth)
		}
		var (
			fields []*Type
			field  *Type
		)
		rest = sig[1:]
		for rest != "" && rest[0] != ')' {
			field, rest, err = parseOne(rest, false, depth)
			if err != nil {
				return nil, "", err
			}
			fields = append(fields, field)
		}
		if rest == "" {
			return nil, "", errors.New("missing closing ) in struct definition")
		}
		if len(fields) == 0 {
			return nil, "", errors.New("empty struct definition")
		}
		rest = rest[1:]
		return &Type{
			kind:   KindStruct,
			str:    sig[:len(sig)-len(rest)],
			fields: fields,
		}, rest, nil
	case '{':
		if !inArray {
			return nil, "", errors.New("dict entry type found outside array")
		}
		if depth.structs++; depth.structs > maxNestingDepth {
			return nil, "", fmt.Errorf("struct nesting deeper than %d levels", maxNestingDepth)
		}
		key, rest, err := parseOne(sig[1:], false, depth)
		if err != nil {
			return nil, "", err
		}
		if !key.IsBasic() {
			return nil, "", fmt.Errorf("invalid dict entry key type %s, must be a dbus basic type", key)
		}
		if rest != "" && rest[0] == '}' {
			return nil, "", ErrBadDictEntry
		}
		val, rest, err := parseOne(rest, false, depth)
		if err != nil {
			return nil, "", err
		}
		if rest == "" {
			return nil, "", errors.New("missing closing } in dict entry definition")
		}
		if rest[0] != '}' {
			return nil, "", ErrBadDictEntry
		}
		rest = rest[1:]
		return &Type{
			kind: KindDictEntry,
			str:  sig[:len(sig)-len(rest)],
			key:  key,
			elem: val,
		}, rest, nil
	default:
		return nil, "", fmt.Errorf("unknown type specifier %q", sig[0])
	}
}
