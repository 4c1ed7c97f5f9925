package dbus

import (
	"errors"
	"fmt"
)

var (
	// ErrTruncated reports that the input ended in the middle of an
	// encoded value.
	ErrTruncated = errors.New("truncated message")

	// ErrInvalidUTF8 reports a string value that is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("invalid UTF-8 string")

	// ErrBadDictEntry reports a dict entry type that does not consist
	// of exactly one key type and one value type.
	ErrBadDictEntry = errors.New("dict entry must have exactly one key type and one value type")
)

// SignatureError is the error returned when a type signature string
// violates the signature grammar.
type SignatureError struct {
	// Sig is the rejected signature.
	Sig string
	// Reason is an explanation of the grammar violation.
	Reason error
}

func (e SignatureError) Error() string {
	return fmt.Sprintf("invalid type signature %q: %s", e.Sig, e.Reason)
}

func (e SignatureError) Unwrap() error {
	return e.Reason
}

// TypeError is the error returned when a value cannot be represented
// as the wire type its signature calls for.
type TypeError struct {
	// Type is the signature fragment of the wire type being encoded
	// or decoded.
	Type string
	// Reason is an explanation of why the value isn't representable.
	Reason error
}

func (e TypeError) Error() string {
	return fmt.Sprintf("dbus cannot represent %s: %s", e.Type, e.Reason)
}

func (e TypeError) Unwrap() error {
	return e.Reason
}

func typeErr(t *Type, reason string, args ...any) error {
	ts := ""
	if t != nil {
		ts = t.String()
	}
	return TypeError{ts, fmt.Errorf(reason, args...)}
}

// RangeError is the error returned when an integer value lies outside
// the representable range of the wire type its signature calls for.
type RangeError struct {
	// Type is the signature fragment of the wanted wire type.
	Type string
	// Value is the out-of-range value.
	Value Value
}

func (e RangeError) Error() string {
	return fmt.Sprintf("value %v out of range for dbus type %s", e.Value, e.Type)
}

// ArityError is the error returned when the number of values given to
// an encode operation does not match the number of types in the
// signature, or when a struct value's field count does not match its
// type.
type ArityError struct {
	// Sig is the signature the values were checked against.
	Sig string
	// Want is the number of types in the signature.
	Want int
	// Got is the number of values provided.
	Got int
}

func (e ArityError) Error() string {
	if e.Got < e.Want {
		return fmt.Sprintf("too few values for signature %q: want %d, got %d", e.Sig, e.Want, e.Got)
	}
	return fmt.Sprintf("too many values for signature %q: want %d, got %d", e.Sig, e.Want, e.Got)
}

// NameError is the error returned when an object path, interface,
// member, error or bus name does not conform to its grammar.
type NameError struct {
	// What names the grammar that was violated, e.g. "object path".
	What string
	// Name is the rejected name.
	Name string
}

func (e NameError) Error() string {
	return fmt.Sprintf("invalid %s %q", e.What, e.Name)
}
