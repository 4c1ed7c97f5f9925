// Package dbus implements the DBus wire format: type signatures,
// message bodies and framed messages.
//
// The package is a marshaling engine, not a bus client. It converts
// between byte slices in the DBus wire format and a small tree of
// generic value types, directed by parsed type signatures. Sockets,
// authentication and bus lifecycle are out of scope; the bytes come
// from and go to whatever transport the caller has.
//
// # Signatures
//
// A DBus type signature is a compact string describing the types of a
// sequence of values, for example "a{sv}" for an array of string to
// variant dict entries. [ParseSignature] validates a signature string
// and returns a [Signature], an immutable tree of [Type] descriptors
// that the encoder and decoder walk. The empty signature is valid and
// describes zero values.
//
// # Values
//
// Message payloads are [Value] trees. Value is a closed union: basic
// types have one concrete Go type each ([Byte], [Bool], [Int16],
// [Uint16], [Int32], [Uint32], [Int64], [Uint64], [Double], [String],
// [ObjectPath], [Signature]), arrays and struct field lists are
// [Sequence], arrays of byte may use the raw buffer form [Bytes],
// arrays of dict entries are [Dict], and variants are [Variant]. The
// same Sequence value can encode as an array or a struct; the
// signature decides.
//
// [Marshal] encodes a value sequence against a signature, applying
// the alignment, range and grammar rules of the wire format.
// [Unmarshal] reverses it. [Equal] compares value trees structurally.
//
// # Messages
//
// A [Message] pairs header fields with a body. Its wire form embeds
// the body's signature, so [UnmarshalMessage] recovers the body
// values from a byte slice alone, byte order and all. Helpers
// construct the common reply shapes, and [Message.Valid] enforces the
// per-type required fields and the object path, interface, member,
// error and bus name grammars.
package dbus
