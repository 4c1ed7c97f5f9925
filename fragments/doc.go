// Package fragments provides low-level encoding and decoding helpers
// to construct and parse DBus wire format messages.
//
// The provided encoder and decoder are very low level, and do not
// enforce any DBus semantics beyond alignment and framing. It is the
// caller's responsibility to produce valid DBus messages using these
// tools; the dbus package drives them from parsed type signatures.
package fragments
