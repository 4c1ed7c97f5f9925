package dbus

import (
	"bytes"
	"fmt"

	"github.com/tdbus/dbus/fragments"
)

// protoVersion is the major protocol version this package speaks.
const protoVersion = 1

// maxMessageBytes is the largest wire message the protocol permits,
// 2^27 bytes including the header.
const maxMessageBytes = 1 << 27

// MsgType is the type of a DBus message.
type MsgType byte

const (
	// MsgTypeCall is a method call on an object.
	MsgTypeCall MsgType = iota + 1
	// MsgTypeReturn is a successful reply to a method call.
	MsgTypeReturn
	// MsgTypeError is a failure reply to a method call.
	MsgTypeError
	// MsgTypeSignal is a broadcast emitted by an object.
	MsgTypeSignal
)

var msgTypeNames = [...]string{
	MsgTypeCall:   "call",
	MsgTypeReturn: "return",
	MsgTypeError:  "error",
	MsgTypeSignal: "signal",
}

func (t MsgType) String() string {
	if int(t) < len(msgTypeNames) && msgTypeNames[t] != "" {
		return msgTypeNames[t]
	}
	return fmt.Sprintf("MsgType(%d)", byte(t))
}

// Message flag bits.
const (
	// FlagNoReplyExpected indicates that the sender of a call does
	// not want a reply.
	FlagNoReplyExpected uint8 = 1 << 0
	// FlagNoAutoStart asks the bus not to auto-start an owner for
	// the destination.
	FlagNoAutoStart uint8 = 1 << 1
	// FlagAllowInteractiveAuth indicates that the sender is prepared
	// to wait for an interactive authorization prompt.
	FlagAllowInteractiveAuth uint8 = 1 << 2
)

// Header field codes from the DBus specification.
const (
	fieldPath        = 1
	fieldInterface   = 2
	fieldMember      = 3
	fieldErrName     = 4
	fieldReplySerial = 5
	fieldDestination = 6
	fieldSender      = 7
	fieldSignature   = 8
)

// msgFieldsType is the type of the header field array, an array of
// (field code, value) structs.
var msgFieldsType, _ = MustParseSignature("a(yv)").Single()

// A Message is one complete DBus message: the header fields plus the
// body values. It is the framed form the wire carries; the body's
// type information travels in the Sig header field, so an encoded
// Message can be decoded without further context.
type Message struct {
	// Type is the message's type.
	Type MsgType
	// Flags is the message's flag byte.
	Flags uint8
	// Serial is the sender-assigned serial for this message. It must
	// be nonzero.
	Serial uint32

	// Path is the target object for a call, or the source object for
	// a signal. Required for MsgTypeCall and MsgTypeSignal.
	Path ObjectPath
	// Interface is the interface to target for a call, or the source
	// interface for a signal. Required for MsgTypeSignal.
	Interface string
	// Member is the method name for a call, or the signal name for a
	// signal. Required for MsgTypeCall and MsgTypeSignal.
	Member string
	// ErrName is the name of the error that occurred. Required for
	// MsgTypeError.
	ErrName string
	// ReplySerial is the serial of the call this message replies
	// to. Required for MsgTypeReturn and MsgTypeError.
	ReplySerial uint32
	// Destination is the bus name the message is addressed to.
	// Optional.
	Destination string
	// Sender is the unique name of the message sender. A message bus
	// populates this value itself.
	Sender string

	// Sig describes the types of the body values.
	Sig Signature
	// Body is the message payload, one value per type in Sig.
	Body []Value
}

// Valid checks that the message is well formed for its type: the
// required header fields for the type are present, all present names
// conform to their grammars, the serial is nonzero, and the body
// matches the signature's arity.
func (m *Message) Valid() error {
	if m.Serial == 0 {
		return fmt.Errorf("invalid message with zero Serial")
	}
	switch m.Type {
	case 0:
		return fmt.Errorf("invalid message with Type 0")
	case MsgTypeCall:
		if m.Path == "" {
			return fmt.Errorf("missing required header field Path")
		}
		if m.Member == "" {
			return fmt.Errorf("missing required header field Member")
		}
	case MsgTypeReturn:
		if m.ReplySerial == 0 {
			return fmt.Errorf("missing required header field ReplySerial")
		}
	case MsgTypeError:
		if m.ErrName == "" {
			return fmt.Errorf("missing required header field ErrName")
		}
		if m.ReplySerial == 0 {
			return fmt.Errorf("missing required header field ReplySerial")
		}
	case MsgTypeSignal:
		if m.Path == "" {
			return fmt.Errorf("missing required header field Path")
		}
		if m.Interface == "" {
			return fmt.Errorf("missing required header field Interface")
		}
		if m.Member == "" {
			return fmt.Errorf("missing required header field Member")
		}
	default:
		// The protocol requires unknown message types to be accepted
		// and passed through.
	}
	if m.Path != "" && !ValidObjectPath(string(m.Path)) {
		return NameError{"object path", string(m.Path)}
	}
	if m.Interface != "" && !ValidInterfaceName(m.Interface) {
		return NameError{"interface name", m.Interface}
	}
	if m.Member != "" && !ValidMemberName(m.Member) {
		return NameError{"member name", m.Member}
	}
	if m.ErrName != "" && !ValidErrorName(m.ErrName) {
		return NameError{"error name", m.ErrName}
	}
	if m.Destination != "" && !ValidBusName(m.Destination) {
		return NameError{"bus name", m.Destination}
	}
	if m.Sender != "" && !ValidBusName(m.Sender) {
		return NameError{"bus name", m.Sender}
	}
	if len(m.Body) != len(m.Sig.types) {
		return ArityError{m.Sig.str, len(m.Sig.types), len(m.Body)}
	}
	return nil
}

// WantReply reports whether this message requires a response.
func (m *Message) WantReply() bool {
	return m.Type == MsgTypeCall && m.Flags&FlagNoReplyExpected == 0
}

// CanInteract reports whether the message's sender is prepared to
// wait for an interactive authorization prompt, if the sender lacks
// the necessary privileges for the message, and the bus or
// destination wish to trigger an interactive prompt.
func (m *Message) CanInteract() bool {
	return m.Type == MsgTypeCall && m.Flags&FlagAllowInteractiveAuth != 0
}

// headerFields assembles the header field array for m, in field code
// order. Only fields with nonzero values are included.
func (m *Message) headerFields() Sequence {
	var fields Sequence
	add := func(code byte, sig string, v Value) {
		fields = append(fields, Sequence{
			Byte(code),
			Variant{Sig: MustParseSignature(sig), Value: v},
		})
	}
	if m.Path != "" {
		add(fieldPath, "o", m.Path)
	}
	if m.Interface != "" {
		add(fieldInterface, "s", String(m.Interface))
	}
	if m.Member != "" {
		add(fieldMember, "s", String(m.Member))
	}
	if m.ErrName != "" {
		add(fieldErrName, "s", String(m.ErrName))
	}
	if m.ReplySerial != 0 {
		add(fieldReplySerial, "u", Uint32(m.ReplySerial))
	}
	if m.Destination != "" {
		add(fieldDestination, "s", String(m.Destination))
	}
	if m.Sender != "" {
		add(fieldSender, "s", String(m.Sender))
	}
	if !m.Sig.IsZero() {
		add(fieldSignature, "g", m.Sig)
	}
	return fields
}

// Marshal returns the complete wire encoding of the message in byte
// order ord: the fixed header, the header field array, padding to the
// body's 8-byte alignment, and the body.
func (m *Message) Marshal(ord fragments.ByteOrder) ([]byte, error) {
	if err := m.Valid(); err != nil {
		return nil, err
	}
	body, err := Marshal(m.Sig, m.Body, ord)
	if err != nil {
		return nil, err
	}

	e := fragments.Encoder{Order: ord}
	e.ByteOrderFlag()
	e.Uint8(byte(m.Type))
	e.Uint8(m.Flags)
	e.Uint8(protoVersion)
	e.Uint32(uint32(len(body)))
	e.Uint32(m.Serial)
	if err := marshalValue(&e, msgFieldsType, m.headerFields()); err != nil {
		return nil, err
	}
	e.Pad(8)
	e.Write(body)
	if len(e.Out) > maxMessageBytes {
		return nil, fmt.Errorf("message length %d exceeds maximum message length %d", len(e.Out), maxMessageBytes)
	}
	return e.Out, nil
}

func headerFieldErr(code byte, want string, va Variant) error {
	return fmt.Errorf("header field %d: need type %q, got %q", code, want, va.Sig.String())
}

// UnmarshalMessage decodes a complete wire message. The byte order,
// header layout and body signature are all read from data, so no
// further type information is needed to recover the body values.
func UnmarshalMessage(data []byte) (*Message, error) {
	if len(data) > maxMessageBytes {
		return nil, fmt.Errorf("message length %d exceeds maximum message length %d", len(data), maxMessageBytes)
	}
	in := bytes.NewReader(data)
	d := fragments.Decoder{In: in}

	if err := d.ByteOrderFlag(); err != nil {
		return nil, readErr(err, "byte order flag")
	}
	m := &Message{}
	tb, err := d.Uint8()
	if err != nil {
		return nil, readErr(err, "message type")
	}
	m.Type = MsgType(tb)
	if m.Flags, err = d.Uint8(); err != nil {
		return nil, readErr(err, "message flags")
	}
	ver, err := d.Uint8()
	if err != nil {
		return nil, readErr(err, "protocol version")
	}
	if ver != protoVersion {
		return nil, fmt.Errorf("unsupported protocol version %d", ver)
	}
	bodyLen, err := d.Uint32()
	if err != nil {
		return nil, readErr(err, "body length")
	}
	if m.Serial, err = d.Uint32(); err != nil {
		return nil, readErr(err, "message serial")
	}

	fields, err := unmarshalValue(&d, msgFieldsType, 0)
	if err != nil {
		return nil, fmt.Errorf("decoding header fields: %w", err)
	}
	for _, f := range fields.(Sequence) {
		ent := f.(Sequence)
		code := byte(ent[0].(Byte))
		va := ent[1].(Variant)
		switch code {
		case fieldPath:
			p, ok := va.Value.(ObjectPath)
			if !ok {
				return nil, headerFieldErr(code, "o", va)
			}
			m.Path = p
		case fieldInterface:
			s, ok := va.Value.(String)
			if !ok {
				return nil, headerFieldErr(code, "s", va)
			}
			m.Interface = string(s)
		case fieldMember:
			s, ok := va.Value.(String)
			if !ok {
				return nil, headerFieldErr(code, "s", va)
			}
			m.Member = string(s)
		case fieldErrName:
			s, ok := va.Value.(String)
			if !ok {
				return nil, headerFieldErr(code, "s", va)
			}
			m.ErrName = string(s)
		case fieldReplySerial:
			u, ok := va.Value.(Uint32)
			if !ok {
				return nil, headerFieldErr(code, "u", va)
			}
			m.ReplySerial = uint32(u)
		case fieldDestination:
			s, ok := va.Value.(String)
			if !ok {
				return nil, headerFieldErr(code, "s", va)
			}
			m.Destination = string(s)
		case fieldSender:
			s, ok := va.Value.(String)
			if !ok {
				return nil, headerFieldErr(code, "s", va)
			}
			m.Sender = string(s)
		case fieldSignature:
			sg, ok := va.Value.(Signature)
			if !ok {
				return nil, headerFieldErr(code, "g", va)
			}
			m.Sig = sg
		default:
			// The protocol requires unknown header fields to be
			// ignored.
		}
	}

	if err := d.Pad(8); err != nil {
		return nil, readErr(err, "header padding")
	}
	switch n := in.Len(); {
	case n < int(bodyLen):
		return nil, fmt.Errorf("message body: declared %d bytes, have %d: %w", bodyLen, n, ErrTruncated)
	case n > int(bodyLen):
		return nil, fmt.Errorf("%d bytes after message body", n-int(bodyLen))
	}
	body := data[len(data)-in.Len():]
	if m.Body, err = Unmarshal(m.Sig, body, d.Order); err != nil {
		return nil, fmt.Errorf("decoding message body: %w", err)
	}
	if err := m.Valid(); err != nil {
		return nil, err
	}
	return m, nil
}

// NewMethodReturn constructs the successful reply to call, addressed
// to the call's sender. The caller assigns the reply's Serial, and
// the body if any.
func NewMethodReturn(call *Message) (*Message, error) {
	if call.Type != MsgTypeCall {
		return nil, fmt.Errorf("cannot reply to a %s message", call.Type)
	}
	return &Message{
		Type:        MsgTypeReturn,
		ReplySerial: call.Serial,
		Destination: call.Sender,
	}, nil
}

// NewError constructs the error reply to call, addressed to the
// call's sender. The caller assigns the reply's Serial.
func NewError(call *Message, name string) (*Message, error) {
	if call.Type != MsgTypeCall {
		return nil, fmt.Errorf("cannot reply to a %s message", call.Type)
	}
	if !ValidErrorName(name) {
		return nil, NameError{"error name", name}
	}
	return &Message{
		Type:        MsgTypeError,
		ErrName:     name,
		ReplySerial: call.Serial,
		Destination: call.Sender,
	}, nil
}
