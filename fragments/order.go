package fragments

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/sys/cpu"
)

// A ByteOrder is a byte order that DBus messages can be encoded
// in. It is a standard library byte order plus the flag byte that
// announces the order at the start of a wire message.
type ByteOrder interface {
	binary.ByteOrder
	binary.AppendByteOrder
	flagByte() byte
}

type order struct {
	binary.ByteOrder
	binary.AppendByteOrder
	flag byte
}

func (o order) flagByte() byte { return o.flag }

// String resolves the otherwise ambiguous selector between the two
// embedded interfaces, which hold the same underlying value.
func (o order) String() string { return o.ByteOrder.String() }

var (
	BigEndian    ByteOrder = order{binary.BigEndian, binary.BigEndian, 'B'}
	LittleEndian ByteOrder = order{binary.LittleEndian, binary.LittleEndian, 'l'}

	// NativeEndian is the byte order of the machine this process is
	// running on.
	NativeEndian = nativeOrder()
)

func nativeOrder() ByteOrder {
	if cpu.IsBigEndian {
		return BigEndian
	}
	return LittleEndian
}

// OrderForFlag returns the byte order named by a wire message's byte
// order flag.
func OrderForFlag(flag byte) (ByteOrder, error) {
	switch flag {
	case 'B':
		return BigEndian, nil
	case 'l':
		return LittleEndian, nil
	default:
		return nil, fmt.Errorf("unknown byte order flag %q", flag)
	}
}
