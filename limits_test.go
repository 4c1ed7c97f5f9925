package dbus

import (
	"errors"
	"testing"
)

func TestCheckInt(t *testing.T) {
	tests := []struct {
		sig     string
		in      Value
		want    uint64 // two's complement bits
		wantErr bool   // a RangeError
	}{
		{sig: "y", in: Byte(0), want: 0},
		{sig: "y", in: Byte(255), want: 255},
		{sig: "y", in: Int64(255), want: 255},
		{sig: "y", in: Uint64(255), want: 255},
		{sig: "y", in: Int64(256), wantErr: true},
		{sig: "y", in: Uint64(256), wantErr: true},
		{sig: "y", in: Int64(-1), wantErr: true},

		{sig: "n", in: Int16(-0x8000), want: 0xffffffffffff8000},
		{sig: "n", in: Int16(0x7fff), want: 0x7fff},
		{sig: "n", in: Int16(-1), want: 0xffffffffffffffff},
		{sig: "n", in: Int32(0x7fff), want: 0x7fff},
		{sig: "n", in: Int32(0x8000), wantErr: true},
		{sig: "n", in: Int32(-0x8001), wantErr: true},
		{sig: "n", in: Uint64(0x7fff), want: 0x7fff},
		{sig: "n", in: Uint64(0x8000), wantErr: true},

		{sig: "q", in: Uint16(0xffff), want: 0xffff},
		{sig: "q", in: Int32(0xffff), want: 0xffff},
		{sig: "q", in: Int32(0x10000), wantErr: true},
		{sig: "q", in: Int32(-1), wantErr: true},

		{sig: "i", in: Int32(-0x80000000), want: 0xffffffff80000000},
		{sig: "i", in: Int32(0x7fffffff), want: 0x7fffffff},
		{sig: "i", in: Int64(0x80000000), wantErr: true},
		{sig: "i", in: Int64(-0x80000001), wantErr: true},
		{sig: "i", in: Uint32(0x7fffffff), want: 0x7fffffff},
		{sig: "i", in: Uint32(0x80000000), wantErr: true},

		{sig: "u", in: Uint32(0xffffffff), want: 0xffffffff},
		{sig: "u", in: Int64(0xffffffff), want: 0xffffffff},
		{sig: "u", in: Int64(0x100000000), wantErr: true},
		{sig: "u", in: Int16(-1), wantErr: true},

		{sig: "x", in: Int64(-0x8000000000000000), want: 0x8000000000000000},
		{sig: "x", in: Int64(0x7fffffffffffffff), want: 0x7fffffffffffffff},
		{sig: "x", in: Uint64(0x7fffffffffffffff), want: 0x7fffffffffffffff},
		{sig: "x", in: Uint64(0x8000000000000000), wantErr: true},

		{sig: "t", in: Uint64(0xffffffffffffffff), want: 0xffffffffffffffff},
		{sig: "t", in: Int64(0x7fffffffffffffff), want: 0x7fffffffffffffff},
		{sig: "t", in: Byte(0), want: 0},
		{sig: "t", in: Int64(-1), wantErr: true},
	}

	for _, tc := range tests {
		typ, _ := MustParseSignature(tc.sig).Single()
		got, err := checkInt(typ, tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("checkInt(%s, %#v) = %#x, want RangeError", tc.sig, tc.in, got)
				continue
			}
			var rangeErr RangeError
			if !errors.As(err, &rangeErr) {
				t.Errorf("checkInt(%s, %#v) err %v is not a RangeError", tc.sig, tc.in, err)
			} else if testing.Verbose() {
				t.Logf("checkInt(%s, %#v) = err: %v", tc.sig, tc.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("checkInt(%s, %#v) got err: %v", tc.sig, tc.in, err)
		} else if got != tc.want {
			t.Errorf("checkInt(%s, %#v) = %#x, want %#x", tc.sig, tc.in, got, tc.want)
		}
	}
}

func TestCheckIntNonInteger(t *testing.T) {
	typ, _ := MustParseSignature("u").Single()
	for _, v := range []Value{nil, Bool(true), Double(1), String("1"), Sequence{}} {
		_, err := checkInt(typ, v)
		if err == nil {
			t.Errorf("checkInt(u, %#v) succeeded, want TypeError", v)
			continue
		}
		var terr TypeError
		if !errors.As(err, &terr) {
			t.Errorf("checkInt(u, %#v) err %v is not a TypeError", v, err)
		}
	}
}
