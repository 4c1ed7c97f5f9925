package dbus

import "github.com/creachadair/mds/mapset"

var (
	// strToType maps DBus type signature characters to the shared
	// descriptors of the types they name. Containers are not in this
	// map, they are built up by the signature parser.
	strToType = map[byte]*Type{
		'y': {kind: KindByte, str: "y"},
		'b': {kind: KindBool, str: "b"},
		'n': {kind: KindInt16, str: "n"},
		'q': {kind: KindUint16, str: "q"},
		'i': {kind: KindInt32, str: "i"},
		'u': {kind: KindUint32, str: "u"},
		'x': {kind: KindInt64, str: "x"},
		't': {kind: KindUint64, str: "t"},
		'd': {kind: KindDouble, str: "d"},
		's': {kind: KindString, str: "s"},
		'o': {kind: KindObjectPath, str: "o"},
		'g': {kind: KindSignature, str: "g"},
		'v': {kind: KindVariant, str: "v"},
	}

	// basicKinds is the set of non-container kinds. These are also the
	// kinds permitted as dict entry keys.
	basicKinds = mapset.New(
		KindByte,
		KindBool,
		KindInt16,
		KindUint16,
		KindInt32,
		KindUint32,
		KindInt64,
		KindUint64,
		KindDouble,
		KindString,
		KindObjectPath,
		KindSignature,
	)

	// intKinds is the set of integer kinds, the kinds subject to range
	// validation when encoding.
	intKinds = mapset.New(
		KindByte,
		KindInt16,
		KindUint16,
		KindInt32,
		KindUint32,
		KindInt64,
		KindUint64,
	)
)
