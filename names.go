package dbus

// maxNameLen is the longest name the wire protocol permits, in
// bytes. It applies to interface, member, error and bus names, but
// not to object paths.
const maxNameLen = 255

func isAlpha(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isAlnum(c byte) bool {
	return isAlpha(c) || c >= '0' && c <= '9'
}

// ValidObjectPath reports whether s is a syntactically valid object
// path: "/" on its own, or "/"-separated non-empty elements of
// letters, digits and underscores, with no trailing separator.
func ValidObjectPath(s string) bool {
	if s == "" || s[0] != '/' {
		return false
	}
	for i := 1; i < len(s); i++ {
		switch {
		case isAlnum(s[i]) || s[i] == '_':
		case s[i] == '/' && s[i-1] != '/' && i+1 < len(s):
		default:
			return false
		}
	}
	return true
}

// ValidInterfaceName reports whether s is a syntactically valid
// interface name: it starts with a letter or underscore, continues
// with letters, digits, underscores and dots, contains at least one
// dot but no consecutive or trailing dots, and is no longer than 255
// bytes.
func ValidInterfaceName(s string) bool {
	if s == "" || !(isAlpha(s[0]) || s[0] == '_') {
		return false
	}
	ndots := 0
	for i := 1; i < len(s); i++ {
		switch {
		case isAlnum(s[i]) || s[i] == '_':
		case s[i] == '.' && s[i-1] != '.' && i+1 < len(s):
			ndots++
		default:
			return false
		}
	}
	return len(s) <= maxNameLen && ndots > 0
}

// ValidMemberName reports whether s is a syntactically valid method
// or signal name: a letter or underscore followed by letters, digits
// and underscores, no longer than 255 bytes.
func ValidMemberName(s string) bool {
	if s == "" || !(isAlpha(s[0]) || s[0] == '_') {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !(isAlnum(s[i]) || s[i] == '_') {
			return false
		}
	}
	return len(s) <= maxNameLen
}

// ValidBusName reports whether s is a syntactically valid bus name,
// either unique (leading ":") or well-known: dot-separated elements
// of letters, digits, underscores and dashes, at least two elements,
// no consecutive or trailing dots, no longer than 255 bytes.
func ValidBusName(s string) bool {
	i := 0
	if i < len(s) && s[i] == ':' {
		i++
	}
	if i >= len(s) || !(isAlnum(s[i]) || s[i] == '_' || s[i] == '-') {
		return false
	}
	ndots := 0
	for i++; i < len(s); i++ {
		switch {
		case isAlnum(s[i]) || s[i] == '_' || s[i] == '-':
		case s[i] == '.' && s[i-1] != '.' && i+1 < len(s):
			ndots++
		default:
			return false
		}
	}
	return len(s) <= maxNameLen && ndots > 0
}

// ValidErrorName reports whether s is a syntactically valid error
// name. Error names use the interface name grammar.
func ValidErrorName(s string) bool {
	return ValidInterfaceName(s)
}
