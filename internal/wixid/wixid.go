// Package wixid derives WiX element identifiers from file-system paths.
package wixid

import "strings"

// DeriveDefaultID converts an arbitrary path into a valid WiX identifier.
// Letters, digits, '_' and '.' are kept; everything else becomes '_'.
// Identifiers must not start with a digit, so those get a '_' prefix.
func DeriveDefaultID(path string) string {
	if path == "" {
		return "_"
	}

	var sb strings.Builder
	sb.Grow(len(path) + 1)
	for _, c := range path {
		if isValidChar(c) {
			sb.WriteRune(c)
		} else {
			sb.WriteByte('_')
		}
	}
	result := sb.String()

	if result[0] >= '0' && result[0] <= '9' {
		return "_" + result
	}
	return result
}

// IsValid reports whether id can be used unchanged as a WiX identifier.
func IsValid(id string) bool {
	return id != "" && DeriveDefaultID(id) == id
}

func isValidChar(c rune) bool {
	// Anything past 'z' is rejected up front so that letters from other
	// alphabets never pass as identifier characters.
	if c > 'z' {
		return false
	}
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '_' || c == '.'
}
