// Copyright (c) Eric Gjertsen
// SPDX-License-Identifier: MIT

package uritemplate

import (
	"strings"
	"unicode/utf8"
)

const upperHexDigits = "0123456789ABCDEF"

// isUnreserved reports whether c is one of the "unreserved" characters
// defined in [RFC 3986] section 2.3. These are never percent-encoded.
func isUnreserved(c rune) bool {
	return isAlpha(c) || isDigit(c) || strings.ContainsRune("-._~", c)
}

// isReserved reports whether c is either unreserved or one of the
// "reserved" URI punctuation characters defined in [RFC 3986] section 2.2.
// The reserved-string and fragment operators exempt this larger set so that
// values may carry URI syntax through unencoded.
func isReserved(c rune) bool {
	return isUnreserved(c) || strings.ContainsRune(":/?#[]@!$&'()*+,;=", c)
}

func isAlpha(c rune) bool {
	return 'A' <= c && c <= 'Z' || 'a' <= c && c <= 'z'
}

func isDigit(c rune) bool {
	return '0' <= c && c <= '9'
}

// escape percent-encodes s, copying through any character matched by the
// exempt predicate and replacing each byte of every other character's UTF-8
// encoding with "%" followed by two uppercase hex digits. Characters outside
// ASCII are never exempt, since both character sets contain only ASCII.
func escape(s string, exempt func(rune) bool) string {
	var buf strings.Builder
	buf.Grow(len(s))
	for _, c := range s {
		if c < utf8.RuneSelf && exempt(c) {
			buf.WriteByte(byte(c))
			continue
		}
		var enc [utf8.UTFMax]byte
		n := utf8.EncodeRune(enc[:], c)
		for _, b := range enc[:n] {
			buf.WriteByte('%')
			buf.WriteByte(upperHexDigits[b>>4])
			buf.WriteByte(upperHexDigits[b&0x0f])
		}
	}
	return buf.String()
}
