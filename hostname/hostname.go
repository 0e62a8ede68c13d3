// Copyright (c) Eric Gjertsen
// SPDX-License-Identifier: MIT

// Package hostname provides a normalized hostname type, used to key
// per-host state such as cached link indexes and stored credentials so
// that spelling variations of the same host compare equal.
package hostname

import (
	"fmt"

	"golang.org/x/net/idna"
)

// Hostname is a hostname that has been normalized with ForComparison, so
// values of this type can be compared byte-for-byte and used directly as
// map keys. Direct conversion from a string is appropriate only for input
// that is already normalized, such as test fixtures.
//
// A Hostname may carry a trailing ":port" portion, which is preserved
// verbatim through normalization.
type Hostname string

// ForComparison normalizes the given host string into the punycode form
// used for comparisons and map keys, or returns an error if the string
// cannot represent a valid hostname.
func ForComparison(given string) (Hostname, error) {
	host, port := splitPort(given)
	if host == "" {
		return Hostname(""), fmt.Errorf("empty string is not a valid hostname")
	}
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return Hostname(""), fmt.Errorf("invalid hostname %q: %w", given, err)
	}
	return Hostname(ascii + port), nil
}

// ForDisplay returns a human-oriented form of the hostname, converting
// punycode labels back to their Unicode form where possible.
func (h Hostname) ForDisplay() string {
	host, port := splitPort(string(h))
	display, err := idna.Display.ToUnicode(host)
	if err != nil {
		return string(h)
	}
	return display + port
}

func (h Hostname) String() string {
	return string(h)
}

// splitPort separates an optional trailing ":port" from the host portion.
// The port separator is recognized only when everything after the final
// colon is a decimal number, so IPv6 literals pass through whole.
func splitPort(given string) (host, port string) {
	for i := len(given) - 1; i >= 0; i-- {
		c := given[i]
		if c == ':' {
			if i == len(given)-1 {
				return given, ""
			}
			return given[:i], given[i:]
		}
		if c < '0' || c > '9' {
			return given, ""
		}
	}
	return given, ""
}
