// Copyright (c) Eric Gjertsen
// SPDX-License-Identifier: MIT

package uritemplate

import "strings"

// operator identifies the expansion behavior of one template expression,
// selected by the expression's optional leading character as defined in
// [RFC 6570] section 2.2.
type operator int

const (
	opSimple operator = iota
	opReservedString
	opFragment
	opLabel
	opPath
	opPathParam
	opQuery
	opQueryContinuation
)

// operatorForChar maps the operator capture of a matched expression to its
// operator. The empty string is the case where no operator character is
// present, which selects simple string expansion.
func operatorForChar(c string) (operator, bool) {
	switch c {
	case "":
		return opSimple, true
	case "+":
		return opReservedString, true
	case "#":
		return opFragment, true
	case ".":
		return opLabel, true
	case "/":
		return opPath, true
	case ";":
		return opPathParam, true
	case "?":
		return opQuery, true
	case "&":
		return opQueryContinuation, true
	default:
		return 0, false
	}
}

// expand produces the replacement text for one expression: each named
// variable's value is encoded under the operator's exemption policy and
// formatted, the formatted parts are joined with the operator's separator,
// and the operator's prefix is prepended. The prefix is emitted even when
// every part is empty.
//
// Variables are looked up by the name exactly as written in the template,
// with no decoding applied, and a name absent from vars resolves to the
// empty string.
func (op operator) expand(names []string, vars map[string]string) string {
	var prefix, sep string
	exempt := isUnreserved
	switch op {
	case opSimple:
		sep = ","
	case opReservedString:
		sep = ","
		exempt = isReserved
	case opFragment:
		prefix, sep = "#", ","
		exempt = isReserved
	case opLabel:
		prefix, sep = ".", "."
	case opPath:
		prefix, sep = "/", "/"
	case opPathParam:
		prefix, sep = ";", ";"
	case opQuery:
		prefix, sep = "?", "&"
	case opQueryContinuation:
		prefix, sep = "&", "&"
	default:
		// Unreachable for any operator produced by operatorForChar, but
		// expanding to nothing is safer than panicking on a corrupted value.
		return ""
	}

	parts := make([]string, len(names))
	for i, name := range names {
		value := escape(vars[name], exempt)
		switch op {
		case opPathParam:
			// Path-style parameters drop the "=" for empty values.
			if value == "" {
				parts[i] = name
			} else {
				parts[i] = name + "=" + value
			}
		case opQuery, opQueryContinuation:
			// Query parameters keep the "=" even for empty values, and
			// an undefined variable is indistinguishable from an empty one.
			parts[i] = name + "=" + value
		default:
			parts[i] = value
		}
	}
	return prefix + strings.Join(parts, sep)
}
