// Copyright (c) Eric Gjertsen
// SPDX-License-Identifier: MIT

// Package uritemplate implements the URI Templates language described in
// [RFC 6570], up to Level 3: simple string expansion plus the reserved (+),
// fragment (#), label (.), path (/), path-parameter (;), query (?) and
// query-continuation (&) operators, over string-valued variables.
//
// Level 4 features (the ":n" prefix and "*" explode modifiers, and list or
// associative variable values) are deliberately not supported, because the
// templates this package is written for follow prescriptive URL schemes
// that never need them.
//
// Expansion is total: a brace sequence that doesn't form a well-formed
// expression is copied through as literal text rather than rejected, and an
// undefined variable expands as if its value were the empty string. Templates
// come from application code and configuration rather than untrusted input,
// so silent leniency is preferred over returning errors.
//
// [RFC 6570]: https://www.rfc-editor.org/rfc/rfc6570
package uritemplate

import (
	"regexp"
	"strings"
)

// expressionPattern matches one well-formed template expression: an opening
// brace, an optional operator character, a non-empty comma-separated list of
// variable names, and a closing brace. Variable names may carry literal
// percent-escape sequences, which are part of the name as written.
var expressionPattern = regexp.MustCompile(`\{([+#./;?&]?)([A-Za-z0-9_%,]+)\}`)

// Expand substitutes every well-formed {...} expression in template with its
// expansion under vars, leaving all other text untouched, byte for byte.
// Literal text is never encoded; only substituted variable values are.
//
// Expand never fails: malformed expressions degrade to pass-through literal
// text, and variables absent from vars expand as empty strings. A nil vars
// map behaves as an empty one.
func Expand(template string, vars map[string]string) string {
	return expressionPattern.ReplaceAllStringFunc(template, func(expr string) string {
		groups := expressionPattern.FindStringSubmatch(expr)
		op, ok := operatorForChar(groups[1])
		if !ok {
			return ""
		}
		return op.expand(strings.Split(groups[2], ","), vars)
	})
}
