// Copyright (c) Eric Gjertsen
// SPDX-License-Identifier: MIT

// Package interp provides trivial positional placeholder interpolation:
// "{0}", "{1}" and so on are replaced by the argument at that index.
//
// Unlike the full template language in the parent package, no encoding is
// applied to substituted values. The two share only the never-fail policy:
// a placeholder with no corresponding argument becomes the empty string,
// and brace text that isn't a numeric placeholder passes through unchanged.
package interp

import (
	"regexp"
	"strconv"
)

var placeholderPattern = regexp.MustCompile(`\{([0-9]+)\}`)

// Interpolate replaces each "{N}" placeholder in template with args[N].
func Interpolate(template string, args ...string) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(ph string) string {
		idx, err := strconv.Atoi(ph[1 : len(ph)-1])
		if err != nil || idx >= len(args) {
			return ""
		}
		return args[idx]
	})
}
