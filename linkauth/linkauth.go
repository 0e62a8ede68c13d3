// Copyright (c) Eric Gjertsen
// SPDX-License-Identifier: MIT

// Package linkauth provides supporting types for representing the
// credentials used when fetching link index documents from hosts that
// require authentication.
package linkauth
