// Copyright (c) Eric Gjertsen
// SPDX-License-Identifier: MIT

package linkauth

import (
	"context"

	"github.com/ericgj/go-uritemplate/hostname"
)

// StaticCredentialsSource returns a [CredentialsSource] that looks up any
// requested credentials directly in the provided map.
//
// The caller should not modify the given map after passing it to this
// function.
func StaticCredentialsSource(creds map[hostname.Hostname]HostCredentials) CredentialsSource {
	return staticCredentialsSource(creds)
}

type staticCredentialsSource map[hostname.Hostname]HostCredentials

// ForHost implements [CredentialsSource].
func (s staticCredentialsSource) ForHost(_ context.Context, host hostname.Hostname) (HostCredentials, error) {
	return s[host], nil
}
