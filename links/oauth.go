// Copyright (c) Eric Gjertsen
// SPDX-License-Identifier: MIT

package links

import (
	"fmt"
	"net/url"

	"golang.org/x/oauth2"
)

// OAuthClient represents an OAuth client definition published in a host's
// link index, for hosts whose links require authorized access.
type OAuthClient struct {
	// ID is the identifier of the client, to be used when making
	// authorization requests.
	ID string

	// AuthorizationURL is the URL of the authorization endpoint, if the
	// host declared one.
	AuthorizationURL *url.URL

	// TokenURL is the URL of the token endpoint, if the host declared one.
	TokenURL *url.URL

	// Scopes is the set of scopes the client should request, in the order
	// the host declared them.
	Scopes []string
}

// Endpoint returns an oauth2.Endpoint value ready to use with the oauth2
// library, with the client's endpoint URLs filled in.
func (c *OAuthClient) Endpoint() oauth2.Endpoint {
	ep := oauth2.Endpoint{
		// We don't actually auth with the authorization endpoint, so we
		// don't need to set an auth style for it.
		AuthStyle: oauth2.AuthStyleInParams,
	}
	if c.AuthorizationURL != nil {
		ep.AuthURL = c.AuthorizationURL.String()
	}
	if c.TokenURL != nil {
		ep.TokenURL = c.TokenURL.String()
	}
	return ep
}

// OAuth returns the OAuth client definition published alongside the host's
// links, or nil if the index declares none.
//
// Use this only for hosts whose link documentation calls for authorized
// access; most hosts publish only plain links.
func (s *LinkSet) OAuth() (*OAuthClient, error) {
	if s == nil || s.oauth == nil {
		return nil, nil
	}
	raw := s.oauth

	ret := &OAuthClient{}
	if clientIDStr, ok := raw["client"].(string); ok {
		ret.ID = clientIDStr
	} else {
		return nil, fmt.Errorf("oauth definition is missing required property %q", "client")
	}
	if urlStr, ok := raw["authz"].(string); ok {
		u, err := s.parseURL(urlStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse authorization URL: %v", err)
		}
		ret.AuthorizationURL = u
	}
	if urlStr, ok := raw["token"].(string); ok {
		u, err := s.parseURL(urlStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse token URL: %v", err)
		}
		ret.TokenURL = u
	} else {
		return nil, fmt.Errorf("oauth definition is missing required property %q", "token")
	}
	if scopesRaw, ok := raw["scopes"].([]any); ok {
		var scopes []string
		for _, scopeI := range scopesRaw {
			scope, ok := scopeI.(string)
			if !ok {
				return nil, fmt.Errorf("invalid oauth scopes: all scopes must be strings")
			}
			scopes = append(scopes, scope)
		}
		ret.Scopes = scopes
	}

	return ret, nil
}
