// Copyright (c) Eric Gjertsen
// SPDX-License-Identifier: MIT

package links

import (
	"fmt"
	"net/url"

	uritemplate "github.com/ericgj/go-uritemplate"
)

// LinkSet represents the link index published by one host.
type LinkSet struct {
	indexURL *url.URL
	hostname string
	links    map[string]any
	oauth    map[string]any
}

// ErrLinkNotProvided is returned when the requested link relation is not
// provided by the host.
type ErrLinkNotProvided struct {
	hostname string
	rel      string
}

// Error returns a customized error message.
func (e *ErrLinkNotProvided) Error() string {
	if e.hostname == "" {
		return fmt.Sprintf("host does not provide a %s link", e.rel)
	}
	return fmt.Sprintf("host %s does not provide a %s link", e.hostname, e.rel)
}

// ErrProtocolNotSupported is returned when a host publishes its link index
// under a protocol version this client cannot interpret.
type ErrProtocolNotSupported struct {
	hostname string
	protocol string
}

// Error returns a customized error message.
func (e *ErrProtocolNotSupported) Error() string {
	if e.hostname == "" {
		return fmt.Sprintf("link index protocol version %s is not supported", e.protocol)
	}
	return fmt.Sprintf("host %s publishes link index protocol version %s, which is not supported", e.hostname, e.protocol)
}

// Template returns the raw URI template associated with the given link
// relation, without expanding it.
func (s *LinkSet) Template(rel string) (string, error) {
	// No links provided for an empty LinkSet.
	if s == nil || s.links == nil {
		return "", &ErrLinkNotProvided{rel: rel}
	}

	tmpl, ok := s.links[rel].(string)
	if !ok {
		// No published links match the requested relation.
		return "", &ErrLinkNotProvided{hostname: s.hostname, rel: rel}
	}
	return tmpl, nil
}

// ResolveURL expands the URI template associated with the given link
// relation using the given variable bindings and returns the resulting URL.
//
// A non-nil result is always an absolute URL with a scheme of either HTTPS
// or HTTP. Relative templates are resolved against the index document's own
// URL.
func (s *LinkSet) ResolveURL(rel string, vars map[string]string) (*url.URL, error) {
	tmpl, err := s.Template(rel)
	if err != nil {
		return nil, err
	}

	u, err := s.parseURL(uritemplate.Expand(tmpl, vars))
	if err != nil {
		return nil, fmt.Errorf("failed to parse link URL: %v", err)
	}

	return u, nil
}

func (s *LinkSet) parseURL(urlStr string) (*url.URL, error) {
	u, err := url.Parse(urlStr)
	if err != nil {
		return nil, err
	}

	// Make relative URLs absolute using our index URL.
	if !u.IsAbs() {
		u = s.indexURL.ResolveReference(u)
	}

	if u.Scheme != "https" && u.Scheme != "http" {
		return nil, fmt.Errorf("unsupported scheme %s", u.Scheme)
	}
	if u.User != nil {
		return nil, fmt.Errorf("embedded username/password information is not permitted")
	}

	// Fragment part is irrelevant, since we're not a browser.
	u.Fragment = ""

	return u, nil
}
