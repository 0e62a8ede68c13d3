// Copyright (c) Eric Gjertsen
// SPDX-License-Identifier: MIT

// Package links implements a small hypermedia-style link discovery protocol
// built on URI templates.
//
// A participating host publishes a JSON "link index" document at a fixed
// well-known path, mapping link relation names to [RFC 6570] URI templates:
//
//	{
//	  "protocol": "1.0",
//	  "links": {
//	    "user":   "/users/{name}",
//	    "search": "/search{?q,page}"
//	  }
//	}
//
// Clients of this package fetch that document once per host, cache it, and
// resolve relation names plus variable bindings into concrete URLs via the
// uritemplate package.
package links

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-version"

	"github.com/ericgj/go-uritemplate/hostname"
	"github.com/ericgj/go-uritemplate/linkauth"
)

const (
	// Fixed path to the link index document on every participating host.
	indexPath = "/.well-known/link-templates.json"

	// Arbitrary-but-small number to prevent runaway redirect loops. This
	// is used only when the caller doesn't provide their own HTTP client.
	maxRedirects = 3

	// Arbitrary-but-small time limit to prevent UI "hangs" during fetches.
	// This is used only when the caller doesn't provide their own HTTP client.
	fetchTimeout = 11 * time.Second

	// 1MB - to prevent abusive services from using loads of our memory.
	maxIndexDocBytes = 1 * 1024 * 1024
)

// supportedProtocol is the range of link index protocol versions this
// client knows how to interpret. A document declaring a version outside
// this range is rejected rather than misread.
var supportedProtocol = version.MustConstraints(version.NewConstraint(">= 1.0, < 2.0"))

// Client is the main type in this package, which fetches link indexes for
// given hostnames and caches the results by hostname to avoid repeated
// requests for the same information.
type Client struct {
	// must lock "mu" while interacting with these maps
	aliases map[hostname.Hostname]hostname.Hostname
	cache   map[hostname.Hostname]*LinkSet
	mu      sync.Mutex

	credsSrc linkauth.CredentialsSource

	httpClient *http.Client
}

// ErrRequestFailed represents the error that occurs when the link index
// fetch fails for a network-level problem.
type ErrRequestFailed struct {
	err error
}

func (e ErrRequestFailed) Error() string {
	return fmt.Errorf("failed to request link index: %w", e.err).Error()
}

// Unwrap returns another [error] value representing the underlying problem.
//
// This is intended for use with the standard library errors package, and its
// "Is", "As", and "Unwrap" functions.
func (e ErrRequestFailed) Unwrap() error {
	return e.err
}

// New returns a new initialized link index client with the given options.
//
// Use [WithHTTPClient] to specify an HTTP client to use when fetching link
// indexes. If no client is provided then one will be created automatically,
// but the details of its behavior are subject to change in future versions.
//
// Use [WithCredentials] to specify a [linkauth.CredentialsSource] that can
// provide credentials to use when fetching link indexes. If none is provided
// then all requests are made anonymously.
func New(options ...Option) *Client {
	ret := &Client{
		aliases: make(map[hostname.Hostname]hostname.Hostname),
		cache:   make(map[hostname.Hostname]*LinkSet),
	}
	for _, opt := range options {
		opt.applyOption(ret)
	}

	if ret.httpClient == nil {
		client := cleanhttp.DefaultPooledClient()
		client.Timeout = fetchTimeout
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) > maxRedirects {
				return errors.New("too many redirects") // this error will never actually be seen
			}
			return nil
		}
		ret.httpClient = client
	}

	return ret
}

// SetCredentialsSource changes the credentials source that will be used to
// add credentials to outgoing index requests, where available.
func (c *Client) SetCredentialsSource(src linkauth.CredentialsSource) {
	c.credsSrc = src
}

// CredentialsSource returns the credentials source associated with the
// receiver, or an empty credentials source if none is associated.
func (c *Client) CredentialsSource() linkauth.CredentialsSource {
	if c.credsSrc == nil {
		// We'll return an empty one just to save the caller from having to
		// protect against the nil case, since this interface already allows
		// for the possibility of there being no credentials at all.
		return linkauth.NoCredentials
	}
	return c.credsSrc
}

// CredentialsForHost returns a non-nil HostCredentials if the embedded source
// has credentials available for the host, or host alias, and a nil
// HostCredentials if it does not.
func (c *Client) CredentialsForHost(ctx context.Context, host hostname.Hostname) (linkauth.HostCredentials, error) {
	if c.credsSrc == nil {
		return nil, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if aliasedHost, aliasExists := c.aliases[host]; aliasExists {
		host = aliasedHost
	}
	return c.credsSrc.ForHost(ctx, host)
}

// ForceHostLinks provides a pre-defined set of link templates for a given
// host, which prevents the receiver from attempting a network fetch for the
// given host. Instead, the given links map will be used verbatim.
//
// When providing "forced" links, any relative templates are resolved against
// the index URL that would have been used for a network fetch, yielding the
// same results as if the given map were published at the host's well-known
// index path.
func (c *Client) ForceHostLinks(host hostname.Hostname, links map[string]any) {
	if links == nil {
		links = map[string]any{}
	}

	c.mu.Lock()
	c.cache[host] = &LinkSet{
		indexURL: &url.URL{
			Scheme: "https",
			Host:   string(host),
			Path:   indexPath,
		},
		hostname: host.ForDisplay(),
		links:    links,
	}
	c.mu.Unlock()
}

// Alias accepts an alias and target Hostname. When a link index is fetched
// or credentials are requested for the alias hostname, the target will be
// consulted instead.
func (c *Client) Alias(alias, target hostname.Hostname) {
	c.mu.Lock()
	c.aliases[alias] = target
	c.mu.Unlock()
}

// Links fetches the link index for the given hostname (which must already
// have been validated and prepared with hostname.ForComparison) and returns
// an object that can resolve its link relations.
//
// If a given hostname publishes no link index at all, a non-nil but empty
// LinkSet is returned. When giving feedback to the end user about such
// situations, we say "host <name> does not provide a <rel> link", regardless
// of whether that is due to that relation specifically being absent or due
// to the host not publishing an index at all, since we don't wish to expose
// the detail of whole-host discovery to an end-user.
func (c *Client) Links(ctx context.Context, host hostname.Hostname) (*LinkSet, error) {
	// In this method we use c.mu locking only to avoid corrupting c.cache
	// by concurrent writes, and not to prevent concurrent fetches. If two
	// callers concurrently request the same hostname then we could send two
	// concurrent index requests over the network, in which case it's
	// unspecified which one will "win" and end up in the cache for future
	// requests. In practice this shouldn't matter because we're already
	// assuming (by caching the results at all) that a host will generally
	// not vary its results in meaningful ways between requests made in
	// close time proximity.
	trace := clientTraceFromContext(ctx)

	c.mu.Lock()
	if set, cached := c.cache[host]; cached {
		c.mu.Unlock()
		trace.hostCached(ctx, host)
		return set, nil
	}
	c.mu.Unlock()

	fetchCtx := trace.fetchStart(ctx, host)
	set, err := c.fetch(fetchCtx, host)
	if err != nil {
		trace.fetchFailure(fetchCtx, host, err)
		return nil, err
	}
	trace.fetchSuccess(fetchCtx, host)

	c.mu.Lock()
	c.cache[host] = set
	c.mu.Unlock()

	return set, nil
}

// ResolveURL is a convenience wrapper for fetching the link index of a given
// hostname and then resolving a particular relation in the result.
func (c *Client) ResolveURL(ctx context.Context, host hostname.Hostname, rel string, vars map[string]string) (*url.URL, error) {
	set, err := c.Links(ctx, host)
	if err != nil {
		return nil, err
	}
	return set.ResolveURL(rel, vars)
}

// fetch implements the actual index request, with its result cached by the
// public-facing Links method.
//
// This must be called _without_ c.mu locked. c.mu is there only to protect
// the integrity of our internal maps, and not to prevent multiple concurrent
// fetches even for the same hostname.
func (c *Client) fetch(ctx context.Context, host hostname.Hostname) (*LinkSet, error) {
	c.mu.Lock()
	if aliasedHost, aliasExists := c.aliases[host]; aliasExists {
		host = aliasedHost
	}
	c.mu.Unlock()

	indexURL := &url.URL{
		Scheme: "https",
		Host:   host.String(),
		Path:   indexPath,
	}

	req, err := http.NewRequestWithContext(ctx, "GET", indexURL.String(), nil)
	if err != nil {
		// Should not get in here because everything about the request args is under our control.
		return nil, fmt.Errorf("invalid link index request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	creds, err := c.CredentialsForHost(ctx, host)
	if err != nil {
		// If we fail to obtain credentials then we just treat it as anonymous
		creds = nil
	}
	if creds != nil {
		// Update the request to include credentials.
		creds.PrepareRequest(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, ErrRequestFailed{err}
	}
	defer resp.Body.Close()

	set := &LinkSet{
		// Use the index URL from resp.Request in case the client followed
		// any redirects.
		indexURL: resp.Request.URL,
		hostname: host.ForDisplay(),
	}

	// Return the set without any links.
	if resp.StatusCode == 404 {
		return set, nil
	}

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("failed to request link index: %s", resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, fmt.Errorf("link index URL has a malformed Content-Type %q", contentType)
	}
	if mediaType != "application/json" {
		return nil, fmt.Errorf("link index URL returned an unsupported Content-Type %q", mediaType)
	}

	// This doesn't catch chunked encoding, because ContentLength is -1 in that case.
	if resp.ContentLength > maxIndexDocBytes {
		// Size limit here is not a contractual requirement and so we may
		// adjust it over time if we find a different limit is warranted.
		return nil, fmt.Errorf(
			"link index response is too large (got %d bytes; limit %d)",
			resp.ContentLength, maxIndexDocBytes,
		)
	}

	// If the response is using chunked encoding then we can't predict its
	// size, but we'll at least prevent reading the entire thing into memory.
	lr := io.LimitReader(resp.Body, maxIndexDocBytes)

	docBytes, err := io.ReadAll(lr)
	if err != nil {
		return nil, fmt.Errorf("error reading link index body: %v", err)
	}

	var doc struct {
		Protocol string         `json:"protocol"`
		Links    map[string]any `json:"links"`
		OAuth    map[string]any `json:"oauth"`
	}
	if err := json.Unmarshal(docBytes, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode link index as a JSON object: %v", err)
	}

	if doc.Protocol == "" {
		// Documents predating the protocol field are implicitly at the
		// initial version.
		doc.Protocol = "1.0"
	}
	protocol, err := version.NewVersion(doc.Protocol)
	if err != nil {
		return nil, fmt.Errorf("link index has malformed protocol version %q: %v", doc.Protocol, err)
	}
	if !supportedProtocol.Check(protocol) {
		return nil, &ErrProtocolNotSupported{hostname: set.hostname, protocol: doc.Protocol}
	}

	set.links = doc.Links
	set.oauth = doc.OAuth

	return set, nil
}

// Forget invalidates any cached record of the given hostname. If the host
// has no cache entry then this is a no-op.
func (c *Client) Forget(host hostname.Hostname) {
	c.mu.Lock()
	c.forgetInternal(host)
	c.mu.Unlock()
}

// forgetInternal is the main implementation of Forget that assumes the
// caller has already locked c.mu, so this can also be used in other
// places like ForgetAlias.
func (c *Client) forgetInternal(host hostname.Hostname) {
	delete(c.cache, host)
}

// ForgetAll is like Forget, but for all of the hostnames that have cache entries.
func (c *Client) ForgetAll() {
	c.mu.Lock()
	c.cache = make(map[hostname.Hostname]*LinkSet)
	c.mu.Unlock()
}

// ForgetAlias removes a previously aliased hostname as well as its cached
// entry, if any exist. If the alias has no target then this is a no-op.
func (c *Client) ForgetAlias(alias hostname.Hostname) {
	c.mu.Lock()
	delete(c.aliases, alias)
	c.forgetInternal(alias)
	c.mu.Unlock()
}
