// Copyright (c) Eric Gjertsen
// SPDX-License-Identifier: MIT

package links

import (
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLinkSetResolveURL(t *testing.T) {
	baseURL, _ := url.Parse("https://example.com/.well-known/link-templates.json")
	set := LinkSet{
		indexURL: baseURL,
		hostname: "test-server",
		links: map[string]any{
			"absolute":      "http://example.net/foo/bar",
			"user":          "/users/{name}",
			"search":        "/search{?q,page}",
			"relative":      "./stu/{id}",
			"protorelative": "//example.net/{x}",
			"withfragment":  "http://example.org/{#section}",
			"nothttp":       "ftp://127.0.0.1/pub/{file}",
			"invalid":       "***not A URL at all!:/<@@@@>***",
			"notastring":    42,
		},
	}

	tests := []struct {
		rel  string
		vars map[string]string
		want string
		err  string
	}{
		{"absolute", nil, "http://example.net/foo/bar", ""},
		{"user", map[string]string{"name": "frank"}, "https://example.com/users/frank", ""},
		{"user", map[string]string{"name": "a b"}, "https://example.com/users/a%20b", ""},
		{"user", nil, "https://example.com/users/", ""},
		{"search", map[string]string{"q": "go uri", "page": "2"}, "https://example.com/search?q=go%20uri&page=2", ""},
		{"search", nil, "https://example.com/search?q=&page=", ""},
		{"relative", map[string]string{"id": "5"}, "https://example.com/.well-known/stu/5", ""},
		{"protorelative", map[string]string{"x": "a"}, "https://example.net/a", ""},
		{"withfragment", map[string]string{"section": "intro"}, "http://example.org/", ""},
		{"nothttp", map[string]string{"file": "x"}, "<nil>", "unsupported scheme"},
		{"invalid", nil, "<nil>", "failed to parse link URL"},
		{"notastring", nil, "<nil>", "host test-server does not provide a notastring link"},
		{"missing", nil, "<nil>", "host test-server does not provide a missing link"},
	}

	for _, test := range tests {
		t.Run(test.rel, func(t *testing.T) {
			linkURL, err := set.ResolveURL(test.rel, test.vars)
			if (err != nil || test.err != "") &&
				(err == nil || !strings.Contains(err.Error(), test.err)) {
				t.Fatalf("unexpected resolve error: %s", err)
			}

			var got string
			if linkURL != nil {
				got = linkURL.String()
			} else {
				got = "<nil>"
			}

			if got != test.want {
				t.Errorf("wrong result\ngot:  %s\nwant: %s", got, test.want)
			}
		})
	}

	t.Run("nil set", func(t *testing.T) {
		var empty *LinkSet
		_, err := empty.ResolveURL("user", nil)
		if err == nil || !strings.Contains(err.Error(), "host does not provide a user link") {
			t.Fatalf("unexpected resolve error: %s", err)
		}
	})
}

func TestLinkSetOAuth(t *testing.T) {
	baseURL, _ := url.Parse("https://example.com/.well-known/link-templates.json")

	mustURL := func(t *testing.T, s string) *url.URL {
		t.Helper()
		u, err := url.Parse(s)
		if err != nil {
			t.Fatalf("invalid wanted URL %s in test case: %s", s, err)
		}
		return u
	}

	tests := []struct {
		name string
		raw  map[string]any
		want *OAuthClient
		err  string
	}{
		{
			"complete",
			map[string]any{
				"client": "complete",
				"authz":  "./authz",
				"token":  "./token",
				"scopes": []any{"app1.full_access", "app2.read_only"},
			},
			&OAuthClient{
				ID:               "complete",
				AuthorizationURL: mustURL(t, "https://example.com/.well-known/authz"),
				TokenURL:         mustURL(t, "https://example.com/.well-known/token"),
				Scopes:           []string{"app1.full_access", "app2.read_only"},
			},
			"",
		},
		{
			"token only",
			map[string]any{
				"client": "tokenonly",
				"token":  "https://example.net/token",
			},
			&OAuthClient{
				ID:       "tokenonly",
				TokenURL: mustURL(t, "https://example.net/token"),
			},
			"",
		},
		{
			"missing client",
			map[string]any{
				"token": "./token",
			},
			nil,
			`oauth definition is missing required property "client"`,
		},
		{
			"missing token",
			map[string]any{
				"client": "missingtoken",
				"authz":  "./authz",
			},
			nil,
			`oauth definition is missing required property "token"`,
		},
		{
			"invalid scopes",
			map[string]any{
				"client": "badscopes",
				"token":  "./token",
				"scopes": []any{"app1.full_access", 42},
			},
			nil,
			"invalid oauth scopes: all scopes must be strings",
		},
		{
			"nothttp token",
			map[string]any{
				"client": "nothttp",
				"token":  "ftp://127.0.0.1/pub/token",
			},
			nil,
			"failed to parse token URL: unsupported scheme ftp",
		},
		{
			"none declared",
			nil,
			nil,
			"",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			set := LinkSet{
				indexURL: baseURL,
				hostname: "test-server",
				oauth:    test.raw,
			}
			got, err := set.OAuth()
			if (err != nil || test.err != "") &&
				(err == nil || !strings.Contains(err.Error(), test.err)) {
				t.Fatalf("unexpected oauth error: %s", err)
			}

			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("wrong result\n%s", diff)
			}
		})
	}
}

func TestOAuthClientEndpoint(t *testing.T) {
	authz, _ := url.Parse("https://example.com/authz")
	token, _ := url.Parse("https://example.com/token")
	client := &OAuthClient{
		ID:               "abc",
		AuthorizationURL: authz,
		TokenURL:         token,
	}

	ep := client.Endpoint()
	if got, want := ep.AuthURL, "https://example.com/authz"; got != want {
		t.Errorf("wrong AuthURL\ngot:  %s\nwant: %s", got, want)
	}
	if got, want := ep.TokenURL, "https://example.com/token"; got != want {
		t.Errorf("wrong TokenURL\ngot:  %s\nwant: %s", got, want)
	}
}
