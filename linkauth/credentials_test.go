// Copyright (c) Eric Gjertsen
// SPDX-License-Identifier: MIT

package linkauth

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/zclconf/go-cty/cty"

	"github.com/ericgj/go-uritemplate/hostname"
)

func TestCredentialsForHost(t *testing.T) {
	ctx := context.Background()
	first := StaticCredentialsSource(map[hostname.Hostname]HostCredentials{
		"one.example.com": HostCredentialsToken("token-one"),
	})
	second := StaticCredentialsSource(map[hostname.Hostname]HostCredentials{
		"one.example.com": HostCredentialsToken("shadowed"),
		"two.example.com": HostCredentialsToken("token-two"),
	})
	creds := Credentials{first, second}

	t.Run("first source wins", func(t *testing.T) {
		got, err := creds.ForHost(ctx, "one.example.com")
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if got.(HostCredentialsToken).Token() != "token-one" {
			t.Errorf("wrong credentials: %#v", got)
		}
	})
	t.Run("falls through to later source", func(t *testing.T) {
		got, err := creds.ForHost(ctx, "two.example.com")
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if got.(HostCredentialsToken).Token() != "token-two" {
			t.Errorf("wrong credentials: %#v", got)
		}
	})
	t.Run("no credentials anywhere", func(t *testing.T) {
		got, err := creds.ForHost(ctx, "other.example.com")
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if got != nil {
			t.Errorf("unexpected credentials: %#v", got)
		}
	})
	t.Run("empty source", func(t *testing.T) {
		got, err := NoCredentials.ForHost(ctx, "one.example.com")
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if got != nil {
			t.Errorf("unexpected credentials: %#v", got)
		}
	})
	t.Run("no store available", func(t *testing.T) {
		err := creds.StoreForHost(ctx, "one.example.com", HostCredentialsToken("new"))
		if err == nil {
			t.Fatal("unexpected success; want error")
		}
	})
}

func TestHostCredentialsToken(t *testing.T) {
	creds := HostCredentialsToken("foo")

	req := &http.Request{}
	creds.PrepareRequest(req)
	if got, want := req.Header.Get("Authorization"), "Bearer foo"; got != want {
		t.Errorf("wrong Authorization header\ngot:  %s\nwant: %s", got, want)
	}

	want := cty.ObjectVal(map[string]cty.Value{
		"token": cty.StringVal("foo"),
	})
	if got := creds.ToStore(); !want.RawEquals(got) {
		t.Errorf("wrong storable value\ngot:  %#v\nwant: %#v", got, want)
	}
}

type countingCredentialsSource struct {
	calls int
	creds HostCredentials
	err   error
}

func (s *countingCredentialsSource) ForHost(_ context.Context, _ hostname.Hostname) (HostCredentials, error) {
	s.calls++
	return s.creds, s.err
}

func TestCachingCredentialsSource(t *testing.T) {
	ctx := context.Background()

	t.Run("caches results", func(t *testing.T) {
		inner := &countingCredentialsSource{creds: HostCredentialsToken("cacheme")}
		source := CachingCredentialsSource(inner)

		for i := 0; i < 3; i++ {
			got, err := source.ForHost(ctx, "example.com")
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			if got.(HostCredentialsToken).Token() != "cacheme" {
				t.Errorf("wrong credentials: %#v", got)
			}
		}
		if inner.calls != 1 {
			t.Errorf("wrong number of inner calls %d; want 1", inner.calls)
		}
	})

	t.Run("does not cache errors", func(t *testing.T) {
		inner := &countingCredentialsSource{err: errors.New("keyring locked")}
		source := CachingCredentialsSource(inner)

		for i := 0; i < 2; i++ {
			if _, err := source.ForHost(ctx, "example.com"); err == nil {
				t.Fatal("unexpected success; want error")
			}
		}
		if inner.calls != 2 {
			t.Errorf("wrong number of inner calls %d; want 2", inner.calls)
		}
	})
}
