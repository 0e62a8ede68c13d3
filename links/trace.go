// Copyright (c) Eric Gjertsen
// SPDX-License-Identifier: MIT

package links

import (
	"context"

	"github.com/ericgj/go-uritemplate/hostname"
)

// ClientTrace allows a caller of [Client.Links] to be notified about
// potentially-interesting events during the link index fetch, in case
// they want to generate log messages, telemetry traces, or similar.
//
// Use [ContextWithClientTrace] to derive a [context.Context] containing
// an instance of this type, and use that context when calling
// [Client.Links] or one of its shortcut variants.
//
// All of the function-typed fields may either be left as nil or set to
// a function with the specified signature, unless otherwise stated. If
// nil then the call for the corresponding event will be skipped.
//
// "Start" functions return their own [context.Context] that should be
// either exactly the context given or a child of that context. This can
// be used to track per-request values such as distributed tracing spans.
type ClientTrace struct {
	// FetchStart is called when an index fetch is about to begin for a
	// specific hostname.
	//
	// This should return a [context.Context] to be used for the fetch
	// HTTP requests, and it will then be passed as the context to either
	// FetchSuccess or FetchFailure once the request is complete to allow
	// terminating distributed tracing spans, etc.
	FetchStart func(ctx context.Context, host hostname.Hostname) context.Context

	// FetchSuccess is called after an index fetch is complete if the
	// result was successful.
	//
	// The given context has the same values as the one returned by the
	// earlier call to FetchStart.
	FetchSuccess func(ctx context.Context, host hostname.Hostname)

	// FetchFailure is called after an index fetch is complete if the
	// request encountered an error.
	//
	// The given context has the same values as the one returned by the
	// earlier call to FetchStart.
	FetchFailure func(ctx context.Context, host hostname.Hostname, err error)

	// HostCached is called instead of FetchStart and its completion
	// callbacks if a link index request is served from the cache of
	// previous results rather than by making a network request.
	HostCached func(ctx context.Context, host hostname.Hostname)
}

func ContextWithClientTrace(parent context.Context, trace *ClientTrace) context.Context {
	return context.WithValue(parent, clientTraceKey, trace)
}

func (t *ClientTrace) fetchStart(ctx context.Context, host hostname.Hostname) context.Context {
	if t.FetchStart == nil {
		return ctx
	}
	return t.FetchStart(ctx, host)
}

func (t *ClientTrace) fetchSuccess(ctx context.Context, host hostname.Hostname) {
	if t.FetchSuccess == nil {
		return
	}
	t.FetchSuccess(ctx, host)
}

func (t *ClientTrace) fetchFailure(ctx context.Context, host hostname.Hostname, err error) {
	if t.FetchFailure == nil {
		return
	}
	t.FetchFailure(ctx, host, err)
}

func (t *ClientTrace) hostCached(ctx context.Context, host hostname.Hostname) {
	if t.HostCached == nil {
		return
	}
	t.HostCached(ctx, host)
}

func clientTraceFromContext(ctx context.Context) *ClientTrace {
	trace, ok := ctx.Value(clientTraceKey).(*ClientTrace)
	if !ok {
		trace = noTrace
	}
	return trace
}

type clientTraceKeyType string

const clientTraceKey = clientTraceKeyType("")

var noTrace = &ClientTrace{}
