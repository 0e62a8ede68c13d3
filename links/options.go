// Copyright (c) Eric Gjertsen
// SPDX-License-Identifier: MIT

package links

import (
	"net/http"

	"github.com/ericgj/go-uritemplate/linkauth"
)

type Option interface {
	applyOption(client *Client)
}

type option func(client *Client)

func (o option) applyOption(client *Client) {
	o(client)
}

func WithHTTPClient(httpClient *http.Client) Option {
	return option(func(client *Client) {
		client.httpClient = httpClient
	})
}

func WithCredentials(creds linkauth.CredentialsSource) Option {
	return option(func(client *Client) {
		client.credsSrc = creds
	})
}
