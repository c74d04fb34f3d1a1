// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package connect

import (
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"
)

// ErrMixedContentBlocked is returned for plain http requests made while the
// page is secure.
var ErrMixedContentBlocked = errors.New("mixed content blocked: insecure request from a secure page")

// MixedContentGuard is a RoundTripper that refuses http requests while the
// page origin is https. The request is rejected before any dial.
type MixedContentGuard struct {
	Base   http.RoundTripper
	Active *Active
}

// RoundTrip implements http.RoundTripper.
func (g *MixedContentGuard) RoundTrip(req *http.Request) (*http.Response, error) {
	if g.Active != nil && g.Active.PageSecure() && strings.EqualFold(req.URL.Scheme, "http") {
		if req.Body != nil {
			req.Body.Close()
		}
		return nil, ErrMixedContentBlocked
	}
	base := g.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}

// NewTransport returns the transport shared by probes and chat requests.
func NewTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}
}

// NewHTTPClient builds a client over base. When block is true plain http is
// refused while active's page is secure. Timeouts come from request
// contexts, not the client.
func NewHTTPClient(base http.RoundTripper, active *Active, block bool) *http.Client {
	if base == nil {
		base = NewTransport()
	}
	rt := base
	if block {
		rt = &MixedContentGuard{Base: base, Active: active}
	}
	return &http.Client{Transport: rt}
}
