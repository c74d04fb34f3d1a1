// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package connect

import (
	"net/url"
	"strings"
	"sync/atomic"
)

// Connectivity is one resolved endpoint. BackendOrigin is always derived
// from BackendURL.
type Connectivity struct {
	BackendURL    string
	APIKey        string
	BackendOrigin string
}

// Active is the process-wide connectivity, shared by the resolver and the
// chat client. Readers never see a URL paired with another URL's origin.
type Active struct {
	cur        atomic.Pointer[Connectivity]
	pageOrigin string
}

// NewActive creates an empty Active for a page served from pageOrigin.
func NewActive(pageOrigin string) *Active {
	a := &Active{pageOrigin: strings.TrimRight(pageOrigin, "/")}
	a.cur.Store(&Connectivity{})
	return a
}

// Get returns the current connectivity.
func (a *Active) Get() Connectivity {
	return *a.cur.Load()
}

// Set replaces URL and key, deriving the origin.
func (a *Active) Set(backendURL, apiKey string) Connectivity {
	c := &Connectivity{
		BackendURL:    backendURL,
		APIKey:        apiKey,
		BackendOrigin: DeriveOrigin(backendURL, a.pageOrigin),
	}
	a.cur.Store(c)
	return *c
}

// SetURL replaces the URL, keeping the key. It is a compare-and-swap loop
// so a concurrent Set is never lost.
func (a *Active) SetURL(backendURL string) Connectivity {
	for {
		old := a.cur.Load()
		c := &Connectivity{
			BackendURL:    backendURL,
			APIKey:        old.APIKey,
			BackendOrigin: DeriveOrigin(backendURL, a.pageOrigin),
		}
		if a.cur.CompareAndSwap(old, c) {
			return *c
		}
	}
}

// PageOrigin returns the front-end's own origin.
func (a *Active) PageOrigin() string { return a.pageOrigin }

// PageSecure reports whether the page origin is https.
func (a *Active) PageSecure() bool {
	return IsSecureURL(a.pageOrigin)
}

// HealthURL returns the health URL of the current backend.
func (a *Active) HealthURL() string {
	return DeriveHealthURL(a.Get().BackendURL, a.pageOrigin)
}

// =============================================================================
// URL HELPERS
// =============================================================================

// HealthPath is the fixed health-check path.
const HealthPath = "/health"

// DeriveOrigin returns scheme://host[:port] of raw. A URL that does not
// parse as absolute yields pageOrigin.
func DeriveOrigin(raw, pageOrigin string) string {
	u, ok := parseAbsolute(raw)
	if !ok {
		return pageOrigin
	}
	return strings.ToLower(u.Scheme) + "://" + u.Host
}

// DeriveHealthURL replaces the path of backendURL with /health and strips
// query and fragment. A malformed URL falls back to the origin (the page
// origin when none can be derived) joined with /health.
func DeriveHealthURL(backendURL, pageOrigin string) string {
	u, ok := parseAbsolute(backendURL)
	if !ok {
		return strings.TrimRight(DeriveOrigin(backendURL, pageOrigin), "/") + HealthPath
	}
	u.Path = HealthPath
	u.RawPath = ""
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}

// SecureVariant returns raw with its http scheme replaced by https.
// ok is false when raw is not an absolute http URL.
func SecureVariant(raw string) (string, bool) {
	u, ok := parseAbsolute(raw)
	if !ok || !strings.EqualFold(u.Scheme, "http") {
		return "", false
	}
	u.Scheme = "https"
	return u.String(), true
}

// IsSecureURL reports whether raw is an absolute https URL.
func IsSecureURL(raw string) bool {
	u, ok := parseAbsolute(raw)
	return ok && strings.EqualFold(u.Scheme, "https")
}

// IsInsecureURL reports whether raw is an absolute http URL.
func IsInsecureURL(raw string) bool {
	u, ok := parseAbsolute(raw)
	return ok && strings.EqualFold(u.Scheme, "http")
}

// ResolveReference resolves ref against origin. Absolute refs are returned
// unchanged; an empty ref stays empty.
func ResolveReference(origin, ref string) string {
	if ref == "" {
		return ""
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	if r.IsAbs() {
		return ref
	}
	base, ok := parseAbsolute(origin)
	if !ok {
		return ref
	}
	return base.ResolveReference(r).String()
}

func parseAbsolute(raw string) (*url.URL, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, false
	}
	return u, true
}
