// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package connect

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"
	"time"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

// =============================================================================
// DIAGNOSTIC KINDS
// =============================================================================

// Kind classifies a connectivity problem.
type Kind int

const (
	KindConfig Kind = iota
	KindMixedContent
	KindUnreachable
	KindTimeout
	KindServer
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindMixedContent:
		return "mixed-content"
	case KindUnreachable:
		return "unreachable"
	case KindTimeout:
		return "timeout"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// Diagnostic is user-facing text for a connectivity problem.
type Diagnostic struct {
	Kind      Kind
	Title     string
	Message   string
	Hints     []string
	HealthURL string
}

// Text renders the diagnostic as plain text.
func (d *Diagnostic) Text() string {
	if d == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(d.Title)
	if d.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(d.Message)
	}
	for _, h := range d.Hints {
		sb.WriteString("\n  - ")
		sb.WriteString(h)
	}
	if d.HealthURL != "" {
		sb.WriteString("\n  Health check: ")
		sb.WriteString(d.HealthURL)
	}
	return sb.String()
}

func (d *Diagnostic) Error() string { return d.Text() }

// CurlHint is the manual health check suggested in every diagnostic.
func CurlHint(healthURL string) string {
	return "Run: curl -k " + healthURL
}

// =============================================================================
// CONSTRUCTORS
// =============================================================================

// MixedContentDiagnostic explains that a secure page cannot reach an http
// backend and that the https variant did not answer.
func MixedContentDiagnostic(backendURL, secureURL, healthURL string) *Diagnostic {
	hints := []string{}
	if secureURL != "" {
		hints = append(hints, "Use an https backend URL, e.g. "+secureURL)
	} else {
		hints = append(hints, "Use an https backend URL")
	}
	hints = append(hints,
		"If the backend uses a self-signed certificate, open "+healthURL+" directly once and trust it",
		CurlHint(healthURL),
	)
	return &Diagnostic{
		Kind:      KindMixedContent,
		Title:     "Blocked insecure backend",
		Message:   fmt.Sprintf("this page is served over https, so requests to %s are blocked", backendURL),
		Hints:     hints,
		HealthURL: healthURL,
	}
}

// UnreachableDiagnostic reports a network failure.
func UnreachableDiagnostic(healthURL, reason string) *Diagnostic {
	msg := "could not reach the backend"
	if reason != "" {
		msg += " (" + reason + ")"
	}
	return &Diagnostic{
		Kind:    KindUnreachable,
		Title:   "Backend unreachable",
		Message: msg,
		Hints: []string{
			"Check that the backend is running and the URL in settings is correct",
			CurlHint(healthURL),
		},
		HealthURL: healthURL,
	}
}

// TimeoutDiagnostic reports a request that ran out of time.
func TimeoutDiagnostic(healthURL string, after time.Duration) *Diagnostic {
	msg := "the backend did not answer in time"
	if after > 0 {
		msg = fmt.Sprintf("the backend did not answer within %s", after.Round(time.Millisecond))
	}
	return &Diagnostic{
		Kind:    KindTimeout,
		Title:   "Backend timed out",
		Message: msg,
		Hints: []string{
			"The backend may be overloaded or a firewall may be dropping traffic",
			CurlHint(healthURL),
		},
		HealthURL: healthURL,
	}
}

// ServerDiagnostic reports an error answered by the backend itself.
func ServerDiagnostic(healthURL string, status int, detail string) *Diagnostic {
	msg := fmt.Sprintf("HTTP %d", status)
	if detail != "" {
		msg += ": " + detail
	}
	return &Diagnostic{
		Kind:    KindServer,
		Title:   "Backend error",
		Message: msg,
		Hints: []string{
			"Check the API key in settings and the backend logs",
			CurlHint(healthURL),
		},
		HealthURL: healthURL,
	}
}

// ConfigDiagnostic reports a backend URL that cannot be used.
func ConfigDiagnostic(raw, healthURL string) *Diagnostic {
	return &Diagnostic{
		Kind:    KindConfig,
		Title:   "Invalid backend URL",
		Message: fmt.Sprintf("%q is not an absolute http(s) URL", raw),
		Hints: []string{
			"Set a full URL such as https://host:5001/api/chat in settings",
			CurlHint(healthURL),
		},
		HealthURL: healthURL,
	}
}

// =============================================================================
// ERROR DETAIL
// =============================================================================

// maxDetail bounds server-reported text shown to the user.
const maxDetail = 300

var detailPolicy = bluemonday.StrictPolicy()

// ExtractErrorDetail pulls a human-readable message out of an error body.
// It understands {"error": "..."}, {"error": {"message": "..."}},
// {"detail": "..."} and {"message": "..."}. structured is false when the
// body had none of these and the raw text was used instead.
func ExtractErrorDetail(body []byte) (detail string, structured bool) {
	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err == nil {
		if s := pickDetail(doc); s != "" {
			return SanitizeDetail(s), true
		}
	}
	return SanitizeDetail(string(body)), false
}

func pickDetail(doc map[string]any) string {
	switch e := doc["error"].(type) {
	case string:
		if e != "" {
			return e
		}
	case map[string]any:
		if m, ok := e["message"].(string); ok && m != "" {
			return m
		}
	}
	for _, key := range []string{"detail", "message"} {
		if s, ok := doc[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// SanitizeDetail strips markup and terminal control characters, collapses
// whitespace and bounds the length of server-provided text.
func SanitizeDetail(s string) string {
	s = html.UnescapeString(detailPolicy.Sanitize(s))
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > maxDetail {
		s = string(r[:maxDetail-1]) + "…"
	}
	return s
}
