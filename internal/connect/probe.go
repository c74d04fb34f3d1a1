// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package connect

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"
)

// =============================================================================
// PROBE RESULT
// =============================================================================

// ProbeStatus is the outcome class of a probe.
type ProbeStatus int

const (
	// ProbeOK means a 2xx answer.
	ProbeOK ProbeStatus = iota
	// ProbeFailed means the server answered with a non-2xx status.
	ProbeFailed
	// ProbeUnreachable means no answer: network failure or timeout.
	ProbeUnreachable
)

// String returns the status name.
func (s ProbeStatus) String() string {
	switch s {
	case ProbeOK:
		return "ok"
	case ProbeFailed:
		return "failed"
	case ProbeUnreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// ProbeResult is the tri-state outcome of Probe.
type ProbeResult struct {
	Status     ProbeStatus
	URL        string
	StatusCode int
	// Body is the decoded JSON body of a 2xx answer, nil when absent or not JSON.
	Body any
	// Detail is the error text of a ProbeFailed answer.
	Detail string
	// Reason describes a ProbeUnreachable outcome.
	Reason  string
	Timeout bool
	Err     error
	Latency time.Duration
}

// OK reports a 2xx answer.
func (r ProbeResult) OK() bool { return r.Status == ProbeOK }

// =============================================================================
// PROBER
// =============================================================================

// DefaultProbeTimeout applies when Probe is called with a non-positive timeout.
const DefaultProbeTimeout = 2500 * time.Millisecond

// maxProbeBody bounds how much of a health body is read.
const maxProbeBody = 64 * 1024

// Prober issues health checks.
type Prober struct {
	Client    *http.Client
	UserAgent string
}

// Probe checks url with a hard timeout. The in-flight request is cancelled
// at the timeout boundary.
func (p *Prober) Probe(ctx context.Context, rawURL string, timeout time.Duration) ProbeResult {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	res := ProbeResult{URL: rawURL}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		res.Status = ProbeUnreachable
		res.Reason = "invalid health URL"
		res.Err = err
		return res
	}
	req.Header.Set("Accept", "application/json")
	if p.UserAgent != "" {
		req.Header.Set("User-Agent", p.UserAgent)
	}

	start := time.Now()
	resp, err := client.Do(req)
	res.Latency = time.Since(start)
	if err != nil {
		res.Status = ProbeUnreachable
		res.Err = err
		res.Timeout = IsTimeout(err)
		res.Reason = Reason(err)
		return res
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProbeBody))
	res.StatusCode = resp.StatusCode
	if err != nil && IsTimeout(err) {
		res.Status = ProbeUnreachable
		res.Err = err
		res.Timeout = true
		res.Reason = Reason(err)
		return res
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		res.Status = ProbeFailed
		res.Detail, _ = ExtractErrorDetail(body)
		return res
	}

	res.Status = ProbeOK
	if len(body) > 0 {
		var decoded any
		if json.Unmarshal(body, &decoded) == nil {
			res.Body = decoded
		}
	}
	return res
}

// =============================================================================
// ERROR CLASSIFICATION
// =============================================================================

// IsTimeout reports whether err is a deadline or network timeout.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// Reason returns a short description of a transport error.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMixedContentBlocked):
		return "blocked as mixed content"
	case IsTimeout(err):
		return "timed out"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return "host not found: " + dnsErr.Name
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return "connection refused"
	}
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Err != nil {
		return uerr.Err.Error()
	}
	return err.Error()
}
