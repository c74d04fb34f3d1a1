// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/ultron-tui/internal/connect"
	"github.com/jeranaias/ultron-tui/internal/logging"
	"github.com/jeranaias/ultron-tui/internal/util"
)

// NoReply is shown when the backend answers without any reply text.
const NoReply = "(no reply)"

// =============================================================================
// WIRE TYPES
// =============================================================================

// Request is the POST body sent to the backend.
type Request struct {
	Message  string `json:"message"`
	APIKey   string `json:"apiKey"`
	ClientID string `json:"clientId"`
}

// response accepts both reply field names.
type response struct {
	Reply     *string `json:"reply,omitempty"`
	Text      *string `json:"text,omitempty"`
	ResumeURL string  `json:"resume_url,omitempty"`
}

// Reply is the outcome of Send. Text is always displayable.
type Reply struct {
	Text      string
	ResumeURL string

	// Diagnostic is set when the send failed; Text is its rendering.
	Diagnostic *connect.Diagnostic

	// Upgraded reports that the backend was switched to https during this send.
	Upgraded bool

	Err     error
	Latency time.Duration
}

// OK reports whether the backend answered successfully.
func (r Reply) OK() bool { return r.Err == nil }

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the chat client.
type ClientConfig struct {
	// Timeout bounds each POST (default: 30s)
	Timeout time.Duration

	// MaxResponseBytes bounds the response body (default: 10 MiB)
	MaxResponseBytes int64

	// ClientID identifies this installation to the backend.
	ClientID string

	UserAgent string
	Logger    zerolog.Logger
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		Timeout:          30 * time.Second,
		MaxResponseBytes: 10 * 1024 * 1024,
		UserAgent:        "ultron",
		Logger:           zerolog.Nop(),
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client sends chat messages to the active backend.
// It is safe for concurrent use.
type Client struct {
	config     *ClientConfig
	resolver   *connect.Resolver
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a client over the resolver's active connectivity.
// httpClient should be the same guarded client the resolver probes with;
// nil builds a fresh one. Zero config fields take their defaults.
func NewClient(resolver *connect.Resolver, httpClient *http.Client, config *ClientConfig) *Client {
	def := DefaultConfig()
	if config == nil {
		config = def
	}
	if config.Timeout <= 0 {
		config.Timeout = def.Timeout
	}
	if config.MaxResponseBytes <= 0 {
		config.MaxResponseBytes = def.MaxResponseBytes
	}
	if config.UserAgent == "" {
		config.UserAgent = def.UserAgent
	}
	if httpClient == nil {
		httpClient = connect.NewHTTPClient(nil, resolver.Active(), true)
	}
	return &Client{
		config:     config,
		resolver:   resolver,
		httpClient: httpClient,
		log:        logging.Component(config.Logger, "backend"),
	}
}

// Config returns the client configuration.
func (c *Client) Config() *ClientConfig { return c.config }

// PrepareMessage NFC-normalizes and trims an outgoing message.
func PrepareMessage(msg string) string {
	return strings.TrimSpace(norm.NFC.String(msg))
}

// Send posts msg to the active backend. It never fails past this call:
// every error is folded into Reply.Text and Reply.Diagnostic.
func (c *Client) Send(ctx context.Context, msg string) Reply {
	msg = PrepareMessage(msg)
	if msg == "" {
		return Reply{Text: "Type a message first.", Err: ErrEmptyMessage}
	}

	start := time.Now()
	conn := c.resolver.Active().Get()
	active := c.resolver.Active()

	out, err := c.post(ctx, conn.BackendURL, conn, msg)
	upgraded := false
	failedURL := conn.BackendURL

	if err != nil && isTransportError(err) && active.PageSecure() && connect.IsInsecureURL(conn.BackendURL) {
		if secure, ok := connect.SecureVariant(conn.BackendURL); ok {
			c.log.Info().Str("from", conn.BackendURL).Str("to", secure).Msg("retrying send over https")
			retryConn := conn
			retryConn.BackendOrigin = connect.DeriveOrigin(secure, active.PageOrigin())
			var retryErr error
			out, retryErr = c.post(ctx, secure, retryConn, msg)
			if retryErr == nil {
				upgraded = true
				conn = retryConn
				if perr := c.resolver.Promote(conn.BackendURL, secure); perr != nil {
					c.log.Error().Err(perr).Msg("persist upgraded backend")
				}
				conn.BackendURL = secure
			} else if !isTransportError(retryErr) {
				// https answered; report what it said.
				failedURL = secure
			}
			err = retryErr
		}
	}

	latency := time.Since(start)
	if err != nil {
		d := c.diagnose(failedURL, err)
		c.log.Warn().
			Err(err).
			Str("kind", d.Kind.String()).
			Str("health", d.HealthURL).
			Dur("latency", latency).
			Msg("send failed")
		return Reply{Text: d.Text(), Diagnostic: d, Err: err, Latency: latency}
	}

	reply := normalize(out, conn.BackendOrigin)
	reply.Upgraded = upgraded
	reply.Latency = latency
	c.log.Debug().
		Int("reply_len", len(reply.Text)).
		Bool("upgraded", upgraded).
		Dur("latency", latency).
		Msg("reply received")
	return reply
}

// post performs a single bounded POST.
func (c *Client) post(ctx context.Context, backendURL string, conn connect.Connectivity, msg string) (*response, error) {
	body, err := json.Marshal(Request{Message: msg, APIKey: conn.APIKey, ClientID: c.config.ClientID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, backendURL, bytes.NewReader(body))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "invalid backend URL", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)

	c.log.Debug().
		Str("url", backendURL).
		Str("key", util.Fingerprint(conn.APIKey)).
		Msg("posting message")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransport(err)
	}
	defer resp.Body.Close()

	data, err := c.readResponse(resp)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, handleErrorResponse(resp.StatusCode, data)
	}

	var out response
	if len(bytes.TrimSpace(data)) == 0 {
		return &out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to parse response", Cause: err}
	}
	return &out, nil
}

// readResponse reads the body up to the configured limit.
func (c *Client) readResponse(resp *http.Response) ([]byte, error) {
	limit := c.config.MaxResponseBytes
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, classifyTransport(err)
	}
	if int64(len(data)) > limit {
		return nil, &ClientError{
			Type:    ErrTypeTooLarge,
			Message: fmt.Sprintf("response exceeded maximum size of %d bytes", limit),
		}
	}
	return data, nil
}

// handleErrorResponse converts a non-2xx answer into a *ClientError
// wrapping a *StatusError.
func handleErrorResponse(status int, body []byte) error {
	detail, structured := connect.ExtractErrorDetail(body)
	se := &StatusError{StatusCode: status, Detail: detail, Structured: structured}
	return &ClientError{Type: ErrTypeStatus, Message: "backend rejected the request", Cause: se}
}

func classifyTransport(err error) error {
	switch {
	case errors.Is(err, connect.ErrMixedContentBlocked):
		return &ClientError{Type: ErrTypeMixedContent, Message: "request blocked", Cause: err}
	case connect.IsTimeout(err):
		return &ClientError{Type: ErrTypeTimeout, Message: "request timed out", Cause: err}
	default:
		return &ClientError{Type: ErrTypeConnection, Message: "request failed", Cause: err}
	}
}

// isTransportError reports whether err happened before any HTTP answer.
func isTransportError(err error) bool {
	switch typeOf(err) {
	case ErrTypeMixedContent, ErrTypeTimeout, ErrTypeConnection:
		return true
	}
	return false
}

// diagnose maps a final send failure onto a diagnostic for backendURL.
func (c *Client) diagnose(backendURL string, err error) *connect.Diagnostic {
	active := c.resolver.Active()
	page := active.PageOrigin()
	health := connect.DeriveHealthURL(backendURL, page)

	var se *StatusError
	switch {
	case errors.As(err, &se):
		return connect.ServerDiagnostic(health, se.StatusCode, se.Detail)
	case typeOf(err) == ErrTypeMixedContent,
		active.PageSecure() && connect.IsInsecureURL(backendURL) && isTransportError(err):
		secure, _ := connect.SecureVariant(backendURL)
		secureHealth := health
		if secure != "" {
			secureHealth = connect.DeriveHealthURL(secure, page)
		}
		return connect.MixedContentDiagnostic(backendURL, secure, secureHealth)
	case typeOf(err) == ErrTypeTimeout:
		return connect.TimeoutDiagnostic(health, c.config.Timeout)
	case typeOf(err) == ErrTypeInvalidResponse, typeOf(err) == ErrTypeTooLarge:
		d := connect.ServerDiagnostic(health, http.StatusOK, err.Error())
		d.Title = "Unreadable backend response"
		return d
	default:
		return connect.UnreachableDiagnostic(health, connect.Reason(errors.Unwrap(err)))
	}
}

// normalize prefers reply over text and resolves resume_url against the
// backend origin.
func normalize(r *response, backendOrigin string) Reply {
	text := NoReply
	switch {
	case r.Reply != nil && strings.TrimSpace(*r.Reply) != "":
		text = *r.Reply
	case r.Text != nil && strings.TrimSpace(*r.Text) != "":
		text = *r.Text
	}
	return Reply{
		Text:      text,
		ResumeURL: connect.ResolveReference(backendOrigin, strings.TrimSpace(r.ResumeURL)),
	}
}
