// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package connect

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/jeranaias/ultron-tui/internal/logging"
	"github.com/jeranaias/ultron-tui/internal/settings"
	"github.com/jeranaias/ultron-tui/internal/util"
)

// =============================================================================
// SOURCES
// =============================================================================

// Override query parameter names.
const (
	ParamBackend = "backend"
	ParamAPIKey  = "apikey"
)

// Overrides are runtime values that beat everything else.
type Overrides struct {
	BackendURL string
	APIKey     string
}

// ParseOverrides reads overrides from a query string such as
// "backend=https://host/api/chat&apikey=k". A leading "?" is allowed.
func ParseOverrides(query string) (Overrides, error) {
	q, err := url.ParseQuery(strings.TrimPrefix(strings.TrimSpace(query), "?"))
	if err != nil {
		return Overrides{}, err
	}
	return Overrides{
		BackendURL: strings.TrimSpace(q.Get(ParamBackend)),
		APIKey:     strings.TrimSpace(q.Get(ParamAPIKey)),
	}, nil
}

// Merge returns o with empty fields filled from other.
func (o Overrides) Merge(other Overrides) Overrides {
	if o.BackendURL == "" {
		o.BackendURL = other.BackendURL
	}
	if o.APIKey == "" {
		o.APIKey = other.APIKey
	}
	return o
}

// Defaults are the compiled-in (config) values.
type Defaults struct {
	BackendURL string
	APIKey     string
}

// Sources are the layers resolution reads, highest precedence first.
type Sources struct {
	Overrides Overrides
	Settings  settings.Store
	Defaults  Defaults
}

// =============================================================================
// RESOLVER
// =============================================================================

// Options configure a Resolver.
type Options struct {
	Sources Sources
	Active  *Active

	// Client is used for probes. Nil means a guarded client over NewTransport.
	Client *http.Client

	// ProbeTimeout bounds each probe (default: 2.5s)
	ProbeTimeout time.Duration

	// VerifyInterval is the minimum spacing between re-verifications.
	// Zero disables the limit.
	VerifyInterval time.Duration

	UserAgent string
	Logger    zerolog.Logger
}

// Resolver resolves, upgrades and verifies the backend endpoint.
// It is safe for concurrent use.
type Resolver struct {
	mu      sync.Mutex
	sources Sources

	active  *Active
	prober  *Prober
	timeout time.Duration
	limiter *rate.Limiter
	log     zerolog.Logger
}

// NewResolver creates a Resolver. Active is created from an empty page
// origin when nil.
func NewResolver(opts Options) *Resolver {
	if opts.Active == nil {
		opts.Active = NewActive("")
	}
	if opts.Client == nil {
		opts.Client = NewHTTPClient(nil, opts.Active, true)
	}
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = DefaultProbeTimeout
	}
	limit := rate.Inf
	if opts.VerifyInterval > 0 {
		limit = rate.Every(opts.VerifyInterval)
	}
	return &Resolver{
		sources: opts.Sources,
		active:  opts.Active,
		prober:  &Prober{Client: opts.Client, UserAgent: opts.UserAgent},
		timeout: opts.ProbeTimeout,
		limiter: rate.NewLimiter(limit, 1),
		log:     logging.Component(opts.Logger, "connect"),
	}
}

// Active returns the shared connectivity.
func (r *Resolver) Active() *Active { return r.active }

// Prober returns the resolver's prober.
func (r *Resolver) Prober() *Prober { return r.prober }

// ProbeTimeout returns the per-probe bound.
func (r *Resolver) ProbeTimeout() time.Duration { return r.timeout }

// SetOverrides replaces the runtime overrides. Call Resolve afterwards.
func (r *Resolver) SetOverrides(o Overrides) {
	r.mu.Lock()
	r.sources.Overrides = o
	r.mu.Unlock()
}

// SetDefaults replaces the built-in layer, e.g. after a config reload.
func (r *Resolver) SetDefaults(d Defaults) {
	r.mu.Lock()
	r.sources.Defaults = d
	r.mu.Unlock()
}

// Resolve layers overrides > persisted settings > defaults, field by field,
// and installs the result into Active.
func (r *Resolver) Resolve() Connectivity {
	r.mu.Lock()
	src := r.sources
	r.mu.Unlock()

	var persisted settings.Settings
	if src.Settings != nil {
		s, err := src.Settings.Get()
		if err != nil {
			r.log.Warn().Err(err).Msg("read persisted settings")
		} else {
			persisted = s
		}
	}

	backendURL := firstNonEmpty(src.Overrides.BackendURL, persisted.BackendURL, src.Defaults.BackendURL)
	apiKey := firstNonEmpty(src.Overrides.APIKey, persisted.APIKey, src.Defaults.APIKey)

	c := r.active.Set(backendURL, apiKey)
	r.log.Debug().
		Str("backend", c.BackendURL).
		Str("origin", c.BackendOrigin).
		Str("key", util.Fingerprint(c.APIKey)).
		Msg("resolved connectivity")
	return c
}

// Watch re-resolves whenever the settings store changes. The returned
// function stops watching.
func (r *Resolver) Watch() func() {
	r.mu.Lock()
	store := r.sources.Settings
	r.mu.Unlock()
	if store == nil {
		return func() {}
	}
	return store.OnChanged(func(settings.Settings) { r.Resolve() })
}

// HealthURL returns the health URL of the active backend.
func (r *Resolver) HealthURL() string {
	return r.active.HealthURL()
}

// Promote switches the active backend from one URL to another and
// persists it. A runtime override equal to from is replaced as well so a
// later Resolve keeps the promoted URL.
func (r *Resolver) Promote(from, to string) error {
	r.mu.Lock()
	if r.sources.Overrides.BackendURL == from {
		r.sources.Overrides.BackendURL = to
	}
	store := r.sources.Settings
	r.mu.Unlock()

	r.active.SetURL(to)
	r.log.Info().Str("from", from).Str("to", to).Msg("promoted backend URL")
	if store == nil {
		return nil
	}
	return settings.SetBackend(store, to)
}

// =============================================================================
// AUTO UPGRADE
// =============================================================================

// UpgradeResult describes an AutoUpgrade call.
type UpgradeResult struct {
	// Attempted is false when no upgrade applied (page not secure or backend not http).
	Attempted  bool
	Upgraded   bool
	From       string
	To         string
	Probe      ProbeResult
	Diagnostic *Diagnostic
	// PersistErr is set when the promoted URL could not be saved.
	PersistErr error
}

// AutoUpgrade switches an http backend to https when the page is secure
// and the https variant answers its health check. It never switches
// without a successful probe.
func (r *Resolver) AutoUpgrade(ctx context.Context) UpgradeResult {
	cur := r.active.Get()
	if !r.active.PageSecure() || !IsInsecureURL(cur.BackendURL) {
		return UpgradeResult{}
	}

	candidate, _ := SecureVariant(cur.BackendURL)
	health := DeriveHealthURL(candidate, r.active.PageOrigin())
	res := UpgradeResult{Attempted: true, From: cur.BackendURL, To: candidate}
	res.Probe = r.prober.Probe(ctx, health, r.timeout)

	if !res.Probe.OK() {
		r.log.Warn().
			Str("candidate", candidate).
			Str("probe", res.Probe.Status.String()).
			Str("reason", res.Probe.Reason).
			Msg("https upgrade probe failed")
		res.Diagnostic = MixedContentDiagnostic(cur.BackendURL, candidate, health)
		return res
	}

	res.Upgraded = true
	if err := r.Promote(cur.BackendURL, candidate); err != nil {
		r.log.Error().Err(err).Msg("persist upgraded backend")
		res.PersistErr = err
	}
	return res
}

// =============================================================================
// VERIFY
// =============================================================================

// Verification is the outcome of Verify.
type Verification struct {
	Connectivity Connectivity
	HealthURL    string
	Upgrade      UpgradeResult
	Probe        ProbeResult
	Healthy      bool
	Diagnostic   *Diagnostic
}

// Verify runs AutoUpgrade and then probes the active health URL.
func (r *Resolver) Verify(ctx context.Context) Verification {
	var v Verification
	v.Upgrade = r.AutoUpgrade(ctx)
	v.Connectivity = r.active.Get()
	v.HealthURL = r.HealthURL()

	if !IsSecureURL(v.Connectivity.BackendURL) && !IsInsecureURL(v.Connectivity.BackendURL) {
		v.Diagnostic = ConfigDiagnostic(v.Connectivity.BackendURL, v.HealthURL)
		return v
	}
	if v.Upgrade.Diagnostic != nil {
		v.Diagnostic = v.Upgrade.Diagnostic
		return v
	}

	v.Probe = r.prober.Probe(ctx, v.HealthURL, r.timeout)
	v.Healthy = v.Probe.OK()
	if !v.Healthy {
		v.Diagnostic = r.ProbeDiagnostic(v.Connectivity.BackendURL, v.Probe)
		r.log.Warn().
			Str("health", v.HealthURL).
			Str("kind", v.Diagnostic.Kind.String()).
			Msg("backend verification failed")
	}
	return v
}

// Reverify waits for the rate limiter and then runs Verify. It fails only
// when ctx ends while waiting.
func (r *Resolver) Reverify(ctx context.Context) (Verification, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return Verification{}, err
	}
	return r.Verify(ctx), nil
}

// ProbeDiagnostic turns a failed probe of backendURL into a diagnostic.
func (r *Resolver) ProbeDiagnostic(backendURL string, p ProbeResult) *Diagnostic {
	health := DeriveHealthURL(backendURL, r.active.PageOrigin())
	switch {
	case p.Status == ProbeFailed:
		return ServerDiagnostic(health, p.StatusCode, p.Detail)
	case errors.Is(p.Err, ErrMixedContentBlocked):
		secure, _ := SecureVariant(backendURL)
		return MixedContentDiagnostic(backendURL, secure, DeriveHealthURL(firstNonEmpty(secure, backendURL), r.active.PageOrigin()))
	case p.Timeout:
		return TimeoutDiagnostic(health, r.timeout)
	default:
		return UnreachableDiagnostic(health, p.Reason)
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
