package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/threadtoon/internal/normalize"
	"github.com/threadtoon/internal/retry"
)

// ErrAllRoutesExhausted is the orchestrator's only terminal failure: every
// candidate route in both tiers failed across the full retry budget. It
// wraps the last underlying error.
var ErrAllRoutesExhausted = errors.New("all routes exhausted")

// maxResponseBytes bounds how much of any response body is read.
const maxResponseBytes = 4 << 20

// PoolProvider exposes the current public proxy pool snapshot.
type PoolProvider interface {
	Pool() []string
}

// Config carries the orchestrator's routing tables and budgets. All of it
// originates from configuration, not constants.
type Config struct {
	Mirrors        []string
	Frontends      []string
	CommunityHubs  []string
	HomeHub        string
	BridgeURL      string
	CorsProxies    []string
	FrontendSample int
	ProxySample    int
	AttemptTimeout time.Duration
	RetryCycles    int
	RetryBackoff   time.Duration
}

// Orchestrator builds candidate retrieval routes per logical request,
// races them, falls back through sequential relay attempts (prefix CORS
// proxies, then bridged public proxies) and retries the whole cycle with a
// fixed backoff. First normalized success
// wins; no attempt is made to prefer one mirror's answer over another's.
type Orchestrator struct {
	cfg    Config
	client *http.Client
	pool   PoolProvider

	mu  sync.Mutex
	rng *rand.Rand
}

// New builds an orchestrator. pool may be nil when no public-proxy pool is
// wanted; tier 1 then walks the CORS relays alone.
func New(cfg Config, client *http.Client, pool PoolProvider) *Orchestrator {
	if client == nil {
		client = &http.Client{}
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = 8 * time.Second
	}
	if cfg.FrontendSample <= 0 {
		cfg.FrontendSample = 3
	}
	if cfg.ProxySample <= 0 {
		cfg.ProxySample = 5
	}
	return &Orchestrator{
		cfg:    cfg,
		client: client,
		pool:   pool,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// WithRand swaps the pseudo-random source used for shuffling and sampling,
// so race and order outcomes are reproducible in tests.
func (o *Orchestrator) WithRand(rng *rand.Rand) *Orchestrator {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rng = rng
	return o
}

// Retrieve resolves a logical path (without representation suffix) into a
// normalized payload, exhausting tier 0, tier 1 and the retry budget
// before failing with ErrAllRoutesExhausted.
func (o *Orchestrator) Retrieve(ctx context.Context, logicalPath string, query url.Values) (*normalize.Result, error) {
	var result *normalize.Result
	cycle := 0

	res := retry.Do(ctx, retry.FetchCycleConfig(o.cfg.RetryCycles, o.cfg.RetryBackoff), func() error {
		cycle++
		out, err := o.runCycle(ctx, logicalPath, query, cycle)
		if err != nil {
			return err
		}
		result = out
		return nil
	})

	if !res.Success {
		return nil, fmt.Errorf("%w for %s: %w", ErrAllRoutesExhausted, logicalPath, res.LastError)
	}
	return result, nil
}

// runCycle executes one full tier-0 + tier-1 pass.
func (o *Orchestrator) runCycle(ctx context.Context, path string, query url.Values, cycle int) (*normalize.Result, error) {
	routes := o.tier0Routes(path, query)
	log.Debug().
		Int("cycle", cycle).
		Int("candidates", len(routes)).
		Str("path", path).
		Msg("starting tier-0 race")

	ops := make([]func(context.Context) (*normalize.Result, error), len(routes))
	for i, rt := range routes {
		rt := rt
		ops[i] = func(raceCtx context.Context) (*normalize.Result, error) {
			return o.attempt(raceCtx, rt)
		}
	}

	result, raceErr := Race(ctx, ops)
	if raceErr == nil {
		return result, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	log.Debug().
		Int("cycle", cycle).
		Err(raceErr).
		Msg("tier-0 race rejected every candidate, entering tier-1 fallback")

	result, tierErr := o.tier1(ctx, path, query)
	if tierErr == nil {
		return result, nil
	}
	return nil, tierErr
}

// tier0Routes builds the parallel race set: per shuffled origin mirror a
// direct route and a bridge route, a bounded random sample of
// alternate-frontend instances, one HTML scrape route, the optional home
// hub, and any community hubs.
func (o *Orchestrator) tier0Routes(path string, query url.Values) []Route {
	o.mu.Lock()
	mirrors := shuffled(o.rng, o.cfg.Mirrors)
	frontends := sample(o.rng, o.cfg.Frontends, o.cfg.FrontendSample)
	o.mu.Unlock()

	var routes []Route
	for _, m := range mirrors {
		routes = append(routes,
			Route{URL: jsonTarget(m, path, query), Strategy: StrategyDirect, Source: "direct:" + m},
			Route{URL: bridged(o.cfg.BridgeURL, jsonTarget(m, path, query), ""), Strategy: StrategyBridge, Source: "bridge:" + m},
		)
	}
	for _, f := range frontends {
		routes = append(routes, Route{
			URL:      jsonTarget(f, path, query),
			Strategy: StrategyMirror,
			Source:   "mirror:" + f,
		})
	}
	if len(mirrors) > 0 {
		// One scraped-HTML candidate; the normalizer hands its body to
		// the extractor.
		routes = append(routes, Route{
			URL:      bridged(o.cfg.BridgeURL, htmlTarget(mirrors[0], path, query), ""),
			Strategy: StrategyScrape,
			Source:   "scrape:" + mirrors[0],
		})
	}
	if o.cfg.HomeHub != "" {
		routes = append(routes, Route{
			URL:      hubTarget(o.cfg.HomeHub, path, query),
			Strategy: StrategyHomeHub,
			Source:   "home-hub",
		})
	}
	for _, hub := range o.cfg.CommunityHubs {
		routes = append(routes, Route{
			URL:      hubTarget(hub, path, query),
			Strategy: StrategyCommunityHub,
			Source:   "community-hub:" + hub,
		})
	}
	return routes
}

// tier1 walks origin mirrors strictly sequentially, first through each
// configured prefix-style CORS relay and then through a bounded sample of
// public proxies, each attempt completing before the next begins.
func (o *Orchestrator) tier1(ctx context.Context, path string, query url.Values) (*normalize.Result, error) {
	o.mu.Lock()
	mirrors := shuffled(o.rng, o.cfg.Mirrors)
	var proxies []string
	if o.pool != nil {
		proxies = sample(o.rng, o.pool.Pool(), o.cfg.ProxySample)
	}
	o.mu.Unlock()

	var routes []Route
	for _, m := range mirrors {
		target := jsonTarget(m, path, query)
		for _, prefix := range o.cfg.CorsProxies {
			routes = append(routes, Route{
				URL:      corsPrefixed(prefix, target),
				Strategy: StrategyCorsProxy,
				Source:   "cors:" + prefixHost(prefix) + ":" + m,
			})
		}
		for _, proxyAddr := range proxies {
			routes = append(routes, Route{
				URL:      bridged(o.cfg.BridgeURL, target, proxyAddr),
				Strategy: StrategyPublicProxy,
				Source:   "proxy:" + proxyAddr + ":" + m,
			})
		}
	}
	if len(routes) == 0 {
		return nil, fmt.Errorf("no relay routes available")
	}

	var lastErr error
	for _, rt := range routes {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		result, err := o.attempt(ctx, rt)
		if err == nil {
			return result, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// attempt issues one bounded GET against a candidate route and runs its
// response through the normalizer.
func (o *Orchestrator) attempt(ctx context.Context, rt Route) (*normalize.Result, error) {
	attemptID := uuid.NewString()[:8]

	attemptCtx, cancel := context.WithTimeout(ctx, o.cfg.AttemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, rt.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		log.Debug().
			Str("attempt", attemptID).
			Str("strategy", string(rt.Strategy)).
			Str("target", rt.URL).
			Err(err).
			Msg("route attempt failed")
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Debug().
			Str("attempt", attemptID).
			Str("strategy", string(rt.Strategy)).
			Str("target", rt.URL).
			Int("status", resp.StatusCode).
			Msg("route attempt rejected")
		return nil, fmt.Errorf("%s: HTTP %d", rt.Source, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, err
	}

	result, err := normalize.Normalize(body, resp.Header.Get("Content-Type"), rt.Source)
	if err != nil {
		log.Debug().
			Str("attempt", attemptID).
			Str("strategy", string(rt.Strategy)).
			Str("target", rt.URL).
			Err(err).
			Msg("route attempt unusable")
		return nil, err
	}

	log.Info().
		Str("attempt", attemptID).
		Str("strategy", string(rt.Strategy)).
		Str("source", rt.Source).
		Msg("route attempt succeeded")
	return result, nil
}
