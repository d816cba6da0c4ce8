package proxies

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// HealthChecker filters a proxy list down to its reachable members.
// Implementations never fail; unreachable addresses are simply excluded.
type HealthChecker interface {
	FilterHealthy(ctx context.Context, addrs []string) []string
}

// Snapshot is one complete generation of the proxy pool. Snapshots are
// replaced wholesale on refresh, never mutated, so concurrent readers
// always observe either the previous or the next complete set.
type Snapshot struct {
	Proxies     []string
	Validated   bool
	ValidatedAt time.Time
}

// Registry fetches and deduplicates community-sourced proxy address lists,
// optionally filtering them through a health checker. The validated set is
// a soft cache: within the validity window it is reused rather than
// re-tested.
type Registry struct {
	sources  []string
	validity time.Duration
	client   *http.Client
	checker  HealthChecker

	mu        sync.RWMutex
	snapshot  Snapshot
	validated Snapshot
}

// NewRegistry builds a registry over the given list sources. checker may
// be nil, in which case validation requests degrade to the raw set.
func NewRegistry(sources []string, validity time.Duration, client *http.Client, checker HealthChecker) *Registry {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if validity <= 0 {
		validity = time.Hour
	}
	return &Registry{
		sources:  sources,
		validity: validity,
		client:   client,
		checker:  checker,
	}
}

// Pool returns the current snapshot's addresses. The returned slice is a
// copy; callers may not observe partial refreshes.
func (r *Registry) Pool() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.snapshot.Proxies))
	copy(out, r.snapshot.Proxies)
	return out
}

// Refresh fetches all list sources, deduplicates their HOST:PORT entries
// and swaps in a new snapshot. With validate set, entries are filtered
// through the health checker unless a validated generation from within
// the validity window already exists, in which case that cached set is
// reinstated without re-testing. The validated generation is kept
// separately, so an unvalidated refresh between two validated ones never
// evicts it.
func (r *Registry) Refresh(ctx context.Context, validate bool) ([]string, error) {
	if validate {
		r.mu.RLock()
		cached := r.validated
		r.mu.RUnlock()
		if cached.Validated && time.Since(cached.ValidatedAt) < r.validity {
			log.Debug().
				Int("proxies", len(cached.Proxies)).
				Time("validated_at", cached.ValidatedAt).
				Msg("reusing validated proxy pool")
			r.mu.Lock()
			r.snapshot = cached
			r.mu.Unlock()
			return append([]string(nil), cached.Proxies...), nil
		}
	}

	all := r.fetchAll(ctx)
	unique := dedupe(all)
	log.Info().Int("total", len(unique)).Msg("public proxy pool fetched")

	snap := Snapshot{Proxies: unique}
	if validate && r.checker != nil {
		healthy := r.checker.FilterHealthy(ctx, unique)
		snap = Snapshot{Proxies: healthy, Validated: true, ValidatedAt: time.Now()}
		log.Info().
			Int("healthy", len(healthy)).
			Int("tested", len(unique)).
			Msg("proxy pool validated")
	}

	r.mu.Lock()
	r.snapshot = snap
	if snap.Validated {
		r.validated = snap
	}
	r.mu.Unlock()

	return append([]string(nil), snap.Proxies...), nil
}

// fetchAll collects entries from every source; a failing source is logged
// and skipped, never fatal to the refresh.
func (r *Registry) fetchAll(ctx context.Context) []string {
	var all []string
	for _, source := range r.sources {
		lines, err := r.fetchSource(ctx, source)
		if err != nil {
			log.Warn().Str("source", source).Err(err).Msg("proxy list source failed, skipping")
			continue
		}
		log.Debug().Str("source", source).Int("proxies", len(lines)).Msg("fetched proxy list")
		all = append(all, lines...)
	}
	return all
}

func (r *Registry) fetchSource(ctx context.Context, source string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &httpStatusError{status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var lines []string
	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || !strings.Contains(line, ":") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func dedupe(addrs []string) []string {
	seen := make(map[string]struct{}, len(addrs))
	unique := make([]string, 0, len(addrs))
	for _, addr := range addrs {
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}
		unique = append(unique, addr)
	}
	return unique
}

type httpStatusError struct {
	status int
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d", e.status)
}
