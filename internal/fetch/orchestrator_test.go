package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/threadtoon/internal/normalize"
)

const listingBody = `{"data": {"children": [{"kind": "t3", "data": {"id": "abc", "title": "hello", "subreddit": "golang", "score": 10, "upvote_ratio": 0.9}}]}}`

// routerTransport answers requests from a rule table instead of the
// network, recording every URL it saw.
type routerTransport struct {
	mu    sync.Mutex
	seen  []string
	rules []routeRule
}

type routeRule struct {
	match  string
	status int
	body   string
}

func (rt *routerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rt.mu.Lock()
	rt.seen = append(rt.seen, req.URL.String())
	rules := rt.rules
	rt.mu.Unlock()

	for _, rule := range rules {
		if strings.Contains(req.URL.String(), rule.match) {
			return &http.Response{
				StatusCode: rule.status,
				Header:     http.Header{"Content-Type": []string{"application/json"}},
				Body:       io.NopCloser(bytes.NewReader([]byte(rule.body))),
				Request:    req,
			}, nil
		}
	}
	return nil, errors.New("connection refused")
}

func (rt *routerTransport) sawMatching(substr string) int {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	n := 0
	for _, u := range rt.seen {
		if strings.Contains(u, substr) {
			n++
		}
	}
	return n
}

type staticPool struct {
	mu      sync.Mutex
	addrs   []string
	queried int
}

func (p *staticPool) Pool() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queried++
	return append([]string(nil), p.addrs...)
}

func newTestOrchestrator(cfg Config, transport *routerTransport, pool PoolProvider) *Orchestrator {
	if cfg.AttemptTimeout == 0 {
		cfg.AttemptTimeout = time.Second
	}
	client := &http.Client{Transport: transport}
	return New(cfg, client, pool).WithRand(rand.New(rand.NewSource(1)))
}

func TestRetrieve_Tier0Winner(t *testing.T) {
	transport := &routerTransport{rules: []routeRule{
		{match: "bridge.test", status: http.StatusOK, body: listingBody},
	}}
	pool := &staticPool{addrs: []string{"1.2.3.4:8080"}}

	o := newTestOrchestrator(Config{
		Mirrors:   []string{"a.example", "b.example"},
		BridgeURL: "http://bridge.test/api/proxy",
	}, transport, pool)

	result, err := o.Retrieve(context.Background(), "/r/golang/search", url.Values{"q": {"generics"}})
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if result.Kind != normalize.KindListing || len(result.Threads) != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Threads[0].ID != "abc" {
		t.Errorf("thread ID = %q, want %q", result.Threads[0].ID, "abc")
	}
	if pool.queried != 0 {
		t.Errorf("public proxy pool consulted %d times during a tier-0 win", pool.queried)
	}
}

func TestRetrieve_Tier1FallbackAfterTier0Rejects(t *testing.T) {
	// Tier-0 candidates all answer 403; only the proxied bridge call,
	// recognizable by its proxy parameter, succeeds.
	transport := &routerTransport{rules: []routeRule{
		{match: "proxy=1.2.3.4", status: http.StatusOK, body: listingBody},
		{match: "", status: http.StatusForbidden, body: `{"error": "blocked"}`},
	}}
	pool := &staticPool{addrs: []string{"1.2.3.4:8080"}}

	o := newTestOrchestrator(Config{
		Mirrors:   []string{"a.example"},
		BridgeURL: "http://bridge.test/api/proxy",
	}, transport, pool)

	result, err := o.Retrieve(context.Background(), "/r/golang/search", nil)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(result.Threads) != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if pool.queried == 0 {
		t.Error("tier-1 fallback never consulted the proxy pool")
	}
	if n := transport.sawMatching("proxy=1.2.3.4"); n != 1 {
		t.Errorf("proxied route attempted %d times, want 1", n)
	}
}

func TestRetrieve_CorsRelayFallback(t *testing.T) {
	// No proxy pool at all: after tier-0 rejects everything, the
	// prefix-style relay is the only remaining route. It answers with an
	// aggregating envelope whose contents carry the listing as a string.
	quoted, err := json.Marshal(listingBody)
	if err != nil {
		t.Fatal(err)
	}
	envelope := `{"contents": ` + string(quoted) + `, "status": {"http_code": 200}}`

	transport := &routerTransport{rules: []routeRule{
		{match: "relay.test", status: http.StatusOK, body: envelope},
		{match: "", status: http.StatusForbidden, body: `{"error": "blocked"}`},
	}}

	o := newTestOrchestrator(Config{
		Mirrors:     []string{"a.example"},
		BridgeURL:   "http://bridge.test/api/proxy",
		CorsProxies: []string{"http://relay.test/raw?url="},
	}, transport, nil)

	result, err := o.Retrieve(context.Background(), "/r/golang/search", nil)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if result.Kind != normalize.KindListing || len(result.Threads) != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	// The relay sees the whole target URL query-escaped after its prefix.
	if n := transport.sawMatching("relay.test/raw?url=" + url.QueryEscape("https://a.example/r/golang/search.json")); n != 1 {
		t.Errorf("relay route attempted %d times, want 1", n)
	}
}

func TestRetrieve_CorsRelaysPrecedePoolProxies(t *testing.T) {
	transport := &routerTransport{rules: []routeRule{
		{match: "proxy=1.2.3.4", status: http.StatusOK, body: listingBody},
		{match: "", status: http.StatusForbidden, body: `{"error": "blocked"}`},
	}}
	pool := &staticPool{addrs: []string{"1.2.3.4:8080"}}

	o := newTestOrchestrator(Config{
		Mirrors:     []string{"a.example"},
		BridgeURL:   "http://bridge.test/api/proxy",
		CorsProxies: []string{"http://relay.test/raw?url="},
	}, transport, pool)

	result, err := o.Retrieve(context.Background(), "/r/golang/search", nil)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(result.Threads) != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}

	transport.mu.Lock()
	relayAt, proxyAt := -1, -1
	for i, u := range transport.seen {
		if relayAt == -1 && strings.Contains(u, "relay.test") {
			relayAt = i
		}
		if proxyAt == -1 && strings.Contains(u, "proxy=1.2.3.4") {
			proxyAt = i
		}
	}
	transport.mu.Unlock()

	if relayAt == -1 || proxyAt == -1 {
		t.Fatalf("relay seen at %d, pool proxy seen at %d, want both attempted", relayAt, proxyAt)
	}
	if relayAt > proxyAt {
		t.Errorf("pool proxy attempted at %d before relay at %d", proxyAt, relayAt)
	}
}

func TestRetrieve_AllRoutesExhausted(t *testing.T) {
	transport := &routerTransport{rules: []routeRule{
		{match: "", status: http.StatusBadGateway, body: "bad gateway"},
	}}
	pool := &staticPool{addrs: []string{"1.2.3.4:8080"}}

	o := newTestOrchestrator(Config{
		Mirrors:      []string{"a.example"},
		BridgeURL:    "http://bridge.test/api/proxy",
		RetryCycles:  1,
		RetryBackoff: time.Millisecond,
	}, transport, pool)

	_, err := o.Retrieve(context.Background(), "/r/golang/search", nil)
	if !errors.Is(err, ErrAllRoutesExhausted) {
		t.Fatalf("error = %v, want ErrAllRoutesExhausted", err)
	}

	// One extra cycle means the proxied route was walked twice.
	if n := transport.sawMatching("proxy=1.2.3.4"); n != 2 {
		t.Errorf("proxied route attempted %d times across cycles, want 2", n)
	}
}

func TestRetrieve_UnusableBodyLosesRace(t *testing.T) {
	// The direct route answers 200 with an empty body; the bridge route
	// carries a parseable listing. Only the bridge may win.
	transport := &routerTransport{rules: []routeRule{
		{match: "bridge.test", status: http.StatusOK, body: listingBody},
		{match: "a.example", status: http.StatusOK, body: ""},
	}}

	o := newTestOrchestrator(Config{
		Mirrors:   []string{"a.example"},
		BridgeURL: "http://bridge.test/api/proxy",
	}, transport, &staticPool{})

	result, err := o.Retrieve(context.Background(), "/r/golang/search", nil)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(result.Threads) != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestRetrieve_EmptyPoolFailsTier1(t *testing.T) {
	transport := &routerTransport{rules: []routeRule{
		{match: "", status: http.StatusForbidden, body: "no"},
	}}

	o := newTestOrchestrator(Config{
		Mirrors:   []string{"a.example"},
		BridgeURL: "http://bridge.test/api/proxy",
	}, transport, &staticPool{})

	_, err := o.Retrieve(context.Background(), "/r/golang/search", nil)
	if !errors.Is(err, ErrAllRoutesExhausted) {
		t.Fatalf("error = %v, want ErrAllRoutesExhausted", err)
	}
}

func TestTier0Routes_Composition(t *testing.T) {
	o := newTestOrchestrator(Config{
		Mirrors:        []string{"a.example", "b.example"},
		Frontends:      []string{"f1.example", "f2.example", "f3.example", "f4.example"},
		CommunityHubs:  []string{"https://hub.example/api"},
		HomeHub:        "https://home.example/api",
		BridgeURL:      "http://bridge.test/api/proxy",
		FrontendSample: 2,
	}, &routerTransport{}, nil)

	routes := o.tier0Routes("/r/golang/search", url.Values{"q": {"x"}})

	counts := map[Strategy]int{}
	for _, rt := range routes {
		counts[rt.Strategy]++
	}
	if counts[StrategyDirect] != 2 || counts[StrategyBridge] != 2 {
		t.Errorf("mirror routes = %d direct, %d bridge, want 2 each", counts[StrategyDirect], counts[StrategyBridge])
	}
	if counts[StrategyMirror] != 2 {
		t.Errorf("frontend sample = %d, want 2", counts[StrategyMirror])
	}
	if counts[StrategyScrape] != 1 || counts[StrategyHomeHub] != 1 || counts[StrategyCommunityHub] != 1 {
		t.Errorf("aux routes = %+v", counts)
	}
}

func TestTier0Routes_Deterministic(t *testing.T) {
	cfg := Config{
		Mirrors:        []string{"a.example", "b.example", "c.example"},
		Frontends:      []string{"f1.example", "f2.example", "f3.example"},
		BridgeURL:      "http://bridge.test/api/proxy",
		FrontendSample: 2,
	}

	first := newTestOrchestrator(cfg, &routerTransport{}, nil).tier0Routes("/r/golang/search", nil)
	second := newTestOrchestrator(cfg, &routerTransport{}, nil).tier0Routes("/r/golang/search", nil)

	if len(first) != len(second) {
		t.Fatalf("route counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("route %d differs with identical seeds: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestSample_Bounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	list := []string{"a", "b", "c", "d", "e"}

	got := sample(rng, list, 3)
	if len(got) != 3 {
		t.Errorf("sample returned %d entries, want 3", len(got))
	}

	got = sample(rng, list, 10)
	if len(got) != len(list) {
		t.Errorf("oversized sample returned %d entries, want %d", len(got), len(list))
	}
}

func TestShuffled_PreservesMembers(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	list := []string{"a", "b", "c", "d"}

	got := shuffled(rng, list)
	if len(got) != len(list) {
		t.Fatalf("shuffle changed length: %d", len(got))
	}
	members := map[string]bool{}
	for _, s := range got {
		members[s] = true
	}
	for _, s := range list {
		if !members[s] {
			t.Errorf("member %q lost in shuffle", s)
		}
	}
}
