package health

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

// Progress reports cumulative health-check state after each batch.
type Progress func(tested, total, healthy int)

// Checker probes proxy addresses for liveness by relaying a request to an
// IP-echo endpoint through the same-origin bridge, so probe egress matches
// real fetch egress. It never fails: unreachable addresses are excluded,
// not errored.
type Checker struct {
	BridgeURL  string
	Endpoint   string
	Timeout    time.Duration
	BatchSize  int
	Client     *http.Client
	OnProgress Progress

	// limiter paces batch starts so a large pool does not hammer the
	// bridge. One batch per half second.
	limiter *rate.Limiter
}

// NewChecker builds a checker with the standard probe profile: batches of
// ten, eight seconds per probe.
func NewChecker(bridgeURL, endpoint string, client *http.Client) *Checker {
	if client == nil {
		client = &http.Client{}
	}
	return &Checker{
		BridgeURL: bridgeURL,
		Endpoint:  endpoint,
		Timeout:   8 * time.Second,
		BatchSize: 10,
		Client:    client,
		limiter:   rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
	}
}

type probeResult struct {
	addr    string
	healthy bool
	elapsed time.Duration
	reason  string
}

// FilterHealthy tests addresses in fixed-size batches and returns the
// subset that answered the probe in time with an IP-bearing JSON body.
func (c *Checker) FilterHealthy(ctx context.Context, addrs []string) []string {
	if len(addrs) == 0 {
		return nil
	}

	log.Info().Int("total", len(addrs)).Msg("testing proxy pool")

	healthy := []string{}
	tested := 0

	for start := 0; start < len(addrs); start += c.BatchSize {
		if c.limiter != nil && start > 0 {
			if err := c.limiter.Wait(ctx); err != nil {
				break
			}
		}

		end := start + c.BatchSize
		if end > len(addrs) {
			end = len(addrs)
		}
		batch := addrs[start:end]

		results := make([]probeResult, len(batch))
		var wg sync.WaitGroup
		for i, addr := range batch {
			wg.Add(1)
			go func(i int, addr string) {
				defer wg.Done()
				results[i] = c.probe(ctx, addr)
			}(i, addr)
		}
		wg.Wait()

		for _, res := range results {
			tested++
			if res.healthy {
				healthy = append(healthy, res.addr)
				log.Debug().
					Str("proxy", res.addr).
					Dur("elapsed", res.elapsed).
					Msg("proxy healthy")
			} else {
				log.Debug().
					Str("proxy", res.addr).
					Str("reason", res.reason).
					Msg("proxy unhealthy")
			}
		}

		if c.OnProgress != nil {
			c.OnProgress(tested, len(addrs), len(healthy))
		}
	}

	log.Info().
		Int("healthy", len(healthy)).
		Int("tested", tested).
		Msg("proxy health check complete")

	return healthy
}

// QuickCheck probes a bounded sample of the pool and reports the healthy
// subset together with the observed success rate.
func (c *Checker) QuickCheck(ctx context.Context, addrs []string, sampleSize int) ([]string, float64) {
	if sampleSize > len(addrs) {
		sampleSize = len(addrs)
	}
	sample := addrs[:sampleSize]
	healthy := c.FilterHealthy(ctx, sample)
	if len(sample) == 0 {
		return healthy, 0
	}
	return healthy, float64(len(healthy)) / float64(len(sample)) * 100
}

// probe relays one request to the echo endpoint through the bridge via the
// candidate proxy. Healthy means: 2xx within the timeout and a JSON body
// carrying an IP-identifying field. Anything else is unhealthy.
func (c *Checker) probe(ctx context.Context, addr string) probeResult {
	start := time.Now()

	probeCtx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	probeURL := c.BridgeURL + "?url=" + url.QueryEscape(c.Endpoint) + "&proxy=" + url.QueryEscape(addr)
	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, probeURL, nil)
	if err != nil {
		return probeResult{addr: addr, reason: err.Error()}
	}
	req.Header.Set("X-Health-Check", "true")

	resp, err := c.Client.Do(req)
	if err != nil {
		return probeResult{addr: addr, reason: err.Error()}
	}
	defer resp.Body.Close()

	elapsed := time.Since(start)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return probeResult{addr: addr, elapsed: elapsed, reason: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return probeResult{addr: addr, elapsed: elapsed, reason: err.Error()}
	}

	parsed := gjson.ParseBytes(body)
	if parsed.Get("origin").Exists() || parsed.Get("ip").Exists() {
		return probeResult{addr: addr, healthy: true, elapsed: elapsed}
	}
	return probeResult{addr: addr, elapsed: elapsed, reason: "no IP field in response"}
}
