package health

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeBridge answers probe relays; proxies whose address starts with "ok"
// echo an IP body, "noip" proxies answer 200 without one, everything else
// gets a 502.
func fakeBridge(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Health-Check") != "true" {
			t.Errorf("probe missing X-Health-Check header")
		}
		proxy := r.URL.Query().Get("proxy")
		switch {
		case strings.HasPrefix(proxy, "ok"):
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(w, `{"origin": "1.2.3.4"}`)
		case strings.HasPrefix(proxy, "noip"):
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(w, `{"status": "fine"}`)
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
}

func newTestChecker(bridgeURL string) *Checker {
	c := NewChecker(bridgeURL, "https://httpbin.org/ip", nil)
	c.Timeout = 2 * time.Second
	c.limiter = nil
	return c
}

func TestFilterHealthy(t *testing.T) {
	bridge := fakeBridge(t)
	defer bridge.Close()

	addrs := []string{"ok1:8080", "dead1:8080", "ok2:3128", "noip1:1080", "dead2:9999"}
	healthy := newTestChecker(bridge.URL).FilterHealthy(context.Background(), addrs)
	require.Equal(t, []string{"ok1:8080", "ok2:3128"}, healthy)
}

func TestFilterHealthy_BatchProgress(t *testing.T) {
	bridge := fakeBridge(t)
	defer bridge.Close()

	// Twelve addresses split into a batch of ten and a batch of two.
	var addrs []string
	for i := 0; i < 12; i++ {
		if i%4 == 0 {
			addrs = append(addrs, fmt.Sprintf("ok%d:8080", i))
		} else {
			addrs = append(addrs, fmt.Sprintf("dead%d:8080", i))
		}
	}

	c := newTestChecker(bridge.URL)
	var reports [][3]int
	c.OnProgress = func(tested, total, healthy int) {
		reports = append(reports, [3]int{tested, total, healthy})
	}

	healthy := c.FilterHealthy(context.Background(), addrs)
	require.Len(t, healthy, 3)
	require.Equal(t, [][3]int{{10, 12, 3}, {12, 12, 3}}, reports)
}

func TestFilterHealthy_Empty(t *testing.T) {
	c := newTestChecker("http://127.0.0.1:1")
	require.Nil(t, c.FilterHealthy(context.Background(), nil))
}

func TestQuickCheck(t *testing.T) {
	bridge := fakeBridge(t)
	defer bridge.Close()

	addrs := []string{"ok1:8080", "dead1:8080", "ok2:3128", "dead2:9999"}
	healthy, rate := newTestChecker(bridge.URL).QuickCheck(context.Background(), addrs, 4)
	require.Equal(t, []string{"ok1:8080", "ok2:3128"}, healthy)
	require.InDelta(t, 50.0, rate, 0.001)
}

func TestQuickCheck_SampleLargerThanPool(t *testing.T) {
	bridge := fakeBridge(t)
	defer bridge.Close()

	healthy, rate := newTestChecker(bridge.URL).QuickCheck(context.Background(), []string{"ok1:8080"}, 20)
	require.Equal(t, []string{"ok1:8080"}, healthy)
	require.InDelta(t, 100.0, rate, 0.001)
}

func TestFilterHealthy_RelativeBridgeURL(t *testing.T) {
	// A path-only bridge URL cannot be dialed, so every candidate fails
	// without any network traffic. Validate rejects such URLs up front;
	// this covers a checker constructed around one anyway.
	c := newTestChecker("/api/proxy")
	c.Timeout = 200 * time.Millisecond
	healthy := c.FilterHealthy(context.Background(), []string{"ok1:8080"})
	require.Empty(t, healthy)
}

func TestProbe_UnreachableBridge(t *testing.T) {
	c := newTestChecker("http://127.0.0.1:1")
	c.Timeout = 200 * time.Millisecond
	healthy := c.FilterHealthy(context.Background(), []string{"ok1:8080"})
	require.Empty(t, healthy)
}
