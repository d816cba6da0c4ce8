package bridge

import (
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	xproxy "golang.org/x/net/proxy"
)

// userAgents is the pool of realistic browser identities; one is picked
// per relayed request.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:122.0) Gecko/20100101 Firefox/122.0",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
}

// Handler implements the bridge's one pass-through endpoint.
type Handler struct {
	allowedDomains []string
	timeout        time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

func NewHandler(allowedDomains []string, timeout time.Duration, rng *rand.Rand) *Handler {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Handler{
		allowedDomains: allowedDomains,
		timeout:        timeout,
		rng:            rng,
	}
}

// Proxy relays GET ?url=<target>&proxy=<optional intermediary>. The target
// hostname must match the allow-list; status, body and content type come
// back verbatim. Every response carries permissive CORS headers and a
// one-hour cache directive.
func (h *Handler) Proxy(c echo.Context) error {
	h.setRelayHeaders(c)

	rawURL := c.QueryParam("url")
	if rawURL == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "No URL provided"})
	}

	target, err := url.Parse(rawURL)
	if err != nil || !h.isAllowed(target.Hostname()) {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Domain not allowed"})
	}

	client, err := h.clientFor(c.QueryParam("proxy"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	req, err := http.NewRequestWithContext(c.Request().Context(), http.MethodGet, target.String(), nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	h.setBrowserHeaders(req)

	log.Debug().Str("target", target.String()).Msg("bridge relaying request")

	resp, err := client.Do(req)
	if err != nil {
		log.Warn().Str("target", target.String()).Err(err).Msg("bridge relay failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}
	return c.Blob(resp.StatusCode, contentType, body)
}

func (h *Handler) isAllowed(hostname string) bool {
	for _, domain := range h.allowedDomains {
		if hostname == domain || strings.HasSuffix(hostname, "."+domain) {
			return true
		}
	}
	return false
}

func (h *Handler) setRelayHeaders(c echo.Context) {
	header := c.Response().Header()
	header.Set("Access-Control-Allow-Origin", "*")
	header.Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	header.Set("Access-Control-Allow-Headers", "Content-Type, X-Requested-With, X-Health-Check")
	header.Set("Cache-Control", "public, max-age=3600")
}

func (h *Handler) setBrowserHeaders(req *http.Request) {
	h.mu.Lock()
	ua := userAgents[h.rng.Intn(len(userAgents))]
	h.mu.Unlock()

	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
}

// clientFor builds an HTTP client routed through the given intermediary.
// Bare HOST:PORT entries default to the http scheme; socks4 and socks5
// schemes are dialed accordingly.
func (h *Handler) clientFor(proxyAddr string) (*http.Client, error) {
	client := &http.Client{Timeout: h.timeout}
	if proxyAddr == "" {
		return client, nil
	}

	scheme := "http"
	addr := proxyAddr
	if idx := strings.Index(proxyAddr, "://"); idx >= 0 {
		scheme = proxyAddr[:idx]
		addr = proxyAddr[idx+3:]
	}

	switch scheme {
	case "http", "https":
		proxyURL, err := url.Parse(scheme + "://" + addr)
		if err != nil {
			return nil, err
		}
		client.Transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	case "socks5", "socks5h":
		dialer, err := xproxy.SOCKS5("tcp", addr, nil, xproxy.Direct)
		if err != nil {
			return nil, err
		}
		transport := &http.Transport{}
		if ctxDialer, ok := dialer.(xproxy.ContextDialer); ok {
			transport.DialContext = ctxDialer.DialContext
		} else {
			transport.Dial = dialer.Dial
		}
		client.Transport = transport
	case "socks4", "socks4a":
		transport := &http.Transport{DialContext: socks4Dialer(addr).DialContext}
		client.Transport = transport
	default:
		proxyURL, err := url.Parse(proxyAddr)
		if err != nil {
			return nil, err
		}
		client.Transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	}
	return client, nil
}
