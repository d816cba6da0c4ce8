package bridge

import (
	"math/rand"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func newTestHandler(allowed ...string) *Handler {
	return NewHandler(allowed, 2*time.Second, rand.New(rand.NewSource(1)))
}

func relay(t *testing.T, h *Handler, query string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/proxy?"+query, nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Proxy(e.NewContext(req, rec)))
	return rec
}

func TestProxy_MissingURL(t *testing.T) {
	rec := relay(t, newTestHandler("example.com"), "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "No URL provided", gjson.Get(rec.Body.String(), "error").String())
}

func TestProxy_DomainNotAllowed(t *testing.T) {
	rec := relay(t, newTestHandler("example.com"), "url="+url.QueryEscape("https://evil.test/steal"))
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "Domain not allowed", gjson.Get(rec.Body.String(), "error").String())
}

func TestProxy_RelaysVerbatim(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("User-Agent"), "Mozilla/5.0") {
			t.Errorf("relay did not set a browser user agent, got %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte(`{"hello": "world"}`))
	}))
	defer upstream.Close()

	host, _, _ := strings.Cut(strings.TrimPrefix(upstream.URL, "http://"), ":")
	rec := relay(t, newTestHandler(host), "url="+url.QueryEscape(upstream.URL))

	require.Equal(t, http.StatusTeapot, rec.Code)
	require.Equal(t, `{"hello": "world"}`, rec.Body.String())
	require.Contains(t, rec.Header().Get("Content-Type"), "application/json")
}

func TestProxy_CORSAndCacheHeaders(t *testing.T) {
	rec := relay(t, newTestHandler("example.com"), "")
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "GET, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	require.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "X-Health-Check")
	require.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))
}

func TestProxy_UpstreamUnreachable(t *testing.T) {
	h := newTestHandler("127.0.0.1")
	h.timeout = 200 * time.Millisecond

	rec := relay(t, h, "url="+url.QueryEscape("http://127.0.0.1:1/nope"))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotEmpty(t, gjson.Get(rec.Body.String(), "error").String())
}

func TestIsAllowed(t *testing.T) {
	h := newTestHandler("reddit.com", "redd.it")

	cases := []struct {
		host string
		want bool
	}{
		{"reddit.com", true},
		{"www.reddit.com", true},
		{"old.reddit.com", true},
		{"redd.it", true},
		{"notreddit.com", false},
		{"reddit.com.evil.test", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := h.isAllowed(tc.host); got != tc.want {
			t.Errorf("isAllowed(%q) = %v, want %v", tc.host, got, tc.want)
		}
	}
}

func TestClientFor(t *testing.T) {
	h := newTestHandler("example.com")

	// No intermediary: default transport.
	client, err := h.clientFor("")
	require.NoError(t, err)
	require.Nil(t, client.Transport)

	// Bare HOST:PORT defaults to an http proxy.
	client, err = h.clientFor("1.2.3.4:8080")
	require.NoError(t, err)
	transport, ok := client.Transport.(*http.Transport)
	require.True(t, ok)
	require.NotNil(t, transport.Proxy)

	// socks5 dials through the SOCKS dialer instead of a proxy URL.
	client, err = h.clientFor("socks5://1.2.3.4:1080")
	require.NoError(t, err)
	transport, ok = client.Transport.(*http.Transport)
	require.True(t, ok)
	require.Nil(t, transport.Proxy)

	// socks4 uses the hand-rolled dialer.
	client, err = h.clientFor("socks4://1.2.3.4:1080")
	require.NoError(t, err)
	transport, ok = client.Transport.(*http.Transport)
	require.True(t, ok)
	require.NotNil(t, transport.DialContext)
}
