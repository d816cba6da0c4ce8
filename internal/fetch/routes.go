package fetch

import (
	"math/rand"
	"net/url"
	"strings"
)

// Strategy tags how a candidate route reaches the content API. It exists
// for logging and fallback sequencing only; a route has no identity beyond
// one race attempt.
type Strategy string

const (
	StrategyDirect       Strategy = "direct"
	StrategyBridge       Strategy = "bridge"
	StrategyMirror       Strategy = "mirror-instance"
	StrategyHomeHub      Strategy = "home-hub"
	StrategyCommunityHub Strategy = "community-hub"
	StrategyPublicProxy  Strategy = "public-proxy"
	StrategyCorsProxy    Strategy = "cors-proxy"
	StrategyScrape       Strategy = "html-scrape"
)

// Route is one fully-resolved (target URL, access strategy) pair.
type Route struct {
	URL      string
	Strategy Strategy
	Source   string
}

// jsonTarget resolves a logical path against a host as the JSON
// representation of the resource.
func jsonTarget(host, path string, query url.Values) string {
	target := "https://" + host + path + ".json"
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return target
}

// htmlTarget resolves a logical path against a host as the plain HTML
// page, for scrape routes.
func htmlTarget(host, path string, query url.Values) string {
	target := "https://" + host + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return target
}

// bridged wraps a target in a same-origin bridge call, optionally routed
// through a public proxy intermediary.
func bridged(bridgeURL, target, proxyAddr string) string {
	u := bridgeURL + "?url=" + url.QueryEscape(target)
	if proxyAddr != "" {
		u += "&proxy=" + url.QueryEscape(proxyAddr)
	}
	return u
}

// corsPrefixed appends a query-escaped target to a prefix-style relay,
// e.g. "https://api.allorigins.win/raw?url=" + escaped target.
func corsPrefixed(prefix, target string) string {
	return prefix + url.QueryEscape(target)
}

// prefixHost extracts the relay's host for log source tags.
func prefixHost(prefix string) string {
	if u, err := url.Parse(prefix); err == nil && u.Host != "" {
		return u.Host
	}
	return prefix
}

// hubTarget resolves a logical path against an operator-configured hub,
// which is expected to serve the JSON representation directly.
func hubTarget(hub, path string, query url.Values) string {
	target := strings.TrimSuffix(hub, "/") + path + ".json"
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return target
}

// shuffled returns a copy of hosts in random order so no single host's
// block policy dominates the attempt sequence.
func shuffled(rng *rand.Rand, hosts []string) []string {
	out := make([]string, len(hosts))
	copy(out, hosts)
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// sample returns up to n entries of a shuffled copy of list.
func sample(rng *rand.Rand, list []string, n int) []string {
	out := shuffled(rng, list)
	if n < len(out) {
		out = out[:n]
	}
	return out
}
