package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config represents the application configuration
type Config struct {
	Log struct {
		Level string `koanf:"level"`
	} `koanf:"log"`

	Fetch struct {
		Mirrors            []string `koanf:"mirrors"`
		Frontends          []string `koanf:"frontends"`
		CommunityHubs      []string `koanf:"community_hubs"`
		HomeHub            string   `koanf:"home_hub"`
		BridgeURL          string   `koanf:"bridge_url"`
		CorsProxies        []string `koanf:"cors_proxies"`
		FrontendSample     int      `koanf:"frontend_sample"`
		ProxySample        int      `koanf:"proxy_sample"`
		AttemptTimeoutSecs int      `koanf:"attempt_timeout_secs"`
		RetryCycles        int      `koanf:"retry_cycles"`
		RetryBackoffSecs   int      `koanf:"retry_backoff_secs"`
	} `koanf:"fetch"`

	Proxies struct {
		Sources         []string `koanf:"sources"`
		ValidityMinutes int      `koanf:"validity_minutes"`
	} `koanf:"proxies"`

	Health struct {
		Endpoint    string `koanf:"endpoint"`
		TimeoutSecs int    `koanf:"timeout_secs"`
		BatchSize   int    `koanf:"batch_size"`
	} `koanf:"health"`

	Search struct {
		PerForumLimit int `koanf:"per_forum_limit"`
	} `koanf:"search"`

	Toon struct {
		Level         string   `koanf:"level"`
		MinScore      int      `koanf:"min_score"`
		MaxDepth      int      `koanf:"max_depth"`
		ExcludeBots   bool     `koanf:"exclude_bots"`
		BotAuthors    []string `koanf:"bot_authors"`
		Substitutions []string `koanf:"substitutions"`
	} `koanf:"toon"`

	Bridge struct {
		Port           int      `koanf:"port"`
		AllowedDomains []string `koanf:"allowed_domains"`
		TimeoutSecs    int      `koanf:"timeout_secs"`
	} `koanf:"bridge"`
}

// defaults holds the hand-curated tables (mirror hosts, proxy list sources,
// bot denylist, phrase table) as overridable configuration rather than
// constants baked into the packages that consume them.
func defaults() map[string]interface{} {
	return map[string]interface{}{
		"log.level": "info",

		"fetch.mirrors": []string{
			"www.reddit.com",
			"old.reddit.com",
			"new.reddit.com",
		},
		"fetch.frontends": []string{
			"libreddit.spike.codes",
			"safereddit.com",
			"libreddit.northboot.xyz",
		},
		"fetch.community_hubs": []string{},
		"fetch.home_hub":       "",
		// Points at the bridge this binary serves with `threadtoon serve`.
		"fetch.bridge_url": "http://localhost:8787/api/proxy",
		// Prefix-style relay services. The target URL is query-escaped and
		// appended verbatim.
		"fetch.cors_proxies": []string{
			"https://corsproxy.io/?",
			"https://api.allorigins.win/raw?url=",
			"https://api.codetabs.com/v1/proxy?quest=",
		},
		"fetch.frontend_sample":      3,
		"fetch.proxy_sample":         5,
		"fetch.attempt_timeout_secs": 8,
		"fetch.retry_cycles":         2,
		"fetch.retry_backoff_secs":   4,

		"proxies.sources": []string{
			"https://raw.githubusercontent.com/Bes-js/public-proxy-list/main/proxies.txt",
			"https://raw.githubusercontent.com/TheSpeedX/SOCKS-List/master/http.txt",
			"https://raw.githubusercontent.com/monosans/proxy-list/main/proxies/http.txt",
			"https://raw.githubusercontent.com/hookzof/socks5_list/master/proxy.txt",
		},
		"proxies.validity_minutes": 60,

		"health.endpoint":     "https://httpbin.org/ip",
		"health.timeout_secs": 8,
		"health.batch_size":   10,

		"search.per_forum_limit": 10,

		"toon.level":        "balanced",
		"toon.min_score":    5,
		"toon.max_depth":    5,
		"toon.exclude_bots": true,
		"toon.bot_authors": []string{
			"AutoModerator",
			"RemindMeBot",
			"SaveVideo",
			"haikusbot",
			"sub_doesnt_exist_bot",
		},
		// "pattern => token" pairs applied in order during serialization.
		"toon.substitutions": []string{
			`(?i)in my opinion => imo`,
			`(?i)to be honest => tbh`,
			`(?i)as far as i know => afaik`,
			`(?i)for what it's worth => fwiw`,
			`(?i)not gonna lie => ngl`,
			`(?i)i don't know => idk`,
			`(?i)on the other hand => otoh`,
			`\[deleted\] => ~`,
			`\[removed\] => -`,
			`(?i)edit: => *`,
		},

		"bridge.port": 8787,
		"bridge.allowed_domains": []string{
			"reddit.com",
			"old.reddit.com",
			"new.reddit.com",
			"libreddit.spike.codes",
			"safereddit.com",
			"libreddit.northboot.xyz",
			"httpbin.org",
		},
		"bridge.timeout_secs": 10,
	}
}

// LoadConfig loads the configuration from a file
func LoadConfig(configPath string) (*Config, error) {
	var k = koanf.New(".")

	k.Load(confmap.Provider(defaults(), "."), nil)

	// Load from TOML file if it exists
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config: %w", err)
		}
	} else {
		defaultPaths := []string{"./threadtoon.toml", "$HOME/.threadtoon.toml"}
		for _, path := range defaultPaths {
			path = os.ExpandEnv(path)
			if _, err := os.Stat(path); err == nil {
				if err := k.Load(file.Provider(path), toml.Parser()); err == nil {
					break
				}
			}
		}
	}

	// Load from environment variables with prefix THREADTOON_
	k.Load(env.Provider("THREADTOON_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "THREADTOON_")), "_", ".", -1)
	}), nil)

	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	return &config, nil
}

// InitConfig initializes a new configuration file
func InitConfig(configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists at %s", configPath)
	}

	sampleConfig := `# threadtoon configuration

[log]
level = "info"

[fetch]
# Equivalent origin hosts for the content API. Shuffled per request.
mirrors = ["www.reddit.com", "old.reddit.com", "new.reddit.com"]
# Alternate-frontend instances raced alongside the bridge routes.
frontends = ["libreddit.spike.codes", "safereddit.com", "libreddit.northboot.xyz"]
# Optional user-operated hub that joins every tier-0 race.
home_hub = ""
# Absolute URL of a bridge endpoint. The default matches ` + "`threadtoon serve`" + `.
bridge_url = "http://localhost:8787/api/proxy"
# Prefix-style relays tried when the direct and bridge routes are blocked.
cors_proxies = ["https://corsproxy.io/?", "https://api.allorigins.win/raw?url=", "https://api.codetabs.com/v1/proxy?quest="]
retry_cycles = 2

[toon]
level = "balanced"
min_score = 5
max_depth = 5
exclude_bots = true

[bridge]
port = 8787
`

	return os.WriteFile(configPath, []byte(sampleConfig), 0644)
}

// Validate validates the configuration
func Validate(config *Config) error {
	if len(config.Fetch.Mirrors) == 0 {
		return fmt.Errorf("at least one content API mirror is required")
	}
	if config.Fetch.BridgeURL == "" {
		return fmt.Errorf("bridge_url is required")
	}
	if u, err := url.Parse(config.Fetch.BridgeURL); err != nil || !u.IsAbs() {
		return fmt.Errorf("bridge_url must be an absolute URL, got %q", config.Fetch.BridgeURL)
	}
	if config.Fetch.RetryCycles < 0 {
		return fmt.Errorf("retry_cycles must not be negative")
	}
	switch config.Toon.Level {
	case "maximum", "balanced", "aggressive":
	default:
		return fmt.Errorf("unknown toon level %q", config.Toon.Level)
	}
	if config.Health.BatchSize <= 0 {
		return fmt.Errorf("health batch_size must be positive")
	}
	return nil
}
