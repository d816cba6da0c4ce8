package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/threadtoon/internal/config"
	"github.com/threadtoon/internal/fetch"
	"github.com/threadtoon/internal/health"
	"github.com/threadtoon/internal/logging"
	"github.com/threadtoon/internal/proxies"
	"github.com/threadtoon/internal/search"
)

// pipeline bundles the wired-up fetch stack shared by the search and
// export commands.
type pipeline struct {
	cfg      *config.Config
	registry *proxies.Registry
	checker  *health.Checker
	orch     *fetch.Orchestrator
	service  *search.Service
}

// loadConfig loads .env, the config file and sets up logging.
func loadConfig(c *cli.Context) (*config.Config, error) {
	godotenv.Load()

	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logging.Setup(cfg.Log.Level, c.Bool("verbose"))
	return cfg, nil
}

// buildPipeline wires the registry, health checker, orchestrator and
// search service from configuration.
func buildPipeline(cfg *config.Config) *pipeline {
	client := &http.Client{}

	checker := health.NewChecker(cfg.Fetch.BridgeURL, cfg.Health.Endpoint, client)
	checker.Timeout = time.Duration(cfg.Health.TimeoutSecs) * time.Second
	checker.BatchSize = cfg.Health.BatchSize

	registry := proxies.NewRegistry(
		cfg.Proxies.Sources,
		time.Duration(cfg.Proxies.ValidityMinutes)*time.Minute,
		client,
		checker,
	)

	orch := fetch.New(fetch.Config{
		Mirrors:        cfg.Fetch.Mirrors,
		Frontends:      cfg.Fetch.Frontends,
		CommunityHubs:  cfg.Fetch.CommunityHubs,
		HomeHub:        cfg.Fetch.HomeHub,
		BridgeURL:      cfg.Fetch.BridgeURL,
		CorsProxies:    cfg.Fetch.CorsProxies,
		FrontendSample: cfg.Fetch.FrontendSample,
		ProxySample:    cfg.Fetch.ProxySample,
		AttemptTimeout: time.Duration(cfg.Fetch.AttemptTimeoutSecs) * time.Second,
		RetryCycles:    cfg.Fetch.RetryCycles,
		RetryBackoff:   time.Duration(cfg.Fetch.RetryBackoffSecs) * time.Second,
	}, client, registry)

	return &pipeline{
		cfg:      cfg,
		registry: registry,
		checker:  checker,
		orch:     orch,
		service:  search.NewService(orch, cfg.Search.PerForumLimit),
	}
}
