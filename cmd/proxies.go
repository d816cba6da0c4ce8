package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

// ProxiesCommand returns the proxies command
func ProxiesCommand() *cli.Command {
	return &cli.Command{
		Name:  "proxies",
		Usage: "Manage the public proxy pool",
		Subcommands: []*cli.Command{
			{
				Name:  "refresh",
				Usage: "Fetch and deduplicate the community proxy lists",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "validate",
						Usage: "Filter the pool through the health checker",
					},
				},
				Action: runProxiesRefresh,
			},
			{
				Name:  "check",
				Usage: "Health-check a sample of the current pool",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "sample",
						Usage: "How many addresses to test",
						Value: 20,
					},
				},
				Action: runProxiesCheck,
			},
		},
	}
}

func runProxiesRefresh(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	p := buildPipeline(cfg)

	p.checker.OnProgress = printProgress

	pool, err := p.registry.Refresh(c.Context, c.Bool("validate"))
	if err != nil {
		return fmt.Errorf("refresh failed: %w", err)
	}

	color.Green("Proxy pool ready: %d addresses", len(pool))
	return nil
}

func runProxiesCheck(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	p := buildPipeline(cfg)

	pool, err := p.registry.Refresh(c.Context, false)
	if err != nil {
		return fmt.Errorf("refresh failed: %w", err)
	}
	if len(pool) == 0 {
		return fmt.Errorf("proxy pool is empty")
	}

	p.checker.OnProgress = printProgress

	healthy, rate := p.checker.QuickCheck(c.Context, pool, c.Int("sample"))
	color.Green("Healthy: %d (%.1f%% success rate)", len(healthy), rate)
	for _, addr := range healthy {
		fmt.Println(addr)
	}
	return nil
}

func printProgress(tested, total, healthy int) {
	color.White("tested %d/%d, healthy %d", tested, total, healthy)
}
