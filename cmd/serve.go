package cmd

import (
	"time"

	"github.com/urfave/cli/v2"

	"github.com/threadtoon/internal/bridge"
)

// ServeCommand returns the serve command
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the same-origin proxy bridge",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (overrides config)",
			},
		},
		Action: runServe,
	}
}

func runServe(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	port := cfg.Bridge.Port
	if c.Int("port") != 0 {
		port = c.Int("port")
	}

	server := bridge.NewServer(port, cfg.Bridge.AllowedDomains,
		time.Duration(cfg.Bridge.TimeoutSecs)*time.Second)
	return server.Start()
}
