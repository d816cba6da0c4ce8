package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/threadtoon/internal/config"
	"github.com/threadtoon/internal/forums"
	"github.com/threadtoon/internal/toon"
	"github.com/threadtoon/pkg/models"
)

// ExportCommand returns the export command
func ExportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Search a topic and export the top threads as a TOON file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "level",
				Aliases: []string{"l"},
				Usage:   "Compression level: maximum, balanced, aggressive",
			},
			&cli.IntFlag{
				Name:    "threads",
				Aliases: []string{"n"},
				Usage:   "Number of top-ranked threads to export",
				Value:   5,
			},
			&cli.IntFlag{
				Name:  "min-score",
				Usage: "Minimum comment score to include",
				Value: -1,
			},
			&cli.BoolFlag{
				Name:  "include-bots",
				Usage: "Keep comments from known bot authors",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Output file (default: derived from the query)",
			},
			&cli.StringFlag{
				Name:  "sort",
				Value: "top",
			},
			&cli.StringFlag{
				Name:  "time",
				Value: "week",
			},
		},
		ArgsUsage: "QUERY",
		Action:    runExport,
	}
}

func runExport(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("missing required argument: query")
	}
	query := c.Args().Get(0)

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	p := buildPipeline(cfg)

	go p.registry.Refresh(context.Background(), false)

	matches := forums.NewMatcher().Match(query)
	if len(matches) == 0 {
		return fmt.Errorf("no forums matched topic %q", query)
	}
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m.Name
	}

	color.Cyan("Searching %d forums for %q...", len(names), query)
	threads, err := p.service.SearchMany(c.Context, names, query,
		models.SortOption(c.String("sort")), models.TimeFilter(c.String("time")))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if len(threads) == 0 {
		return fmt.Errorf("no threads found for %q", query)
	}

	limit := c.Int("threads")
	if limit > len(threads) {
		limit = len(threads)
	}
	selected := threads[:limit]

	// Detail fetches populate comment trees; a failed fetch keeps the
	// listing-level thread rather than dropping it.
	for i, t := range selected {
		color.White("Fetching comments %d/%d: %s", i+1, limit, t.Title)
		detail, err := p.service.FetchThread(c.Context, t.Subreddit, t.ID)
		if err != nil {
			log.Warn().Str("thread", t.ID).Err(err).Msg("detail fetch failed, exporting without comments")
			continue
		}
		selected[i] = *detail
	}

	opts := exportOptions(cfg, c)
	content := toon.Generate(selected, query, opts)

	outPath := c.String("out")
	if outPath == "" {
		outPath = toon.Filename(query, time.Now())
	}
	if err := os.WriteFile(outPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}

	savings := toon.EstimateSavings(selected, content)
	color.Green("Exported %d threads to %s", len(selected), outPath)
	color.Green("~%d tokens (estimated %d raw, %d%% saved)",
		savings.ToonTokens, savings.OriginalTokens, savings.SavingsPercent)
	return nil
}

func exportOptions(cfg *config.Config, c *cli.Context) toon.Options {
	opts := toon.DefaultOptions()

	opts.Level = toon.Level(cfg.Toon.Level)
	if lvl := c.String("level"); lvl != "" {
		opts.Level = toon.Level(lvl)
	}
	opts.MinScore = cfg.Toon.MinScore
	if v := c.Int("min-score"); v >= 0 {
		opts.MinScore = v
	}
	opts.MaxDepth = cfg.Toon.MaxDepth
	opts.ExcludeBots = cfg.Toon.ExcludeBots && !c.Bool("include-bots")
	if len(cfg.Toon.BotAuthors) > 0 {
		opts.BotAuthors = cfg.Toon.BotAuthors
	}
	if len(cfg.Toon.Substitutions) > 0 {
		if subs, err := toon.ParseSubstitutions(cfg.Toon.Substitutions); err == nil {
			opts.Substitutions = subs
		} else {
			log.Warn().Err(err).Msg("invalid substitution table in config, using defaults")
		}
	}
	return opts
}
